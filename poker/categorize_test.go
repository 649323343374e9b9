package poker

import "testing"

func TestCategorizeHole(t *testing.T) {
	tests := []struct {
		a, b string
		want HoleCategory
	}{
		{"As", "Ah", HolePremium},
		{"Jh", "Jd", HolePremium},
		{"Ac", "Kh", HolePremium},
		{"Kh", "Ac", HolePremium},
		{"Tc", "Th", HoleStrong},
		{"Ac", "Qh", HoleStrong},
		{"Jd", "As", HoleStrong},
		{"9c", "9h", HoleMedium},
		{"7h", "7c", HoleMedium},
		{"Ks", "Qs", HoleMedium},
		{"Ts", "Js", HoleMedium},
		{"6c", "6h", HoleWeak},
		{"2c", "2h", HoleWeak},
		{"7h", "6h", HoleWeak},
		{"5d", "3d", HoleWeak},
		{"Kh", "Qd", HoleTrash},
		{"7c", "2h", HoleTrash},
		{"9d", "5d", HoleTrash},
	}

	for _, tt := range tests {
		t.Run(tt.a+tt.b, func(t *testing.T) {
			c := MustParseCards(tt.a, tt.b)
			if got := CategorizeHole(c[0], c[1]); got != tt.want {
				t.Errorf("CategorizeHole(%s, %s) = %s, want %s", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCategorizeHoleInvalid(t *testing.T) {
	as := NewCard(Ace, Spades)
	if got := CategorizeHole(as, Card(0)); got != HoleUnknown {
		t.Errorf("invalid card: got %s", got)
	}
	if got := CategorizeHole(as, as); got != HoleUnknown {
		t.Errorf("same card twice: got %s", got)
	}
}

func TestHoleKey(t *testing.T) {
	tests := map[string][2]string{
		"AKs": {"Ks", "As"},
		"T9o": {"Td", "9c"},
		"77":  {"7h", "7c"},
	}
	for want, in := range tests {
		c := MustParseCards(in[0], in[1])
		if got := HoleKey(c[0], c[1]); got != want {
			t.Errorf("HoleKey(%v) = %q, want %q", in, got, want)
		}
	}
	if got := HoleKey(Card(0), NewCard(Two, Clubs)); got != "" {
		t.Errorf("invalid card: got %q", got)
	}
}
