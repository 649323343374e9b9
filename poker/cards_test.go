package poker

import (
	"math/rand/v2"
	"testing"
)

func TestCardCreation(t *testing.T) {
	t.Parallel()
	aceSpades := NewCard(Ace, Spades)
	if aceSpades.Rank() != Ace {
		t.Errorf("Expected rank Ace, got %d", aceSpades.Rank())
	}
	if aceSpades.Suit() != Spades {
		t.Errorf("Expected suit Spades, got %d", aceSpades.Suit())
	}
	if aceSpades.String() != "As" {
		t.Errorf("Expected 'As', got %s", aceSpades.String())
	}
	if got := NewCard(Two, Clubs).String(); got != "2c" {
		t.Errorf("Expected '2c', got %s", got)
	}
}

func TestParseCard(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		wantCard Card
		wantErr  bool
	}{
		{"ace of spades", "As", NewCard(Ace, Spades), false},
		{"two of hearts", "2h", NewCard(Two, Hearts), false},
		{"king of diamonds lower", "kd", NewCard(King, Diamonds), false},
		{"ten with T", "Tc", NewCard(Ten, Clubs), false},
		{"ten with 10", "10h", NewCard(Ten, Hearts), false},
		{"invalid rank", "Xs", 0, true},
		{"invalid suit", "Ax", 0, true},
		{"empty", "", 0, true},
		{"too long", "Asd", 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			card, err := ParseCard(tc.input)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseCard(%q) err=%v, wantErr %v", tc.input, err, tc.wantErr)
			}
			if card != tc.wantCard {
				t.Errorf("ParseCard(%q) = %v, want %v", tc.input, card, tc.wantCard)
			}
		})
	}
}

func TestCardIndexRoundTrip(t *testing.T) {
	t.Parallel()
	seen := make(map[string]bool)
	for idx := 0; idx < NumCards; idx++ {
		card, ok := CardFromIndex(idx)
		if !ok {
			t.Fatalf("CardFromIndex(%d) not ok", idx)
		}
		if card.Index() != idx {
			t.Fatalf("index round trip: got %d want %d", card.Index(), idx)
		}
		str := card.String()
		if seen[str] {
			t.Fatalf("duplicate card %s", str)
		}
		seen[str] = true

		parsed, err := ParseCard(str)
		if err != nil || parsed != card {
			t.Fatalf("parse round trip failed for %s: %v", str, err)
		}
	}

	if _, ok := CardFromIndex(52); ok {
		t.Error("index 52 should be out of range")
	}
	if _, ok := CardFromIndex(-1); ok {
		t.Error("index -1 should be out of range")
	}
	if Card(0).Index() != -1 || Card(3).Index() != -1 {
		t.Error("zero and multi-bit values are not cards")
	}
}

func TestHandOperations(t *testing.T) {
	t.Parallel()
	cards := MustParseCards("As", "Kh", "Qd")
	hand := NewHand(cards[0], cards[1])

	if !hand.HasCard(cards[0]) || !hand.HasCard(cards[1]) {
		t.Error("hand should hold both cards")
	}
	if hand.HasCard(cards[2]) {
		t.Error("hand should not hold Qd")
	}

	hand.AddCard(cards[2])
	if hand.CountCards() != 3 {
		t.Errorf("Hand should have 3 cards, got %d", hand.CountCards())
	}
	if got := len(hand.Cards()); got != 3 {
		t.Errorf("Cards() returned %d cards", got)
	}
}

func TestDeckRemoveSkipsCards(t *testing.T) {
	t.Parallel()
	deck := NewDeck(rand.New(rand.NewPCG(1, 2)))
	removed := MustParseCards("As", "Ah", "2c")
	deck.Remove(removed...)

	if deck.CardsRemaining() != 49 {
		t.Fatalf("expected 49 remaining, got %d", deck.CardsRemaining())
	}

	dealt := NewHand(deck.Deal(49)...)
	for _, c := range removed {
		if dealt.HasCard(c) {
			t.Fatalf("removed card %s was dealt", c)
		}
	}
	if dealt.CountCards() != 49 {
		t.Fatalf("expected 49 unique cards, got %d", dealt.CountCards())
	}
	if deck.Deal(1) != nil {
		t.Error("empty deck should not deal")
	}
}

func TestDeckDeterministic(t *testing.T) {
	t.Parallel()
	a := NewDeck(rand.New(rand.NewPCG(42, 7))).Deal(5)
	b := NewDeck(rand.New(rand.NewPCG(42, 7))).Deal(5)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("decks diverged at %d: %s vs %s", i, a[i], b[i])
		}
	}
}
