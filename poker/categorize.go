package poker

// HoleCategory buckets starting hands from worst to best.
type HoleCategory uint8

const (
	HoleUnknown HoleCategory = iota
	HoleTrash
	HoleWeak
	HoleMedium
	HoleStrong
	HolePremium
)

func (c HoleCategory) String() string {
	switch c {
	case HoleTrash:
		return "trash"
	case HoleWeak:
		return "weak"
	case HoleMedium:
		return "medium"
	case HoleStrong:
		return "strong"
	case HolePremium:
		return "premium"
	default:
		return "unknown"
	}
}

// CategorizeHole gives a coarse preflop category:
//
//	premium  JJ+, AK
//	strong   TT, AQ, AJ
//	medium   77-99, suited broadway
//	weak     22-66, suited cards at most two ranks apart
//	trash    everything else
func CategorizeHole(a, b Card) HoleCategory {
	if !a.Valid() || !b.Valid() || a == b {
		return HoleUnknown
	}
	lo, hi := a.Rank(), b.Rank()
	if lo > hi {
		lo, hi = hi, lo
	}
	pair := lo == hi
	suited := a.Suit() == b.Suit()

	switch {
	case pair && lo >= Jack, lo == King && hi == Ace:
		return HolePremium
	case pair && lo == Ten, hi == Ace && (lo == Queen || lo == Jack):
		return HoleStrong
	case pair && lo >= Seven, suited && lo >= Ten:
		return HoleMedium
	case pair, suited && hi-lo <= 2:
		return HoleWeak
	}
	return HoleTrash
}

// HoleKey returns the shorthand for a starting hand, such as "AKs", "T9o"
// or "77".
func HoleKey(a, b Card) string {
	if !a.Valid() || !b.Valid() {
		return ""
	}
	if a.Rank() < b.Rank() {
		a, b = b, a
	}
	key := []byte{rankChars[a.Rank()], rankChars[b.Rank()]}
	switch {
	case a.Rank() == b.Rank():
	case a.Suit() == b.Suit():
		key = append(key, 's')
	default:
		key = append(key, 'o')
	}
	return string(key)
}
