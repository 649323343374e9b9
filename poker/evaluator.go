package poker

import (
	"math/bits"
)

// HandType enumerates the categories of poker hands ordered from weakest to strongest.
type HandType uint8

const (
	HighCard HandType = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

func (t HandType) String() string {
	switch t {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}

// HandRank is the strength of a five card hand. Higher values are stronger.
// Layout: category in bits 20-23, then up to five ranks, four bits each,
// most significant first.
type HandRank uint32

// Type returns the category of the hand.
func (hr HandRank) Type() HandType {
	return HandType(hr >> 20)
}

func (hr HandRank) String() string {
	return hr.Type().String()
}

// CompareHands compares two hands and returns 1 if a wins, -1 if b wins, 0 for tie
func CompareHands(a, b HandRank) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	}
	return 0
}

// Evaluate returns the best five card rank from a hand of five to seven cards.
// Hands with fewer than five cards return 0.
func Evaluate(hand Hand) HandRank {
	if hand.CountCards() < 5 {
		return 0
	}

	var suitMasks [4]uint16
	var rankMask uint16
	for suit := uint8(0); suit < 4; suit++ {
		suitMasks[suit] = hand.GetSuitMask(suit)
		rankMask |= suitMasks[suit]
	}

	for _, mask := range suitMasks {
		if bits.OnesCount16(mask) < 5 {
			continue
		}
		if high, ok := straightHigh(mask); ok {
			return makeRank(StraightFlush, high)
		}
		return makeRank(Flush, topRanks(mask, 5)...)
	}

	s0, s1, s2, s3 := suitMasks[0], suitMasks[1], suitMasks[2], suitMasks[3]
	quads := s0 & s1 & s2 & s3
	tripsOrBetter := (s0 & s1 & s2) | (s0 & s1 & s3) | (s0 & s2 & s3) | (s1 & s2 & s3)
	trips := tripsOrBetter &^ quads
	pairs := ((s0 & s1) | (s0 & s2) | (s0 & s3) | (s1 & s2) | (s1 & s3) | (s2 & s3)) &^ tripsOrBetter

	if quads != 0 {
		q := highest(quads)
		return makeRank(FourOfAKind, q, highest(rankMask&^bit(q)))
	}

	if trips != 0 {
		t := highest(trips)
		if rest := (trips &^ bit(t)) | pairs; rest != 0 {
			return makeRank(FullHouse, t, highest(rest))
		}
	}

	if high, ok := straightHigh(rankMask); ok {
		return makeRank(Straight, high)
	}

	if trips != 0 {
		t := highest(trips)
		return makeRank(ThreeOfAKind, append([]uint8{t}, topRanks(rankMask&^bit(t), 2)...)...)
	}

	if bits.OnesCount16(pairs) >= 2 {
		hi := highest(pairs)
		lo := highest(pairs &^ bit(hi))
		return makeRank(TwoPair, hi, lo, highest(rankMask&^bit(hi)&^bit(lo)))
	}

	if pairs != 0 {
		p := highest(pairs)
		return makeRank(Pair, append([]uint8{p}, topRanks(rankMask&^bit(p), 3)...)...)
	}

	return makeRank(HighCard, topRanks(rankMask, 5)...)
}

func makeRank(t HandType, ranks ...uint8) HandRank {
	hr := HandRank(t) << 20
	shift := 16
	for _, r := range ranks {
		if shift < 0 {
			break
		}
		hr |= HandRank(r) << shift
		shift -= 4
	}
	return hr
}

func bit(rank uint8) uint16 { return 1 << rank }

// highest returns the highest rank present in the mask; the mask must be non-empty.
func highest(mask uint16) uint8 {
	return uint8(bits.Len16(mask) - 1)
}

func topRanks(mask uint16, n int) []uint8 {
	out := make([]uint8, 0, n)
	for mask != 0 && len(out) < n {
		r := highest(mask)
		out = append(out, r)
		mask &^= bit(r)
	}
	return out
}

// straightHigh returns the high-card rank of the best straight in the mask.
// The wheel (A-2-3-4-5) reports Five as its high card.
func straightHigh(mask uint16) (uint8, bool) {
	const wheelMask = 0x100F // Ace + 2-3-4-5
	mask &= 0x1FFF

	seq := mask & (mask >> 1) & (mask >> 2) & (mask >> 3) & (mask >> 4)
	if seq != 0 {
		return uint8(bits.Len16(seq)-1) + 4, true
	}
	if mask&wheelMask == wheelMask {
		return Five, true
	}
	return 0, false
}
