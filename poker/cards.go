package poker

import (
	"fmt"
	"math/bits"
	"strings"
)

// Card is a single card encoded as one set bit in a uint64.
// Layout: [13 spades][13 hearts][13 diamonds][13 clubs], so the bit
// position doubles as the card's 0..51 index.
type Card uint64

// Hand is a set of cards; multiple bits may be set.
type Hand uint64

// NumCards is the size of a standard deck.
const NumCards = 52

// Suit constants
const (
	Clubs    uint8 = 0
	Diamonds uint8 = 1
	Hearts   uint8 = 2
	Spades   uint8 = 3
)

// Rank constants (0-12 for 2-A)
const (
	Two   uint8 = 0
	Three uint8 = 1
	Four  uint8 = 2
	Five  uint8 = 3
	Six   uint8 = 4
	Seven uint8 = 5
	Eight uint8 = 6
	Nine  uint8 = 7
	Ten   uint8 = 8
	Jack  uint8 = 9
	Queen uint8 = 10
	King  uint8 = 11
	Ace   uint8 = 12
)

const (
	rankChars = "23456789TJQKA"
	suitChars = "cdhs"
)

// NewCard creates a card from rank and suit.
func NewCard(rank, suit uint8) Card {
	return Card(1) << (suit*13 + rank)
}

// CardFromIndex returns the card at index 0..51. The second return value is
// false when the index is out of range.
func CardFromIndex(idx int) (Card, bool) {
	if idx < 0 || idx >= NumCards {
		return 0, false
	}
	return Card(1) << uint(idx), true
}

// Index returns the 0..51 index of the card, or -1 for an invalid card.
func (c Card) Index() int {
	if c == 0 || bits.OnesCount64(uint64(c)) != 1 {
		return -1
	}
	idx := bits.TrailingZeros64(uint64(c))
	if idx >= NumCards {
		return -1
	}
	return idx
}

// Valid reports whether c is exactly one card of the 52.
func (c Card) Valid() bool {
	return c.Index() >= 0
}

// Rank returns the rank of the card (0-12), or 255 if invalid.
func (c Card) Rank() uint8 {
	idx := c.Index()
	if idx < 0 {
		return 255
	}
	return uint8(idx % 13)
}

// Suit returns the suit of the card (0-3), or 255 if invalid.
func (c Card) Suit() uint8 {
	idx := c.Index()
	if idx < 0 {
		return 255
	}
	return uint8(idx / 13)
}

// String returns the two character form, e.g. "As", "Td".
func (c Card) String() string {
	idx := c.Index()
	if idx < 0 {
		return "??"
	}
	return string(rankChars[idx%13]) + string(suitChars[idx/13])
}

// IsRed reports whether the card is a heart or diamond.
func (c Card) IsRed() bool {
	s := c.Suit()
	return s == Hearts || s == Diamonds
}

// ParseCard parses a string like "As" into a Card. "10h" is accepted as Th.
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "10") {
		s = "T" + s[2:]
	}
	if len(s) != 2 {
		return 0, fmt.Errorf("invalid card string: %q", s)
	}

	rank := strings.IndexByte(rankChars, upper(s[0]))
	if rank < 0 {
		return 0, fmt.Errorf("invalid rank: %c", s[0])
	}
	suit := strings.IndexByte(suitChars, lower(s[1]))
	if suit < 0 {
		return 0, fmt.Errorf("invalid suit: %c", s[1])
	}
	return NewCard(uint8(rank), uint8(suit)), nil
}

// ParseCards parses a list of card strings, stopping at the first error.
func ParseCards(ss ...string) ([]Card, error) {
	cards := make([]Card, 0, len(ss))
	for _, s := range ss {
		c, err := ParseCard(s)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// MustParseCards is ParseCards for literals in tests and fixtures.
func MustParseCards(ss ...string) []Card {
	cards, err := ParseCards(ss...)
	if err != nil {
		panic(err)
	}
	return cards
}

// CardStrings formats a slice of cards.
func CardStrings(cards []Card) []string {
	if len(cards) == 0 {
		return nil
	}
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}

// NewHand creates a hand from multiple cards.
func NewHand(cards ...Card) Hand {
	var h Hand
	for _, c := range cards {
		h |= Hand(c)
	}
	return h
}

// AddCard adds a card to the hand.
func (h *Hand) AddCard(c Card) {
	*h |= Hand(c)
}

// HasCard checks if the hand contains a specific card.
func (h Hand) HasCard(c Card) bool {
	return (h & Hand(c)) != 0
}

// CountCards returns the number of cards in the hand.
func (h Hand) CountCards() int {
	return bits.OnesCount64(uint64(h))
}

// GetSuitMask returns the ranks held in one suit as a 13 bit mask.
func (h Hand) GetSuitMask(suit uint8) uint16 {
	return uint16((h >> (suit * 13)) & 0x1FFF)
}

// Cards lists the cards in index order.
func (h Hand) Cards() []Card {
	out := make([]Card, 0, h.CountCards())
	rest := uint64(h)
	for rest != 0 {
		idx := bits.TrailingZeros64(rest)
		out = append(out, Card(1)<<uint(idx))
		rest &^= 1 << uint(idx)
	}
	return out
}

// MarshalText encodes the card in its two character form.
func (c Card) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid card %#x", uint64(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText parses the two character form.
func (c *Card) UnmarshalText(text []byte) error {
	parsed, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
