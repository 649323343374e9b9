package poker

import (
	"math/rand/v2"
)

// Deck represents a standard 52-card deck
type Deck struct {
	cards [NumCards]Card
	next  int
	dead  Hand // cards pulled out of circulation by Remove
	rng   *rand.Rand
}

// NewDeck creates a new shuffled deck with explicit RNG
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{rng: rng}

	i := 0
	for suit := range uint8(4) {
		for rank := range uint8(13) {
			d.cards[i] = NewCard(rank, suit)
			i++
		}
	}

	d.Shuffle()
	return d
}

// Shuffle shuffles the deck using Fisher-Yates
func (d *Deck) Shuffle() {
	d.next = 0
	for i := len(d.cards) - 1; i > 0; i-- {
		var j int
		if d.rng != nil {
			j = d.rng.IntN(i + 1)
		} else {
			j = rand.IntN(i + 1)
		}
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Remove takes cards out of circulation so they are never dealt. Used when
// a caller supplies known cards (replayed hole cards or board).
func (d *Deck) Remove(cards ...Card) {
	for _, c := range cards {
		d.dead.AddCard(c)
	}
}

// Deal deals n cards from the deck, skipping removed cards. It returns nil
// if fewer than n cards remain.
func (d *Deck) Deal(n int) []Card {
	if d.CardsRemaining() < n {
		return nil
	}
	out := make([]Card, 0, n)
	for len(out) < n {
		c := d.cards[d.next]
		d.next++
		if d.dead.HasCard(c) {
			continue
		}
		d.dead.AddCard(c)
		out = append(out, c)
	}
	return out
}

// CardsRemaining returns the number of dealable cards left in the deck
func (d *Deck) CardsRemaining() int {
	left := 0
	for _, c := range d.cards[d.next:] {
		if !d.dead.HasCard(c) {
			left++
		}
	}
	return left
}
