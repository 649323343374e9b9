package engine

import "github.com/lox/handreplay/poker"

// Event records something that happened during a call. Events are emitted in
// order and are what a hand history is built from.
type Event interface {
	event()
}

// BlindKind distinguishes the two forced bets.
type BlindKind string

const (
	SmallBlind BlindKind = "small"
	BigBlind   BlindKind = "big"
)

type BlindPosted struct {
	Seat   int
	Kind   BlindKind
	Amount int
}

type AntePosted struct {
	Seat   int
	Amount int
}

// ActionApplied is an accepted fold, check, call, or bet. Amount is the chips
// added for a call and the raise-to total for a bet.
type ActionApplied struct {
	Seat   int
	Type   ActionType
	Amount int
	AllIn  bool
}

type StreetDealt struct {
	Phase Phase
	Cards []poker.Card
}

// CardsShown is a hole card becoming public. Voluntary is false for cards
// turned over by the showdown itself.
type CardsShown struct {
	Seat      int
	Index     int
	Card      poker.Card
	Voluntary bool
}

type PotAwarded struct {
	Seat     int
	Amount   int
	PotIndex int
}

func (BlindPosted) event()   {}
func (AntePosted) event()    {}
func (ActionApplied) event() {}
func (StreetDealt) event()   {}
func (CardsShown) event()    {}
func (PotAwarded) event()    {}
