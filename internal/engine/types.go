package engine

import (
	"slices"

	"github.com/lox/handreplay/poker"
)

// Phase is a stage of the hand.
type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhasePreflop  Phase = "preflop"
	PhaseFlop     Phase = "flop"
	PhaseTurn     Phase = "turn"
	PhaseRiver    Phase = "river"
	PhaseShowdown Phase = "showdown"
	PhaseComplete Phase = "complete"
)

// IsBetting reports whether players act during the phase.
func (p Phase) IsBetting() bool {
	switch p {
	case PhasePreflop, PhaseFlop, PhaseTurn, PhaseRiver:
		return true
	}
	return false
}

// next returns the phase that follows a closed betting street.
func (p Phase) next() Phase {
	switch p {
	case PhasePreflop:
		return PhaseFlop
	case PhaseFlop:
		return PhaseTurn
	case PhaseTurn:
		return PhaseRiver
	case PhaseRiver:
		return PhaseShowdown
	}
	return PhaseComplete
}

// boardCards is the number of community cards dealt entering the phase.
func (p Phase) boardCards() int {
	switch p {
	case PhaseFlop:
		return 3
	case PhaseTurn, PhaseRiver:
		return 1
	}
	return 0
}

// ActionType is a player action accepted by ProcessAction.
type ActionType string

const (
	ActionFold   ActionType = "fold"
	ActionCheck  ActionType = "check"
	ActionCall   ActionType = "call"
	ActionBet    ActionType = "bet"
	ActionReveal ActionType = "reveal"
)

// PlayerStatus mirrors the connection state a table would track.
type PlayerStatus string

const (
	StatusWaiting    PlayerStatus = "waiting"
	StatusActive     PlayerStatus = "active"
	StatusSittingOut PlayerStatus = "sitting_out"
)

// PlayerSpec registers a player. Seat 0 means the lowest free seat.
type PlayerSpec struct {
	ID    string
	Name  string
	Chips int
	Seat  int
	IsBot bool
}

// Player is the engine's view of a seated player.
type Player struct {
	ID        string
	Name      string
	Seat      int
	Chips     int
	Bet       int // committed on the current street, not yet collected
	TotalBet  int // committed over the whole hand
	HoleCards []poker.Card
	Revealed  [2]bool
	Folded    bool
	AllIn     bool
	InHand    bool
	Status    PlayerStatus
	IsBot     bool
}

// CanAct reports whether the player still has decisions to make.
func (p *Player) CanAct() bool {
	return p.InHand && !p.Folded && !p.AllIn
}

// Live reports whether the player still contests the pot.
func (p *Player) Live() bool {
	return p.InHand && !p.Folded
}

// Pot is a main or side pot.
type Pot struct {
	Amount   int
	Eligible []int // seats
}

// Context is a point-in-time copy of the hand. Values handed out by the
// engine are never mutated afterwards.
type Context struct {
	HandID            string
	Variant           string
	HandNumber        int
	Phase             Phase
	PendingTransition Phase
	Players           []Player
	Pots              []Pot
	Board             []poker.Card
	CurrentActorSeat  int
	ButtonSeat        int
	SBSeat            int
	BBSeat            int
	SmallBlind        int
	BigBlind          int
	Ante              int
	MinRaise          int
	HighBet           int
}

// Clone returns a deep copy.
func (c Context) Clone() Context {
	out := c
	out.Players = make([]Player, len(c.Players))
	for i, p := range c.Players {
		p.HoleCards = slices.Clone(p.HoleCards)
		out.Players[i] = p
	}
	out.Pots = make([]Pot, len(c.Pots))
	for i, pot := range c.Pots {
		out.Pots[i] = Pot{Amount: pot.Amount, Eligible: slices.Clone(pot.Eligible)}
	}
	out.Board = slices.Clone(c.Board)
	return out
}

// Player returns the player in the given seat.
func (c Context) Player(seat int) (Player, bool) {
	for _, p := range c.Players {
		if p.Seat == seat {
			return p, true
		}
	}
	return Player{}, false
}

// PlayerByID returns the player with the given id.
func (c Context) PlayerByID(id string) (Player, bool) {
	for _, p := range c.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// ActionRequest is a single player decision. For ActionBet, Amount is the
// total the player's street bet is raised to. For ActionReveal, Index selects
// the hole card.
type ActionRequest struct {
	Seat   int
	Type   ActionType
	Amount int
	Index  int
}

// Overrides supplies known cards instead of dealing from the deck.
type Overrides struct {
	HoleCards      map[int][]poker.Card // keyed by seat
	CommunityCards []poker.Card
}

// Result is returned by every mutating call.
type Result struct {
	Success bool
	Err     error
	State   Context
	Events  []Event
	Effects []Effect
}

func (p *Player) collected() int {
	return p.TotalBet - p.Bet
}
