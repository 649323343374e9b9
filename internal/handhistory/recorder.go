package handhistory

import (
	"slices"

	"github.com/lox/handreplay/internal/engine"
	"github.com/lox/handreplay/poker"
)

// Recorder builds a HandHistory from the events of a live engine.
type Recorder struct {
	h      HandHistory
	index  map[int]int // table seat -> manifest index
	street Street
}

// NewRecorder starts a recording from the state returned by the preflop
// transition. Only players dealt into the hand enter the manifest.
func NewRecorder(ctx engine.Context) *Recorder {
	r := &Recorder{
		h:      HandHistory{Variant: ctx.Variant},
		index:  make(map[int]int),
		street: StreetPreflop,
	}
	for _, p := range ctx.Players {
		if !p.InHand {
			continue
		}
		r.index[p.Seat] = len(r.h.Manifest)
		r.h.Manifest = append(r.h.Manifest, Seat{Seat: p.Seat, PlayerID: p.ID})
		// Chips already committed by blinds and antes are part of the stack.
		r.h.StartingStacks = append(r.h.StartingStacks, p.Chips+p.TotalBet)
		var hole [2]poker.Card
		copy(hole[:], p.HoleCards)
		r.h.HoleCards = append(r.h.HoleCards, hole)
	}
	return r
}

// Record appends the records for a batch of engine events.
func (r *Recorder) Record(events []engine.Event) {
	for _, ev := range events {
		switch ev := ev.(type) {
		case engine.AntePosted:
			r.add(ev.Seat, Action{Type: PostAnte, Amount: ev.Amount})
		case engine.BlindPosted:
			typ := PostSmallBlind
			if ev.Kind == engine.BigBlind {
				typ = PostBigBlind
			}
			r.add(ev.Seat, Action{Type: typ, Amount: ev.Amount})
		case engine.ActionApplied:
			r.add(ev.Seat, Action{Type: actionFor(ev.Type), Amount: ev.Amount})
		case engine.StreetDealt:
			r.street = streetFor(ev.Phase)
			r.h.Board = append(r.h.Board, ev.Cards...)
			r.h.Actions = append(r.h.Actions, Action{Type: NextStreet, Cards: slices.Clone(ev.Cards), Street: r.street})
		case engine.CardsShown:
			// Showdown turns cards over by itself; only voluntary shows are actions.
			if ev.Voluntary {
				r.add(ev.Seat, Action{Type: ShowCards, Cards: []poker.Card{ev.Card}})
			}
		case engine.PotAwarded:
			r.add(ev.Seat, Action{Type: WinPot, Amount: ev.Amount})
		}
	}
}

func (r *Recorder) add(seat int, a Action) {
	idx, ok := r.index[seat]
	if !ok {
		return
	}
	a.SeatIndex = idx
	if a.Street == StreetNone {
		a.Street = r.street
	}
	r.h.Actions = append(r.h.Actions, a)
}

// History returns a copy of what has been recorded so far.
func (r *Recorder) History() *HandHistory {
	out := r.h
	out.Manifest = slices.Clone(r.h.Manifest)
	out.StartingStacks = slices.Clone(r.h.StartingStacks)
	out.HoleCards = slices.Clone(r.h.HoleCards)
	out.Board = slices.Clone(r.h.Board)
	out.Actions = make([]Action, len(r.h.Actions))
	for i, a := range r.h.Actions {
		a.Cards = slices.Clone(a.Cards)
		out.Actions[i] = a
	}
	return &out
}

func actionFor(t engine.ActionType) ActionType {
	switch t {
	case engine.ActionFold:
		return Fold
	case engine.ActionCheck:
		return Check
	case engine.ActionCall:
		return Call
	case engine.ActionBet:
		return BetOrRaise
	}
	return ShowCards
}

func streetFor(p engine.Phase) Street {
	switch p {
	case engine.PhasePreflop:
		return StreetPreflop
	case engine.PhaseFlop:
		return StreetFlop
	case engine.PhaseTurn:
		return StreetTurn
	case engine.PhaseRiver:
		return StreetRiver
	}
	return StreetNone
}
