// Package handhistory encodes completed hands into a compact, transportable
// byte form and records them from a live engine.
package handhistory

import (
	"fmt"

	"github.com/lox/handreplay/poker"
)

// ActionType is the closed set of recorded action kinds.
type ActionType uint8

const (
	Fold ActionType = iota
	Check
	Call
	BetOrRaise
	WinPot
	ShowCards
	PostSmallBlind
	PostBigBlind
	PostAnte
	NextStreet

	numActionTypes
)

var actionNames = [...]string{
	Fold:           "FOLD",
	Check:          "CHECK",
	Call:           "CALL",
	BetOrRaise:     "BET_OR_RAISE",
	WinPot:         "WIN_POT",
	ShowCards:      "SHOW_CARDS",
	PostSmallBlind: "POST_SMALL_BLIND",
	PostBigBlind:   "POST_BIG_BLIND",
	PostAnte:       "POST_ANTE",
	NextStreet:     "NEXT_STREET",
}

func (t ActionType) String() string {
	if t < numActionTypes {
		return actionNames[t]
	}
	return fmt.Sprintf("ActionType(%d)", uint8(t))
}

// Informational reports whether the record only narrates something the engine
// re-derives on its own. Replay skips these.
func (t ActionType) Informational() bool {
	switch t {
	case WinPot, NextStreet, PostSmallBlind, PostBigBlind, PostAnte:
		return true
	}
	return false
}

func (t ActionType) MarshalText() ([]byte, error) {
	if t >= numActionTypes {
		return nil, fmt.Errorf("unknown action type %d", uint8(t))
	}
	return []byte(t.String()), nil
}

func (t *ActionType) UnmarshalText(text []byte) error {
	for i, name := range actionNames {
		if name == string(text) {
			*t = ActionType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown action type %q", text)
}

// Street tags an action with the betting round it happened in.
type Street uint8

const (
	StreetNone Street = iota
	StreetPreflop
	StreetFlop
	StreetTurn
	StreetRiver

	numStreets
)

func (s Street) String() string {
	switch s {
	case StreetPreflop:
		return "preflop"
	case StreetFlop:
		return "flop"
	case StreetTurn:
		return "turn"
	case StreetRiver:
		return "river"
	}
	return ""
}

// Seat is one manifest entry: the player's original table seat and identity.
// Manifest index is the entry's position once sorted by Seat.
type Seat struct {
	Seat     int    `json:"seat"`
	PlayerID string `json:"player_id"`
}

// Action is one record in the ordered action list. SeatIndex is a manifest
// index, not a table seat. Zero Amount and empty Cards mean absent.
type Action struct {
	SeatIndex int          `json:"seat_index"`
	Type      ActionType   `json:"type"`
	Amount    int          `json:"amount,omitempty"`
	Cards     []poker.Card `json:"cards,omitempty"`
	Street    Street       `json:"street,omitempty"`
}

// HandHistory is a completed hand. Stacks and hole cards are indexed by
// manifest index.
type HandHistory struct {
	Variant        string          `json:"variant"`
	Manifest       []Seat          `json:"manifest"`
	StartingStacks []int           `json:"starting_stacks"`
	HoleCards      [][2]poker.Card `json:"hole_cards"`
	Board          []poker.Card    `json:"board,omitempty"`
	Actions        []Action        `json:"actions"`
}

// Without returns a copy with every action of the given types removed.
func (h *HandHistory) Without(types ...ActionType) *HandHistory {
	out := *h
	out.Actions = make([]Action, 0, len(h.Actions))
	for _, a := range h.Actions {
		drop := false
		for _, t := range types {
			if a.Type == t {
				drop = true
				break
			}
		}
		if !drop {
			out.Actions = append(out.Actions, a)
		}
	}
	return &out
}

func (s Street) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Street) UnmarshalText(text []byte) error {
	for c := StreetNone; c < numStreets; c++ {
		if c.String() == string(text) {
			*s = c
			return nil
		}
	}
	return fmt.Errorf("unknown street %q", text)
}
