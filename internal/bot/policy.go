// Package bot decides actions for computer players in a local session. A
// strategy is a pure function of the table context, the acting seat, and a
// random source owned by the caller.
package bot

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/lox/handreplay/internal/engine"
)

// ValidAction is one legal move. For bets, Min and Max bound the raise-to
// total; for calls both hold the chips the call adds.
type ValidAction struct {
	Type engine.ActionType
	Min  int
	Max  int
}

// Decision is a strategy's chosen move.
type Decision struct {
	Type      engine.ActionType
	Amount    int
	Reasoning string
}

// Request converts the decision into an engine request for seat.
func (d Decision) Request(seat int) engine.ActionRequest {
	return engine.ActionRequest{Seat: seat, Type: d.Type, Amount: d.Amount}
}

// Strategy picks one of the valid actions.
type Strategy interface {
	Name() string
	Decide(ctx engine.Context, seat int, valid []ValidAction, rng *rand.Rand) Decision
}

// ValidActions lists what the player in seat may do. It is empty when that
// player cannot act.
func ValidActions(ctx engine.Context, seat int) []ValidAction {
	p, ok := ctx.Player(seat)
	if !ok || !ctx.Phase.IsBetting() || ctx.CurrentActorSeat != seat || !p.CanAct() {
		return nil
	}

	valid := []ValidAction{{Type: engine.ActionFold}}
	toCall := ctx.HighBet - p.Bet
	if toCall <= 0 {
		valid = append(valid, ValidAction{Type: engine.ActionCheck})
	} else {
		pay := min(toCall, p.Chips)
		valid = append(valid, ValidAction{Type: engine.ActionCall, Min: pay, Max: pay})
	}

	stack := p.Chips + p.Bet
	if stack > ctx.HighBet {
		minRaise := ctx.MinRaise
		if minRaise <= 0 {
			minRaise = ctx.BigBlind
		}
		valid = append(valid, ValidAction{
			Type: engine.ActionBet,
			Min:  min(ctx.HighBet+minRaise, stack),
			Max:  stack,
		})
	}
	return valid
}

func find(valid []ValidAction, t engine.ActionType) (ValidAction, bool) {
	for _, a := range valid {
		if a.Type == t {
			return a, true
		}
	}
	return ValidAction{}, false
}

// passive checks when it can and folds otherwise.
func passive(valid []ValidAction, reason string) Decision {
	if _, ok := find(valid, engine.ActionCheck); ok {
		return Decision{Type: engine.ActionCheck, Reasoning: reason + " check"}
	}
	return Decision{Type: engine.ActionFold, Reasoning: reason + " fold"}
}

var strategies = map[string]func() Strategy{
	"calling":    func() Strategy { return callingStrategy{} },
	"aggressive": func() Strategy { return aggressiveStrategy{} },
	"random":     func() Strategy { return randomStrategy{} },
	"heuristic":  func() Strategy { return heuristicStrategy{} },
	"tight":      func() Strategy { return tightStrategy{} },
	"folding":    func() Strategy { return foldingStrategy{} },
}

// DefaultStrategies is the round-robin order used when none is configured.
var DefaultStrategies = []string{"calling", "aggressive", "random"}

// New returns the named strategy.
func New(name string) (Strategy, error) {
	f, ok := strategies[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown bot strategy %q (have %s)", name, strings.Join(Names(), ", "))
	}
	return f(), nil
}

// Names lists the registered strategies.
func Names() []string {
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Assign hands out strategies round robin, one per bot.
func Assign(names []string, bots int) ([]Strategy, error) {
	if len(names) == 0 {
		names = DefaultStrategies
	}
	out := make([]Strategy, bots)
	for i := range out {
		s, err := New(names[i%len(names)])
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// Decide runs s for the player in seat. A strategy that returns something
// illegal is replaced by the heuristic choice.
func Decide(s Strategy, ctx engine.Context, seat int, rng *rand.Rand) Decision {
	valid := ValidActions(ctx, seat)
	if len(valid) == 0 {
		return Decision{Type: engine.ActionFold, Reasoning: "no valid actions"}
	}
	d := s.Decide(ctx, seat, valid, rng)
	if legal(d, valid) {
		return d
	}
	return heuristic(valid)
}

func legal(d Decision, valid []ValidAction) bool {
	a, ok := find(valid, d.Type)
	if !ok {
		return false
	}
	if d.Type == engine.ActionBet {
		return d.Amount >= a.Min && d.Amount <= a.Max
	}
	return true
}
