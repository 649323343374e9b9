package bot

import (
	"math/rand/v2"
	"slices"

	"github.com/lox/handreplay/internal/engine"
	"github.com/lox/handreplay/poker"
)

// heuristic checks when nothing is owed, calls when the call leaves chips
// behind, and folds otherwise. A bet option exists exactly when the stack
// covers more than the high bet.
func heuristic(valid []ValidAction) Decision {
	if _, ok := find(valid, engine.ActionCheck); ok {
		return Decision{Type: engine.ActionCheck, Reasoning: "heuristic check"}
	}
	if call, ok := find(valid, engine.ActionCall); ok {
		if _, canRaise := find(valid, engine.ActionBet); canRaise {
			return Decision{Type: engine.ActionCall, Amount: call.Min, Reasoning: "heuristic call"}
		}
	}
	return Decision{Type: engine.ActionFold, Reasoning: "heuristic fold"}
}

type heuristicStrategy struct{}

func (heuristicStrategy) Name() string { return "heuristic" }

func (heuristicStrategy) Decide(_ engine.Context, _ int, valid []ValidAction, _ *rand.Rand) Decision {
	return heuristic(valid)
}

// callingStrategy never folds when it can check or call.
type callingStrategy struct{}

func (callingStrategy) Name() string { return "calling" }

func (callingStrategy) Decide(_ engine.Context, _ int, valid []ValidAction, _ *rand.Rand) Decision {
	if _, ok := find(valid, engine.ActionCheck); ok {
		return Decision{Type: engine.ActionCheck, Reasoning: "calling station check"}
	}
	if call, ok := find(valid, engine.ActionCall); ok {
		return Decision{Type: engine.ActionCall, Amount: call.Min, Reasoning: "calling station call"}
	}
	return Decision{Type: engine.ActionFold, Reasoning: "calling station fold"}
}

// foldingStrategy gives up every hand it is not allowed to see for free.
type foldingStrategy struct{}

func (foldingStrategy) Name() string { return "folding" }

func (foldingStrategy) Decide(_ engine.Context, _ int, valid []ValidAction, _ *rand.Rand) Decision {
	return passive(valid, "folder")
}

// aggressiveStrategy bets most of the time it is checked to and raises or
// shoves often when facing a bet.
type aggressiveStrategy struct{}

func (aggressiveStrategy) Name() string { return "aggressive" }

func (aggressiveStrategy) Decide(ctx engine.Context, seat int, valid []ValidAction, rng *rand.Rand) Decision {
	bet, canBet := find(valid, engine.ActionBet)
	p, _ := ctx.Player(seat)
	short := p.Chips <= 20*ctx.BigBlind

	if _, ok := find(valid, engine.ActionCheck); ok {
		if canBet && rng.Float64() < 0.85 {
			if short || rng.Float64() < 0.3 {
				return Decision{Type: engine.ActionBet, Amount: bet.Max, Reasoning: "maniac shove"}
			}
			return Decision{Type: engine.ActionBet, Amount: bet.Min + (bet.Max-bet.Min)/4, Reasoning: "maniac bet"}
		}
		return Decision{Type: engine.ActionCheck, Reasoning: "maniac check"}
	}

	r := rng.Float64()
	if r < 0.4 && canBet {
		return Decision{Type: engine.ActionBet, Amount: bet.Max, Reasoning: "maniac shove over bet"}
	}
	if call, ok := find(valid, engine.ActionCall); ok && r < 0.8 {
		return Decision{Type: engine.ActionCall, Amount: call.Min, Reasoning: "maniac call"}
	}
	return Decision{Type: engine.ActionFold, Reasoning: "maniac fold"}
}

// randomStrategy picks uniformly among legal actions, with a uniform raise
// size when it bets.
type randomStrategy struct{}

func (randomStrategy) Name() string { return "random" }

func (randomStrategy) Decide(_ engine.Context, _ int, valid []ValidAction, rng *rand.Rand) Decision {
	a := valid[rng.IntN(len(valid))]
	amount := a.Min
	if a.Type == engine.ActionBet && a.Max > a.Min {
		amount = a.Min + rng.IntN(a.Max-a.Min+1)
	}
	return Decision{Type: a.Type, Amount: amount, Reasoning: "random"}
}

// tightStrategy raises strong starting hands, continues postflop with a pair
// or better, and otherwise checks or folds.
type tightStrategy struct{}

func (tightStrategy) Name() string { return "tight" }

func (tightStrategy) Decide(ctx engine.Context, seat int, valid []ValidAction, rng *rand.Rand) Decision {
	p, _ := ctx.Player(seat)
	if len(p.HoleCards) != 2 {
		return passive(valid, "tight")
	}
	bet, canBet := find(valid, engine.ActionBet)
	call, canCall := find(valid, engine.ActionCall)

	if ctx.Phase == engine.PhasePreflop {
		category := poker.CategorizeHole(p.HoleCards[0], p.HoleCards[1])
		switch {
		case category >= poker.HoleStrong && canBet:
			return Decision{Type: engine.ActionBet, Amount: bet.Min + (bet.Max-bet.Min)/8, Reasoning: "tight raise " + category.String()}
		case category >= poker.HoleMedium && canCall:
			return Decision{Type: engine.ActionCall, Amount: call.Min, Reasoning: "tight call " + category.String()}
		case canCall && rng.Float64() < 0.1:
			return Decision{Type: engine.ActionCall, Amount: call.Min, Reasoning: "tight float"}
		}
		return passive(valid, "tight")
	}

	hand := poker.NewHand(slices.Concat(p.HoleCards, ctx.Board)...)
	rank := poker.Evaluate(hand)
	switch {
	case rank.Type() >= poker.TwoPair && canBet:
		return Decision{Type: engine.ActionBet, Amount: bet.Min, Reasoning: "tight value " + rank.Type().String()}
	case rank.Type() >= poker.Pair && canCall:
		return Decision{Type: engine.ActionCall, Amount: call.Min, Reasoning: "tight call " + rank.Type().String()}
	}
	return passive(valid, "tight")
}
