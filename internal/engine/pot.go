package engine

import (
	"slices"

	"github.com/lox/handreplay/poker"
)

// collectBets moves street bets into the pots and rebuilds main and side pots
// from each player's total contribution.
func collectBets(players []*Player) []Pot {
	for _, p := range players {
		p.Bet = 0
	}
	return buildPots(players)
}

// buildPots splits collected contributions into pots at each live
// contribution level. Chips from folded players above the top live level land
// in the last pot. Uncollected street bets are not counted.
func buildPots(players []*Player) []Pot {
	var levels []int
	for _, p := range players {
		if c := p.collected(); p.Live() && c > 0 && !slices.Contains(levels, c) {
			levels = append(levels, c)
		}
	}
	slices.Sort(levels)

	var pots []Pot
	prev := 0
	for _, level := range levels {
		pot := Pot{}
		for _, p := range players {
			c := p.collected()
			pot.Amount += min(c, level) - min(c, prev)
			if p.Live() && c >= level {
				pot.Eligible = append(pot.Eligible, p.Seat)
			}
		}
		prev = level

		// Merge levels with the same contenders into one pot.
		if n := len(pots); n > 0 && slices.Equal(pots[n-1].Eligible, pot.Eligible) {
			pots[n-1].Amount += pot.Amount
			continue
		}
		pots = append(pots, pot)
	}

	dead := 0
	for _, p := range players {
		if c := p.collected(); c > prev {
			dead += c - prev
		}
	}
	if dead > 0 {
		if len(pots) == 0 {
			pots = append(pots, Pot{})
		}
		pots[len(pots)-1].Amount += dead
	}
	return pots
}

// award is one payout from one pot.
type award struct {
	seat     int
	amount   int
	potIndex int
}

// awardPots settles every pot at showdown. Ties split evenly; odd chips go to
// the first winner to the left of the button.
func awardPots(pots []Pot, players []*Player, board []poker.Card, button int) []award {
	bySeat := make(map[int]*Player, len(players))
	for _, p := range players {
		bySeat[p.Seat] = p
	}

	var awards []award
	for idx, pot := range pots {
		if pot.Amount == 0 {
			continue
		}
		winners := bestHands(pot.Eligible, bySeat, board)
		if len(winners) == 0 {
			continue
		}
		orderFromButton(winners, button)

		share := pot.Amount / len(winners)
		odd := pot.Amount % len(winners)
		for i, seat := range winners {
			amount := share
			if i == 0 {
				amount += odd
			}
			awards = append(awards, award{seat: seat, amount: amount, potIndex: idx})
		}
	}
	return awards
}

func bestHands(eligible []int, bySeat map[int]*Player, board []poker.Card) []int {
	boardHand := poker.NewHand(board...)
	var best poker.HandRank
	var winners []int
	for _, seat := range eligible {
		p, ok := bySeat[seat]
		if !ok || !p.Live() {
			continue
		}
		rank := poker.Evaluate(boardHand | poker.NewHand(p.HoleCards...))
		switch cmp := poker.CompareHands(rank, best); {
		case cmp > 0 || winners == nil:
			best = rank
			winners = []int{seat}
		case cmp == 0:
			winners = append(winners, seat)
		}
	}
	return winners
}

// orderFromButton sorts seats by clockwise distance from the button, so the
// first seat is the first one to the button's left.
func orderFromButton(seats []int, button int) {
	slices.SortFunc(seats, func(a, b int) int {
		return distance(button, a) - distance(button, b)
	})
}

func distance(from, to int) int {
	d := to - from
	if d <= 0 {
		d += 1 << 8
	}
	return d
}
