package engine

// bettingRound tracks the state of one street's betting.
type bettingRound struct {
	highBet    int
	minRaise   int
	bigBlind   int
	lastRaiser int
	acted      map[int]bool // by seat; blinds do not count as acting
}

func newBettingRound(bigBlind int) *bettingRound {
	return &bettingRound{
		minRaise:   bigBlind,
		bigBlind:   bigBlind,
		lastRaiser: 0,
		acted:      make(map[int]bool),
	}
}

// reset prepares for a new street.
func (br *bettingRound) reset() {
	br.highBet = 0
	br.minRaise = br.bigBlind
	br.lastRaiser = 0
	clear(br.acted)
}

func (br *bettingRound) markActed(seat int) {
	br.acted[seat] = true
}

// reopen is called on a raise: everyone else must act again.
func (br *bettingRound) reopen(seat int) {
	clear(br.acted)
	br.acted[seat] = true
	br.lastRaiser = seat
}

// complete reports whether no further decisions are needed this street.
func (br *bettingRound) complete(players []*Player) bool {
	canAct := 0
	for _, p := range players {
		if p.CanAct() {
			canAct++
		}
	}

	if canAct == 0 {
		return true
	}

	// A lone player facing no bet has nobody to play against.
	if canAct == 1 {
		for _, p := range players {
			if p.CanAct() {
				return p.Bet >= br.highBet
			}
		}
	}

	for _, p := range players {
		if !p.CanAct() {
			continue
		}
		if p.Bet != br.highBet || !br.acted[p.Seat] {
			return false
		}
	}
	return true
}
