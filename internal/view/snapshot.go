// Package view translates engine state into the display schema shared by
// replay frames, live sessions, the TUI, and the spectator feed. It is the
// only place engine field names are mapped to display field names.
package view

import (
	"github.com/lox/handreplay/internal/engine"
	"github.com/lox/handreplay/poker"
)

// HiddenCard is shown for a card the viewer may not see.
const HiddenCard = "??"

// PlayerView is one player as displayed.
type PlayerView struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Seat         int      `json:"seat"`
	Chips        int      `json:"chips"`
	CurrentBet   int      `json:"currentBet"`
	HoleCards    []string `json:"holeCards,omitempty"`
	Folded       bool     `json:"folded"`
	AllIn        bool     `json:"allIn"`
	IsBot        bool     `json:"isBot"`
	IsViewer     bool     `json:"isViewer"`
	IsDealer     bool     `json:"isDealer"`
	IsSmallBlind bool     `json:"isSmallBlind"`
	IsBigBlind   bool     `json:"isBigBlind"`
}

// GameStateSnapshot is a display-ready projection of a hand.
type GameStateSnapshot struct {
	HandID           string       `json:"handId"`
	HandNumber       int          `json:"handNumber"`
	Variant          string       `json:"variant"`
	Phase            string       `json:"phase"`
	Players          []PlayerView `json:"players"`
	CommunityCards   []string     `json:"communityCards"`
	Pot              int          `json:"pot"`
	SidePots         []int        `json:"sidePots,omitempty"`
	CurrentActorSeat int          `json:"currentActorSeat"`
	ButtonSeat       int          `json:"buttonSeat"`
	SBSeat           int          `json:"sbSeat"`
	BBSeat           int          `json:"bbSeat"`
	MinRaise         int          `json:"minRaise"`
	HighBet          int          `json:"highBet"`
}

// Player returns the player in the given seat.
func (s GameStateSnapshot) Player(seat int) (PlayerView, bool) {
	for _, p := range s.Players {
		if p.Seat == seat {
			return p, true
		}
	}
	return PlayerView{}, false
}

// PlayerByID returns the player with the given id.
func (s GameStateSnapshot) PlayerByID(id string) (PlayerView, bool) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return PlayerView{}, false
}

// Options controls how a context is projected.
type Options struct {
	// HideUnrevealed masks hole cards that are not face up, except the
	// viewer's own. Player contexts arrive already masked.
	HideUnrevealed bool
	// ViewerID marks the viewing player.
	ViewerID string
	// DisplayNames overrides player names by id.
	DisplayNames map[string]string
}

// FromContext builds a snapshot. A full context gives god mode, a player
// context gives that player's redacted view.
func FromContext(ctx engine.Context, opts Options) GameStateSnapshot {
	s := GameStateSnapshot{
		HandID:           ctx.HandID,
		HandNumber:       nonNegative(ctx.HandNumber),
		Variant:          ctx.Variant,
		Phase:            string(ctx.Phase),
		Players:          make([]PlayerView, 0, len(ctx.Players)),
		CommunityCards:   cardStrings(ctx.Board),
		CurrentActorSeat: nonNegative(ctx.CurrentActorSeat),
		ButtonSeat:       nonNegative(ctx.ButtonSeat),
		SBSeat:           nonNegative(ctx.SBSeat),
		BBSeat:           nonNegative(ctx.BBSeat),
		MinRaise:         nonNegative(ctx.MinRaise),
		HighBet:          nonNegative(ctx.HighBet),
	}
	if s.Phase == "" {
		s.Phase = string(engine.PhaseWaiting)
	}

	highest := 0
	for _, p := range ctx.Players {
		pv := PlayerView{
			ID:           p.ID,
			Name:         p.Name,
			Seat:         p.Seat,
			Chips:        nonNegative(p.Chips),
			CurrentBet:   nonNegative(p.Bet),
			HoleCards:    holeCards(p, opts.HideUnrevealed && p.ID != opts.ViewerID),
			Folded:       p.Folded,
			AllIn:        p.AllIn,
			IsBot:        p.IsBot,
			IsViewer:     opts.ViewerID != "" && p.ID == opts.ViewerID,
			IsDealer:     p.Seat == ctx.ButtonSeat,
			IsSmallBlind: p.Seat == ctx.SBSeat,
			IsBigBlind:   p.Seat == ctx.BBSeat,
		}
		if name, ok := opts.DisplayNames[p.ID]; ok && name != "" {
			pv.Name = name
		}
		if pv.Name == "" {
			pv.Name = p.ID
		}
		highest = max(highest, pv.CurrentBet)
		s.Players = append(s.Players, pv)
	}

	for i, pot := range ctx.Pots {
		amount := nonNegative(pot.Amount)
		s.Pot += amount
		if i > 0 {
			s.SidePots = append(s.SidePots, amount)
		}
	}

	if s.HighBet == 0 {
		s.HighBet = highest
	}
	if s.MinRaise == 0 && ctx.Phase.IsBetting() {
		s.MinRaise = nonNegative(ctx.BigBlind)
	}
	return s
}

// holeCards renders a player's cards. Masked cards show as HiddenCard; a
// folded player with nothing visible shows no cards at all.
func holeCards(p engine.Player, hideUnrevealed bool) []string {
	if len(p.HoleCards) == 0 {
		return nil
	}
	out := make([]string, len(p.HoleCards))
	visible := 0
	for i, c := range p.HoleCards {
		if c.Valid() && !(hideUnrevealed && !revealed(p, i)) {
			out[i] = c.String()
			visible++
		} else {
			out[i] = HiddenCard
		}
	}
	if visible == 0 && p.Folded {
		return nil
	}
	return out
}

func revealed(p engine.Player, i int) bool {
	return i < len(p.Revealed) && p.Revealed[i]
}

func cardStrings(cards []poker.Card) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		if c.Valid() {
			out = append(out, c.String())
		}
	}
	return out
}

func nonNegative(n int) int {
	return max(n, 0)
}
