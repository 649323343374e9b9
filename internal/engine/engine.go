// Package engine is the hand state machine: it owns betting, pot, and phase
// rules for a single hand of no-limit Texas Hold'em. It exposes a synchronous
// transition/action API and reports what happened as events and what the
// owner should do next as effects.
//
// An Engine is owned by exactly one caller and is not safe for concurrent use.
package engine

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/lox/handreplay/internal/randutil"
	"github.com/lox/handreplay/poker"
)

const (
	DefaultTransitionDelay = 800 * time.Millisecond
	DefaultActionTimeout   = 30 * time.Second
)

// Engine runs one hand.
type Engine struct {
	handID     string
	variant    Variant
	handNumber int

	players []*Player // sorted by seat
	phase   Phase
	pending Phase
	board   []poker.Card
	pots    []Pot
	button  int
	sb      int
	bb      int
	actor   int
	betting *bettingRound

	deck            *poker.Deck
	rng             *rand.Rand
	logger          zerolog.Logger
	transitionDelay time.Duration
	actionTimeout   time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand sets the RNG used to shuffle when no deck is supplied.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithDeck supplies a pre-built deck.
func WithDeck(d *poker.Deck) Option {
	return func(e *Engine) { e.deck = d }
}

func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func WithHandNumber(n int) Option {
	return func(e *Engine) { e.handNumber = n }
}

// WithTransitionDelay sets the delay carried by ScheduleTransition effects.
func WithTransitionDelay(d time.Duration) Option {
	return func(e *Engine) { e.transitionDelay = d }
}

// WithActionTimeout sets the timeout carried by StartTimer effects.
func WithActionTimeout(d time.Duration) Option {
	return func(e *Engine) { e.actionTimeout = d }
}

// New creates an engine for a registered variant.
func New(handID, variantSlug string, opts ...Option) (*Engine, error) {
	v, err := LookupVariant(variantSlug)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		handID:          handID,
		variant:         v,
		handNumber:      1,
		phase:           PhaseWaiting,
		betting:         newBettingRound(v.BigBlind),
		logger:          zerolog.Nop(),
		transitionDelay: DefaultTransitionDelay,
		actionTimeout:   DefaultActionTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With().Str("component", "engine").Str("hand_id", handID).Logger()
	return e, nil
}

// Variant returns the engine's variant.
func (e *Engine) Variant() Variant {
	return e.variant
}

// AddPlayers seats players before the hand starts. Bots start active; other
// players start waiting, as a networked table would until they connect.
func (e *Engine) AddPlayers(specs []PlayerSpec) error {
	if e.phase != PhaseWaiting {
		return ErrHandStarted
	}
	if len(e.players)+len(specs) > e.variant.MaxPlayers {
		return fmt.Errorf("%w: %d seats", ErrTableFull, e.variant.MaxPlayers)
	}

	staged := slices.Clone(e.players)
	for _, spec := range specs {
		if spec.ID == "" {
			return fmt.Errorf("player id is required")
		}
		if spec.Chips < 0 {
			return fmt.Errorf("player %s: negative chips", spec.ID)
		}
		seat := spec.Seat
		if seat == 0 {
			seat = lowestFreeSeat(staged, e.variant.MaxPlayers)
		}
		if seat < 1 || seat > e.variant.MaxPlayers {
			return fmt.Errorf("player %s: seat %d out of range 1..%d", spec.ID, seat, e.variant.MaxPlayers)
		}
		for _, p := range staged {
			if p.Seat == seat {
				return fmt.Errorf("%w: %d", ErrSeatTaken, seat)
			}
			if p.ID == spec.ID {
				return fmt.Errorf("player %s already seated", spec.ID)
			}
		}

		status := StatusWaiting
		if spec.IsBot {
			status = StatusActive
		}
		name := spec.Name
		if name == "" {
			name = spec.ID
		}
		staged = append(staged, &Player{
			ID:     spec.ID,
			Name:   name,
			Seat:   seat,
			Chips:  spec.Chips,
			Status: status,
			IsBot:  spec.IsBot,
		})
	}

	slices.SortFunc(staged, func(a, b *Player) int { return a.Seat - b.Seat })
	e.players = staged
	return nil
}

func lowestFreeSeat(players []*Player, maxSeat int) int {
	for seat := 1; seat <= maxSeat; seat++ {
		if !slices.ContainsFunc(players, func(p *Player) bool { return p.Seat == seat }) {
			return seat
		}
	}
	return 0
}

// SetPlayerStatus changes a seated player's status.
func (e *Engine) SetPlayerStatus(id string, status PlayerStatus) error {
	p := e.playerByID(id)
	if p == nil {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, id)
	}
	p.Status = status
	return nil
}

// SetButtonSeat places the button. It must be called before the preflop
// transition; otherwise the button defaults to the lowest active seat.
func (e *Engine) SetButtonSeat(seat int) error {
	if e.phase != PhaseWaiting {
		return ErrHandStarted
	}
	if e.playerAt(seat) == nil {
		return fmt.Errorf("no player in seat %d", seat)
	}
	e.button = seat
	return nil
}

// ExecuteTransition moves the hand into phase. Preflop starts the hand;
// later phases must match the transition the engine last scheduled.
func (e *Engine) ExecuteTransition(phase Phase, ov *Overrides) Result {
	var (
		events  []Event
		effects []Effect
		err     error
	)
	switch phase {
	case PhasePreflop:
		events, effects, err = e.startHand(ov)
	case PhaseFlop, PhaseTurn, PhaseRiver:
		events, effects, err = e.dealStreet(phase, ov)
	case PhaseShowdown:
		events, effects, err = e.showdown()
	default:
		err = e.rejectTransition(phase, "not a transition target")
	}
	if err == nil {
		e.logger.Debug().Str("phase", string(phase)).Int("actor", e.actor).Msg("transition executed")
	}
	return e.result(events, effects, err)
}

// ProcessAction applies the current actor's decision.
func (e *Engine) ProcessAction(req ActionRequest) Result {
	if req.Type == ActionReveal {
		events, err := e.reveal(req)
		return e.result(events, nil, err)
	}
	events, effects, err := e.act(req)
	if err == nil {
		e.logger.Debug().Int("seat", req.Seat).Str("action", string(req.Type)).Int("amount", req.Amount).Msg("action applied")
	}
	return e.result(events, effects, err)
}

// Context returns a deep copy of the full, unredacted hand state.
func (e *Engine) Context() Context {
	ctx := Context{
		HandID:            e.handID,
		Variant:           e.variant.Slug,
		HandNumber:        e.handNumber,
		Phase:             e.phase,
		PendingTransition: e.pending,
		Players:           make([]Player, len(e.players)),
		Pots:              e.pots,
		Board:             e.board,
		CurrentActorSeat:  e.actor,
		ButtonSeat:        e.button,
		SBSeat:            e.sb,
		BBSeat:            e.bb,
		SmallBlind:        e.variant.SmallBlind,
		BigBlind:          e.variant.BigBlind,
		Ante:              e.variant.Ante,
		MinRaise:          e.betting.minRaise,
		HighBet:           e.betting.highBet,
	}
	for i, p := range e.players {
		ctx.Players[i] = *p
	}
	return ctx.Clone()
}

// PlayerContext returns the hand as seen by one player: other players' hole
// cards are masked unless revealed. Masked cards are the zero Card.
func (e *Engine) PlayerContext(id string) (Context, error) {
	if e.playerByID(id) == nil {
		return Context{}, fmt.Errorf("%w: %s", ErrUnknownPlayer, id)
	}
	ctx := e.Context()
	for i := range ctx.Players {
		p := &ctx.Players[i]
		if p.ID == id || p.HoleCards == nil {
			continue
		}
		for j := range p.HoleCards {
			if j >= len(p.Revealed) || !p.Revealed[j] {
				p.HoleCards[j] = 0
			}
		}
	}
	return ctx, nil
}

func (e *Engine) result(events []Event, effects []Effect, err error) Result {
	if err != nil {
		e.logger.Debug().Err(err).Msg("rejected")
		return Result{Err: err, State: e.Context()}
	}
	return Result{Success: true, State: e.Context(), Events: events, Effects: effects}
}

func (e *Engine) startHand(ov *Overrides) ([]Event, []Effect, error) {
	if e.phase != PhaseWaiting {
		return nil, nil, e.rejectTransition(PhasePreflop, "hand already started")
	}

	var seated []*Player
	for _, p := range e.players {
		if p.Status == StatusActive && p.Chips > 0 {
			seated = append(seated, p)
		}
	}
	if len(seated) < 2 {
		return nil, nil, e.rejectTransition(PhasePreflop, "need at least two active players")
	}
	if err := e.checkOverrides(seated, ov); err != nil {
		return nil, nil, err
	}

	for _, p := range seated {
		p.InHand = true
	}
	if b := e.playerAt(e.button); b == nil || !b.InHand {
		e.button = seated[0].Seat
	}
	if len(seated) == 2 {
		e.sb = e.button
	} else {
		e.sb = e.nextInHand(e.button)
	}
	e.bb = e.nextInHand(e.sb)

	if e.deck == nil {
		rng := e.rng
		if rng == nil {
			rng = randutil.New(time.Now().UnixNano())
		}
		e.deck = poker.NewDeck(rng)
	}
	if ov != nil {
		for _, cards := range ov.HoleCards {
			e.deck.Remove(cards...)
		}
		e.deck.Remove(ov.CommunityCards...)
	}

	var events []Event
	if ante := e.variant.Ante; ante > 0 {
		for _, p := range seated {
			amount := min(ante, p.Chips)
			p.Chips -= amount
			p.TotalBet += amount
			p.AllIn = p.Chips == 0
			events = append(events, AntePosted{Seat: p.Seat, Amount: amount})
		}
		e.pots = buildPots(e.players)
	}

	events = append(events,
		e.postBlind(e.playerAt(e.sb), SmallBlind, e.variant.SmallBlind),
		e.postBlind(e.playerAt(e.bb), BigBlind, e.variant.BigBlind),
	)
	e.betting.reset()
	e.betting.highBet = e.variant.BigBlind

	for _, p := range seated {
		if ov != nil && len(ov.HoleCards[p.Seat]) == 2 {
			p.HoleCards = slices.Clone(ov.HoleCards[p.Seat])
		} else {
			p.HoleCards = e.deck.Deal(2)
		}
	}

	e.phase = PhasePreflop
	moreEvents, effects := e.settle(e.bb)
	return append(events, moreEvents...), effects, nil
}

func (e *Engine) postBlind(p *Player, kind BlindKind, blind int) Event {
	amount := min(blind, p.Chips)
	p.Chips -= amount
	p.Bet += amount
	p.TotalBet += amount
	p.AllIn = p.Chips == 0
	return BlindPosted{Seat: p.Seat, Kind: kind, Amount: amount}
}

// checkOverrides rejects malformed or duplicated cards before anything moves.
func (e *Engine) checkOverrides(seated []*Player, ov *Overrides) error {
	if ov == nil {
		return nil
	}
	var seen poker.Hand
	use := func(c poker.Card) error {
		if !c.Valid() {
			return e.rejectTransition(PhasePreflop, "invalid card in overrides")
		}
		if seen.HasCard(c) {
			return e.rejectTransition(PhasePreflop, fmt.Sprintf("card %s used twice", c))
		}
		seen.AddCard(c)
		return nil
	}
	for seat, cards := range ov.HoleCards {
		if len(cards) == 0 {
			continue
		}
		if !slices.ContainsFunc(seated, func(p *Player) bool { return p.Seat == seat }) {
			return e.rejectTransition(PhasePreflop, fmt.Sprintf("hole cards for empty seat %d", seat))
		}
		if len(cards) != 2 {
			return e.rejectTransition(PhasePreflop, fmt.Sprintf("seat %d needs 2 hole cards, got %d", seat, len(cards)))
		}
		for _, c := range cards {
			if err := use(c); err != nil {
				return err
			}
		}
	}
	for _, c := range ov.CommunityCards {
		if err := use(c); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) dealStreet(phase Phase, ov *Overrides) ([]Event, []Effect, error) {
	if e.pending != phase {
		return nil, nil, e.rejectTransition(phase, "no such transition pending")
	}

	n := phase.boardCards()
	var cards []poker.Card
	if ov != nil && len(ov.CommunityCards) > 0 {
		if len(ov.CommunityCards) != n {
			return nil, nil, e.rejectTransition(phase, fmt.Sprintf("need %d community cards, got %d", n, len(ov.CommunityCards)))
		}
		dealt := poker.NewHand(e.board...)
		for _, p := range e.players {
			dealt |= poker.NewHand(p.HoleCards...)
		}
		for _, c := range ov.CommunityCards {
			if !c.Valid() || dealt.HasCard(c) {
				return nil, nil, e.rejectTransition(phase, fmt.Sprintf("community card %s unavailable", c))
			}
			dealt.AddCard(c)
		}
		cards = slices.Clone(ov.CommunityCards)
		e.deck.Remove(cards...)
	} else {
		cards = e.deck.Deal(n)
		if cards == nil {
			return nil, nil, e.rejectTransition(phase, "deck exhausted")
		}
	}

	e.board = append(e.board, cards...)
	e.phase = phase
	e.pending = ""
	e.betting.reset()

	// Postflop action opens with the small blind, or the next seat still in.
	events := []Event{StreetDealt{Phase: phase, Cards: slices.Clone(cards)}}
	moreEvents, effects := e.settle(e.sb - 1)
	return append(events, moreEvents...), effects, nil
}

func (e *Engine) showdown() ([]Event, []Effect, error) {
	if e.pending != PhaseShowdown {
		return nil, nil, e.rejectTransition(PhaseShowdown, "no such transition pending")
	}
	e.phase = PhaseShowdown
	e.pending = ""

	var events []Event
	for _, p := range e.players {
		if !p.Live() {
			continue
		}
		for i, c := range p.HoleCards {
			if !p.Revealed[i] {
				p.Revealed[i] = true
				events = append(events, CardsShown{Seat: p.Seat, Index: i, Card: c})
			}
		}
	}

	for _, a := range awardPots(e.pots, e.players, e.board, e.button) {
		e.playerAt(a.seat).Chips += a.amount
		events = append(events, PotAwarded{Seat: a.seat, Amount: a.amount, PotIndex: a.potIndex})
	}
	e.pots = nil
	e.phase = PhaseComplete
	e.actor = 0

	e.logger.Info().Msg("hand complete at showdown")
	return events, []Effect{GameEnd{Reason: GameEndShowdown}}, nil
}

func (e *Engine) act(req ActionRequest) ([]Event, []Effect, error) {
	if !e.phase.IsBetting() {
		return nil, nil, e.reject(req, "no betting in progress")
	}
	if req.Seat != e.actor {
		return nil, nil, e.reject(req, fmt.Sprintf("not your turn, seat %d to act", e.actor))
	}
	p := e.playerAt(req.Seat)
	br := e.betting
	applied := ActionApplied{Seat: p.Seat, Type: req.Type}

	switch req.Type {
	case ActionFold:
		p.Folded = true
		br.markActed(p.Seat)

	case ActionCheck:
		if p.Bet != br.highBet {
			return nil, nil, e.reject(req, fmt.Sprintf("cannot check, must call %d", br.highBet-p.Bet))
		}
		br.markActed(p.Seat)

	case ActionCall:
		toCall := br.highBet - p.Bet
		if toCall <= 0 {
			return nil, nil, e.reject(req, "nothing to call")
		}
		pay := min(toCall, p.Chips)
		p.Chips -= pay
		p.Bet += pay
		p.TotalBet += pay
		applied.Amount = pay
		br.markActed(p.Seat)

	case ActionBet:
		amount := req.Amount
		available := p.Chips + p.Bet
		switch {
		case amount <= br.highBet:
			return nil, nil, e.reject(req, fmt.Sprintf("bet must exceed %d", br.highBet))
		case amount > available:
			return nil, nil, e.reject(req, "insufficient chips")
		case amount < br.highBet+br.minRaise && amount < available:
			return nil, nil, e.reject(req, fmt.Sprintf("raise too small, minimum %d", br.highBet+br.minRaise))
		}
		if raise := amount - br.highBet; raise >= br.minRaise {
			br.minRaise = raise
		}
		br.highBet = amount
		add := amount - p.Bet
		p.Chips -= add
		p.Bet = amount
		p.TotalBet += add
		applied.Amount = amount
		br.reopen(p.Seat)

	default:
		return nil, nil, e.reject(req, "unknown action")
	}

	if !p.Folded && p.Chips == 0 {
		p.AllIn = true
	}
	applied.AllIn = p.AllIn

	events := []Event{applied}
	moreEvents, effects := e.settle(p.Seat)
	return append(events, moreEvents...), effects, nil
}

// settle either hands the action to the next player or closes the street.
func (e *Engine) settle(after int) ([]Event, []Effect) {
	live := 0
	for _, p := range e.players {
		if p.Live() {
			live++
		}
	}
	if live <= 1 || e.betting.complete(e.players) {
		return e.closeStreet()
	}

	e.actor = e.nextToAct(after)
	return nil, []Effect{StartTimer{Seat: e.actor, Timeout: e.actionTimeout}}
}

// closeStreet collects bets and either ends the hand uncontested or schedules
// the next transition.
func (e *Engine) closeStreet() ([]Event, []Effect) {
	e.pots = collectBets(e.players)
	e.betting.reset()
	e.actor = 0

	var live []*Player
	for _, p := range e.players {
		if p.Live() {
			live = append(live, p)
		}
	}

	if len(live) == 1 {
		winner := live[0]
		total := 0
		for _, pot := range e.pots {
			total += pot.Amount
		}
		winner.Chips += total
		e.pots = nil
		e.phase = PhaseComplete
		e.pending = ""
		// The winner may show cards until both are face up.
		e.actor = winner.Seat

		e.logger.Info().Int("seat", winner.Seat).Int("amount", total).Msg("hand won uncontested")
		return []Event{PotAwarded{Seat: winner.Seat, Amount: total}}, []Effect{GameEnd{Reason: GameEndFold}}
	}

	e.pending = e.phase.next()
	return nil, []Effect{ScheduleTransition{TargetPhase: e.pending, Delay: e.transitionDelay}}
}

func (e *Engine) reveal(req ActionRequest) ([]Event, error) {
	if e.phase != PhaseComplete || e.actor == 0 {
		return nil, e.reject(req, "no reveal window open")
	}
	if req.Seat != e.actor {
		return nil, e.reject(req, fmt.Sprintf("only seat %d may show", e.actor))
	}
	p := e.playerAt(req.Seat)
	if req.Index < 0 || req.Index >= len(p.HoleCards) {
		return nil, e.reject(req, fmt.Sprintf("no hole card at index %d", req.Index))
	}
	if p.Revealed[req.Index] {
		return nil, e.reject(req, "card already shown")
	}

	p.Revealed[req.Index] = true
	if p.Revealed[0] && p.Revealed[1] {
		e.actor = 0
	}
	return []Event{CardsShown{Seat: p.Seat, Index: req.Index, Card: p.HoleCards[req.Index], Voluntary: true}}, nil
}

// nextToAct finds the first seat after the given one that still owes a
// decision, falling back to any seat that can act.
func (e *Engine) nextToAct(after int) int {
	order := e.seatsAfter(after)
	for _, p := range order {
		if p.CanAct() && (!e.betting.acted[p.Seat] || p.Bet < e.betting.highBet) {
			return p.Seat
		}
	}
	for _, p := range order {
		if p.CanAct() {
			return p.Seat
		}
	}
	return 0
}

func (e *Engine) nextInHand(after int) int {
	for _, p := range e.seatsAfter(after) {
		if p.InHand {
			return p.Seat
		}
	}
	return 0
}

// seatsAfter lists players clockwise starting just after the given seat.
func (e *Engine) seatsAfter(seat int) []*Player {
	start := len(e.players)
	for i, p := range e.players {
		if p.Seat > seat {
			start = i
			break
		}
	}
	out := make([]*Player, 0, len(e.players))
	out = append(out, e.players[start:]...)
	return append(out, e.players[:start]...)
}

func (e *Engine) playerAt(seat int) *Player {
	for _, p := range e.players {
		if p.Seat == seat {
			return p
		}
	}
	return nil
}

func (e *Engine) playerByID(id string) *Player {
	for _, p := range e.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (e *Engine) reject(req ActionRequest, reason string) error {
	return &RejectionError{Seat: req.Seat, Action: req.Type, Phase: e.phase, Reason: reason}
}

func (e *Engine) rejectTransition(phase Phase, reason string) error {
	return &RejectionError{Phase: phase, Reason: reason}
}
