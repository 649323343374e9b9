// Package session runs one live hand in process: a hero against bots, with
// phase transitions and bot thinking time scheduled on a mockable clock.
package session

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lox/handreplay/internal/bot"
	"github.com/lox/handreplay/internal/engine"
	"github.com/lox/handreplay/internal/handhistory"
	"github.com/lox/handreplay/internal/randutil"
	"github.com/lox/handreplay/internal/scheduler"
	"github.com/lox/handreplay/internal/view"
)

var (
	ErrDestroyed = errors.New("session destroyed")
	ErrHandOver  = errors.New("hand is over")
	ErrNoHero    = errors.New("session has no hero")
)

// Options tunes a session. The zero value gives a five bot table (one bot
// heads-up) on the real clock.
type Options struct {
	Clock  quartz.Clock
	Logger zerolog.Logger
	// Seed drives the deck, bot choices, and thinking delays. Zero uses the
	// current time.
	Seed       int64
	HandID     string
	HandNumber int
	// Bots defaults to one fewer than the table size, at most five.
	Bots int
	// Strategies are assigned to bots round robin.
	Strategies    []string
	StartingStack int // defaults to the variant's
	ButtonSeat    int // defaults to the lowest seat
	ThinkMin      time.Duration
	ThinkMax      time.Duration
	// TransitionDelay overrides the engine's pause between streets.
	TransitionDelay time.Duration
	HeroName        string
	DisplayNames    map[string]string
}

const (
	defaultMaxBots  = 5
	defaultThinkMin = time.Second
	defaultThinkMax = 2 * time.Second
)

// Session owns an engine for the length of one hand.
type Session struct {
	heroID   string
	heroSeat int
	onUpdate func(view.GameStateSnapshot)
	opts     Options
	logger   zerolog.Logger

	sched *scheduler.Scheduler
	eng   *engine.Engine
	rng   *rand.Rand
	bots  map[int]bot.Strategy

	destroyed atomic.Bool
	done      chan struct{}

	mu       sync.Mutex // guards the fields below for readers off the loop
	ctx      engine.Context
	last     view.GameStateSnapshot
	recorder *handhistory.Recorder
	ended    bool
	result   string
}

// New seats the hero and bots, deals, and publishes the first snapshot
// before returning. An empty heroID runs a bots-only table whose snapshots
// show every hand. onUpdate runs on the session loop and must not call
// HandleAction.
func New(variant, heroID string, onUpdate func(view.GameStateSnapshot), opts Options) (*Session, error) {
	v, err := engine.LookupVariant(variant)
	if err != nil {
		return nil, err
	}
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	if opts.HandID == "" {
		opts.HandID = uuid.NewString()
	}
	if opts.StartingStack <= 0 {
		opts.StartingStack = v.StartingStack
	}
	if opts.ThinkMin <= 0 {
		opts.ThinkMin = defaultThinkMin
	}
	if opts.ThinkMax < opts.ThinkMin {
		opts.ThinkMax = max(opts.ThinkMin, defaultThinkMax)
	}

	seats := v.MaxPlayers
	if heroID != "" {
		seats--
	}
	if opts.Bots <= 0 {
		opts.Bots = min(seats, defaultMaxBots)
	}
	if opts.Bots > seats {
		return nil, fmt.Errorf("%d bots do not fit a %d seat table", opts.Bots, v.MaxPlayers)
	}

	strategies, err := bot.Assign(opts.Strategies, opts.Bots)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger.With().Str("component", "session").Str("hand_id", opts.HandID).Logger()
	s := &Session{
		heroID:   heroID,
		onUpdate: onUpdate,
		opts:     opts,
		logger:   logger,
		sched:    scheduler.New(opts.Clock, scheduler.WithLogger(logger), scheduler.WithTag("session")),
		rng:      randutil.Stream(opts.Seed, 1),
		bots:     make(map[int]bot.Strategy, len(strategies)),
		done:     make(chan struct{}),
	}

	engineOpts := []engine.Option{
		engine.WithRand(randutil.New(opts.Seed)),
		engine.WithLogger(opts.Logger),
		engine.WithHandNumber(opts.HandNumber),
	}
	if opts.TransitionDelay > 0 {
		engineOpts = append(engineOpts, engine.WithTransitionDelay(opts.TransitionDelay))
	}
	s.eng, err = engine.New(opts.HandID, variant, engineOpts...)
	if err != nil {
		return nil, err
	}

	if err := s.seat(strategies); err != nil {
		return nil, err
	}
	if opts.ButtonSeat > 0 {
		if err := s.eng.SetButtonSeat(opts.ButtonSeat); err != nil {
			return nil, err
		}
	}

	res := s.eng.ExecuteTransition(engine.PhasePreflop, nil)
	if !res.Success {
		return nil, fmt.Errorf("starting hand: %w", res.Err)
	}
	logger.Info().Str("variant", variant).Int("bots", len(strategies)).Msg("Session started")

	err = s.sched.Do(func() {
		s.mu.Lock()
		s.recorder = handhistory.NewRecorder(res.State)
		s.mu.Unlock()
		s.processResult(res)
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) seat(strategies []bot.Strategy) error {
	var specs []engine.PlayerSpec
	if s.heroID != "" {
		specs = append(specs, engine.PlayerSpec{ID: s.heroID, Name: s.opts.HeroName, Chips: s.opts.StartingStack})
	}
	for i, strategy := range strategies {
		specs = append(specs, engine.PlayerSpec{
			ID:    fmt.Sprintf("bot-%d", i+1),
			Name:  fmt.Sprintf("Bot %d (%s)", i+1, strategy.Name()),
			Chips: s.opts.StartingStack,
			IsBot: true,
		})
	}
	if err := s.eng.AddPlayers(specs); err != nil {
		return err
	}

	ctx := s.eng.Context()
	next := 0
	for _, spec := range specs {
		p, _ := ctx.PlayerByID(spec.ID)
		if spec.IsBot {
			s.bots[p.Seat] = strategies[next]
			next++
			continue
		}
		s.heroSeat = p.Seat
		// The hero is here already; nothing to wait for.
		if err := s.eng.SetPlayerStatus(spec.ID, engine.StatusActive); err != nil {
			return err
		}
	}
	return nil
}

// processResult must run on the loop.
func (s *Session) processResult(res engine.Result) {
	s.mu.Lock()
	s.ctx = res.State
	s.recorder.Record(res.Events)
	s.mu.Unlock()

	s.publish()
	h := effects{s}
	for _, e := range res.Effects {
		engine.DispatchEffect(e, h)
	}
}

func (s *Session) publish() {
	ctx := s.ctx
	opts := view.Options{ViewerID: s.heroID, DisplayNames: s.opts.DisplayNames}
	if s.heroID != "" {
		pctx, err := s.eng.PlayerContext(s.heroID)
		if err != nil {
			s.logger.Error().Err(err).Msg("Hero context unavailable")
			return
		}
		ctx = pctx
	}
	snap := view.FromContext(ctx, opts)

	s.mu.Lock()
	s.last = snap
	s.mu.Unlock()

	s.logger.Debug().
		Str("phase", snap.Phase).
		Int("actor", snap.CurrentActorSeat).
		Int("pot", snap.Pot).
		Msg("Publishing snapshot")
	if s.onUpdate != nil {
		s.onUpdate(snap)
	}
}

type effects struct{ s *Session }

func (h effects) HandleScheduleTransition(e engine.ScheduleTransition) {
	s := h.s
	s.sched.After(e.Delay, func() {
		if s.destroyed.Load() {
			return
		}
		res := s.eng.ExecuteTransition(e.TargetPhase, nil)
		if !res.Success {
			s.logger.Error().Err(res.Err).Str("phase", string(e.TargetPhase)).Msg("Transition failed")
			return
		}
		s.processResult(res)
	})
}

func (h effects) HandleStartTimer(e engine.StartTimer) {
	h.s.scheduleBot(e.Seat)
}

func (h effects) HandleGameEnd(e engine.GameEnd) {
	s := h.s
	s.mu.Lock()
	already := s.ended
	s.ended = true
	s.result = e.Reason
	s.mu.Unlock()
	if already {
		return
	}
	s.logger.Info().Str("reason", e.Reason).Msg("Hand finished")
	close(s.done)
}

// scheduleBot arms the thinking delay when seat belongs to a bot.
func (s *Session) scheduleBot(seat int) {
	strategy, ok := s.bots[seat]
	if !ok {
		return
	}
	delay := s.opts.ThinkMin
	if spread := s.opts.ThinkMax - s.opts.ThinkMin; spread > 0 {
		delay += time.Duration(s.rng.Int64N(int64(spread) + 1))
	}
	s.sched.After(delay, func() {
		if s.destroyed.Load() {
			return
		}
		s.botTurn(seat, strategy)
	})
}

func (s *Session) botTurn(seat int, strategy bot.Strategy) {
	if s.ctx.CurrentActorSeat != seat {
		return
	}
	p, _ := s.ctx.Player(seat)
	pctx, err := s.eng.PlayerContext(p.ID)
	if err != nil {
		s.logger.Error().Err(err).Int("seat", seat).Msg("Bot context unavailable")
		return
	}
	d := bot.Decide(strategy, pctx, seat, s.rng)
	s.logger.Debug().
		Int("seat", seat).
		Str("strategy", strategy.Name()).
		Str("action", string(d.Type)).
		Int("amount", d.Amount).
		Str("reasoning", d.Reasoning).
		Msg("Bot decided")

	res := s.eng.ProcessAction(d.Request(seat))
	if !res.Success {
		s.logger.Warn().Err(res.Err).Int("seat", seat).Msg("Engine rejected bot action")
		return
	}
	s.processResult(res)
}

// HandleAction submits the hero's action. For a reveal, amount is the hole
// card index. A rejected action is logged and returned; it is not retried.
func (s *Session) HandleAction(typ engine.ActionType, amount int) error {
	if s.heroID == "" {
		return ErrNoHero
	}
	if s.destroyed.Load() {
		return ErrDestroyed
	}
	var actionErr error
	err := s.sched.Do(func() {
		if s.destroyed.Load() {
			actionErr = ErrDestroyed
			return
		}
		if _, over := s.Result(); over && typ != engine.ActionReveal {
			actionErr = ErrHandOver
			return
		}
		req := engine.ActionRequest{Seat: s.heroSeat, Type: typ, Amount: amount}
		if typ == engine.ActionReveal {
			req = engine.ActionRequest{Seat: s.heroSeat, Type: typ, Index: amount}
		}
		res := s.eng.ProcessAction(req)
		if !res.Success {
			s.logger.Warn().Err(res.Err).Str("action", string(typ)).Msg("Engine rejected hero action")
			actionErr = res.Err
			return
		}
		s.processResult(res)
	})
	if errors.Is(err, scheduler.ErrClosed) {
		return ErrDestroyed
	}
	return actionErr
}

// Cleanup cancels every pending timer. Callbacks already running finish but
// see the destroyed flag on their next check. Cleanup is idempotent and may
// be called from an update callback.
func (s *Session) Cleanup() {
	if s.destroyed.Swap(true) {
		return
	}
	s.sched.Close()
	s.logger.Info().Msg("Session cleaned up")
}

// Destroyed reports whether Cleanup has run.
func (s *Session) Destroyed() bool {
	return s.destroyed.Load()
}

// Done is closed when the hand ends.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Result returns the game end reason once the hand is over.
func (s *Session) Result() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.ended
}

// HeroSeat returns the hero's seat, or 0 for a bots-only table.
func (s *Session) HeroSeat() int {
	return s.heroSeat
}

// Snapshot returns the last published snapshot.
func (s *Session) Snapshot() view.GameStateSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Context returns the latest full engine context.
func (s *Session) Context() engine.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx.Clone()
}

// History returns what has been recorded so far. After the hand ends it is
// the complete history.
func (s *Session) History() *handhistory.HandHistory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recorder.History()
}
