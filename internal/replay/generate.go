// Package replay reconstructs a timeline of frames from a recorded hand by
// driving a private engine through the recorded actions.
package replay

import (
	"fmt"
	"time"

	"github.com/lox/handreplay/internal/engine"
	"github.com/lox/handreplay/internal/handhistory"
	"github.com/lox/handreplay/internal/randutil"
	"github.com/lox/handreplay/internal/view"
	"github.com/lox/handreplay/poker"
)

const replayHandID = "replay"

// Generate replays in and returns every frame it could build. It never
// panics: failures come back in Result.Err alongside the frames produced
// before the failure. Generate does no I/O and is deterministic.
//
// displayNames relabels players by id. viewerID marks the viewer's player;
// all hole cards stay visible regardless.
func Generate(in Input, displayNames map[string]string, viewerID string) (res Result) {
	g := &generator{
		in:       in,
		manifest: newSeatManifest(in.Manifest),
		opts:     view.Options{ViewerID: viewerID, DisplayNames: displayNames},
		current:  PreAction,
	}

	defer func() {
		if r := recover(); r != nil {
			res = g.fail(&ReplayError{
				ActionIndex: g.current,
				Reason:      ReasonPanic,
				Message:     fmt.Sprint(r),
			})
		}
	}()

	if err := g.run(); err != nil {
		return g.fail(err)
	}
	return Result{Frames: g.frames}
}

// GenerateFromHistory replays a decoded hand history.
func GenerateFromHistory(h *handhistory.HandHistory, displayNames map[string]string, viewerID string) Result {
	return Generate(InputFromHistory(h), displayNames, viewerID)
}

type generator struct {
	in       Input
	manifest seatManifest
	opts     view.Options
	eng      *engine.Engine
	frames   []Frame
	current  int // action being applied, PreAction during setup
}

func (g *generator) fail(err error) Result {
	return Result{Frames: g.frames, Err: err, StoppedAtActionIndex: g.current}
}

func (g *generator) run() error {
	n := g.manifest.len()
	if n < 2 || len(g.in.StartingStacks) != n || len(g.in.HoleCards) != n {
		return &ReplayError{
			ActionIndex: PreAction,
			Reason:      ReasonBadInput,
			Message: fmt.Sprintf("manifest has %d players, %d stacks, %d hands",
				n, len(g.in.StartingStacks), len(g.in.HoleCards)),
		}
	}

	eng, err := engine.New(replayHandID, g.in.Variant,
		engine.WithRand(randutil.New(0)),
		engine.WithTransitionDelay(0),
	)
	if err != nil {
		return &ReplayError{ActionIndex: PreAction, Reason: ReasonEngineInit, Message: err.Error(), Err: err}
	}
	g.eng = eng

	specs := make([]engine.PlayerSpec, n)
	for i := range n {
		specs[i] = engine.PlayerSpec{
			ID:    g.manifest.player(i),
			Chips: g.in.StartingStacks[i],
			Seat:  g.manifest.seat(i),
		}
	}
	if err := eng.AddPlayers(specs); err != nil {
		return &ReplayError{ActionIndex: PreAction, Reason: ReasonSeatInit, Message: err.Error(), Err: err}
	}
	// Replay has no connections to wait for.
	for _, spec := range specs {
		if err := eng.SetPlayerStatus(spec.ID, engine.StatusActive); err != nil {
			return &ReplayError{ActionIndex: PreAction, Reason: ReasonSeatInit, Message: err.Error(), Err: err}
		}
	}

	if button, ok := g.buttonSeat(); ok {
		if err := eng.SetButtonSeat(button); err != nil {
			return &ReplayError{ActionIndex: PreAction, Reason: ReasonSeatInit, Message: err.Error(), Err: err}
		}
	}

	hole := make(map[int][]poker.Card, n)
	for i, cards := range g.in.HoleCards {
		hole[g.manifest.seat(i)] = []poker.Card{cards[0], cards[1]}
	}
	res := eng.ExecuteTransition(engine.PhasePreflop, &engine.Overrides{HoleCards: hole})
	if !res.Success {
		return &ReplayError{ActionIndex: PreAction, Reason: ReasonTransitionFailed, Message: res.Err.Error(), Err: res.Err}
	}
	g.capture(res.State)
	if err := g.followEffects(res.Effects); err != nil {
		return err
	}

	for i, a := range g.in.Actions {
		g.current = i
		if a.Type.Informational() {
			continue
		}
		if err := g.apply(i, a); err != nil {
			return err
		}
	}
	return nil
}

// buttonSeat derives the button from the first small blind record. Heads-up
// the small blind is the button; otherwise the button sits one seat before.
// Histories stripped of blind records fall back to the first preflop actor,
// who sits three seats after the button in a ring game.
func (g *generator) buttonSeat() (int, bool) {
	n := g.manifest.len()
	for _, a := range g.in.Actions {
		if a.Type != handhistory.PostSmallBlind {
			continue
		}
		if a.SeatIndex < 0 || a.SeatIndex >= n {
			return 0, false
		}
		sb := g.manifest.seat(a.SeatIndex)
		if n == 2 {
			return sb, true
		}
		return wrapSeat(sb-1, n), true
	}
	for _, a := range g.in.Actions {
		if a.Type.Informational() {
			continue
		}
		if a.SeatIndex < 0 || a.SeatIndex >= n {
			return 0, false
		}
		first := g.manifest.seat(a.SeatIndex)
		if n == 2 {
			return first, true
		}
		return wrapSeat(first-3, n), true
	}
	return 0, false
}

// wrapSeat maps seat into 1..n.
func wrapSeat(seat, n int) int {
	return ((seat-1)%n+n)%n + 1
}

func (g *generator) apply(i int, a handhistory.Action) error {
	if a.SeatIndex < 0 || a.SeatIndex >= g.manifest.len() {
		return &ReplayError{ActionIndex: i, Reason: ReasonBadInput, Message: fmt.Sprintf("seat index %d out of range", a.SeatIndex)}
	}
	seat := g.manifest.seat(a.SeatIndex)
	if actor := g.eng.Context().CurrentActorSeat; actor != seat {
		return &DesyncError{ActionIndex: i, ExpectedSeat: actor, GotSeat: seat}
	}

	req := engine.ActionRequest{Seat: seat, Amount: a.Amount}
	switch a.Type {
	case handhistory.Fold:
		req.Type = engine.ActionFold
	case handhistory.Check:
		req.Type = engine.ActionCheck
	case handhistory.Call:
		req.Type = engine.ActionCall
	case handhistory.BetOrRaise:
		req.Type = engine.ActionBet
	case handhistory.ShowCards:
		req.Type = engine.ActionReveal
		req.Index = revealIndex(g.in.HoleCards[a.SeatIndex], a.Cards)
	default:
		return &ReplayError{ActionIndex: i, Reason: ReasonBadInput, Message: fmt.Sprintf("cannot replay %s", a.Type)}
	}

	res := g.eng.ProcessAction(req)
	if !res.Success {
		return &ValidationError{ActionIndex: i, Err: res.Err}
	}
	g.capture(res.State)
	return g.followEffects(res.Effects)
}

// revealIndex finds which hole card was shown. A card that is not among the
// player's hole cards falls back to index 0.
func revealIndex(hole [2]poker.Card, shown []poker.Card) int {
	if len(shown) == 0 {
		return 0
	}
	for i, c := range hole {
		if c == shown[0] {
			return i
		}
	}
	return 0
}

// followEffects executes scheduled transitions immediately, one frame per
// transition, following chains such as an all-in runout.
func (g *generator) followEffects(effects []engine.Effect) error {
	for len(effects) > 0 {
		var c transitionCollector
		for _, e := range effects {
			engine.DispatchEffect(e, &c)
		}
		effects = nil
		for _, phase := range c.phases {
			res := g.eng.ExecuteTransition(phase, g.overridesFor(phase))
			if !res.Success {
				return &ReplayError{
					ActionIndex: g.current,
					Reason:      ReasonTransitionFailed,
					Message:     res.Err.Error(),
					Err:         res.Err,
				}
			}
			g.capture(res.State)
			effects = append(effects, res.Effects...)
		}
	}
	return nil
}

// overridesFor returns the recorded board cards for a street. A street the
// history never reached is dealt from the engine's seeded deck.
func (g *generator) overridesFor(phase engine.Phase) *engine.Overrides {
	var lo, hi int
	switch phase {
	case engine.PhaseFlop:
		lo, hi = 0, 3
	case engine.PhaseTurn:
		lo, hi = 3, 4
	case engine.PhaseRiver:
		lo, hi = 4, 5
	default:
		return nil
	}
	if len(g.in.Board) < hi {
		return nil
	}
	return &engine.Overrides{CommunityCards: g.in.Board[lo:hi]}
}

func (g *generator) capture(ctx engine.Context) {
	g.frames = append(g.frames, Frame{
		ActionIndex: g.current,
		State:       view.FromContext(ctx, g.opts),
		Timestamp:   FrameInterval * time.Duration(len(g.frames)),
	})
}

// transitionCollector gathers the phases the engine asked to move to. Timers
// and game end need nothing during replay.
type transitionCollector struct {
	phases []engine.Phase
}

func (c *transitionCollector) HandleScheduleTransition(e engine.ScheduleTransition) {
	c.phases = append(c.phases, e.TargetPhase)
}

func (c *transitionCollector) HandleStartTimer(engine.StartTimer) {}

func (c *transitionCollector) HandleGameEnd(engine.GameEnd) {}
