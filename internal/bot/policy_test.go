package bot

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/handreplay/internal/engine"
	"github.com/lox/handreplay/internal/randutil"
	"github.com/lox/handreplay/poker"
)

// preflop starts a three handed hand with button 1, so seat 1 acts first
// facing the big blind.
func preflop(t *testing.T, chips ...int) *engine.Engine {
	t.Helper()
	e, err := engine.New("bot-1", "nlhe-1-2", engine.WithRand(randutil.New(3)))
	require.NoError(t, err)
	specs := make([]engine.PlayerSpec, len(chips))
	for i, c := range chips {
		specs[i] = engine.PlayerSpec{ID: string(rune('a' + i)), Chips: c, IsBot: true}
	}
	require.NoError(t, e.AddPlayers(specs))
	res := e.ExecuteTransition(engine.PhasePreflop, &engine.Overrides{HoleCards: map[int][]poker.Card{
		1: poker.MustParseCards("As", "Ad"),
		2: poker.MustParseCards("7c", "2h"),
		3: poker.MustParseCards("Ts", "9s"),
	}})
	require.True(t, res.Success, res.Err)
	return e
}

func TestValidActions(t *testing.T) {
	e := preflop(t, 100, 100, 100)
	ctx := e.Context()
	require.Equal(t, 1, ctx.CurrentActorSeat)

	assert.Equal(t, []ValidAction{
		{Type: engine.ActionFold},
		{Type: engine.ActionCall, Min: 2, Max: 2},
		{Type: engine.ActionBet, Min: 4, Max: 100},
	}, ValidActions(ctx, 1))
	assert.Empty(t, ValidActions(ctx, 2), "not seat 2's turn")

	require.True(t, e.ProcessAction(engine.ActionRequest{Seat: 1, Type: engine.ActionCall}).Success)
	require.True(t, e.ProcessAction(engine.ActionRequest{Seat: 2, Type: engine.ActionCall}).Success)

	ctx = e.Context()
	assert.Equal(t, []ValidAction{
		{Type: engine.ActionFold},
		{Type: engine.ActionCheck},
		{Type: engine.ActionBet, Min: 4, Max: 100},
	}, ValidActions(ctx, 3))
}

func TestShortStackCannotRaise(t *testing.T) {
	e := preflop(t, 2, 100, 100)
	valid := ValidActions(e.Context(), 1)
	assert.Equal(t, []ValidAction{
		{Type: engine.ActionFold},
		{Type: engine.ActionCall, Min: 2, Max: 2},
	}, valid)

	// Calling would leave nothing behind, so the heuristic folds.
	assert.Equal(t, engine.ActionFold, heuristic(valid).Type)
}

func TestHeuristic(t *testing.T) {
	e := preflop(t, 100, 100, 100)
	d := Decide(heuristicStrategy{}, e.Context(), 1, randutil.New(1))
	assert.Equal(t, engine.ActionCall, d.Type)
	assert.Equal(t, 2, d.Amount)

	assert.Equal(t, engine.ActionCheck, heuristic([]ValidAction{{Type: engine.ActionFold}, {Type: engine.ActionCheck}}).Type)
}

func TestEveryStrategyPlaysLegally(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			s, err := New(name)
			require.NoError(t, err)
			assert.Equal(t, name, s.Name())

			rng := randutil.New(11)
			for range 50 {
				e := preflop(t, 100, 100, 100)
				ctx := e.Context()
				d := s.Decide(ctx, 1, ValidActions(ctx, 1), rng)
				assert.True(t, legal(d, ValidActions(ctx, 1)), "%+v", d)

				res := e.ProcessAction(Decide(s, ctx, 1, rng).Request(1))
				assert.True(t, res.Success, res.Err)
			}
		})
	}
}

func TestTightRaisesPremiums(t *testing.T) {
	e := preflop(t, 100, 100, 100)
	d := tightStrategy{}.Decide(e.Context(), 1, ValidActions(e.Context(), 1), randutil.New(1))
	assert.Equal(t, engine.ActionBet, d.Type)
	assert.Equal(t, 16, d.Amount)
	assert.Contains(t, d.Reasoning, "premium")
}

func TestDecideReplacesIllegalChoice(t *testing.T) {
	e := preflop(t, 100, 100, 100)
	d := Decide(illegal{}, e.Context(), 1, randutil.New(1))
	assert.Equal(t, engine.ActionCall, d.Type)
}

type illegal struct{}

func (illegal) Name() string { return "illegal" }

func (illegal) Decide(engine.Context, int, []ValidAction, *rand.Rand) Decision {
	return Decision{Type: engine.ActionCheck}
}

func TestAssignRoundRobin(t *testing.T) {
	got, err := Assign(nil, 5)
	require.NoError(t, err)
	var names []string
	for _, s := range got {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"calling", "aggressive", "random", "calling", "aggressive"}, names)

	_, err = Assign([]string{"calling", "nope"}, 2)
	assert.ErrorContains(t, err, `unknown bot strategy "nope"`)

	s, err := New("TIGHT")
	require.NoError(t, err)
	assert.Equal(t, "tight", s.Name())
}
