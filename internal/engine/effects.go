package engine

import "time"

// Effect is a side-effect request emitted alongside a Result. The set of
// effects is closed: each kind has a matching EffectHandler method, so adding
// a kind breaks every handler until it is dealt with.
type Effect interface {
	accept(h EffectHandler)
}

// EffectHandler reacts to every effect kind.
type EffectHandler interface {
	HandleScheduleTransition(ScheduleTransition)
	HandleStartTimer(StartTimer)
	HandleGameEnd(GameEnd)
}

// DispatchEffect routes e to the handler method for its kind.
func DispatchEffect(e Effect, h EffectHandler) {
	e.accept(h)
}

// ScheduleTransition asks the owner to call ExecuteTransition(TargetPhase)
// after Delay.
type ScheduleTransition struct {
	TargetPhase Phase
	Delay       time.Duration
}

// StartTimer marks the start of a player's decision window.
type StartTimer struct {
	Seat    int
	Timeout time.Duration
}

// GameEnd is terminal. No further transitions will be scheduled.
type GameEnd struct {
	Reason string
}

func (e ScheduleTransition) accept(h EffectHandler) { h.HandleScheduleTransition(e) }
func (e StartTimer) accept(h EffectHandler)         { h.HandleStartTimer(e) }
func (e GameEnd) accept(h EffectHandler)            { h.HandleGameEnd(e) }

const (
	GameEndFold     = "fold"
	GameEndShowdown = "showdown"
)
