package replay

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/lox/handreplay/internal/handhistory"
	"github.com/lox/handreplay/internal/view"
	"github.com/lox/handreplay/poker"
)

// FrameInterval spaces frame timestamps. Timestamps are synthetic so that
// identical input always yields identical frames.
const FrameInterval = time.Second

// PreAction marks frames produced before any recorded action was applied.
const PreAction = -1

// Input is everything needed to reconstruct a hand.
type Input struct {
	Variant string
	// Manifest maps each original manifest key (the table seat) to a player.
	// Sorting the keys gives manifest order.
	Manifest       map[int]string
	StartingStacks []int           // by manifest index
	HoleCards      [][2]poker.Card // by manifest index
	Board          []poker.Card
	Actions        []handhistory.Action
}

// InputFromHistory adapts a decoded hand history.
func InputFromHistory(h *handhistory.HandHistory) Input {
	in := Input{
		Variant:        h.Variant,
		Manifest:       make(map[int]string, len(h.Manifest)),
		StartingStacks: h.StartingStacks,
		HoleCards:      h.HoleCards,
		Board:          h.Board,
		Actions:        h.Actions,
	}
	for _, s := range h.Manifest {
		in.Manifest[s.Seat] = s.PlayerID
	}
	return in
}

// Frame is one reconstructed state in the timeline.
type Frame struct {
	ActionIndex int                    `json:"actionIndex"`
	State       view.GameStateSnapshot `json:"state"`
	Timestamp   time.Duration          `json:"timestamp"`
}

// Result holds the longest valid prefix of frames. When Err is set,
// StoppedAtActionIndex names the action that could not be applied, or
// PreAction if setup failed.
type Result struct {
	Frames               []Frame
	Err                  error
	StoppedAtActionIndex int
}

type resultJSON struct {
	Frames    []Frame `json:"frames"`
	Error     string  `json:"error,omitempty"`
	StoppedAt *int    `json:"stoppedAtActionIndex,omitempty"`
}

// MarshalJSON writes the error text and stop index only for a failed
// replay, so a failure at action 0 stays distinguishable from success.
func (r Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{Frames: r.Frames}
	if out.Frames == nil {
		out.Frames = []Frame{}
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
		stopped := r.StoppedAtActionIndex
		out.StoppedAt = &stopped
	}
	return json.Marshal(out)
}

// Last returns the final frame.
func (r *Result) Last() (Frame, bool) {
	if r == nil || len(r.Frames) == 0 {
		return Frame{}, false
	}
	return r.Frames[len(r.Frames)-1], true
}

// seatManifest is the bijection between manifest index and player, with
// engine seats assigned 1..N in manifest order.
type seatManifest struct {
	ids []string
}

func newSeatManifest(m map[int]string) seatManifest {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	ids := make([]string, len(keys))
	for i, k := range keys {
		ids[i] = m[k]
	}
	return seatManifest{ids: ids}
}

func (m seatManifest) len() int { return len(m.ids) }

// seat maps a manifest index to its engine seat.
func (m seatManifest) seat(index int) int { return index + 1 }

func (m seatManifest) player(index int) string { return m.ids[index] }
