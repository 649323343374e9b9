package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lox/handreplay/internal/handhistory"
	"github.com/lox/handreplay/internal/replay"
	"github.com/lox/handreplay/internal/tui"
)

// ReplayCmd reconstructs a hand and prints the final state or every frame.
type ReplayCmd struct {
	Hex    string            `arg:"" optional:"" help:"Hex hand history, @file, or - for stdin"`
	All    bool              `help:"Print every frame instead of only the last"`
	JSON   bool              `name:"json" help:"Print frames as JSON"`
	Name   map[string]string `help:"Display name overrides as id=name"`
	Viewer string            `help:"Player id to mark as the viewer"`
}

func (c *ReplayCmd) Run(g *Globals) error {
	_, logger, err := g.setup()
	if err != nil {
		return err
	}

	raw, err := readHex(c.Hex)
	if err != nil {
		return err
	}
	h, err := handhistory.DecodeHex(raw)
	if err != nil {
		return err
	}

	res := replay.GenerateFromHistory(h, c.Name, c.Viewer)
	logger.Debug().Int("frames", len(res.Frames)).Msg("Replay generated")

	frames := res.Frames
	if !c.All && len(frames) > 0 {
		frames = frames[len(frames)-1:]
	}

	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(frames); err != nil {
			return err
		}
	} else {
		for _, f := range frames {
			fmt.Println(tui.RenderFrame(f))
			fmt.Println()
		}
	}

	if res.Err != nil {
		logger.Error().Err(res.Err).Int("action_index", res.StoppedAtActionIndex).Int("frames", len(res.Frames)).Msg("Replay stopped")
		return fmt.Errorf("replay stopped at action %d: %w", res.StoppedAtActionIndex, res.Err)
	}
	return nil
}
