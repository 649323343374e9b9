package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/rs/zerolog"

	"github.com/lox/handreplay/internal/handhistory"
	"github.com/lox/handreplay/internal/playback"
	"github.com/lox/handreplay/internal/replay"
	"github.com/lox/handreplay/internal/tui"
)

// ViewCmd opens the terminal viewer on a hand history, or on a freshly
// simulated hand.
type ViewCmd struct {
	Hex      string            `arg:"" optional:"" help:"Hex hand history or @file; omit with --simulate"`
	Simulate bool              `help:"Play a fast bots-only hand and view it"`
	Variant  string            `help:"Variant for --simulate"`
	Seed     *int64            `kong:"help='Seed for --simulate (optional)'"`
	Speed    time.Duration     `help:"Autoplay interval (defaults to the configured one)"`
	Name     map[string]string `help:"Display name overrides as id=name"`
	Viewer   string            `help:"Player id to mark as the viewer"`
	LogFile  string            `type:"path" help:"Write viewer logs to this file"`
}

func (c *ViewCmd) Run(g *Globals) error {
	cfg, logger, err := g.setup()
	if err != nil {
		return err
	}

	var h *handhistory.HandHistory
	switch {
	case c.Simulate:
		ctx, cancel := signalContext(logger)
		defer cancel()
		seed := time.Now().UnixNano()
		if c.Seed != nil {
			seed = *c.Seed
		}
		t := table{
			variant:  firstNonEmpty(c.Variant, cfg.Session.Variant),
			fast:     true,
			settings: cfg.Session,
			logger:   logger.Level(max(logger.GetLevel(), zerolog.WarnLevel)),
		}
		s, err := t.play(ctx, 1, seed, nil)
		if err != nil {
			return err
		}
		h = s.History()
	case c.Hex != "":
		raw, err := readHex(c.Hex)
		if err != nil {
			return err
		}
		if h, err = handhistory.DecodeHex(raw); err != nil {
			return err
		}
	default:
		return errors.New("view needs a hand history or --simulate")
	}

	res := replay.GenerateFromHistory(h, c.Name, c.Viewer)
	if res.Err != nil {
		logger.Warn().Err(res.Err).Int("action_index", res.StoppedAtActionIndex).Msg("Replay stopped early")
	}

	speed := c.Speed
	if speed == 0 {
		speed = cfg.Playback.Speed()
	}
	ctl := playback.New(&res, speed)
	defer ctl.Close()

	tuiLogger, closeLog, err := c.tuiLogger(g.Debug)
	if err != nil {
		return err
	}
	defer closeLog()

	p := tea.NewProgram(tui.NewViewer(ctl, tuiLogger), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("viewer: %w", err)
	}
	return nil
}

// tuiLogger writes to LogFile, since the terminal belongs to the viewer.
func (c *ViewCmd) tuiLogger(debug bool) (*log.Logger, func(), error) {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}
	if c.LogFile == "" {
		return log.NewWithOptions(io.Discard, log.Options{Level: level}), func() {}, nil
	}
	f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	logger := log.NewWithOptions(f, log.Options{Level: level, ReportTimestamp: true})
	return logger, func() { _ = f.Close() }, nil
}
