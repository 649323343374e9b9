package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/lox/handreplay/internal/config"
	"github.com/lox/handreplay/internal/handhistory"
	"github.com/lox/handreplay/internal/session"
	"github.com/lox/handreplay/internal/view"
)

// SimulateCmd plays bots-only hands on the real clock.
type SimulateCmd struct {
	Variant    string   `help:"Table variant (defaults to the configured one)"`
	Bots       int      `help:"Number of bots (defaults to the configured count)"`
	Strategies []string `help:"Bot strategies, assigned round robin"`
	Hands      int      `kong:"default='1',help='Number of hands to play'"`
	Seed       *int64   `kong:"help='Deterministic RNG seed (optional)'"`
	Fast       bool     `help:"Skip thinking and street delays"`
	Out        string   `type:"existingdir" help:"Also write each hand to a .hex file in this directory"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	cfg, logger, err := g.setup()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(logger)
	defer cancel()

	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
	}
	logger.Info().Int64("seed", seed).Int("hands", c.Hands).Msg("Simulating")

	t := table{
		variant:    firstNonEmpty(c.Variant, cfg.Session.Variant),
		bots:       c.Bots,
		strategies: c.Strategies,
		fast:       c.Fast,
		settings:   cfg.Session,
		logger:     logger,
	}
	for hand := 1; hand <= c.Hands; hand++ {
		s, err := t.play(ctx, hand, seed+int64(hand), nil)
		if err != nil {
			return err
		}
		h := s.History()
		hex, err := handhistory.EncodeHex(h)
		if err != nil {
			return err
		}
		fmt.Println(hex)

		if c.Out != "" {
			path := filepath.Join(c.Out, fmt.Sprintf("hand-%03d-%s.hex", hand, s.Snapshot().HandID))
			if err := handhistory.WriteFile(path, h); err != nil {
				return err
			}
			logger.Debug().Str("path", path).Msg("Wrote hand history")
		}
	}
	return nil
}

// table plays one bots-only session per hand.
type table struct {
	variant    string
	bots       int
	strategies []string
	fast       bool
	settings   *config.SessionSettings
	logger     zerolog.Logger
}

func (t table) options(hand int, seed int64) session.Options {
	opts := session.Options{
		Logger:     t.logger,
		Seed:       seed,
		HandNumber: hand,
		Bots:       t.bots,
		Strategies: t.strategies,
	}
	if len(opts.Strategies) == 0 {
		opts.Strategies = t.settings.Strategies
	}
	if opts.Bots == 0 {
		opts.Bots = t.settings.Bots
	}
	opts.ThinkMin, opts.ThinkMax = t.settings.ThinkRange()
	opts.TransitionDelay = t.settings.TransitionDelay()
	if t.fast {
		opts.ThinkMin, opts.ThinkMax = time.Millisecond, time.Millisecond
		opts.TransitionDelay = time.Millisecond
	}
	return opts
}

// play runs one hand to completion and returns the finished session.
func (t table) play(ctx context.Context, hand int, seed int64, onUpdate func(view.GameStateSnapshot)) (*session.Session, error) {
	s, err := session.New(t.variant, "", onUpdate, t.options(hand, seed))
	if err != nil {
		return nil, err
	}
	defer s.Cleanup()

	select {
	case <-s.Done():
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	reason, _ := s.Result()
	t.logger.Info().Int("hand", hand).Str("reason", reason).Msg("Hand complete")
	return s, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
