package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lox/handreplay/internal/feed"
)

// ServeCmd plays bots-only hands back to back and streams every snapshot to
// websocket spectators.
type ServeCmd struct {
	Addr       string        `help:"Listen address (defaults to the configured one)"`
	Variant    string        `help:"Table variant (defaults to the configured one)"`
	Bots       int           `help:"Number of bots (defaults to the configured count)"`
	Strategies []string      `help:"Bot strategies, assigned round robin"`
	Hands      int           `help:"Stop after this many hands (0 = until interrupted)"`
	Pause      time.Duration `kong:"default='3s',help='Pause between hands'"`
	Seed       *int64        `kong:"help='Deterministic RNG seed (optional)'"`
}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, logger, err := g.setup()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(logger)
	defer cancel()

	hub := feed.New(logger)
	defer hub.Close()

	srv := &http.Server{
		Addr:              firstNonEmpty(c.Addr, cfg.Feed.Address),
		Handler:           hub.Handler(cfg.Feed.Path),
		ReadHeaderTimeout: 10 * time.Second,
	}

	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
	}
	t := table{
		variant:    firstNonEmpty(c.Variant, cfg.Session.Variant),
		bots:       c.Bots,
		strategies: c.Strategies,
		settings:   cfg.Session,
		logger:     logger,
	}

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		logger.Info().Str("addr", srv.Addr).Str("path", cfg.Feed.Path).Msg("Spectator feed listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	eg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	eg.Go(func() error {
		defer cancel()
		for hand := 1; c.Hands == 0 || hand <= c.Hands; hand++ {
			s, err := t.play(ctx, hand, seed+int64(hand), hub.Publish)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			if err != nil {
				return err
			}
			reason, _ := s.Result()
			hub.EndHand(reason)

			select {
			case <-time.After(c.Pause):
			case <-ctx.Done():
				return nil
			}
		}
		logger.Info().Int("hands", c.Hands).Msg("All hands played")
		return nil
	})

	return eg.Wait()
}
