package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"

	"github.com/lox/handreplay/internal/config"
)

// Globals are flags shared by every command.
type Globals struct {
	Config  string `kong:"default='handreplay.hcl',type='path',help='HCL configuration file (missing file uses defaults)'"`
	Debug   bool   `kong:"help='Enable debug logging'"`
	LogJSON bool   `kong:"name='log-json',help='Log structured JSON instead of console output'"`
	NoColor bool   `kong:"help='Disable colored output'"`
}

// setup loads configuration, registers configured variants, and builds the
// logger.
func (g *Globals) setup() (*config.Config, zerolog.Logger, error) {
	logger := g.logger()
	if g.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, logger, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, logger, fmt.Errorf("invalid config %s: %w", g.Config, err)
	}
	if err := cfg.RegisterVariants(); err != nil {
		return nil, logger, err
	}
	logger.Debug().Str("config", g.Config).Int("variants", len(cfg.Variants)).Msg("Loaded configuration")
	return cfg, logger, nil
}

func (g *Globals) logger() zerolog.Logger {
	level := zerolog.InfoLevel
	if g.Debug {
		level = zerolog.DebugLevel
	}

	if g.LogJSON {
		zerolog.TimeFieldFormat = time.RFC3339Nano
		return zerolog.New(os.Stderr).
			Level(level).
			With().
			Timestamp().
			Logger()
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: g.NoColor}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// signalContext is cancelled on interrupt signals.
func signalContext(logger zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info().Str("signal", sig.String()).Msg("Received signal, shutting down gracefully")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}

// readHex returns the hand history argument, reading stdin for "" or "-"
// and a file for "@path".
func readHex(arg string) (string, error) {
	var r io.Reader
	switch {
	case arg == "" || arg == "-":
		r = os.Stdin
	case strings.HasPrefix(arg, "@"):
		f, err := os.Open(arg[1:])
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	default:
		return arg, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
