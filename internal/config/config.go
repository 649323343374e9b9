// Package config loads handreplay settings from an HCL file.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/handreplay/internal/bot"
	"github.com/lox/handreplay/internal/engine"
)

// Config is the complete configuration file.
type Config struct {
	Variants []VariantConfig  `hcl:"variant,block"`
	Session  *SessionSettings  `hcl:"session,block"`
	Playback *PlaybackSettings `hcl:"playback,block"`
	Feed     *FeedSettings     `hcl:"feed,block"`
}

// VariantConfig registers or overrides a table variant.
type VariantConfig struct {
	Slug          string `hcl:"slug,label"`
	SmallBlind    int    `hcl:"small_blind"`
	BigBlind      int    `hcl:"big_blind"`
	Ante          int    `hcl:"ante,optional"`
	MaxPlayers    int    `hcl:"max_players,optional"`
	StartingStack int    `hcl:"starting_stack,optional"`
}

// SessionSettings tunes local sessions.
type SessionSettings struct {
	Variant           string   `hcl:"variant,optional"`
	Bots              int      `hcl:"bots,optional"`
	Strategies        []string `hcl:"strategies,optional"`
	ThinkMinMs        int      `hcl:"think_min_ms,optional"`
	ThinkMaxMs        int      `hcl:"think_max_ms,optional"`
	TransitionDelayMs int      `hcl:"transition_delay_ms,optional"`
}

// PlaybackSettings tunes the replay viewer.
type PlaybackSettings struct {
	SpeedMs int `hcl:"speed_ms,optional"`
}

// FeedSettings configures the spectator websocket feed.
type FeedSettings struct {
	Address string `hcl:"address,optional"`
	Path    string `hcl:"path,optional"`
}

const (
	defaultVariant           = "nlhe-1-2"
	defaultThinkMinMs        = 1000
	defaultThinkMaxMs        = 2000
	defaultTransitionDelayMs = 800
	defaultSpeedMs           = 800
	defaultFeedAddress       = "localhost:8080"
	defaultFeedPath          = "/feed"
)

// Default returns the configuration used when no file exists.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads filename. A missing file yields the defaults.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var c Config
	if diags := gohcl.DecodeBody(file.Body, nil, &c); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Session == nil {
		c.Session = &SessionSettings{}
	}
	if c.Session.Variant == "" {
		c.Session.Variant = defaultVariant
	}
	if len(c.Session.Strategies) == 0 {
		c.Session.Strategies = slices.Clone(bot.DefaultStrategies)
	}
	if c.Session.ThinkMinMs == 0 {
		c.Session.ThinkMinMs = defaultThinkMinMs
	}
	if c.Session.ThinkMaxMs == 0 {
		c.Session.ThinkMaxMs = max(defaultThinkMaxMs, c.Session.ThinkMinMs)
	}
	if c.Session.TransitionDelayMs == 0 {
		c.Session.TransitionDelayMs = defaultTransitionDelayMs
	}

	if c.Playback == nil {
		c.Playback = &PlaybackSettings{}
	}
	if c.Playback.SpeedMs == 0 {
		c.Playback.SpeedMs = defaultSpeedMs
	}

	if c.Feed == nil {
		c.Feed = &FeedSettings{}
	}
	if c.Feed.Address == "" {
		c.Feed.Address = defaultFeedAddress
	}
	if c.Feed.Path == "" {
		c.Feed.Path = defaultFeedPath
	}

	for i := range c.Variants {
		v := &c.Variants[i]
		if v.MaxPlayers == 0 {
			v.MaxPlayers = 6
		}
		if v.StartingStack == 0 {
			v.StartingStack = v.BigBlind * 500
		}
	}
}

// Validate checks values and that every strategy exists.
func (c *Config) Validate() error {
	for _, v := range c.Variants {
		if err := v.Variant().Validate(); err != nil {
			return fmt.Errorf("variant %q: %w", v.Slug, err)
		}
	}
	if c.Session.Bots < 0 {
		return fmt.Errorf("session: bots must not be negative")
	}
	if c.Session.ThinkMinMs < 0 || c.Session.ThinkMaxMs < c.Session.ThinkMinMs {
		return fmt.Errorf("session: invalid think range %d..%dms", c.Session.ThinkMinMs, c.Session.ThinkMaxMs)
	}
	if c.Session.TransitionDelayMs < 0 {
		return fmt.Errorf("session: transition delay must not be negative")
	}
	for _, name := range c.Session.Strategies {
		if _, err := bot.New(name); err != nil {
			return fmt.Errorf("session: %w", err)
		}
	}
	if c.Playback.SpeedMs < 1 {
		return fmt.Errorf("playback: speed must be at least 1ms, got %d", c.Playback.SpeedMs)
	}
	return nil
}

// Variant converts the block to an engine variant.
func (v VariantConfig) Variant() engine.Variant {
	return engine.Variant{
		Slug:          v.Slug,
		SmallBlind:    v.SmallBlind,
		BigBlind:      v.BigBlind,
		Ante:          v.Ante,
		MaxPlayers:    v.MaxPlayers,
		StartingStack: v.StartingStack,
	}
}

// RegisterVariants adds configured variants to the engine registry,
// replacing built-ins with the same slug.
func (c *Config) RegisterVariants() error {
	for _, v := range c.Variants {
		if err := engine.RegisterVariant(v.Variant()); err != nil {
			return fmt.Errorf("variant %q: %w", v.Slug, err)
		}
	}
	return nil
}

// ThinkRange returns the bot thinking delay bounds.
func (s *SessionSettings) ThinkRange() (time.Duration, time.Duration) {
	return time.Duration(s.ThinkMinMs) * time.Millisecond, time.Duration(s.ThinkMaxMs) * time.Millisecond
}

// TransitionDelay returns the pause between streets.
func (s *SessionSettings) TransitionDelay() time.Duration {
	return time.Duration(s.TransitionDelayMs) * time.Millisecond
}

// Speed returns the autoplay interval.
func (p *PlaybackSettings) Speed() time.Duration {
	return time.Duration(p.SpeedMs) * time.Millisecond
}
