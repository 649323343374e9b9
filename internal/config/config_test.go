package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/handreplay/internal/engine"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "handreplay.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestMissingFileGivesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, "nlhe-1-2", c.Session.Variant)
	assert.Equal(t, []string{"calling", "aggressive", "random"}, c.Session.Strategies)
	lo, hi := c.Session.ThinkRange()
	assert.Equal(t, time.Second, lo)
	assert.Equal(t, 2*time.Second, hi)
	assert.Equal(t, 800*time.Millisecond, c.Session.TransitionDelay())
	assert.Equal(t, 800*time.Millisecond, c.Playback.Speed())
	assert.Equal(t, "localhost:8080", c.Feed.Address)
	assert.Equal(t, "/feed", c.Feed.Path)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
variant "cfg-test-2-4" {
  small_blind = 2
  big_blind   = 4
  ante        = 1
}

session {
  variant             = "cfg-test-2-4"
  bots                = 3
  strategies          = ["tight", "calling"]
  think_min_ms        = 10
  think_max_ms        = 20
  transition_delay_ms = 5
}

playback {
  speed_ms = 250
}
`)
	c, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	require.Len(t, c.Variants, 1)
	v := c.Variants[0].Variant()
	assert.Equal(t, engine.Variant{Slug: "cfg-test-2-4", SmallBlind: 2, BigBlind: 4, Ante: 1, MaxPlayers: 6, StartingStack: 2000}, v)

	assert.Equal(t, 3, c.Session.Bots)
	assert.Equal(t, []string{"tight", "calling"}, c.Session.Strategies)
	lo, hi := c.Session.ThinkRange()
	assert.Equal(t, 10*time.Millisecond, lo)
	assert.Equal(t, 20*time.Millisecond, hi)
	assert.Equal(t, 250*time.Millisecond, c.Playback.Speed())

	require.NoError(t, c.RegisterVariants())
	got, err := engine.LookupVariant("cfg-test-2-4")
	require.NoError(t, err)
	assert.Equal(t, v, got)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(writeConfig(t, `session {`))
	assert.ErrorContains(t, err, "failed to parse HCL file")

	_, err = Load(writeConfig(t, `session { bots = "many" }`))
	assert.ErrorContains(t, err, "failed to decode HCL")

	_, err = Load(writeConfig(t, `variant "x" { small_blind = 1 }`))
	assert.ErrorContains(t, err, "failed to decode HCL")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown strategy", func(c *Config) { c.Session.Strategies = []string{"psychic"} }, "unknown bot strategy"},
		{"think range", func(c *Config) { c.Session.ThinkMaxMs = 5 }, "invalid think range"},
		{"negative bots", func(c *Config) { c.Session.Bots = -1 }, "bots must not be negative"},
		{"speed", func(c *Config) { c.Playback.SpeedMs = 0 }, "speed must be at least 1ms"},
		{"bad blinds", func(c *Config) {
			c.Variants = []VariantConfig{{Slug: "bad", SmallBlind: 4, BigBlind: 2, MaxPlayers: 6, StartingStack: 100}}
		}, "blinds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			assert.ErrorContains(t, c.Validate(), tt.want)
		})
	}
}
