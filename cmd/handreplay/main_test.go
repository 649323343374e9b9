package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/handreplay/internal/config"
	"github.com/lox/handreplay/internal/handhistory"
	"github.com/lox/handreplay/internal/replay"
)

func TestReadHex(t *testing.T) {
	got, err := readHex("abcd")
	require.NoError(t, err)
	assert.Equal(t, "abcd", got)

	path := filepath.Join(t.TempDir(), "hand.hex")
	require.NoError(t, os.WriteFile(path, []byte("  0xbeef\n"), 0o644))
	got, err = readHex("@" + path)
	require.NoError(t, err)
	assert.Equal(t, "0xbeef", got)

	_, err = readHex("@" + filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestTableOptions(t *testing.T) {
	cfg := config.Default()
	tbl := table{variant: "nlhe-1-2", settings: cfg.Session, logger: zerolog.Nop()}

	opts := tbl.options(3, 99)
	assert.Equal(t, 3, opts.HandNumber)
	assert.Equal(t, int64(99), opts.Seed)
	assert.Equal(t, cfg.Session.Strategies, opts.Strategies)
	assert.Equal(t, time.Second, opts.ThinkMin)
	assert.Equal(t, 2*time.Second, opts.ThinkMax)
	assert.Equal(t, 800*time.Millisecond, opts.TransitionDelay)

	tbl.fast = true
	tbl.bots = 2
	tbl.strategies = []string{"tight"}
	opts = tbl.options(1, 1)
	assert.Equal(t, time.Millisecond, opts.ThinkMax)
	assert.Equal(t, 2, opts.Bots)
	assert.Equal(t, []string{"tight"}, opts.Strategies)
}

func TestSimulatedHandReplays(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tbl := table{variant: "nlhe-1-2", fast: true, settings: config.Default().Session, logger: zerolog.Nop()}
	s, err := tbl.play(ctx, 1, 12345, nil)
	require.NoError(t, err)

	hex, err := handhistory.EncodeHex(s.History())
	require.NoError(t, err)
	h, err := handhistory.DecodeHex(hex)
	require.NoError(t, err)

	res := replay.GenerateFromHistory(h, nil, "")
	require.NoError(t, res.Err)
	last, ok := res.Last()
	require.True(t, ok)
	assert.Equal(t, "complete", last.State.Phase)
	assert.Equal(t, 0, last.State.Pot)
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Equal(t, "", firstNonEmpty("", ""))
}
