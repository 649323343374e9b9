package handhistory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hand.hex")
	h := headsUpHistory()

	require.NoError(t, WriteFile(path, h))
	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, h, got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestWriteFileRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.hex")
	h := headsUpHistory()
	h.StartingStacks = h.StartingStacks[:1]

	assert.Error(t, WriteFile(path, h))
	_, err := os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadFileErrors(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.hex"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "junk.hex")
	require.NoError(t, os.WriteFile(path, []byte("zz"), 0o644))
	_, err = ReadFile(path)
	var de *DecodeError
	assert.ErrorAs(t, err, &de)
}
