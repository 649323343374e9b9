package handhistory

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFile stores h as a hex line. The file is written to a temporary name
// and renamed into place, so readers never see a partial history.
func WriteFile(filename string, h *HandHistory) error {
	s, err := EncodeHex(h)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(filename), filepath.Base(filename)+".tmp.*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmp != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.WriteString(s + "\n"); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	tmp = nil

	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, filename); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// ReadFile loads a history written by WriteFile.
func ReadFile(filename string) (*HandHistory, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return DecodeHex(string(data))
}
