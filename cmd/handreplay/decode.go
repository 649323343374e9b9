package main

import (
	"encoding/json"
	"os"

	"github.com/lox/handreplay/internal/handhistory"
)

// DecodeCmd prints a hand history as JSON.
type DecodeCmd struct {
	Hex      string `arg:"" optional:"" help:"Hex hand history, @file, or - for stdin"`
	Validate bool   `help:"Also check stacks, cards, and seat indexes"`
}

func (c *DecodeCmd) Run(g *Globals) error {
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
	if c.Validate {
		if err := h.Validate(); err != nil {
			return err
		}
	}
	logger.Debug().Int("players", len(h.Manifest)).Int("actions", len(h.Actions)).Msg("Decoded hand")

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(h)
}
