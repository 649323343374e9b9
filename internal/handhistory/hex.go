package handhistory

import (
	"encoding/hex"
	"strings"

	"github.com/lox/handreplay/poker"
)

// EncodeHex encodes a history as a lowercase hex string for transport.
func EncodeHex(h *HandHistory) (string, error) {
	b, err := Encode(h)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// DecodeHex decodes a hex string produced by EncodeHex. Surrounding
// whitespace and a 0x prefix are tolerated.
func DecodeHex(s string) (*HandHistory, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, &DecodeError{Field: "hex", Reason: "not a hex string", Err: err}
	}
	return Decode(b)
}

// CardString maps a 0..51 card index to its display string, e.g. 51 -> "As".
func CardString(idx int) (string, bool) {
	c, ok := poker.CardFromIndex(idx)
	if !ok {
		return "", false
	}
	return c.String(), true
}

// CardIndex maps a display string back to its 0..51 index.
func CardIndex(s string) (int, error) {
	c, err := poker.ParseCard(s)
	if err != nil {
		return 0, err
	}
	return c.Index(), nil
}
