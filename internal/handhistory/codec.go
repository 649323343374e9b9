package handhistory

import (
	"errors"
	"fmt"

	"github.com/tinylib/msgp/msgp"

	"github.com/lox/handreplay/poker"
)

// Wire layout, one msgpack array:
//
//	[version, variant, manifest[[seat, id]...], stacks[...], hole[2n card indices],
//	 board[0..5 card indices], actions[[seatIndex, type, amount|nil, cards|nil, street]...]]
//
// Card indices are 0..51 (suit*13 + rank), see poker.Card.Index.
const (
	formatVersion = 1
	topFields     = 7
	actionFields  = 5

	MinPlayers = 2
	MaxPlayers = 10
	MaxBoard   = 5

	// A NEXT_STREET record carries the cards it dealt, three on the flop.
	// Every other record carries at most a player's two hole cards.
	maxStreetCards = 3
	maxHoleCards   = 2
)

// maxActionCards is the card limit for one record of type t.
func maxActionCards(t ActionType) int {
	if t == NextStreet {
		return maxStreetCards
	}
	return maxHoleCards
}

// Encode serializes a well-formed history.
func Encode(h *HandHistory) ([]byte, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}

	n := len(h.Manifest)
	b := make([]byte, 0, 64+n*16+len(h.Actions)*8)
	b = msgp.AppendArrayHeader(b, topFields)
	b = msgp.AppendUint8(b, formatVersion)
	b = msgp.AppendString(b, h.Variant)

	b = msgp.AppendArrayHeader(b, uint32(n))
	for _, s := range h.Manifest {
		b = msgp.AppendArrayHeader(b, 2)
		b = msgp.AppendInt(b, s.Seat)
		b = msgp.AppendString(b, s.PlayerID)
	}

	b = msgp.AppendArrayHeader(b, uint32(n))
	for _, stack := range h.StartingStacks {
		b = msgp.AppendInt(b, stack)
	}

	b = msgp.AppendArrayHeader(b, uint32(2*n))
	for _, hole := range h.HoleCards {
		b = appendCard(b, hole[0])
		b = appendCard(b, hole[1])
	}

	b = msgp.AppendArrayHeader(b, uint32(len(h.Board)))
	for _, c := range h.Board {
		b = appendCard(b, c)
	}

	b = msgp.AppendArrayHeader(b, uint32(len(h.Actions)))
	for _, a := range h.Actions {
		b = msgp.AppendArrayHeader(b, actionFields)
		b = msgp.AppendInt(b, a.SeatIndex)
		b = msgp.AppendUint8(b, uint8(a.Type))
		if a.Amount == 0 {
			b = msgp.AppendNil(b)
		} else {
			b = msgp.AppendInt(b, a.Amount)
		}
		if len(a.Cards) == 0 {
			b = msgp.AppendNil(b)
		} else {
			b = msgp.AppendArrayHeader(b, uint32(len(a.Cards)))
			for _, c := range a.Cards {
				b = appendCard(b, c)
			}
		}
		b = msgp.AppendUint8(b, uint8(a.Street))
	}
	return b, nil
}

func appendCard(b []byte, c poker.Card) []byte {
	return msgp.AppendUint8(b, uint8(c.Index()))
}

// Decode parses and validates an encoded history. On any error it returns a
// *DecodeError and no history.
func Decode(data []byte) (*HandHistory, error) {
	d := &decoder{data: data, rest: data}
	h, err := d.history()
	if err != nil {
		return nil, err
	}
	if len(d.rest) != 0 {
		return nil, d.fail("trailer", fmt.Sprintf("%d unexpected trailing bytes", len(d.rest)), nil)
	}
	if err := h.Validate(); err != nil {
		var verr *ValidationError
		field := "history"
		if errors.As(err, &verr) {
			field = verr.Field
		}
		return nil, &DecodeError{Offset: len(data), Field: field, Reason: "inconsistent content", Err: err}
	}
	return h, nil
}

type decoder struct {
	data []byte
	rest []byte
}

func (d *decoder) fail(field, reason string, err error) *DecodeError {
	return &DecodeError{Offset: len(d.data) - len(d.rest), Field: field, Reason: reason, Err: err}
}

func (d *decoder) history() (*HandHistory, error) {
	sz, err := d.arrayHeader("header")
	if err != nil {
		return nil, err
	}
	if sz != topFields {
		return nil, d.fail("header", fmt.Sprintf("expected %d fields, got %d", topFields, sz), nil)
	}
	version, err := d.readUint8("version")
	if err != nil {
		return nil, err
	}
	if version != formatVersion {
		return nil, d.fail("version", fmt.Sprintf("unsupported version %d", version), nil)
	}

	h := &HandHistory{}
	if h.Variant, err = d.readString("variant"); err != nil {
		return nil, err
	}

	n, err := d.arrayHeader("manifest")
	if err != nil {
		return nil, err
	}
	if n < MinPlayers || n > MaxPlayers {
		return nil, d.fail("manifest", fmt.Sprintf("player count %d out of range %d..%d", n, MinPlayers, MaxPlayers), nil)
	}
	h.Manifest = make([]Seat, n)
	for i := range h.Manifest {
		if err := d.expectArray("manifest entry", 2); err != nil {
			return nil, err
		}
		if h.Manifest[i].Seat, err = d.readInt("manifest seat"); err != nil {
			return nil, err
		}
		if h.Manifest[i].PlayerID, err = d.readString("manifest player"); err != nil {
			return nil, err
		}
	}

	if err := d.expectArray("stacks", n); err != nil {
		return nil, err
	}
	h.StartingStacks = make([]int, n)
	for i := range h.StartingStacks {
		if h.StartingStacks[i], err = d.readInt("stack"); err != nil {
			return nil, err
		}
	}

	if err := d.expectArray("hole cards", 2*n); err != nil {
		return nil, err
	}
	h.HoleCards = make([][2]poker.Card, n)
	for i := range h.HoleCards {
		for j := range 2 {
			if h.HoleCards[i][j], err = d.card("hole card"); err != nil {
				return nil, err
			}
		}
	}

	boardLen, err := d.arrayHeader("board")
	if err != nil {
		return nil, err
	}
	if boardLen > MaxBoard {
		return nil, d.fail("board", fmt.Sprintf("%d cards exceeds %d", boardLen, MaxBoard), nil)
	}
	if boardLen > 0 {
		h.Board = make([]poker.Card, boardLen)
		for i := range h.Board {
			if h.Board[i], err = d.card("board card"); err != nil {
				return nil, err
			}
		}
	}

	count, err := d.arrayHeader("actions")
	if err != nil {
		return nil, err
	}
	if count > 0 {
		h.Actions = make([]Action, 0, count)
	}
	for range count {
		a, err := d.action(n)
		if err != nil {
			return nil, err
		}
		h.Actions = append(h.Actions, a)
	}
	return h, nil
}

func (d *decoder) action(players int) (Action, error) {
	var a Action
	if err := d.expectArray("action", actionFields); err != nil {
		return a, err
	}
	seat, err := d.readInt("action seat")
	if err != nil {
		return a, err
	}
	if seat < 0 || seat >= players {
		return a, d.fail("action seat", fmt.Sprintf("seat index %d out of range", seat), nil)
	}
	a.SeatIndex = seat

	typ, err := d.readUint8("action type")
	if err != nil {
		return a, err
	}
	if ActionType(typ) >= numActionTypes {
		return a, d.fail("action type", fmt.Sprintf("unknown type tag %d", typ), nil)
	}
	a.Type = ActionType(typ)

	if msgp.IsNil(d.rest) {
		if err := d.skipNil("action amount"); err != nil {
			return a, err
		}
	} else if a.Amount, err = d.readInt("action amount"); err != nil {
		return a, err
	}

	if msgp.IsNil(d.rest) {
		if err := d.skipNil("action cards"); err != nil {
			return a, err
		}
	} else {
		k, err := d.arrayHeader("action cards")
		if err != nil {
			return a, err
		}
		if limit := maxActionCards(a.Type); k > limit {
			return a, d.fail("action cards", fmt.Sprintf("%d cards exceeds %d for %s", k, limit, a.Type), nil)
		}
		if k > 0 {
			a.Cards = make([]poker.Card, k)
			for i := range a.Cards {
				if a.Cards[i], err = d.card("action card"); err != nil {
					return a, err
				}
			}
		}
	}

	street, err := d.readUint8("action street")
	if err != nil {
		return a, err
	}
	if Street(street) >= numStreets {
		return a, d.fail("action street", fmt.Sprintf("unknown street tag %d", street), nil)
	}
	a.Street = Street(street)
	return a, nil
}

func (d *decoder) arrayHeader(field string) (int, error) {
	sz, rest, err := msgp.ReadArrayHeaderBytes(d.rest)
	if err != nil {
		return 0, d.fail(field, "bad array header", err)
	}
	// Every element takes at least one byte; a larger count is a lie.
	if int(sz) > len(rest) {
		return 0, d.fail(field, fmt.Sprintf("array of %d elements in %d bytes", sz, len(rest)), msgp.ErrShortBytes)
	}
	d.rest = rest
	return int(sz), nil
}

func (d *decoder) expectArray(field string, want int) error {
	sz, err := d.arrayHeader(field)
	if err != nil {
		return err
	}
	if sz != want {
		return d.fail(field, fmt.Sprintf("expected %d elements, got %d", want, sz), nil)
	}
	return nil
}

func (d *decoder) readInt(field string) (int, error) {
	v, rest, err := msgp.ReadIntBytes(d.rest)
	if err != nil {
		return 0, d.fail(field, "bad integer", err)
	}
	d.rest = rest
	return v, nil
}

func (d *decoder) readUint8(field string) (uint8, error) {
	v, rest, err := msgp.ReadUint8Bytes(d.rest)
	if err != nil {
		return 0, d.fail(field, "bad small integer", err)
	}
	d.rest = rest
	return v, nil
}

func (d *decoder) readString(field string) (string, error) {
	v, rest, err := msgp.ReadStringBytes(d.rest)
	if err != nil {
		return "", d.fail(field, "bad string", err)
	}
	d.rest = rest
	return v, nil
}

func (d *decoder) skipNil(field string) error {
	rest, err := msgp.ReadNilBytes(d.rest)
	if err != nil {
		return d.fail(field, "bad nil", err)
	}
	d.rest = rest
	return nil
}

func (d *decoder) card(field string) (poker.Card, error) {
	idx, err := d.readUint8(field)
	if err != nil {
		return 0, err
	}
	c, ok := poker.CardFromIndex(int(idx))
	if !ok {
		return 0, d.fail(field, fmt.Sprintf("card index %d out of range", idx), nil)
	}
	return c, nil
}

// Validate checks the history is internally consistent.
func (h *HandHistory) Validate() error {
	n := len(h.Manifest)
	if h.Variant == "" {
		return &ValidationError{Field: "variant", Reason: "missing"}
	}
	if n < MinPlayers || n > MaxPlayers {
		return &ValidationError{Field: "manifest", Reason: fmt.Sprintf("player count %d out of range %d..%d", n, MinPlayers, MaxPlayers)}
	}
	ids := make(map[string]bool, n)
	for i, s := range h.Manifest {
		if s.PlayerID == "" || ids[s.PlayerID] {
			return &ValidationError{Field: "manifest", Reason: fmt.Sprintf("entry %d has a missing or duplicate player id", i)}
		}
		ids[s.PlayerID] = true
		if i > 0 && s.Seat <= h.Manifest[i-1].Seat {
			return &ValidationError{Field: "manifest", Reason: "seats must be strictly ascending"}
		}
	}
	if len(h.StartingStacks) != n {
		return &ValidationError{Field: "stacks", Reason: fmt.Sprintf("have %d stacks for %d players", len(h.StartingStacks), n)}
	}
	for i, stack := range h.StartingStacks {
		if stack <= 0 {
			return &ValidationError{Field: "stacks", Reason: fmt.Sprintf("stack %d is %d", i, stack)}
		}
	}
	if len(h.HoleCards) != n {
		return &ValidationError{Field: "hole cards", Reason: fmt.Sprintf("have %d hands for %d players", len(h.HoleCards), n)}
	}
	if len(h.Board) > MaxBoard {
		return &ValidationError{Field: "board", Reason: fmt.Sprintf("%d cards exceeds %d", len(h.Board), MaxBoard)}
	}

	var seen poker.Hand
	for _, c := range append(flatten(h.HoleCards), h.Board...) {
		if !c.Valid() {
			return &ValidationError{Field: "cards", Reason: "invalid card"}
		}
		if seen.HasCard(c) {
			return &ValidationError{Field: "cards", Reason: fmt.Sprintf("%s appears twice", c)}
		}
		seen.AddCard(c)
	}

	for i, a := range h.Actions {
		switch {
		case a.SeatIndex < 0 || a.SeatIndex >= n:
			return &ValidationError{Field: "actions", Reason: fmt.Sprintf("action %d: seat index %d out of range", i, a.SeatIndex)}
		case a.Type >= numActionTypes:
			return &ValidationError{Field: "actions", Reason: fmt.Sprintf("action %d: unknown type %d", i, a.Type)}
		case a.Amount < 0:
			return &ValidationError{Field: "actions", Reason: fmt.Sprintf("action %d: negative amount", i)}
		case len(a.Cards) > maxActionCards(a.Type):
			return &ValidationError{Field: "actions", Reason: fmt.Sprintf("action %d: too many cards", i)}
		case a.Street >= numStreets:
			return &ValidationError{Field: "actions", Reason: fmt.Sprintf("action %d: unknown street", i)}
		}
		for _, c := range a.Cards {
			if !c.Valid() {
				return &ValidationError{Field: "actions", Reason: fmt.Sprintf("action %d: invalid card", i)}
			}
		}
	}
	return nil
}

func flatten(hole [][2]poker.Card) []poker.Card {
	out := make([]poker.Card, 0, 2*len(hole))
	for _, h := range hole {
		out = append(out, h[0], h[1])
	}
	return out
}
