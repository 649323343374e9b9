package handhistory

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinylib/msgp/msgp"

	"github.com/lox/handreplay/poker"
)

func cards(s ...string) []poker.Card {
	return poker.MustParseCards(s...)
}

func hole(a, b string) [2]poker.Card {
	c := cards(a, b)
	return [2]poker.Card{c[0], c[1]}
}

func headsUpHistory() *HandHistory {
	return &HandHistory{
		Variant:        "nlhe-hu-1-2",
		Manifest:       []Seat{{Seat: 3, PlayerID: "alice"}, {Seat: 7, PlayerID: "bob"}},
		StartingStacks: []int{1000, 1000},
		HoleCards:      [][2]poker.Card{hole("As", "Ah"), hole("7c", "2d")},
		Board:          cards("Kd", "9s", "4c", "Jh", "3s"),
		Actions: []Action{
			{SeatIndex: 0, Type: PostSmallBlind, Amount: 1, Street: StreetPreflop},
			{SeatIndex: 1, Type: PostBigBlind, Amount: 2, Street: StreetPreflop},
			{SeatIndex: 0, Type: Call, Amount: 1, Street: StreetPreflop},
			{SeatIndex: 1, Type: Check, Street: StreetPreflop},
			{Type: NextStreet, Cards: cards("Kd", "9s", "4c"), Street: StreetFlop},
			{SeatIndex: 0, Type: BetOrRaise, Amount: 4, Street: StreetFlop},
			{SeatIndex: 1, Type: Fold, Street: StreetFlop},
			{SeatIndex: 0, Type: WinPot, Amount: 8, Street: StreetFlop},
			{SeatIndex: 0, Type: ShowCards, Cards: cards("Ah"), Street: StreetFlop},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		h    *HandHistory
	}{
		{"heads up with every field", headsUpHistory()},
		{"no board no actions", &HandHistory{
			Variant:        "nlhe-1-2",
			Manifest:       []Seat{{Seat: 1, PlayerID: "a"}, {Seat: 2, PlayerID: "b"}, {Seat: 5, PlayerID: "c"}},
			StartingStacks: []int{50, 100000, 1},
			HoleCards:      [][2]poker.Card{hole("2c", "3c"), hole("Td", "Jd"), hole("Qs", "Ks")},
		}},
		{"large amounts", &HandHistory{
			Variant:        "deep",
			Manifest:       []Seat{{Seat: 1, PlayerID: "x"}, {Seat: 2, PlayerID: "y"}},
			StartingStacks: []int{1 << 40, 1 << 33},
			HoleCards:      [][2]poker.Card{hole("2h", "2s"), hole("9c", "8c")},
			Board:          cards("Ac", "Ad", "Ah"),
			Actions:        []Action{{SeatIndex: 1, Type: BetOrRaise, Amount: 1 << 33}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Encode(tt.h)
			require.NoError(t, err)

			got, err := Decode(b)
			require.NoError(t, err)
			assert.Equal(t, tt.h, got)

			s, err := EncodeHex(tt.h)
			require.NoError(t, err)
			fromHex, err := DecodeHex("  0x" + strings.ToUpper(s) + "\n")
			require.NoError(t, err)
			assert.Equal(t, tt.h, fromHex)
		})
	}
}

func TestDecodeRejectsEveryTruncation(t *testing.T) {
	b, err := Encode(headsUpHistory())
	require.NoError(t, err)

	for i := range len(b) {
		h, err := Decode(b[:i])
		require.Nil(t, h, "prefix %d decoded", i)
		var derr *DecodeError
		require.True(t, errors.As(err, &derr), "prefix %d: %v", i, err)
	}
}

func TestDecodeMalformed(t *testing.T) {
	valid, err := Encode(headsUpHistory())
	require.NoError(t, err)

	// header builds the fixed prefix up to and including the hole cards.
	header := func(holeIdx ...uint8) []byte {
		b := msgp.AppendArrayHeader(nil, 7)
		b = msgp.AppendUint8(b, 1)
		b = msgp.AppendString(b, "nlhe-hu-1-2")
		b = msgp.AppendArrayHeader(b, 2)
		b = msgp.AppendArrayHeader(b, 2)
		b = msgp.AppendInt(b, 1)
		b = msgp.AppendString(b, "a")
		b = msgp.AppendArrayHeader(b, 2)
		b = msgp.AppendInt(b, 2)
		b = msgp.AppendString(b, "b")
		b = msgp.AppendArrayHeader(b, 2)
		b = msgp.AppendInt(b, 100)
		b = msgp.AppendInt(b, 100)
		b = msgp.AppendArrayHeader(b, 4)
		for _, idx := range holeIdx {
			b = msgp.AppendUint8(b, idx)
		}
		return b
	}
	withAction := func(seat int, typ uint8, street uint8) []byte {
		b := header(0, 1, 2, 3)
		b = msgp.AppendArrayHeader(b, 0)
		b = msgp.AppendArrayHeader(b, 1)
		b = msgp.AppendArrayHeader(b, 5)
		b = msgp.AppendInt(b, seat)
		b = msgp.AppendUint8(b, typ)
		b = msgp.AppendNil(b)
		b = msgp.AppendNil(b)
		return msgp.AppendUint8(b, street)
	}
	withCards := func(typ uint8, cardIdx ...uint8) []byte {
		b := header(0, 1, 2, 3)
		b = msgp.AppendArrayHeader(b, 0)
		b = msgp.AppendArrayHeader(b, 1)
		b = msgp.AppendArrayHeader(b, 5)
		b = msgp.AppendInt(b, 0)
		b = msgp.AppendUint8(b, typ)
		b = msgp.AppendNil(b)
		b = msgp.AppendArrayHeader(b, uint32(len(cardIdx)))
		for _, idx := range cardIdx {
			b = msgp.AppendUint8(b, idx)
		}
		return msgp.AppendUint8(b, 2)
	}
	noActions := func(holeIdx ...uint8) []byte {
		b := header(holeIdx...)
		b = msgp.AppendArrayHeader(b, 0)
		return msgp.AppendArrayHeader(b, 0)
	}

	// Sanity check the hand-built encoding.
	_, err = Decode(noActions(0, 1, 2, 3))
	require.NoError(t, err)
	_, err = Decode(withAction(1, uint8(Check), 1))
	require.NoError(t, err)
	flop, err := Decode(withCards(uint8(NextStreet), 10, 20, 30))
	require.NoError(t, err)
	assert.Len(t, flop.Actions[0].Cards, 3)

	tests := []struct {
		name  string
		data  []byte
		field string
	}{
		{"empty", nil, "header"},
		{"not an array", msgp.AppendString(nil, "hello"), "header"},
		{"trailing bytes", append(append([]byte{}, valid...), 0xc0), "trailer"},
		{"card index out of range", noActions(0, 1, 2, 52), "hole card"},
		{"duplicate card", noActions(0, 1, 2, 2), "cards"},
		{"unknown type tag", withAction(0, 10, 1), "action type"},
		{"seat index out of range", withAction(2, uint8(Fold), 1), "action seat"},
		{"unknown street", withAction(0, uint8(Fold), 9), "action street"},
		{"four street cards", withCards(uint8(NextStreet), 10, 20, 30, 40), "action cards"},
		{"three shown cards", withCards(uint8(ShowCards), 10, 20, 30), "action cards"},
		{"wrong version", func() []byte {
			b := append([]byte{}, valid...)
			b[1] = 2
			return b
		}(), "version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := Decode(tt.data)
			assert.Nil(t, h)
			var derr *DecodeError
			require.True(t, errors.As(err, &derr), "got %v", err)
			assert.Equal(t, tt.field, derr.Field)
		})
	}
}

func TestDecodeHexRejectsGarbage(t *testing.T) {
	_, err := DecodeHex("zz")
	var derr *DecodeError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, "hex", derr.Field)
}

func TestEncodeValidates(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(h *HandHistory)
	}{
		{"missing variant", func(h *HandHistory) { h.Variant = "" }},
		{"single player", func(h *HandHistory) {
			h.Manifest = h.Manifest[:1]
			h.StartingStacks = h.StartingStacks[:1]
			h.HoleCards = h.HoleCards[:1]
		}},
		{"seats not ascending", func(h *HandHistory) { h.Manifest[1].Seat = 1 }},
		{"stack count mismatch", func(h *HandHistory) { h.StartingStacks = []int{1000} }},
		{"board too long", func(h *HandHistory) { h.Board = append(h.Board, cards("2s")...) }},
		{"board duplicates hole card", func(h *HandHistory) { h.Board[0] = h.HoleCards[0][0] }},
		{"negative amount", func(h *HandHistory) { h.Actions[0].Amount = -1 }},
		{"bad seat index", func(h *HandHistory) { h.Actions[0].SeatIndex = 5 }},
		{"four street cards", func(h *HandHistory) { h.Actions[4].Cards = cards("Kd", "9s", "4c", "Jh") }},
		{"three shown cards", func(h *HandHistory) { h.Actions[8].Cards = cards("As", "Ah", "2c") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := headsUpHistory()
			tt.mutate(h)
			_, err := Encode(h)
			var verr *ValidationError
			assert.True(t, errors.As(err, &verr), "got %v", err)
		})
	}
}

func TestCardIndexMapping(t *testing.T) {
	s, ok := CardString(51)
	require.True(t, ok)
	assert.Equal(t, "As", s)

	s, ok = CardString(0)
	require.True(t, ok)
	assert.Equal(t, "2c", s)

	_, ok = CardString(52)
	assert.False(t, ok)

	idx, err := CardIndex("As")
	require.NoError(t, err)
	assert.Equal(t, 51, idx)

	_, err = CardIndex("Zz")
	assert.Error(t, err)
}

func TestWithoutDropsInformationalRecords(t *testing.T) {
	h := headsUpHistory()
	stripped := h.Without(PostSmallBlind, PostBigBlind, WinPot, NextStreet)
	for _, a := range stripped.Actions {
		assert.False(t, a.Type.Informational(), a.Type.String())
	}
	assert.Len(t, stripped.Actions, 5)
	assert.Len(t, h.Actions, 9, "original untouched")
}

func TestActionTypeText(t *testing.T) {
	for typ := Fold; typ < numActionTypes; typ++ {
		text, err := typ.MarshalText()
		require.NoError(t, err)
		var back ActionType
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, typ, back)
	}
	assert.Equal(t, "BET_OR_RAISE", BetOrRaise.String())
}
