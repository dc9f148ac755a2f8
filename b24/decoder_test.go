package b24

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeKanjiSet(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		body     []byte
		expected []Event
	}{
		{
			name:     "katakana row",
			body:     []byte{0x25, 0x34, 0x25, 0x43, 0x25, 0x49},
			expected: []Event{Character{Class: GlyphClassKanji, Text: "ゴッド"}},
		},
		{
			name:     "kanji",
			body:     []byte{0x46, 0x7C, 0x4B, 0x5C},
			expected: []Event{Character{Class: GlyphClassKanji, Text: "日本"}},
		},
		{
			name:     "additional symbol",
			body:     []byte{0x7A, 0x50},
			expected: []Event{Character{Class: GlyphClassKanji, Text: "【HV】"}},
		},
		{
			name:     "unassigned cell",
			body:     []byte{0x74, 0x7E},
			expected: []Event{Character{Class: GlyphClassKanji, Text: UnknownGlyph}},
		},
		{
			name:     "truncated",
			body:     []byte{0x25},
			expected: nil,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, slices.Collect(Decode(testCase.body)))
		})
	}
}

func TestDecodeDefaultRightSetIsHiragana(t *testing.T) {
	t.Parallel()

	events := slices.Collect(Decode([]byte{0xA2, 0xA4, 0xF9, 0xFC}))
	assert.Equal(t, []Event{Character{Class: GlyphClassHiragana, Text: "あいー」"}}, events)
}

func TestDecodeRunsSplitOnClassChange(t *testing.T) {
	t.Parallel()

	events := slices.Collect(Decode([]byte{0x25, 0x34, 0xA2, 0xA4, 0x25, 0x43}))
	assert.Equal(t, []Event{
		Character{Class: GlyphClassKanji, Text: "ゴ"},
		Character{Class: GlyphClassHiragana, Text: "あい"},
		Character{Class: GlyphClassKanji, Text: "ッ"},
	}, events)
}

func TestDecodeDesignations(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		body     []byte
		expected []Event
	}{
		{
			name:     "katakana into G1",
			body:     []byte{0x1B, 0x29, 0x31, 0x0E, 0x21, 0x7C},
			expected: []Event{Character{Class: GlyphClassKatakana, Text: "ァ」"}},
		},
		{
			name:     "JIS X 0201 katakana",
			body:     []byte{0x1B, 0x28, 0x49, 0x31},
			expected: []Event{Character{Class: GlyphClassKatakana, Text: "ｱ"}},
		},
		{
			name:     "alphanumeric into GR",
			body:     []byte{0x1B, 0x7E, 0xC1, 0xE2},
			expected: []Event{Character{Class: GlyphClassAlphanumeric, Text: "Ａｂ"}},
		},
		{
			name:     "locking shift back to G0",
			body:     []byte{0x0E, 0x41, 0x0F, 0x25, 0x34},
			expected: []Event{Character{Class: GlyphClassAlphanumeric, Text: "Ａ"}, Character{Class: GlyphClassKanji, Text: "ゴ"}},
		},
		{
			name:     "mosaic is skipped",
			body:     []byte{0x1B, 0x28, 0x32, 0x21, 0x22, 0xA2},
			expected: []Event{Character{Class: GlyphClassHiragana, Text: "あ"}},
		},
		{
			name:     "single shift",
			body:     []byte{0x19, 0x22, 0x25, 0x34},
			expected: []Event{Character{Class: GlyphClassHiragana, Text: "あ"}, Character{Class: GlyphClassKanji, Text: "ゴ"}},
		},
		{
			name:     "truncated escape",
			body:     []byte{0x1B, 0x24},
			expected: nil,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, slices.Collect(Decode(testCase.body)))
		})
	}
}

func TestDecodeAlphanumericFollowsSize(t *testing.T) {
	t.Parallel()

	events := slices.Collect(Decode([]byte{0x0E, 0x89, 0x41, 0x8A, 0x41}))
	assert.Equal(t, []Event{
		StyleChange{Style: StyleMedium},
		Character{Class: GlyphClassAlphanumeric, Text: "A"},
		StyleChange{Style: StyleNormal},
		Character{Class: GlyphClassAlphanumeric, Text: "Ａ"},
	}, events)
}

func TestDecodeDrcs(t *testing.T) {
	t.Parallel()

	events := slices.Collect(Decode([]byte{0x1B, 0x28, 0x20, 0x41, 0x21, 0x22, 0x1B, 0x24, 0x28, 0x20, 0x40, 0x21, 0x21}))
	assert.Equal(t, []Event{
		Character{Class: GlyphClassDrcs, Drcs: 1, Text: UnknownGlyph + UnknownGlyph},
		Character{Class: GlyphClassDrcs, Drcs: 0, Text: UnknownGlyph},
	}, events)
}

func TestDecodeDefaultMacro(t *testing.T) {
	t.Parallel()

	//Invoke G3 (the macro set) into GL and run macro 0x6E
	events := slices.Collect(Decode([]byte{0x1B, 0x6F, 0x6E, 0x21, 0xC1}))
	assert.Equal(t, []Event{
		Character{Class: GlyphClassKatakana, Text: "ァ"},
		Character{Class: GlyphClassAlphanumeric, Text: "Ａ"},
	}, events)
}

func TestDecodeControlCodes(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		body     []byte
		expected []Event
	}{
		{name: "clear screen", body: []byte{0x0C}, expected: []Event{ClearScreen{}}},
		{name: "space", body: []byte{0xA2, 0x20, 0xA4}, expected: []Event{
			Character{Class: GlyphClassHiragana, Text: "あ"},
			Space{},
			Character{Class: GlyphClassHiragana, Text: "い"},
		}},
		{name: "active position set", body: []byte{0x1C, 0x41, 0x42}, expected: []Event{PositionSet{Col: 2, Row: 1}}},
		{name: "small size", body: []byte{0x88}, expected: []Event{StyleChange{Style: StyleSmall}}},
		{name: "colors", body: []byte{0x81, 0x87}, expected: []Event{ColorChange{Color: ColorRed}, ColorChange{Color: ColorWhite}}},
		{name: "control sequence", body: []byte{0x9B, '1', '7', '0', ';', '3', '8', '9', ' ', 'a'}, expected: []Event{
			ControlSequence{Final: 'a', Raw: "170;389 a"},
		}},
		{name: "unterminated control sequence", body: []byte{0x9B, '1', '7'}, expected: nil},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, slices.Collect(Decode(testCase.body)))
		})
	}
}

func TestDecodeSkipsUnknownAndParameterizedCodes(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		body []byte
	}{
		{name: "unassigned bytes", body: []byte{0x00, 0x07, 0x0D, 0x7F, 0xA0, 0xFF, 0x8C, 0x9F, 0xA2}},
		{name: "PAPF", body: []byte{0x16, 0x41, 0xA2}},
		{name: "SZX", body: []byte{0x8B, 0x60, 0xA2}},
		{name: "COL", body: []byte{0x90, 0x48, 0xA2}},
		{name: "COL with palette", body: []byte{0x90, 0x20, 0x41, 0xA2}},
		{name: "FLC", body: []byte{0x91, 0x40, 0xA2}},
		{name: "CDC with parameter", body: []byte{0x92, 0x20, 0x41, 0xA2}},
		{name: "POL", body: []byte{0x93, 0x40, 0xA2}},
		{name: "WMM", body: []byte{0x94, 0x40, 0xA2}},
		{name: "MACRO", body: []byte{0x95, 0x40, 0x41, 0x95, 0x4F, 0xA2}},
		{name: "HLC", body: []byte{0x97, 0x40, 0xA2}},
		{name: "RPC", body: []byte{0x98, 0x41, 0xA2}},
		{name: "SPL and STL", body: []byte{0x99, 0x9A, 0xA2}},
		{name: "TIME wait", body: []byte{0x9D, 0x20, 0x45, 0xA2}},
		{name: "TIME mode", body: []byte{0x9D, 0x29, 0x31, 0x32, 0x40, 0xA2}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t,
				[]Event{Character{Class: GlyphClassHiragana, Text: "あ"}},
				slices.Collect(Decode(testCase.body)),
			)
		})
	}
}

func TestDecodeResetsStatePerBody(t *testing.T) {
	t.Parallel()

	first := slices.Collect(Decode([]byte{0x1B, 0x28, 0x4A, 0x41}))
	second := slices.Collect(Decode([]byte{0x25, 0x34}))

	assert.Equal(t, []Event{Character{Class: GlyphClassAlphanumeric, Text: "Ａ"}}, first)
	assert.Equal(t, []Event{Character{Class: GlyphClassKanji, Text: "ゴ"}}, second)
}

func TestDecodeStopsEarly(t *testing.T) {
	t.Parallel()

	var events []Event
	for event := range Decode([]byte{0x0C, 0x0C, 0x0C}) {
		events = append(events, event)

		break
	}

	require.Len(t, events, 1)
	assert.Equal(t, ClearScreen{}, events[0])
}

func TestColorAssToken(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `{\c&H0000ff&}`, ColorRed.AssToken())
	assert.Equal(t, `{\c&Hffffff&}`, ColorWhite.AssToken())
	assert.Equal(t, "", Color(99).AssToken())
}

func TestEventStrings(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `kanji("ゴ")`, Character{Class: GlyphClassKanji, Text: "ゴ"}.String())
	assert.Equal(t, `drcs-3("x")`, Character{Class: GlyphClassDrcs, Drcs: 3, Text: "x"}.String())
	assert.Equal(t, "position(1,2)", PositionSet{Col: 2, Row: 1}.String())
	assert.Equal(t, "size(small)", StyleChange{Style: StyleSmall}.String())
}
