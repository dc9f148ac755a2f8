package b24

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/width"
)

type codeSet uint8

const (
	codeSetUnknown codeSet = iota
	codeSetUnknownDoubleByte
	codeSetKanji
	codeSetAlphanumeric
	codeSetHiragana
	codeSetKatakana
	codeSetMosaicA
	codeSetMosaicB
	codeSetMosaicC
	codeSetMosaicD
	codeSetProportionalAlphanumeric
	codeSetProportionalHiragana
	codeSetProportionalKatakana
	codeSetJisX0201Katakana
	codeSetJisKanjiPlane1
	codeSetJisKanjiPlane2
	codeSetAdditionalSymbols
	codeSetMacro
	codeSetDrcs0
	codeSetDrcs15 = codeSetDrcs0 + 15
)

//Final bytes of single byte graphic set designations
func singleByteCodeSet(final byte) codeSet {
	switch final {
	case 0x30:
		return codeSetHiragana
	case 0x31:
		return codeSetKatakana
	case 0x32:
		return codeSetMosaicA
	case 0x33:
		return codeSetMosaicB
	case 0x34:
		return codeSetMosaicC
	case 0x35:
		return codeSetMosaicD
	case 0x36:
		return codeSetProportionalAlphanumeric
	case 0x37:
		return codeSetProportionalHiragana
	case 0x38:
		return codeSetProportionalKatakana
	case 0x49:
		return codeSetJisX0201Katakana
	case 0x4A:
		return codeSetAlphanumeric
	}

	return codeSetUnknown
}

func doubleByteCodeSet(final byte) codeSet {
	switch final {
	case 0x39:
		return codeSetJisKanjiPlane1
	case 0x3A:
		return codeSetJisKanjiPlane2
	case 0x3B:
		return codeSetAdditionalSymbols
	case 0x42:
		return codeSetKanji
	}

	return codeSetUnknownDoubleByte
}

func drcsCodeSet(final byte) codeSet {
	switch {
	case final >= 0x40 && final <= 0x4F:
		return codeSetDrcs0 + codeSet(final-0x40)
	case final == 0x70:
		return codeSetMacro
	}

	return codeSetUnknown
}

func (c codeSet) isDrcs() bool {
	return c >= codeSetDrcs0 && c <= codeSetDrcs15
}

func (c codeSet) size() int {
	switch c {
	case codeSetUnknownDoubleByte, codeSetKanji, codeSetJisKanjiPlane1, codeSetJisKanjiPlane2,
		codeSetAdditionalSymbols, codeSetDrcs0:
		return 2
	}

	return 1
}

func hiragana(code byte) string {
	switch {
	case code >= 0x21 && code <= 0x73:
		return string(rune(0x3020 + int(code)))
	case code == 0x77:
		return "ゝ"
	case code == 0x78:
		return "ゞ"
	}

	return kanaPunctuation(code)
}

func katakana(code byte) string {
	switch {
	case code >= 0x21 && code <= 0x76:
		return string(rune(0x3080 + int(code)))
	case code == 0x77:
		return "ヽ"
	case code == 0x78:
		return "ヾ"
	}

	return kanaPunctuation(code)
}

func kanaPunctuation(code byte) string {
	switch code {
	case 0x79:
		return "ー"
	case 0x7A:
		return "。"
	case 0x7B:
		return "「"
	case 0x7C:
		return "」"
	case 0x7D:
		return "、"
	case 0x7E:
		return "・"
	}

	return ""
}

func alphanumeric(code byte, style Style) string {
	var text string

	switch code {
	case 0x5C:
		text = "¥"
	case 0x7E:
		text = "‾"
	default:
		text = string(rune(code))
	}

	if style == StyleNormal {
		return width.Widen.String(text)
	}

	return text
}

func jisX0201Katakana(code byte) string {
	if code > 0x5F {
		return ""
	}

	return string(rune(0xFF61 + int(code) - 0x21))
}

func kanji(row byte, cell byte) string {
	code := uint16(row)<<8 | uint16(cell)

	if row < 0x75 {
		decoded, decodeErr := japanese.EUCJP.NewDecoder().Bytes([]byte{row | 0x80, cell | 0x80})
		if decodeErr == nil && len(decoded) > 0 {
			if r, _ := utf8.DecodeRune(decoded); r != utf8.RuneError {
				return string(decoded)
			}
		}
	}

	if symbol, found := additionalSymbols[code]; found {
		return symbol
	}

	return UnknownGlyph
}

// glyph resolves a graphic code of the set. ok is false for codes that carry
// no text, such as mosaics and unassigned cells.
func (c codeSet) glyph(first byte, second byte, style Style) (text string, class GlyphClass, ok bool) {
	switch c {
	case codeSetKanji, codeSetJisKanjiPlane1:
		return kanji(first, second), GlyphClassKanji, true
	case codeSetJisKanjiPlane2:
		return UnknownGlyph, GlyphClassKanji, true
	case codeSetAdditionalSymbols:
		if symbol, found := additionalSymbols[uint16(first)<<8|uint16(second)]; found {
			return symbol, GlyphClassKanji, true
		}

		return UnknownGlyph, GlyphClassKanji, true
	case codeSetAlphanumeric, codeSetProportionalAlphanumeric:
		return alphanumeric(first, style), GlyphClassAlphanumeric, true
	case codeSetHiragana, codeSetProportionalHiragana:
		text = hiragana(first)
		class = GlyphClassHiragana
	case codeSetKatakana, codeSetProportionalKatakana:
		text = katakana(first)
		class = GlyphClassKatakana
	case codeSetJisX0201Katakana:
		text = jisX0201Katakana(first)
		class = GlyphClassKatakana
	default:
		if c.isDrcs() {
			return UnknownGlyph, GlyphClassDrcs, true
		}

		return "", 0, false
	}

	return text, class, text != ""
}
