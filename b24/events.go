package b24

import "fmt"

// UnknownGlyph stands in for glyphs that cannot be mapped to Unicode, such as
// downloaded DRCS patterns.
const UnknownGlyph = "\uFFFD"

type GlyphClass uint8

const (
	GlyphClassKanji GlyphClass = iota
	GlyphClassHiragana
	GlyphClassKatakana
	GlyphClassAlphanumeric
	GlyphClassDrcs
)

func (g GlyphClass) String() string {
	switch g {
	case GlyphClassKanji:
		return "kanji"
	case GlyphClassHiragana:
		return "hiragana"
	case GlyphClassKatakana:
		return "katakana"
	case GlyphClassAlphanumeric:
		return "alphanumeric"
	case GlyphClassDrcs:
		return "drcs"
	}

	return fmt.Sprintf("unknown (%d)", uint8(g))
}

type Style uint8

const (
	StyleNormal Style = iota
	StyleMedium
	StyleSmall
)

func (s Style) String() string {
	switch s {
	case StyleNormal:
		return "normal"
	case StyleMedium:
		return "medium"
	case StyleSmall:
		return "small"
	}

	return fmt.Sprintf("unknown (%d)", uint8(s))
}

type Color uint8

const (
	ColorBlack Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
)

// AssToken is the ASS override tag selecting the color. ASS colors are BGR.
func (c Color) AssToken() string {
	switch c {
	case ColorBlack:
		return `{\c&H000000&}`
	case ColorRed:
		return `{\c&H0000ff&}`
	case ColorGreen:
		return `{\c&H00ff00&}`
	case ColorYellow:
		return `{\c&H00ffff&}`
	case ColorBlue:
		return `{\c&Hff0000&}`
	case ColorMagenta:
		return `{\c&Hff00ff&}`
	case ColorCyan:
		return `{\c&Hffff00&}`
	case ColorWhite:
		return `{\c&Hffffff&}`
	}

	return ""
}

func (c Color) String() string {
	switch c {
	case ColorBlack:
		return "black"
	case ColorRed:
		return "red"
	case ColorGreen:
		return "green"
	case ColorYellow:
		return "yellow"
	case ColorBlue:
		return "blue"
	case ColorMagenta:
		return "magenta"
	case ColorCyan:
		return "cyan"
	case ColorWhite:
		return "white"
	}

	return fmt.Sprintf("unknown (%d)", uint8(c))
}

// Event is one decoded caption element. The concrete types are Character,
// StyleChange, ColorChange, PositionSet, ClearScreen, Space and
// ControlSequence.
type Event interface {
	fmt.Stringer
	isEvent()
}

// Character is a run of consecutive glyphs of the same class.
type Character struct {
	Class GlyphClass
	//Drcs is the DRCS slot when Class is GlyphClassDrcs
	Drcs uint8
	Text string
}

type StyleChange struct {
	Style Style
}

type ColorChange struct {
	Color Color
}

// PositionSet moves the active position to a character cell.
type PositionSet struct {
	Col int
	Row int
}

type ClearScreen struct{}

type Space struct{}

// ControlSequence is a CSI sequence. Raw holds the parameters, intermediate
// and final byte, for example "170;389 a".
type ControlSequence struct {
	Final byte
	Raw   string
}

func (Character) isEvent()       {}
func (StyleChange) isEvent()     {}
func (ColorChange) isEvent()     {}
func (PositionSet) isEvent()     {}
func (ClearScreen) isEvent()     {}
func (Space) isEvent()           {}
func (ControlSequence) isEvent() {}

func (c Character) String() string {
	if c.Class == GlyphClassDrcs {
		return fmt.Sprintf("drcs-%d(%q)", c.Drcs, c.Text)
	}

	return fmt.Sprintf("%s(%q)", c.Class, c.Text)
}

func (s StyleChange) String() string {
	return "size(" + s.Style.String() + ")"
}

func (c ColorChange) String() string {
	return "color(" + c.Color.String() + ")"
}

func (p PositionSet) String() string {
	return fmt.Sprintf("position(%d,%d)", p.Row, p.Col)
}

func (ClearScreen) String() string {
	return "clear-screen"
}

func (Space) String() string {
	return "space"
}

func (c ControlSequence) String() string {
	return fmt.Sprintf("csi(%q)", c.Raw)
}
