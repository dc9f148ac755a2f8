package subtitles

import "github.com/ristryder/ts2ass/common"

// ClosedCaptionArea is the caption plane of a 960x540 display in pixels.
type ClosedCaptionArea struct {
	CharacterSize    common.Size
	CharacterSpacing int
	Dimensions       common.Size
	LineSpacing      int
	UpperLeft        common.Position
}

func NewClosedCaptionArea() ClosedCaptionArea {
	return ClosedCaptionArea{
		CharacterSize:    common.Size{Height: 36, Width: 36},
		CharacterSpacing: 4,
		Dimensions:       common.Size{Height: 480, Width: 620},
		LineSpacing:      24,
		UpperLeft:        common.Position{X: 170, Y: 30},
	}
}

// ScreenPosition converts a character cell to the pixel position of its
// upper left corner.
func (c ClosedCaptionArea) ScreenPosition(row int, col int) common.Position {
	return common.Position{
		X: c.UpperLeft.X + col*(c.CharacterSize.Width+c.CharacterSpacing),
		Y: c.UpperLeft.Y + row*(c.CharacterSize.Height+c.LineSpacing),
	}
}
