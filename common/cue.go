package common

import (
	"strings"
	"time"
)

// Position is a point on the caption plane, in pixels.
type Position struct {
	X int
	Y int
}

// Size is a width and height, in pixels.
type Size struct {
	Height int
	Width  int
}

// CueLine is one line of caption text with the presentation state that was
// active when the line was opened.
type CueLine struct {
	ColorToken string
	Original   string
	Position   *Position
	Style      string
	Text       string
}

// Cue is one finalized, time-bounded subtitle entry.
type Cue struct {
	End   time.Duration
	Lines []CueLine
	Start time.Duration
}

func (c Cue) Duration() time.Duration {
	return c.End - c.Start
}

func (c Cue) Text() string {
	texts := make([]string, 0, len(c.Lines))
	for _, line := range c.Lines {
		texts = append(texts, line.Text)
	}

	return strings.Join(texts, "\n")
}
