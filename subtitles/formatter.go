package subtitles

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ristryder/ts2ass/b24"
	"github.com/ristryder/ts2ass/common"
	"github.com/ristryder/ts2ass/interfaces"
)

const cueStyle = "normal"

//Active coordinate position set, e.g. "170;389 a"
var activePositionPattern = regexp.MustCompile(`^(\d{1,4});(\d{1,4}) a$`)

type formatterLine struct {
	color    string
	position *common.Position
	style    b24.Style
	text     strings.Builder
}

func (f *formatterLine) empty() bool {
	return f.text.Len() == 0
}

type FormatterOpt func(*Formatter)

func FormatterOptCaptionArea(area ClosedCaptionArea) FormatterOpt {
	return func(f *Formatter) {
		f.area = area
	}
}

// FormatterOptPositionedLines opens a new line, and so a separate cue, at every
// position set that follows text. Without it a whole screen is one line that
// keeps the position, color and style of its first position set.
func FormatterOptPositionedLines(positionedLines bool) FormatterOpt {
	return func(f *Formatter) {
		f.positionedLines = positionedLines
	}
}

func FormatterOptLogger(logger *slog.Logger) FormatterOpt {
	return func(f *Formatter) {
		f.logger = logger
	}
}

// Formatter folds caption events into cues. Text accumulates until a clear
// screen that comes after the previous one in time, at which point every
// non-empty line becomes one cue spanning the two.
type Formatter struct {
	area            ClosedCaptionArea
	color           string
	cues            int
	elapsed         time.Duration
	lines           []*formatterLine
	logger          *slog.Logger
	positionedLines bool
	sink            interfaces.CueSink
	style           b24.Style
}

func NewFormatter(sink interfaces.CueSink, opts ...FormatterOpt) *Formatter {
	formatter := &Formatter{
		area:   NewClosedCaptionArea(),
		color:  b24.ColorWhite.AssToken(),
		lines:  []*formatterLine{{}},
		logger: slog.New(slog.DiscardHandler),
		sink:   sink,
		style:  b24.StyleNormal,
	}

	for _, opt := range opts {
		opt(formatter)
	}

	return formatter
}

// CueCount is the number of cues written so far.
func (f *Formatter) CueCount() int {
	return f.cues
}

func (f *Formatter) lastLine() *formatterLine {
	return f.lines[len(f.lines)-1]
}

//The position belongs to the next line with text, so an empty last line is
//reused instead of opening another. Without positioned lines, text already on
//the line keeps its position and the new row is appended to it.
func (f *Formatter) setPosition(position common.Position) {
	line := f.lastLine()
	if !line.empty() {
		if !f.positionedLines {
			return
		}

		line = &formatterLine{}
		f.lines = append(f.lines, line)
	}

	line.color = f.color
	line.position = &position
	line.style = f.style
}

func (f *Formatter) hasText() bool {
	for _, line := range f.lines {
		if !line.empty() {
			return true
		}
	}

	return false
}

func (f *Formatter) clearScreen(ctx context.Context, elapsed time.Duration) error {
	start := f.elapsed
	f.elapsed = elapsed

	//Text survives a clear screen that takes no time and ends up in the next cue
	if common.Centiseconds(start) == common.Centiseconds(elapsed) || !f.hasText() {
		return nil
	}

	lines := f.lines
	f.lines = []*formatterLine{{}}

	for _, line := range lines {
		if line.empty() {
			continue
		}

		text := line.text.String()
		cue := common.Cue{
			End: elapsed,
			Lines: []common.CueLine{{
				ColorToken: line.color,
				Original:   text,
				Position:   line.position,
				Style:      line.style.String(),
				Text:       text,
			}},
			Start: start,
		}

		if writeErr := f.sink.WriteCue(ctx, cue); writeErr != nil {
			return errors.Wrapf(writeErr, "failed to write cue at %s", common.AssTimeCode(start))
		}

		f.cues++
		f.logger.Debug("cue",
			slog.String("start", common.AssTimeCode(start)),
			slog.String("end", common.AssTimeCode(elapsed)),
			slog.String("text", common.Preview(text, 40)),
		)
	}

	return nil
}

// Format applies one event observed at the given elapsed time. Only sink
// failures are returned; odd input is absorbed.
func (f *Formatter) Format(ctx context.Context, event b24.Event, elapsed time.Duration) error {
	switch e := event.(type) {
	case b24.Character:
		//Small text is furigana
		if f.style != b24.StyleSmall {
			f.lastLine().text.WriteString(e.Text)
		}
	case b24.Space:
		f.lastLine().text.WriteByte(' ')
	case b24.StyleChange:
		f.style = e.Style
	case b24.ColorChange:
		f.color = e.Color.AssToken()
	case b24.PositionSet:
		f.setPosition(f.area.ScreenPosition(e.Row, e.Col))
	case b24.ControlSequence:
		matches := activePositionPattern.FindStringSubmatch(e.Raw)
		if matches == nil {
			return nil
		}

		x, _ := strconv.Atoi(matches[1])
		y, _ := strconv.Atoi(matches[2])
		f.setPosition(common.Position{X: x, Y: y})
	case b24.ClearScreen:
		return f.clearScreen(ctx, elapsed)
	}

	return nil
}
