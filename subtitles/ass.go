package subtitles

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ristryder/ts2ass/common"
)

const (
	assEventsFormat = "Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text"
	assStyles       = `[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: normal,MS UI Gothic,37,&H00FFFFFF,&H000000FF,&H00000000,&H88000000,0,0,0,0,100,100,0,0,1,2,2,1,10,10,10,0
Style: medium,MS UI Gothic,37,&H00FFFFFF,&H000000FF,&H00000000,&H88000000,0,0,0,0,50,100,0,0,1,2,2,1,10,10,10,0
Style: small,MS UI Gothic,18,&H00FFFFFF,&H000000FF,&H00000000,&H88000000,0,0,0,0,100,100,0,0,1,2,2,1,10,10,10,0

`
)

type AssOpt func(*Ass)

func AssOptEmitPositions(emitPositions bool) AssOpt {
	return func(a *Ass) {
		a.emitPositions = emitPositions
	}
}

func AssOptResolution(width int, height int) AssOpt {
	return func(a *Ass) {
		a.height = height
		a.width = width
	}
}

func AssOptTitle(title string) AssOpt {
	return func(a *Ass) {
		a.title = title
	}
}

// Ass writes cues as an Advanced SubStation Alpha script. The header is
// written ahead of the first cue, or on Close when there are none.
type Ass struct {
	emitPositions bool
	headerWritten bool
	height        int
	title         string
	width         int
	writer        *bufio.Writer
	underlying    io.Writer
}

func NewAss(w io.Writer, opts ...AssOpt) *Ass {
	ass := &Ass{
		height:     540,
		title:      "unknown",
		width:      960,
		writer:     bufio.NewWriter(w),
		underlying: w,
	}

	for _, opt := range opts {
		opt(ass)
	}

	return ass
}

func (a *Ass) Close() error {
	if headerErr := a.writeHeader(); headerErr != nil {
		return headerErr
	}

	if flushErr := a.writer.Flush(); flushErr != nil {
		return errors.Wrap(flushErr, "failed to flush ASS output")
	}

	if closer, isCloser := a.underlying.(io.Closer); isCloser {
		return closer.Close()
	}

	return nil
}

// DialogueLine renders a cue as a Dialogue event. Lines are joined with a
// hard line break. With positions enabled every line is prefixed with its
// style reset, color and position override tags.
func (a *Ass) DialogueLine(cue common.Cue) string {
	texts := make([]string, 0, len(cue.Lines))
	for _, line := range cue.Lines {
		text := strings.ReplaceAll(line.Text, "\n", `\N`)
		if a.emitPositions && line.Position != nil {
			text = fmt.Sprintf(`{\r%s}%s{\pos(%d,%d)}%s`, line.Style, line.ColorToken, line.Position.X, line.Position.Y, text)
		}

		texts = append(texts, text)
	}

	return fmt.Sprintf("Dialogue: 0,%s,%s,%s,,0000,0000,0000,,%s",
		common.AssTimeCode(cue.Start),
		common.AssTimeCode(cue.End),
		cueStyle,
		strings.Join(texts, `\N`),
	)
}

func (a *Ass) Extension() string {
	return ".ass"
}

func (a *Ass) Name() string {
	return "Advanced Sub Station Alpha"
}

func (a *Ass) WriteCue(_ context.Context, cue common.Cue) error {
	if headerErr := a.writeHeader(); headerErr != nil {
		return headerErr
	}

	if _, writeErr := a.writer.WriteString(a.DialogueLine(cue) + "\n"); writeErr != nil {
		return errors.Wrap(writeErr, "failed to write ASS dialogue")
	}

	return nil
}

func (a *Ass) writeHeader() error {
	if a.headerWritten {
		return nil
	}

	a.headerWritten = true

	header := fmt.Sprintf(`[Script Info]
; Script generated by ts2ass
Title: Default Aegisub file
ScriptType: v4.00+
WrapStyle: 0
PlayResX: %d
PlayResY: %d
ScaledBorderAndShadow: yes
Video Aspect Ratio: 0
Video Zoom: 1
Video Position: 0
Last Style Storage: Default
Video File: %s

`, a.width, a.height, a.title)

	if _, writeErr := a.writer.WriteString(header + assStyles + "[Events]\n" + assEventsFormat + "\n"); writeErr != nil {
		return errors.Wrap(writeErr, "failed to write ASS header")
	}

	return nil
}
