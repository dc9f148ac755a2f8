package subtitles

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ristryder/ts2ass/common"
)

const defaultSeparator string = " --> "

// SubRip writes cues as numbered SubRip entries. Position and color metadata
// have no SubRip form and are dropped.
type SubRip struct {
	index      int
	underlying io.Writer
	writer     *bufio.Writer
}

func NewSubRip(w io.Writer) *SubRip {
	return &SubRip{underlying: w, writer: bufio.NewWriter(w)}
}

func (s *SubRip) Close() error {
	if flushErr := s.writer.Flush(); flushErr != nil {
		return errors.Wrap(flushErr, "failed to flush SubRip output")
	}

	if closer, isCloser := s.underlying.(io.Closer); isCloser {
		return closer.Close()
	}

	return nil
}

func (s *SubRip) Extension() string {
	return ".srt"
}

func (s *SubRip) Name() string {
	return "SubRip"
}

// ToText renders a single entry with the given sequence number.
func (s *SubRip) ToText(index int, cue common.Cue) string {
	var builder strings.Builder

	builder.WriteString(strconv.Itoa(index))
	builder.WriteString("\n")
	builder.WriteString(common.SubRipTimeCode(cue.Start))
	builder.WriteString(defaultSeparator)
	builder.WriteString(common.SubRipTimeCode(cue.End))
	builder.WriteString("\n")
	builder.WriteString(strings.TrimSpace(cue.Text()))
	builder.WriteString("\n\n")

	return builder.String()
}

func (s *SubRip) WriteCue(_ context.Context, cue common.Cue) error {
	s.index++

	if _, writeErr := s.writer.WriteString(s.ToText(s.index, cue)); writeErr != nil {
		return errors.Wrapf(writeErr, "failed to write SubRip entry %d", s.index)
	}

	return nil
}
