package subtitles

import (
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ristryder/ts2ass/interfaces"
)

type Format string

const (
	FormatAss    Format = "ass"
	FormatSubRip Format = "srt"
)

// SinkOptions configures the sinks created by NewSink. Fields a format has no
// use for are ignored.
type SinkOptions struct {
	EmitPositions bool
	Height        int
	Title         string
	Width         int
}

func ParseFormat(value string) (Format, error) {
	switch format := Format(strings.ToLower(value)); format {
	case FormatAss, FormatSubRip:
		return format, nil
	}

	return "", errors.Newf("unsupported subtitle format %q", value)
}

// Extension is the file extension of the format, including the dot.
func (f Format) Extension() string {
	if f == FormatSubRip {
		return ".srt"
	}

	return ".ass"
}

func NewSink(format Format, w io.Writer, options SinkOptions) (interfaces.CueSink, error) {
	switch format {
	case FormatAss:
		opts := []AssOpt{AssOptEmitPositions(options.EmitPositions)}
		if options.Width > 0 && options.Height > 0 {
			opts = append(opts, AssOptResolution(options.Width, options.Height))
		}
		if options.Title != "" {
			opts = append(opts, AssOptTitle(options.Title))
		}

		return NewAss(w, opts...), nil
	case FormatSubRip:
		return NewSubRip(w), nil
	}

	return nil, errors.Newf("unsupported subtitle format %q", string(format))
}
