package ts2ass

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/ristryder/ts2ass/common"
	"github.com/ristryder/ts2ass/containers/mpegts"
)

var ErrNoCaptionStream = errors.New("no caption stream found")

type TransportStreamFileOpt func(*TransportStreamFile)

func TransportStreamFileOptLogger(logger *slog.Logger) TransportStreamFileOpt {
	return func(t *TransportStreamFile) {
		t.logger = logger
	}
}

// TransportStreamFileOptPositionedLines gives every positioned caption row its
// own cue instead of one cue per screen.
func TransportStreamFileOptPositionedLines(positionedLines bool) TransportStreamFileOpt {
	return func(t *TransportStreamFile) {
		t.positionedLines = positionedLines
	}
}

// TransportStreamFileOptResync skips damaged packets instead of stopping at
// the first bad sync byte.
func TransportStreamFileOptResync(resync bool) TransportStreamFileOpt {
	return func(t *TransportStreamFile) {
		t.resync = resync
	}
}

// TransportStreamFile is a recorded MPEG transport stream carrying ARIB
// captions. Every pass over the captions reads the file from the start.
type TransportStreamFile struct {
	FileSize     int64
	IsCompressed bool
	Path         string

	input           *common.Input
	logger          *slog.Logger
	positionedLines bool
	resync          bool
}

func (t *TransportStreamFile) Close() error {
	if t.input == nil {
		return nil
	}

	closeErr := t.input.Close()
	t.input = nil

	return closeErr
}

func NewTransportStreamFile(path string, opts ...TransportStreamFileOpt) (*TransportStreamFile, error) {
	input, inputErr := common.OpenInput(path)
	if inputErr != nil {
		return nil, errors.Wrapf(inputErr, "failed to open transport stream %s", path)
	}

	transportStreamFile := &TransportStreamFile{
		FileSize:     input.Size(),
		IsCompressed: input.IsCompressed(),
		Path:         path,
		input:        input,
		logger:       slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(transportStreamFile)
	}

	transportStreamFile.logger = transportStreamFile.logger.With(slog.String("component", "mpegts"))

	return transportStreamFile, nil
}

//Returns an input positioned at the start of the file. Compressed inputs are
//reopened since they cannot seek.
func (t *TransportStreamFile) rewind() (*common.Input, error) {
	if t.input != nil {
		if t.input.Position() == 0 {
			return t.input, nil
		}

		if rewindErr := t.input.Rewind(); rewindErr == nil {
			return t.input, nil
		}
	}

	if closeErr := t.Close(); closeErr != nil {
		return nil, errors.Wrap(closeErr, "failed to close transport stream before rereading")
	}

	input, inputErr := common.OpenInput(t.Path)
	if inputErr != nil {
		return nil, errors.Wrapf(inputErr, "failed to reopen transport stream %s", t.Path)
	}

	t.input = input

	return input, nil
}

// CaptionPID returns the first caption stream listed in the program tables.
func (t *TransportStreamFile) CaptionPID(ctx context.Context) (uint16, error) {
	streams, streamsErr := t.CaptionStreams(ctx)
	if streamsErr != nil {
		return 0, streamsErr
	}

	if len(streams) == 0 {
		return 0, ErrNoCaptionStream
	}

	return streams[0].PID, nil
}

// CaptionStreams lists the caption streams announced in the program tables.
func (t *TransportStreamFile) CaptionStreams(ctx context.Context) ([]mpegts.CaptionStream, error) {
	input, rewindErr := t.rewind()
	if rewindErr != nil {
		return nil, rewindErr
	}

	//The demuxer stops reading once the tables are known
	probeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	streams, probeErr := mpegts.ProbeCaptionStreams(probeCtx, input)
	if probeErr != nil {
		return nil, errors.Wrapf(probeErr, "failed to probe caption streams of %s", t.Path)
	}

	t.logger.Debug("probed caption streams", slog.Int("count", len(streams)))

	return streams, nil
}

func (t *TransportStreamFile) String() string {
	return fmt.Sprintf("Path: %s , Size: %d , Compressed: %v", t.Path, t.FileSize, t.IsCompressed)
}
