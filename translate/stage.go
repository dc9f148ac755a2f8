package translate

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/andybalholm/crlf"
	"github.com/cockroachdb/errors"
	"github.com/ristryder/ts2ass/common"
	"github.com/ristryder/ts2ass/interfaces"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/transform"
)

type StageOpt func(*Stage)

func StageOptLogger(logger *slog.Logger) StageOpt {
	return func(s *Stage) {
		s.logger = logger
	}
}

// StageOptWorkers sets how many cues are translated concurrently. Values
// below two translate inline.
func StageOptWorkers(workers int) StageOpt {
	return func(s *Stage) {
		s.workers = workers
	}
}

type pendingCue struct {
	cue  common.Cue
	done chan struct{}
}

// Stage is a cue sink that translates every line of a cue before passing it
// on. Cues reach the next sink in the order they were written, whatever the
// number of workers. A failed translation keeps the original text.
type Stage struct {
	failures   atomic.Int64
	group      *errgroup.Group
	logger     *slog.Logger
	next       interfaces.CueSink
	pending    []*pendingCue
	translated atomic.Int64
	translator interfaces.Translator
	workers    int
}

func NewStage(translator interfaces.Translator, next interfaces.CueSink, opts ...StageOpt) *Stage {
	stage := &Stage{
		logger:     slog.New(slog.DiscardHandler),
		next:       next,
		translator: translator,
		workers:    1,
	}

	for _, opt := range opts {
		opt(stage)
	}

	if stage.workers > 1 {
		stage.group = &errgroup.Group{}
		stage.group.SetLimit(stage.workers)
	}

	return stage
}

// Failures is the number of lines whose translation failed.
func (s *Stage) Failures() int64 {
	return s.failures.Load()
}

// Translated is the number of lines translated successfully.
func (s *Stage) Translated() int64 {
	return s.translated.Load()
}

func normalizeNewlines(text string) string {
	normalized, _, transformErr := transform.String(new(crlf.Normalize), text)
	if transformErr != nil {
		return text
	}

	return strings.TrimRight(normalized, "\n")
}

func (s *Stage) translate(ctx context.Context, cue *common.Cue) {
	cue.Lines = slices.Clone(cue.Lines)

	for i := range cue.Lines {
		line := &cue.Lines[i]

		source := line.Original
		if source == "" {
			source = line.Text
		}

		translated, translateErr := s.translator.Translate(ctx, source)
		if translateErr != nil {
			s.failures.Add(1)

			var failureErr *FailureError
			if !errors.As(translateErr, &failureErr) {
				failureErr = &FailureError{Cause: translateErr, Text: source}
			}

			s.logger.Warn("translation failed, keeping original text",
				slog.String("start", common.AssTimeCode(cue.Start)),
				slog.String("text", common.Preview(source, 40)),
				slog.String("error", failureErr.Cause.Error()),
			)

			line.Text = source

			continue
		}

		s.translated.Add(1)
		line.Text = normalizeNewlines(translated)
	}
}

//Hands finished cues to the next sink, stopping at the first unfinished one
//unless wait is set.
func (s *Stage) drain(ctx context.Context, wait bool) error {
	for len(s.pending) > 0 {
		head := s.pending[0]

		if wait {
			<-head.done
		} else {
			select {
			case <-head.done:
			default:
				return nil
			}
		}

		s.pending = s.pending[1:]

		if writeErr := s.next.WriteCue(ctx, head.cue); writeErr != nil {
			return writeErr
		}
	}

	return nil
}

func (s *Stage) WriteCue(ctx context.Context, cue common.Cue) error {
	if s.group == nil {
		s.translate(ctx, &cue)

		return s.next.WriteCue(ctx, cue)
	}

	pending := &pendingCue{cue: cue, done: make(chan struct{})}
	s.pending = append(s.pending, pending)

	s.group.Go(func() error {
		defer close(pending.done)

		s.translate(ctx, &pending.cue)

		return nil
	})

	return s.drain(ctx, false)
}

// Close waits for outstanding translations, flushes them in order and closes
// the next sink.
func (s *Stage) Close() error {
	var drainErr error
	if s.group != nil {
		_ = s.group.Wait()
		drainErr = s.drain(context.Background(), true)
	}

	return errors.CombineErrors(drainErr, s.next.Close())
}
