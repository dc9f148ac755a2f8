package ts2ass

import (
	"context"
	"iter"
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ristryder/ts2ass/b24"
	"github.com/ristryder/ts2ass/containers/arib"
	"github.com/ristryder/ts2ass/containers/mpegts"
	"github.com/ristryder/ts2ass/interfaces"
	"github.com/ristryder/ts2ass/internal/observability"
	"github.com/ristryder/ts2ass/subtitles"
)

const progressInterval = 4096

// TimedEvent is a caption event with the stream time at which its PES packet
// completed.
type TimedEvent struct {
	Elapsed time.Duration
	Event   b24.Event
}

// CaptionStats summarizes one extraction pass.
type CaptionStats struct {
	Cues        int
	DataGroups  int
	Events      int
	Packets     int
	PesPackets  int
	SkippedData int
}

func (t *TransportStreamFile) reportProgress(progressCallback func(int64, int64), position int64) {
	if progressCallback != nil {
		progressCallback(position, t.FileSize)
	}
}

func (t *TransportStreamFile) events(ctx context.Context, pid uint16, stats *CaptionStats, progressCallback func(int64, int64)) iter.Seq2[TimedEvent, error] {
	return func(yield func(TimedEvent, error) bool) {
		input, rewindErr := t.rewind()
		if rewindErr != nil {
			yield(TimedEvent{}, rewindErr)

			return
		}

		logger := t.logger.With(slog.Int("pid", int(pid)))
		packetReader := mpegts.NewPacketReader(input,
			mpegts.PacketReaderOptLogger(logger),
			mpegts.PacketReaderOptResync(t.resync),
		)
		reassembler := mpegts.NewPesReassembler(pid)

		var clock mpegts.Clock

		for packet, packetErr := range packetReader.Packets() {
			if packetErr != nil {
				yield(TimedEvent{}, errors.Wrapf(packetErr, "failed to read %s", t.Path))

				return
			}

			stats.Packets++
			if stats.Packets%progressInterval == 0 {
				if ctxErr := ctx.Err(); ctxErr != nil {
					yield(TimedEvent{}, ctxErr)

					return
				}

				t.reportProgress(progressCallback, input.Position())
			}

			if pcr, hasPcr := packet.PCR(); hasPcr {
				clock.Observe(pcr)
			}

			pesPacket, pesErr := reassembler.Push(packet)
			if pesErr != nil {
				observability.WithError(logger, pesErr).Debug("dropping PES packet")

				continue
			}
			if pesPacket == nil {
				continue
			}

			stats.PesPackets++

			dataGroup, dataGroupErr := arib.ParseDataGroup(pesPacket.Payload)
			if dataGroupErr != nil {
				stats.SkippedData++
				observability.WithError(logger, dataGroupErr).Debug("dropping data group")

				continue
			}

			stats.DataGroups++

			for body, bodyErr := range dataGroup.StatementBodies() {
				if bodyErr != nil {
					stats.SkippedData++
					observability.WithError(logger, bodyErr).Debug("skipping rest of data group")

					break
				}

				for event := range b24.Decode(body) {
					stats.Events++

					if !yield(TimedEvent{Elapsed: clock.Elapsed(), Event: event}, nil) {
						return
					}
				}
			}
		}

		if reassembler.Pending() {
			logger.Debug("ignoring incomplete PES packet at end of input")
		}

		if skipped := packetReader.Skipped(); skipped > 0 {
			logger.Warn("skipped damaged data", slog.Int64("bytes", skipped))
		}

		t.reportProgress(progressCallback, t.FileSize)
	}
}

// Events decodes the caption events carried on pid in stream order.
func (t *TransportStreamFile) Events(ctx context.Context, pid uint16, progressCallback func(int64, int64)) iter.Seq2[TimedEvent, error] {
	return t.events(ctx, pid, &CaptionStats{}, progressCallback)
}

// Captions decodes the captions on pid and writes the resulting cues to sink.
// The sink is not closed.
func (t *TransportStreamFile) Captions(ctx context.Context, pid uint16, sink interfaces.CueSink, progressCallback func(int64, int64)) (CaptionStats, error) {
	stats := CaptionStats{}
	formatter := subtitles.NewFormatter(sink,
		subtitles.FormatterOptLogger(t.logger.With(slog.String("component", "formatter"))),
		subtitles.FormatterOptPositionedLines(t.positionedLines),
	)

	for timedEvent, eventErr := range t.events(ctx, pid, &stats, progressCallback) {
		if eventErr != nil {
			stats.Cues = formatter.CueCount()

			return stats, errors.Wrap(eventErr, "failed to read captions")
		}

		if formatErr := formatter.Format(ctx, timedEvent.Event, timedEvent.Elapsed); formatErr != nil {
			stats.Cues = formatter.CueCount()

			return stats, errors.Wrap(formatErr, "failed to format captions")
		}
	}

	stats.Cues = formatter.CueCount()

	t.logger.Info("captions extracted",
		slog.Int("pid", int(pid)),
		slog.Int("packets", stats.Packets),
		slog.Int("pes_packets", stats.PesPackets),
		slog.Int("events", stats.Events),
		slog.Int("cues", stats.Cues),
	)

	return stats, nil
}
