package mpegts

import (
	"bufio"
	"io"
	"iter"
	"log/slog"

	"github.com/cockroachdb/errors"
)

type PacketReaderOpt func(*PacketReader)

// PacketReaderOptLogger sets the logger used for resync and trailing data notices.
func PacketReaderOptLogger(logger *slog.Logger) PacketReaderOpt {
	return func(r *PacketReader) {
		r.logger = logger
	}
}

// PacketReaderOptResync skips to the next verified sync byte instead of
// failing with a FramingError.
func PacketReaderOptResync(resync bool) PacketReaderOpt {
	return func(r *PacketReader) {
		r.resync = resync
	}
}

// PacketReader frames an io.Reader into transport stream packets.
type PacketReader struct {
	logger   *slog.Logger
	position int64
	reader   *bufio.Reader
	resync   bool
	skipped  int64
}

func NewPacketReader(r io.Reader, opts ...PacketReaderOpt) *PacketReader {
	packetReader := &PacketReader{
		logger: slog.New(slog.DiscardHandler),
		reader: bufio.NewReaderSize(r, PacketSize*512),
	}

	for _, opt := range opts {
		opt(packetReader)
	}

	return packetReader
}

// Position is the number of bytes consumed so far.
func (r *PacketReader) Position() int64 {
	return r.position
}

// Skipped is the number of bytes discarded while resynchronizing.
func (r *PacketReader) Skipped() int64 {
	return r.skipped
}

//Discards bytes until a sync byte is found that is followed by another sync
//byte one packet later. The sync byte itself is left unread.
func (r *PacketReader) resynchronize() error {
	for {
		peeked, peekErr := r.reader.Peek(PacketSize + 1)
		if len(peeked) == 0 {
			return peekErr
		}

		if peeked[0] == SyncByte && (len(peeked) <= PacketSize || peeked[PacketSize] == SyncByte) {
			return nil
		}

		if _, discardErr := r.reader.Discard(1); discardErr != nil {
			return discardErr
		}

		r.position++
		r.skipped++
	}
}

// Packets yields every packet in file order. Iteration stops at end of input,
// on the first error, or when the consumer stops.
func (r *PacketReader) Packets() iter.Seq2[*Packet, error] {
	return func(yield func(*Packet, error) bool) {
		frame := make([]byte, PacketSize)

		for {
			bytesRead, readErr := io.ReadFull(r.reader, frame)
			if readErr != nil {
				if errors.Is(readErr, io.ErrUnexpectedEOF) {
					r.position += int64(bytesRead)
					r.logger.Debug("ignoring trailing partial packet", slog.Int("bytes", bytesRead))

					return
				}

				if errors.Is(readErr, io.EOF) {
					return
				}

				yield(nil, errors.Wrapf(readErr, "failed to read packet at offset %d", r.position))

				return
			}

			offset := r.position
			r.position += PacketSize

			if frame[0] != SyncByte {
				framingErr := &FramingError{Offset: offset, Value: frame[0]}
				if !r.resync {
					yield(nil, framingErr)

					return
				}

				skippedBefore := r.skipped
				if resyncErr := r.resynchronize(); resyncErr != nil {
					if !errors.Is(resyncErr, io.EOF) {
						yield(nil, errors.Wrap(resyncErr, "failed to resynchronize"))
					}

					return
				}

				r.logger.Warn("resynchronized after framing error",
					slog.Int64("offset", offset),
					slog.Int64("skipped_bytes", PacketSize+r.skipped-skippedBefore),
				)
				r.skipped += PacketSize

				continue
			}

			packet, parseErr := ParsePacket(frame)
			if parseErr != nil {
				yield(nil, errors.Wrapf(parseErr, "failed to parse packet at offset %d", offset))

				return
			}

			if !yield(packet, nil) {
				return
			}
		}
	}
}
