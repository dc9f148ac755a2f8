package mpegts

import (
	"context"
	"io"
	"slices"

	"github.com/asticode/go-astits"
	"github.com/cockroachdb/errors"
)

const streamTypePrivateData = 0x06

// CaptionStream is a caption elementary stream announced in a PMT.
type CaptionStream struct {
	ComponentTag  uint8
	PID           uint16
	ProgramNumber uint16
}

// IsCaptionComponentTag reports whether an ARIB component tag identifies a
// caption stream: 0x30-0x37 for full-segment, 0x87 for one-segment.
func IsCaptionComponentTag(tag uint8) bool {
	return (tag >= 0x30 && tag <= 0x37) || tag == 0x87
}

func captionStreams(pmt *astits.PMTData) []CaptionStream {
	streams := make([]CaptionStream, 0, 1)

	for _, elementaryStream := range pmt.ElementaryStreams {
		if elementaryStream.StreamType != streamTypePrivateData {
			continue
		}

		for _, descriptor := range elementaryStream.ElementaryStreamDescriptors {
			if descriptor.Tag != astits.DescriptorTagStreamIdentifier || descriptor.StreamIdentifier == nil {
				continue
			}

			if IsCaptionComponentTag(descriptor.StreamIdentifier.ComponentTag) {
				streams = append(streams, CaptionStream{
					ComponentTag:  descriptor.StreamIdentifier.ComponentTag,
					PID:           elementaryStream.ElementaryPID,
					ProgramNumber: pmt.ProgramNumber,
				})
			}
		}
	}

	return streams
}

// ProbeCaptionStreams scans the program tables at the start of a stream and
// returns every caption stream they list, ordered by program and PID. The scan
// stops once every program in the PAT has had its PMT parsed.
func ProbeCaptionStreams(ctx context.Context, r io.Reader) ([]CaptionStream, error) {
	demuxer := astits.NewDemuxer(ctx, r, astits.DemuxerOptPacketSize(PacketSize))

	var (
		programs []uint16
		seen     = make(map[uint16]bool)
		streams  []CaptionStream
	)

	for {
		data, dataErr := demuxer.NextData()
		if dataErr != nil {
			if errors.Is(dataErr, astits.ErrNoMorePackets) {
				break
			}

			return nil, errors.Wrap(dataErr, "failed to demux program tables")
		}

		if data.PAT != nil && programs == nil {
			for _, program := range data.PAT.Programs {
				//Program 0 points at the network information table
				if program.ProgramNumber != 0 {
					programs = append(programs, program.ProgramNumber)
				}
			}
		}

		if data.PMT != nil && !seen[data.PMT.ProgramNumber] {
			seen[data.PMT.ProgramNumber] = true
			streams = append(streams, captionStreams(data.PMT)...)
		}

		if programs != nil && !slices.ContainsFunc(programs, func(program uint16) bool { return !seen[program] }) {
			break
		}
	}

	slices.SortStableFunc(streams, func(a, b CaptionStream) int {
		if a.ProgramNumber != b.ProgramNumber {
			return int(a.ProgramNumber) - int(b.ProgramNumber)
		}

		return int(a.PID) - int(b.PID)
	})

	return streams, nil
}
