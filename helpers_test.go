package ts2ass

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ristryder/ts2ass/containers/mpegts"
	"github.com/stretchr/testify/require"
)

const (
	testCaptionPid = 0x0130
	testPcrPid     = 0x01FF
	testPmtPid     = 0x0100
)

func adaptationFrame(pid uint16, counter uint8, pcrBase int64, payload []byte) []byte {
	frame := make([]byte, mpegts.PacketSize)
	frame[0] = mpegts.SyncByte
	frame[1] = byte(pid>>8) & 0x1F
	frame[2] = byte(pid)
	frame[3] = 0x20 | counter&0x0F

	adaptationLength := mpegts.PacketSize - 5 - len(payload)
	frame[4] = byte(adaptationLength)

	stuffingStart := 6
	if pcrBase >= 0 {
		frame[5] = 0x10
		copy(frame[6:12], []byte{
			byte(pcrBase >> 25),
			byte(pcrBase >> 17),
			byte(pcrBase >> 9),
			byte(pcrBase >> 1),
			byte(pcrBase&0x01)<<7 | 0x7E,
			0x00,
		})
		stuffingStart = 12
	}

	for i := stuffingStart; i < 5+adaptationLength; i++ {
		frame[i] = 0xFF
	}

	if len(payload) > 0 {
		frame[3] |= 0x10
		copy(frame[5+adaptationLength:], payload)
	}

	return frame
}

func pcrFrame(pcrBase int64) []byte {
	return adaptationFrame(testPcrPid, 0, pcrBase, nil)
}

//Wraps a statement body in a data unit, caption statement data, a data group
//and a PES packet small enough to fit one frame.
func captionFrame(counter uint8, groupID uint8, body []byte) []byte {
	unit := append([]byte{0x1F, 0x20, 0x00, 0x00, byte(len(body))}, body...)
	statement := append([]byte{0x3F, 0x00, 0x00, byte(len(unit))}, unit...)

	group := []byte{0x80, 0xFF, 0xF0, groupID<<2 | 0x01, 0x00, 0x00, 0x00, byte(len(statement))}
	group = append(group, statement...)
	group = append(group, 0x00, 0x00)

	length := 3 + len(group)
	pes := []byte{0x00, 0x00, 0x01, 0xBD, byte(length >> 8), byte(length), 0x80, 0x00, 0x00}
	pes = append(pes, group...)

	frame := adaptationFrame(testCaptionPid, counter, -1, pes)
	frame[1] |= 0x40

	return frame
}

func crc32Mpeg2(data []byte) uint32 {
	crc := uint32(0xFFFFFFFF)
	for _, b := range data {
		crc ^= uint32(b) << 24
		for range 8 {
			if crc&0x80000000 != 0 {
				crc = crc<<1 ^ 0x04C11DB7
			} else {
				crc <<= 1
			}
		}
	}

	return crc
}

func sectionFrame(pid uint16, section []byte) []byte {
	crc := crc32Mpeg2(section)
	section = append(section, byte(crc>>24), byte(crc>>16), byte(crc>>8), byte(crc))

	frame := make([]byte, mpegts.PacketSize)
	for i := range frame {
		frame[i] = 0xFF
	}

	frame[0] = mpegts.SyncByte
	frame[1] = 0x40 | byte(pid>>8)&0x1F
	frame[2] = byte(pid)
	frame[3] = 0x10
	frame[4] = 0x00
	copy(frame[5:], section)

	return frame
}

func patFrame() []byte {
	sectionLength := 5 + 4 + 4

	return sectionFrame(0x0000, []byte{
		0x00, 0xB0, byte(sectionLength),
		0x00, 0x01, 0xC1, 0x00, 0x00,
		0x00, 0x01, 0xE0 | byte(testPmtPid>>8), byte(testPmtPid&0xFF),
	})
}

func pmtFrame() []byte {
	elementary := []byte{
		0x06, 0xE0 | byte(testCaptionPid>>8), byte(testCaptionPid & 0xFF), 0xF0, 0x03,
		0x52, 0x01, 0x30,
	}
	sectionLength := 9 + len(elementary) + 4
	section := []byte{
		0x02, 0xB0, byte(sectionLength),
		0x00, 0x01, 0xC1, 0x00, 0x00,
		0xE0 | byte(testPcrPid>>8), byte(testPcrPid & 0xFF), 0xF0, 0x00,
	}

	return sectionFrame(testPmtPid, append(section, elementary...))
}

func writeStream(t *testing.T, frames ...[]byte) string {
	t.Helper()

	var stream []byte
	for _, frame := range frames {
		stream = append(stream, frame...)
	}

	path := filepath.Join(t.TempDir(), "recording.ts")
	require.NoError(t, os.WriteFile(path, stream, 0o600))

	return path
}
