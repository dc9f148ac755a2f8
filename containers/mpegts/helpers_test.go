package mpegts

import (
	"bytes"
)

type testFrame struct {
	continuityCounter uint8
	hasPcr            bool
	payload           []byte
	payloadUnitStart  bool
	pcrBase           int64
	pid               uint16
}

//Builds a frame whose payload fills the packet exactly, padding with
//adaptation field stuffing the way broadcast caption packets are laid out.
func buildFrame(f testFrame) []byte {
	frame := make([]byte, PacketSize)
	frame[0] = SyncByte
	frame[1] = byte(f.pid>>8) & 0x1F
	frame[2] = byte(f.pid)
	if f.payloadUnitStart {
		frame[1] |= 0x40
	}

	available := PacketSize - 4
	if !f.hasPcr && len(f.payload) == available {
		frame[3] = 0x10 | f.continuityCounter&0x0F
		copy(frame[4:], f.payload)

		return frame
	}

	frame[3] = 0x20 | f.continuityCounter&0x0F
	if len(f.payload) > 0 {
		frame[3] |= 0x10
	}

	adaptationLength := available - 1 - len(f.payload)
	frame[4] = byte(adaptationLength)

	if adaptationLength > 0 {
		stuffingStart := 6
		if f.hasPcr {
			frame[5] = pcrFlag
			copy(frame[6:12], encodePcr(f.pcrBase, 0))
			stuffingStart = 12
		}

		for i := stuffingStart; i < 5+adaptationLength; i++ {
			frame[i] = 0xFF
		}
	}

	copy(frame[5+adaptationLength:], f.payload)

	return frame
}

func encodePcr(base int64, extension int64) []byte {
	return []byte{
		byte(base >> 25),
		byte(base >> 17),
		byte(base >> 9),
		byte(base >> 1),
		byte(base&0x01)<<7 | 0x7E | byte(extension>>8)&0x01,
		byte(extension),
	}
}

func buildPes(payload []byte) []byte {
	length := 3 + len(payload)
	pes := []byte{0x00, 0x00, 0x01, 0xBD, byte(length >> 8), byte(length), 0x80, 0x00, 0x00}

	return append(pes, payload...)
}

//Splits a PES packet into consecutive transport stream frames.
func fragmentPes(pid uint16, firstCounter uint8, pes []byte) [][]byte {
	var frames [][]byte

	counter := firstCounter
	for offset := 0; offset < len(pes); {
		end := min(offset+PacketSize-4, len(pes))
		frames = append(frames, buildFrame(testFrame{
			continuityCounter: counter,
			payload:           pes[offset:end],
			payloadUnitStart:  offset == 0,
			pid:               pid,
		}))
		counter = (counter + 1) & 0x0F
		offset = end
	}

	return frames
}

func joinFrames(frames ...[]byte) *bytes.Reader {
	return bytes.NewReader(bytes.Join(frames, nil))
}

func sequentialBytes(count int) []byte {
	buffer := make([]byte, count)
	for i := range buffer {
		buffer[i] = byte(i % 0x40)
	}

	return buffer
}
