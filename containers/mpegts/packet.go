package mpegts

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

const (
	PacketSize = 188
	SyncByte   = 0x47

	pcrFlag = 0x10
)

// ClockReference is a program clock sample: a 33-bit 90kHz base and a 9-bit
// 27MHz extension.
type ClockReference struct {
	Base      int64
	Extension int64
}

// Ticks27MHz returns the full-resolution clock value.
func (c ClockReference) Ticks27MHz() int64 {
	return c.Base*300 + c.Extension
}

type AdaptationField struct {
	Discontinuity bool
	Length        int
	PCR           *ClockReference
	RandomAccess  bool
}

// Packet is one parsed 188-byte transport stream frame.
type Packet struct {
	AdaptationField   *AdaptationField
	ContinuityCounter uint8
	HasPayload        bool
	Payload           []byte
	PayloadUnitStart  bool
	PID               uint16
	TransportError    bool
}

// FramingError reports a frame that does not start with the sync byte.
type FramingError struct {
	Offset int64
	Value  byte
}

func (f *FramingError) Error() string {
	return fmt.Sprintf("invalid sync byte 0x%02X at offset %d", f.Value, f.Offset)
}

func (p *Packet) PCR() (ClockReference, bool) {
	if p.AdaptationField == nil || p.AdaptationField.PCR == nil {
		return ClockReference{}, false
	}

	return *p.AdaptationField.PCR, true
}

func parseAdaptationField(buffer []byte) *AdaptationField {
	//buffer starts at adaptation_field_length
	field := &AdaptationField{Length: int(buffer[0])}
	if field.Length == 0 || len(buffer) < 2 {
		return field
	}

	flags := buffer[1]
	field.Discontinuity = flags&0x80 != 0
	field.RandomAccess = flags&0x40 != 0

	if flags&pcrFlag != 0 && field.Length >= 7 && len(buffer) >= 8 {
		pcr := buffer[2:8]
		field.PCR = &ClockReference{
			Base: int64(pcr[0])<<25 |
				int64(pcr[1])<<17 |
				int64(pcr[2])<<9 |
				int64(pcr[3])<<1 |
				int64(pcr[4])>>7,
			Extension: int64(pcr[4]&0x01)<<8 | int64(pcr[5]),
		}
	}

	return field
}

// ParsePacket parses a single frame. The payload is copied so the frame
// buffer may be reused by the caller.
func ParsePacket(frame []byte) (*Packet, error) {
	if len(frame) != PacketSize {
		return nil, errors.Newf("packet size %d, expected %d", len(frame), PacketSize)
	}
	if frame[0] != SyncByte {
		return nil, &FramingError{Value: frame[0]}
	}

	packet := &Packet{
		ContinuityCounter: frame[3] & 0x0F,
		HasPayload:        frame[3]&0x10 != 0,
		PayloadUnitStart:  frame[1]&0x40 != 0,
		PID:               uint16(frame[1]&0x1F)<<8 | uint16(frame[2]),
		TransportError:    frame[1]&0x80 != 0,
	}

	offset := 4

	if frame[3]&0x20 != 0 {
		packet.AdaptationField = parseAdaptationField(frame[offset:])
		offset += 1 + packet.AdaptationField.Length
	}

	if packet.HasPayload && offset < PacketSize {
		packet.Payload = make([]byte, PacketSize-offset)
		copy(packet.Payload, frame[offset:])
	}

	return packet, nil
}
