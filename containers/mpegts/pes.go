package mpegts

import (
	"bytes"

	"github.com/cockroachdb/errors"
)

const pesMinimumHeaderSize = 9

var (
	ErrInvalidPesStartCode = errors.New("invalid PES start code prefix")
	ErrPesHeaderTooShort   = errors.New("not enough bytes for PES header")
)

// PesPacket is a reassembled packetized elementary stream packet.
type PesPacket struct {
	//HeaderSize counts the optional header: the two flag bytes, the header
	//length byte and the header data.
	HeaderSize int
	Length     int
	Payload    []byte
	PTS        *ClockReference
	StreamID   uint8
}

func (p *PesPacket) IsComplete() bool {
	return p.Length > 0 && p.Length == p.HeaderSize+len(p.Payload)
}

func parsePts(buffer []byte) ClockReference {
	return ClockReference{
		Base: int64(buffer[0]&0x0E)<<29 |
			int64(buffer[1])<<22 |
			int64(buffer[2]&0xFE)<<14 |
			int64(buffer[3])<<7 |
			int64(buffer[4])>>1,
	}
}

// ParsePesPacket parses the header of an accumulated PES buffer. The payload
// is clipped to the declared length, so trailing stuffing is dropped.
func ParsePesPacket(buffer []byte) (*PesPacket, error) {
	if len(buffer) < pesMinimumHeaderSize {
		return nil, ErrPesHeaderTooShort
	}
	if buffer[0] != 0x00 || buffer[1] != 0x00 || buffer[2] != 0x01 {
		return nil, ErrInvalidPesStartCode
	}

	headerDataLength := int(buffer[8])
	packet := &PesPacket{
		HeaderSize: 3 + headerDataLength,
		Length:     int(buffer[4])<<8 | int(buffer[5]),
		StreamID:   buffer[3],
	}

	payloadStart := pesMinimumHeaderSize + headerDataLength
	if payloadStart > len(buffer) {
		return packet, nil
	}

	if buffer[7]&0x80 != 0 && headerDataLength >= 5 {
		pts := parsePts(buffer[pesMinimumHeaderSize:])
		packet.PTS = &pts
	}

	payload := buffer[payloadStart:]
	if packet.Length > 0 {
		if maximum := packet.Length - packet.HeaderSize; maximum >= 0 && len(payload) > maximum {
			payload = payload[:maximum]
		}
	}

	packet.Payload = payload

	return packet, nil
}

// PesReassembler accumulates transport stream payloads of a single PID into
// PES packets.
type PesReassembler struct {
	buffer            []byte
	continuityCounter uint8
	hasCounter        bool
	pid               uint16
}

func NewPesReassembler(pid uint16) *PesReassembler {
	return &PesReassembler{pid: pid}
}

// Pending reports whether an incomplete packet is being accumulated.
func (r *PesReassembler) Pending() bool {
	return r.buffer != nil
}

func (r *PesReassembler) PID() uint16 {
	return r.pid
}

// Push adds a transport stream packet. It returns the completed PES packet,
// or nil while more fragments are needed. Packets of other PIDs are ignored.
func (r *PesReassembler) Push(packet *Packet) (*PesPacket, error) {
	if packet.PID != r.pid || !packet.HasPayload || len(packet.Payload) == 0 {
		return nil, nil
	}

	if r.hasCounter && !packet.PayloadUnitStart {
		expected := (r.continuityCounter + 1) & 0x0F

		switch packet.ContinuityCounter {
		case r.continuityCounter:
			//Duplicate packet
			return nil, nil
		case expected:
		default:
			r.buffer = nil
		}
	}

	r.continuityCounter = packet.ContinuityCounter
	r.hasCounter = true

	if packet.PayloadUnitStart {
		r.buffer = bytes.Clone(packet.Payload)
	} else {
		if r.buffer == nil {
			//Continuation without a start
			return nil, nil
		}

		r.buffer = append(r.buffer, packet.Payload...)
	}

	pesPacket, parseErr := ParsePesPacket(r.buffer)
	if parseErr != nil {
		if errors.Is(parseErr, ErrPesHeaderTooShort) {
			return nil, nil
		}

		r.buffer = nil

		return nil, errors.Wrapf(parseErr, "failed to parse PES packet on PID %d", r.pid)
	}

	if !pesPacket.IsComplete() {
		return nil, nil
	}

	r.buffer = nil

	return pesPacket, nil
}
