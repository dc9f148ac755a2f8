package arib

import (
	"iter"

	"github.com/cockroachdb/errors"
)

const (
	dataGroupHeaderSize  = 5
	dataIdentifierSynced = 0x80
	privateStreamID      = 0xFF
)

var ErrNotEnoughBytes = errors.New("not enough bytes")

// DataGroup is a caption data group carried in one synchronized PES packet.
type DataGroup struct {
	CRC            uint16
	Data           []byte
	ID             uint8
	LastLinkNumber uint8
	LinkNumber     uint8
	Version        uint8
}

// ParseDataGroup parses the data group in a PES payload, skipping the
// synchronized PES data header in front of it.
func ParseDataGroup(pesPayload []byte) (*DataGroup, error) {
	if len(pesPayload) < 3 {
		return nil, errors.Wrap(ErrNotEnoughBytes, "failed to read PES data header")
	}

	if pesPayload[0] != dataIdentifierSynced {
		return nil, errors.Newf("unexpected data identifier 0x%02X", pesPayload[0])
	}
	if pesPayload[1] != privateStreamID {
		return nil, errors.Newf("unexpected private stream id 0x%02X", pesPayload[1])
	}

	offset := 3 + int(pesPayload[2]&0x0F)
	if len(pesPayload) < offset+dataGroupHeaderSize {
		return nil, errors.Wrap(ErrNotEnoughBytes, "failed to read data group header")
	}

	header := pesPayload[offset:]
	dataGroup := &DataGroup{
		ID:             header[0] >> 2,
		LastLinkNumber: header[2],
		LinkNumber:     header[1],
		Version:        header[0] & 0x03,
	}

	size := int(header[3])<<8 | int(header[4])
	data := header[dataGroupHeaderSize:]
	if len(data) < size {
		return nil, errors.Wrapf(ErrNotEnoughBytes, "data group declares %d bytes, %d available", size, len(data))
	}

	dataGroup.Data = data[:size]
	if trailer := data[size:]; len(trailer) >= 2 {
		dataGroup.CRC = uint16(trailer[0])<<8 | uint16(trailer[1])
	}

	return dataGroup, nil
}

// IsManagementData reports whether the group carries caption management data
// rather than caption text. Group A and group B use ids 0x00 and 0x20.
func (d *DataGroup) IsManagementData() bool {
	return d.ID == 0x00 || d.ID == 0x20
}

// LanguageNumber is the caption language a statement group belongs to,
// 1 through 8. Management groups return 0.
func (d *DataGroup) LanguageNumber() uint8 {
	return d.ID & 0x0F
}

func (d *DataGroup) ManagementData() (*CaptionManagementData, error) {
	if !d.IsManagementData() {
		return nil, errors.Newf("data group 0x%02X is not management data", d.ID)
	}

	return parseCaptionManagementData(d.Data)
}

func (d *DataGroup) StatementData() (*CaptionStatementData, error) {
	if d.IsManagementData() {
		return nil, errors.Newf("data group 0x%02X is management data", d.ID)
	}

	return parseCaptionStatementData(d.Data)
}

// StatementBodies yields the payload of every statement body unit in the
// group. Management groups yield nothing. Iteration ends at the first
// malformed unit, which is yielded as an error.
func (d *DataGroup) StatementBodies() iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		if d.IsManagementData() {
			return
		}

		statement, statementErr := d.StatementData()
		if statementErr != nil {
			yield(nil, statementErr)

			return
		}

		for unit, unitErr := range statement.Units() {
			if unitErr != nil {
				yield(nil, unitErr)

				return
			}

			if !unit.IsStatementBody() {
				continue
			}

			if !yield(unit.Data, nil) {
				return
			}
		}
	}
}
