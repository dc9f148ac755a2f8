package arib

import (
	"fmt"
	"iter"
)

type UnitParameter uint8

const (
	UnitParameterStatementBody UnitParameter = 0x20
	UnitParameterGeometric     UnitParameter = 0x28
	UnitParameterSynthesized   UnitParameter = 0x2C
	UnitParameterDrcs1Byte     UnitParameter = 0x30
	UnitParameterDrcs2Byte     UnitParameter = 0x31
	UnitParameterColorMap      UnitParameter = 0x34
	UnitParameterBitmap        UnitParameter = 0x35
)

const (
	dataUnitHeaderSize = 5
	unitSeparator      = 0x1F
)

func (u UnitParameter) String() string {
	switch u {
	case UnitParameterStatementBody:
		return "statement body"
	case UnitParameterGeometric:
		return "geometric"
	case UnitParameterSynthesized:
		return "synthesized sound"
	case UnitParameterDrcs1Byte:
		return "1-byte DRCS"
	case UnitParameterDrcs2Byte:
		return "2-byte DRCS"
	case UnitParameterColorMap:
		return "color map"
	case UnitParameterBitmap:
		return "bitmap"
	}

	return fmt.Sprintf("unknown (0x%02X)", uint8(u))
}

type DataUnit struct {
	Data      []byte
	Parameter UnitParameter
}

func (d DataUnit) IsStatementBody() bool {
	return d.Parameter == UnitParameterStatementBody
}

// TruncatedUnitError reports a data unit whose header or declared size runs
// past the end of the unit loop.
type TruncatedUnitError struct {
	Available int
	Declared  int
	Offset    int
}

func (t *TruncatedUnitError) Error() string {
	return fmt.Sprintf("data unit at offset %d declares %d bytes, %d available", t.Offset, t.Declared, t.Available)
}

// UnitSeparatorError reports a data unit that does not start with the unit
// separator.
type UnitSeparatorError struct {
	Offset int
	Value  byte
}

func (u *UnitSeparatorError) Error() string {
	return fmt.Sprintf("invalid unit separator 0x%02X at offset %d", u.Value, u.Offset)
}

func dataUnits(loop []byte) iter.Seq2[DataUnit, error] {
	return func(yield func(DataUnit, error) bool) {
		offset := 0

		for offset < len(loop) {
			remaining := loop[offset:]
			if len(remaining) < dataUnitHeaderSize {
				yield(DataUnit{}, &TruncatedUnitError{
					Available: len(remaining),
					Declared:  dataUnitHeaderSize,
					Offset:    offset,
				})

				return
			}

			if remaining[0] != unitSeparator {
				yield(DataUnit{}, &UnitSeparatorError{Offset: offset, Value: remaining[0]})

				return
			}

			size := readUint24(remaining[2:])
			data := remaining[dataUnitHeaderSize:]
			if len(data) < size {
				yield(DataUnit{}, &TruncatedUnitError{Available: len(data), Declared: size, Offset: offset})

				return
			}

			unit := DataUnit{Data: data[:size:size], Parameter: UnitParameter(remaining[1])}
			if !yield(unit, nil) {
				return
			}

			offset += dataUnitHeaderSize + size
		}
	}
}
