package arib

import (
	"iter"
	"time"

	"github.com/cockroachdb/errors"
)

type TimeControlMode uint8

const (
	TimeControlModeFree TimeControlMode = iota
	TimeControlModeRealTime
	TimeControlModeOffset
	TimeControlModeReserved
)

const timeCodeSize = 5

// Language is one entry of the caption management language loop.
type Language struct {
	Code             string
	DisplayCondition *uint8
	DisplayMode      uint8
	Format           uint8
	RollupMode       uint8
	Tag              uint8
	TCS              uint8
}

type CaptionManagementData struct {
	Languages  []Language
	OffsetTime *time.Duration
	TMD        TimeControlMode
	unitLoop   []byte
}

type CaptionStatementData struct {
	PresentationTime *time.Duration
	TMD              TimeControlMode
	unitLoop         []byte
}

func bcd(b byte) int {
	return int(b>>4)*10 + int(b&0x0F)
}

//Decodes the 36-bit BCD hh:mm:ss.mmm time code used by STM and OTM
func parseTimeCode(buffer []byte) time.Duration {
	milliseconds := bcd(buffer[3])*10 + int(buffer[4]>>4)

	return time.Duration(bcd(buffer[0]))*time.Hour +
		time.Duration(bcd(buffer[1]))*time.Minute +
		time.Duration(bcd(buffer[2]))*time.Second +
		time.Duration(milliseconds)*time.Millisecond
}

func readUint24(buffer []byte) int {
	return int(buffer[0])<<16 | int(buffer[1])<<8 | int(buffer[2])
}

func parseUnitLoop(buffer []byte) ([]byte, error) {
	if len(buffer) < 3 {
		return nil, errors.Wrap(ErrNotEnoughBytes, "failed to read data unit loop length")
	}

	loopLength := readUint24(buffer)
	loop := buffer[3:]
	if len(loop) < loopLength {
		//Units past the end are reported as truncated while iterating
		return loop, nil
	}

	return loop[:loopLength], nil
}

func parseCaptionStatementData(buffer []byte) (*CaptionStatementData, error) {
	if len(buffer) < 1 {
		return nil, errors.Wrap(ErrNotEnoughBytes, "failed to read caption statement header")
	}

	statement := &CaptionStatementData{TMD: TimeControlMode(buffer[0] >> 6)}
	offset := 1

	if statement.TMD == TimeControlModeRealTime || statement.TMD == TimeControlModeOffset {
		if len(buffer) < offset+timeCodeSize {
			return nil, errors.Wrap(ErrNotEnoughBytes, "failed to read presentation start time")
		}

		presentationTime := parseTimeCode(buffer[offset:])
		statement.PresentationTime = &presentationTime
		offset += timeCodeSize
	}

	loop, loopErr := parseUnitLoop(buffer[offset:])
	if loopErr != nil {
		return nil, errors.Wrap(loopErr, "failed to parse caption statement data")
	}

	statement.unitLoop = loop

	return statement, nil
}

func parseCaptionManagementData(buffer []byte) (*CaptionManagementData, error) {
	if len(buffer) < 1 {
		return nil, errors.Wrap(ErrNotEnoughBytes, "failed to read caption management header")
	}

	management := &CaptionManagementData{TMD: TimeControlMode(buffer[0] >> 6)}
	offset := 1

	if management.TMD == TimeControlModeOffset {
		if len(buffer) < offset+timeCodeSize {
			return nil, errors.Wrap(ErrNotEnoughBytes, "failed to read offset time")
		}

		offsetTime := parseTimeCode(buffer[offset:])
		management.OffsetTime = &offsetTime
		offset += timeCodeSize
	}

	if len(buffer) < offset+1 {
		return nil, errors.Wrap(ErrNotEnoughBytes, "failed to read language count")
	}

	languageCount := int(buffer[offset])
	offset++

	for range languageCount {
		if len(buffer) < offset+1 {
			return nil, errors.Wrap(ErrNotEnoughBytes, "failed to read language entry")
		}

		language := Language{
			DisplayMode: buffer[offset] & 0x0F,
			Tag:         buffer[offset] >> 5,
		}
		offset++

		if language.DisplayMode >= 0x0C && language.DisplayMode <= 0x0E {
			if len(buffer) < offset+1 {
				return nil, errors.Wrap(ErrNotEnoughBytes, "failed to read display condition")
			}

			displayCondition := buffer[offset]
			language.DisplayCondition = &displayCondition
			offset++
		}

		if len(buffer) < offset+4 {
			return nil, errors.Wrap(ErrNotEnoughBytes, "failed to read language code")
		}

		language.Code = string(buffer[offset : offset+3])
		language.Format = buffer[offset+3] >> 4
		language.TCS = (buffer[offset+3] >> 2) & 0x03
		language.RollupMode = buffer[offset+3] & 0x03
		offset += 4

		management.Languages = append(management.Languages, language)
	}

	loop, loopErr := parseUnitLoop(buffer[offset:])
	if loopErr != nil {
		return nil, errors.Wrap(loopErr, "failed to parse caption management data")
	}

	management.unitLoop = loop

	return management, nil
}

// Units iterates the data units of the management data. Each call starts a
// fresh pass.
func (c *CaptionManagementData) Units() iter.Seq2[DataUnit, error] {
	return dataUnits(c.unitLoop)
}

// Units iterates the data units of the statement. Each call starts a fresh
// pass.
func (c *CaptionStatementData) Units() iter.Seq2[DataUnit, error] {
	return dataUnits(c.unitLoop)
}
