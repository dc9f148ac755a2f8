package arib

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectBodies(t *testing.T, dataGroup *DataGroup) ([][]byte, error) {
	t.Helper()

	var bodies [][]byte
	for body, err := range dataGroup.StatementBodies() {
		if err != nil {
			return bodies, err
		}

		bodies = append(bodies, body)
	}

	return bodies, nil
}

func TestParseDataGroup(t *testing.T) {
	t.Parallel()

	statement := buildStatement(buildUnit(UnitParameterStatementBody, []byte{0x0C}))

	dataGroup, err := ParseDataGroup(buildDataGroup(0x01, statement))
	require.NoError(t, err)

	assert.Equal(t, uint8(0x01), dataGroup.ID)
	assert.Equal(t, uint8(0x01), dataGroup.Version)
	assert.Equal(t, uint8(1), dataGroup.LanguageNumber())
	assert.Equal(t, uint16(0xABCD), dataGroup.CRC)
	assert.Equal(t, statement, dataGroup.Data)
	assert.False(t, dataGroup.IsManagementData())
}

func TestParseDataGroupSkipsPesDataHeader(t *testing.T) {
	t.Parallel()

	payload := buildDataGroup(0x21, buildStatement())
	payload[2] = 0xF2
	payload = append(payload[:3], append([]byte{0xEE, 0xEE}, payload[3:]...)...)

	dataGroup, err := ParseDataGroup(payload)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x21), dataGroup.ID)
}

func TestParseDataGroupErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		payload []byte
	}{
		{name: "empty", payload: nil},
		{name: "wrong data identifier", payload: []byte{0x81, 0xFF, 0xF0, 0x04, 0x00, 0x00, 0x00, 0x00}},
		{name: "wrong private stream", payload: []byte{0x80, 0xFE, 0xF0, 0x04, 0x00, 0x00, 0x00, 0x00}},
		{name: "short header", payload: []byte{0x80, 0xFF, 0xF0, 0x04}},
		{name: "short data", payload: []byte{0x80, 0xFF, 0xF0, 0x04, 0x00, 0x00, 0x00, 0x10, 0x01}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := ParseDataGroup(testCase.payload)
			assert.Error(t, err)
		})
	}
}

func TestManagementGroupsYieldNothing(t *testing.T) {
	t.Parallel()

	management := []byte{0x3F, 0x01, 0x0F, 'j', 'p', 'n', 0x80}
	management = append(management, buildUnitLoop(buildUnit(UnitParameterStatementBody, []byte{0x41}))...)

	for _, id := range []uint8{0x00, 0x20} {
		dataGroup, err := ParseDataGroup(buildDataGroup(id, management))
		require.NoError(t, err)
		assert.True(t, dataGroup.IsManagementData())

		bodies, bodiesErr := collectBodies(t, dataGroup)
		require.NoError(t, bodiesErr)
		assert.Empty(t, bodies)

		_, statementErr := dataGroup.StatementData()
		assert.Error(t, statementErr)
	}
}

func TestStatementBodiesSkipsOtherUnits(t *testing.T) {
	t.Parallel()

	dataGroup, err := ParseDataGroup(buildDataGroup(0x01, buildStatement(
		buildUnit(UnitParameterDrcs2Byte, []byte{0x01, 0x02}),
		buildUnit(UnitParameterStatementBody, []byte{0x0C, 0x41}),
		buildUnit(UnitParameterBitmap, nil),
		buildUnit(UnitParameterStatementBody, []byte{0x20}),
	)))
	require.NoError(t, err)

	bodies, bodiesErr := collectBodies(t, dataGroup)
	require.NoError(t, bodiesErr)
	assert.Equal(t, [][]byte{{0x0C, 0x41}, {0x20}}, bodies)
}

func TestStatementBodiesTruncated(t *testing.T) {
	t.Parallel()

	unit := buildUnit(UnitParameterStatementBody, []byte{0x41, 0x42, 0x43})
	statement := buildStatement(unit)
	//Drop the last byte of the unit while keeping the declared loop length
	statement = statement[:len(statement)-1]

	dataGroup, err := ParseDataGroup(buildDataGroup(0x01, statement))
	require.NoError(t, err)

	bodies, bodiesErr := collectBodies(t, dataGroup)
	assert.Empty(t, bodies)

	var truncatedErr *TruncatedUnitError
	require.True(t, errors.As(bodiesErr, &truncatedErr))
	assert.Equal(t, 3, truncatedErr.Declared)
	assert.Equal(t, 2, truncatedErr.Available)
}

func TestStatementDataPresentationTime(t *testing.T) {
	t.Parallel()

	statement := append([]byte{0x7F, 0x01, 0x02, 0x03, 0x45, 0x60}, buildUnitLoop()...)

	parsed, err := parseCaptionStatementData(statement)
	require.NoError(t, err)

	assert.Equal(t, TimeControlModeRealTime, parsed.TMD)
	require.NotNil(t, parsed.PresentationTime)
	assert.Equal(t, time.Hour+2*time.Minute+3*time.Second+456*time.Millisecond, *parsed.PresentationTime)
}

func TestManagementDataLanguages(t *testing.T) {
	t.Parallel()

	management := []byte{
		0xBF, 0x00, 0x00, 0x10, 0x00, 0x00,
		0x02,
		0x0F, 'j', 'p', 'n', 0x80,
		0x2C, 0x05, 'e', 'n', 'g', 0x85,
	}
	management = append(management, buildUnitLoop()...)

	parsed, err := parseCaptionManagementData(management)
	require.NoError(t, err)

	assert.Equal(t, TimeControlModeOffset, parsed.TMD)
	require.NotNil(t, parsed.OffsetTime)
	assert.Equal(t, 10*time.Second, *parsed.OffsetTime)

	require.Len(t, parsed.Languages, 2)
	assert.Equal(t, "jpn", parsed.Languages[0].Code)
	assert.Equal(t, uint8(0x0F), parsed.Languages[0].DisplayMode)
	assert.Nil(t, parsed.Languages[0].DisplayCondition)
	assert.Equal(t, uint8(0x08), parsed.Languages[0].Format)

	assert.Equal(t, "eng", parsed.Languages[1].Code)
	assert.Equal(t, uint8(1), parsed.Languages[1].Tag)
	require.NotNil(t, parsed.Languages[1].DisplayCondition)
	assert.Equal(t, uint8(0x05), *parsed.Languages[1].DisplayCondition)
	assert.Equal(t, uint8(0x01), parsed.Languages[1].TCS)
	assert.Equal(t, uint8(0x01), parsed.Languages[1].RollupMode)
}
