package arib

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataUnitsRestartable(t *testing.T) {
	t.Parallel()

	statement, err := parseCaptionStatementData(buildStatement(
		buildUnit(UnitParameterStatementBody, []byte{0x41}),
		buildUnit(UnitParameterGeometric, []byte{0x01, 0x02}),
	))
	require.NoError(t, err)

	for range 2 {
		var parameters []UnitParameter
		for unit, unitErr := range statement.Units() {
			require.NoError(t, unitErr)

			parameters = append(parameters, unit.Parameter)
		}

		assert.Equal(t, []UnitParameter{UnitParameterStatementBody, UnitParameterGeometric}, parameters)
	}
}

func TestDataUnitsExactSize(t *testing.T) {
	t.Parallel()

	var units []DataUnit
	for unit, err := range dataUnits(buildUnitLoop(buildUnit(UnitParameterStatementBody, []byte{0x41, 0x42}))[3:]) {
		require.NoError(t, err)

		units = append(units, unit)
	}

	require.Len(t, units, 1)
	assert.Equal(t, []byte{0x41, 0x42}, units[0].Data)
	assert.Equal(t, 2, cap(units[0].Data))
}

func TestDataUnitsTruncatedHeader(t *testing.T) {
	t.Parallel()

	for _, err := range dataUnits([]byte{unitSeparator, 0x20, 0x00}) {
		var truncatedErr *TruncatedUnitError
		require.True(t, errors.As(err, &truncatedErr))
		assert.Equal(t, 0, truncatedErr.Offset)
	}
}

func TestDataUnitsInvalidSeparator(t *testing.T) {
	t.Parallel()

	loop := append(buildUnit(UnitParameterStatementBody, []byte{0x41}), 0x00, 0x20, 0x00, 0x00, 0x00)

	var (
		count   int
		lastErr error
	)
	for _, err := range dataUnits(loop) {
		if err != nil {
			lastErr = err

			break
		}

		count++
	}

	assert.Equal(t, 1, count)

	var separatorErr *UnitSeparatorError
	require.True(t, errors.As(lastErr, &separatorErr))
	assert.Equal(t, 6, separatorErr.Offset)
}

func TestUnitParameterString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "statement body", UnitParameterStatementBody.String())
	assert.Equal(t, "unknown (0x99)", UnitParameter(0x99).String())
}
