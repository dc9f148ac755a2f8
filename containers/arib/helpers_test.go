package arib

func buildUnit(parameter UnitParameter, data []byte) []byte {
	size := len(data)
	unit := []byte{unitSeparator, byte(parameter), byte(size >> 16), byte(size >> 8), byte(size)}

	return append(unit, data...)
}

func buildUnitLoop(units ...[]byte) []byte {
	var loop []byte
	for _, unit := range units {
		loop = append(loop, unit...)
	}

	size := len(loop)

	return append([]byte{byte(size >> 16), byte(size >> 8), byte(size)}, loop...)
}

func buildDataGroup(id uint8, data []byte) []byte {
	size := len(data)
	payload := []byte{
		dataIdentifierSynced, privateStreamID, 0xF0,
		id<<2 | 0x01, 0x00, 0x00, byte(size >> 8), byte(size),
	}
	payload = append(payload, data...)

	return append(payload, 0xAB, 0xCD)
}

func buildStatement(units ...[]byte) []byte {
	return append([]byte{0x3F}, buildUnitLoop(units...)...)
}
