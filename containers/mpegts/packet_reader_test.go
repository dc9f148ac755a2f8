package mpegts

import (
	"bytes"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectPids(t *testing.T, reader *PacketReader) ([]uint16, error) {
	t.Helper()

	var pids []uint16
	for packet, err := range reader.Packets() {
		if err != nil {
			return pids, err
		}

		pids = append(pids, packet.PID)
	}

	return pids, nil
}

func TestPacketReaderYieldsPacketsInOrder(t *testing.T) {
	t.Parallel()

	reader := NewPacketReader(joinFrames(
		buildFrame(testFrame{pid: 0x100, payload: sequentialBytes(20)}),
		buildFrame(testFrame{pid: 0x101, payload: sequentialBytes(20)}),
		buildFrame(testFrame{pid: 0x102, payload: sequentialBytes(20)}),
	))

	pids, err := collectPids(t, reader)
	require.NoError(t, err)
	assert.Equal(t, []uint16{0x100, 0x101, 0x102}, pids)
	assert.Equal(t, int64(3*PacketSize), reader.Position())
}

func TestPacketReaderEmptyInput(t *testing.T) {
	t.Parallel()

	pids, err := collectPids(t, NewPacketReader(bytes.NewReader(nil)))
	require.NoError(t, err)
	assert.Empty(t, pids)
}

func TestPacketReaderFramingError(t *testing.T) {
	t.Parallel()

	bad := buildFrame(testFrame{pid: 0x101, payload: sequentialBytes(20)})
	bad[0] = 0x00

	reader := NewPacketReader(joinFrames(
		buildFrame(testFrame{pid: 0x100, payload: sequentialBytes(20)}),
		bad,
		buildFrame(testFrame{pid: 0x102, payload: sequentialBytes(20)}),
	))

	pids, err := collectPids(t, reader)
	assert.Equal(t, []uint16{0x100}, pids)

	var framingErr *FramingError
	require.True(t, errors.As(err, &framingErr))
	assert.Equal(t, int64(PacketSize), framingErr.Offset)
	assert.Equal(t, byte(0x00), framingErr.Value)
}

func TestPacketReaderResync(t *testing.T) {
	t.Parallel()

	garbage := make([]byte, 10)

	reader := NewPacketReader(
		joinFrames(
			buildFrame(testFrame{pid: 0x100, payload: sequentialBytes(20)}),
			garbage,
			buildFrame(testFrame{pid: 0x101, payload: make([]byte, 20)}),
			buildFrame(testFrame{pid: 0x102, payload: sequentialBytes(20)}),
		),
		PacketReaderOptResync(true),
	)

	pids, err := collectPids(t, reader)
	require.NoError(t, err)

	//The frame straddling the garbage is lost
	assert.Equal(t, []uint16{0x100, 0x102}, pids)
	assert.Equal(t, int64(PacketSize+len(garbage)), reader.Skipped())
}

func TestPacketReaderIgnoresTrailingPartialPacket(t *testing.T) {
	t.Parallel()

	reader := NewPacketReader(joinFrames(
		buildFrame(testFrame{pid: 0x100, payload: sequentialBytes(20)}),
		[]byte{SyncByte, 0x01, 0x00},
	))

	pids, err := collectPids(t, reader)
	require.NoError(t, err)
	assert.Equal(t, []uint16{0x100}, pids)
}

func TestPacketReaderStopsWhenConsumerStops(t *testing.T) {
	t.Parallel()

	reader := NewPacketReader(joinFrames(
		buildFrame(testFrame{pid: 0x100}),
		buildFrame(testFrame{pid: 0x101}),
	))

	for packet, err := range reader.Packets() {
		require.NoError(t, err)
		assert.Equal(t, uint16(0x100), packet.PID)

		break
	}

	assert.Equal(t, int64(PacketSize), reader.Position())
}
