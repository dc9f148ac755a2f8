package subtitles

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubRipWritesNumberedEntries(t *testing.T) {
	t.Parallel()

	var buffer bytes.Buffer

	subRip := NewSubRip(&buffer)
	require.NoError(t, subRip.WriteCue(context.Background(), testCue()))
	require.NoError(t, subRip.WriteCue(context.Background(), testCue()))
	require.NoError(t, subRip.Close())

	assert.Equal(t,
		"1\n00:00:00,000 --> 00:00:06,010\nGod\n\n2\n00:00:00,000 --> 00:00:06,010\nGod\n\n",
		buffer.String(),
	)
	assert.Equal(t, ".srt", subRip.Extension())
	assert.Equal(t, "SubRip", subRip.Name())
}

func TestNewSink(t *testing.T) {
	t.Parallel()

	format, err := ParseFormat("SRT")
	require.NoError(t, err)
	assert.Equal(t, FormatSubRip, format)
	assert.Equal(t, ".srt", format.Extension())

	sink, err := NewSink(format, &bytes.Buffer{}, SinkOptions{})
	require.NoError(t, err)
	assert.IsType(t, &SubRip{}, sink)

	sink, err = NewSink(FormatAss, &bytes.Buffer{}, SinkOptions{EmitPositions: true, Height: 540, Width: 960})
	require.NoError(t, err)
	assert.IsType(t, &Ass{}, sink)

	_, err = ParseFormat("vtt")
	assert.Error(t, err)
}
