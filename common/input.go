package common

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dsnet/compress/bzip2"
	"github.com/ulikunitz/xz"
)

var ErrNotRewindable = errors.New("compressed input cannot be rewound")

// Input is a transport stream source. Recordings archived as .xz or .bz2 are
// decompressed on the fly; Position and Size always refer to the file on disk.
type Input struct {
	decompressor io.Closer
	reader       io.Reader
	stream       *FileStream
}

func OpenInput(path string) (*Input, error) {
	stream, streamErr := NewFileStream(path)
	if streamErr != nil {
		return nil, errors.Wrap(streamErr, "failed to open input")
	}

	input := &Input{reader: stream, stream: stream}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xz":
		xzReader, xzErr := xz.NewReader(stream)
		if xzErr != nil {
			_ = stream.Close()

			return nil, errors.Wrapf(xzErr, "failed to read xz header of %s", path)
		}

		input.reader = xzReader
	case ".bz2":
		bzReader, bzErr := bzip2.NewReader(stream, nil)
		if bzErr != nil {
			_ = stream.Close()

			return nil, errors.Wrapf(bzErr, "failed to read bzip2 header of %s", path)
		}

		input.decompressor = bzReader
		input.reader = bzReader
	}

	return input, nil
}

func (i *Input) Close() error {
	var decompressorErr error
	if i.decompressor != nil {
		decompressorErr = i.decompressor.Close()
	}

	return errors.CombineErrors(i.stream.Close(), decompressorErr)
}

func (i *Input) IsCompressed() bool {
	return i.reader != io.Reader(i.stream)
}

func (i *Input) Position() int64 {
	return i.stream.Position()
}

func (i *Input) Read(b []byte) (int, error) {
	return i.reader.Read(b)
}

// Rewind returns an uncompressed input to its first byte. Compressed inputs
// have to be reopened instead.
func (i *Input) Rewind() error {
	if i.IsCompressed() {
		return ErrNotRewindable
	}

	if _, seekErr := i.stream.Seek(0, io.SeekStart); seekErr != nil {
		return errors.Wrap(seekErr, "failed to rewind input")
	}

	return nil
}

func (i *Input) Size() int64 {
	return i.stream.Size()
}
