package common

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/edsrzf/mmap-go"
)

// FileStream is a read-only, seekable view of a file on disk. The file is
// memory mapped when possible; otherwise reads go straight to the file with a
// sequential access hint.
type FileStream struct {
	file           *os.File
	filePosition   int64
	fileSize       int64
	isMemoryMapped bool
	isOpen         bool
	mmapFile       mmap.MMap
}

func (f *FileStream) offsetFilePosition(offset int) {
	f.filePosition += int64(offset)
}

func (f *FileStream) Close() error {
	if !f.isOpen {
		return nil
	}

	f.filePosition = -1
	f.fileSize = -1
	f.isOpen = false

	if f.isMemoryMapped {
		return f.mmapFile.Unmap()
	}

	return f.file.Close()
}

func NewFileStream(path string) (*FileStream, error) {
	file, openErr := os.Open(path)
	if openErr != nil {
		return nil, errors.Wrapf(openErr, "failed to open file %s", path)
	}

	stat, statErr := file.Stat()
	if statErr != nil {
		_ = file.Close()

		return nil, errors.Wrapf(statErr, "failed to read information while opening file %s", path)
	}

	//Empty files cannot be mapped
	if stat.Size() == 0 {
		return &FileStream{file: file, fileSize: 0, isOpen: true}, nil
	}

	mmapFile, mmapErr := mmap.Map(file, mmap.RDONLY, 0)
	if mmapErr != nil {
		adviseSequential(file)

		return &FileStream{
			file:           file,
			filePosition:   0,
			fileSize:       stat.Size(),
			isMemoryMapped: false,
			isOpen:         true,
			mmapFile:       nil,
		}, nil
	}

	defer file.Close()

	return &FileStream{
		file:           nil,
		filePosition:   0,
		fileSize:       stat.Size(),
		isMemoryMapped: true,
		isOpen:         true,
		mmapFile:       mmapFile,
	}, nil
}

func (f *FileStream) Position() int64 {
	return f.filePosition
}

func (f *FileStream) Read(b []byte) (int, error) {
	if !f.isOpen {
		return 0, os.ErrClosed
	}

	if f.isMemoryMapped {
		if f.filePosition >= f.fileSize {
			return 0, io.EOF
		}

		endIndex := min(f.filePosition+int64(len(b)), f.fileSize)

		bytesCopied := copy(b, f.mmapFile[f.filePosition:endIndex])

		f.offsetFilePosition(bytesCopied)

		return bytesCopied, nil
	}

	bytesRead, readErr := f.file.Read(b)

	f.offsetFilePosition(bytesRead)

	return bytesRead, readErr
}

func (f *FileStream) Seek(offset int64, whence int) (int64, error) {
	if f.isMemoryMapped {
		newPosition := f.filePosition

		switch whence {
		case io.SeekCurrent:
			newPosition += offset
		case io.SeekEnd:
			newPosition = f.fileSize + offset
		case io.SeekStart:
			newPosition = offset
		}

		if newPosition < 0 {
			return f.filePosition, errors.Newf("cannot seek to negative position %d", newPosition)
		}

		f.filePosition = newPosition

		return f.filePosition, nil
	}

	newOffset, seekErr := f.file.Seek(offset, whence)
	if seekErr != nil {
		return newOffset, seekErr
	}

	f.filePosition = newOffset

	return f.filePosition, nil
}

func (f *FileStream) Size() int64 {
	return f.fileSize
}
