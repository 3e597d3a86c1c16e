package classfile

import (
	"fmt"
	"os"
)

// MappedFile is a read-only view of a whole class file. Close releases the
// mapping; the bytes must not be used afterwards.
type MappedFile struct {
	path   string
	data   []byte
	unmap  func([]byte) error
	closed bool
}

// OpenMapped maps path read-only. The file descriptor is closed before
// returning; only the mapping outlives the call.
func OpenMapped(path string) (*MappedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ioError(path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, ioError(path, err)
	}
	if info.IsDir() {
		return nil, ioError(path, fmt.Errorf("is a directory"))
	}
	if info.Size() == 0 {
		return &MappedFile{path: path}, nil
	}
	if int64(int(info.Size())) != info.Size() {
		return nil, ioError(path, fmt.Errorf("file too large to map: %d bytes", info.Size()))
	}

	data, unmap, err := mapFile(f, int(info.Size()))
	if err != nil {
		return nil, ioError(path, err)
	}
	return &MappedFile{path: path, data: data, unmap: unmap}, nil
}

func (m *MappedFile) Path() string  { return m.path }
func (m *MappedFile) Bytes() []byte { return m.data }
func (m *MappedFile) Len() int      { return len(m.data) }

func (m *MappedFile) Cursor() *Cursor {
	return NewCursor(m.data)
}

func (m *MappedFile) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	data := m.data
	m.data = nil
	if m.unmap == nil || data == nil {
		return nil
	}
	if err := m.unmap(data); err != nil {
		return ioError(m.path, err)
	}
	return nil
}

func ioError(path string, err error) error {
	return &ParseError{Kind: ErrIO, Path: path, Offset: -1, Err: err}
}
