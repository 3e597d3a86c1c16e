//go:build !unix

package classfile

import (
	"io"
	"os"
)

// Without mmap the file is read once into memory. The release function
// only drops the reference.
func mapFile(f *os.File, size int) ([]byte, func([]byte) error, error) {
	data := make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, nil, err
	}
	return data, func([]byte) error { return nil }, nil
}
