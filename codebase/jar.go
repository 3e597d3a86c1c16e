package codebase

import (
	"archive/zip"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dhamidi/classpool/classfile"
)

// maxEntrySize caps how much of a single jar entry is read into memory.
const maxEntrySize = 64 << 20

// ScanJar parses every .class entry of the jar at path. Entries are keyed
// by their name inside the jar. A jar that cannot be opened is recorded as a
// single failed result named after the jar.
func (c *Codebase) ScanJar(path string) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		err = fmt.Errorf("open jar %s: %w", path, err)
		log.Warning("open jar failed", "path", path, "error", err)
		c.mu.Lock()
		c.storeLocked(&FileInfo{Name: c.classNameFor(path), Path: path, Source: path, ParseErr: err})
		c.mu.Unlock()
		return err
	}
	defer r.Close()

	var results []*FileInfo
	for _, f := range r.File {
		if f.FileInfo().IsDir() || filepath.Ext(f.Name) != ".class" {
			continue
		}
		results = append(results, c.scanJarEntry(path, f))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, res := range results {
		c.storeLocked(res)
	}
	log.Debug("scanned jar", "path", path, "entries", len(results))
	return nil
}

func (c *Codebase) scanJarEntry(jarPath string, f *zip.File) *FileInfo {
	entryPath := jarPath + "!/" + f.Name
	info := &FileInfo{
		Name:   strings.TrimSuffix(f.Name, ".class"),
		Path:   entryPath,
		Source: jarPath,
	}

	data, err := readEntry(f)
	if err != nil {
		info.ParseErr = fmt.Errorf("read %s: %w", entryPath, err)
		log.Warning("read jar entry failed", "path", entryPath, "error", err)
		return info
	}

	opts := append(c.parseOpts[:len(c.parseOpts):len(c.parseOpts)],
		classfile.WithPath(entryPath),
		classfile.WithLogger(log))
	info.Class, info.ParseErr = classfile.Parse(data, opts...)
	if info.ParseErr != nil {
		log.Warning("parse failed", "path", entryPath, "error", info.ParseErr)
	}
	return info
}

func readEntry(f *zip.File) ([]byte, error) {
	if f.UncompressedSize64 > maxEntrySize {
		return nil, fmt.Errorf("entry is %d bytes, limit is %d", f.UncompressedSize64, maxEntrySize)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(io.LimitReader(rc, maxEntrySize))
}
