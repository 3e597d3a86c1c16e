// Package codebase parses every class file under a directory tree or inside
// a jar and keeps the results keyed by class name.
package codebase

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/dhamidi/classpool/classfile"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("classpool.codebase")

type Codebase struct {
	mu        sync.RWMutex
	rootDir   string
	workers   int
	parseOpts []classfile.Option
	// files holds every source providing a class, sorted by Source.
	files map[string][]*FileInfo
}

// FileInfo is the outcome of parsing one class. Name is the class's entry
// name without the .class suffix, e.g. com/example/Foo. Source is the file
// on disk the class came from, which for jar entries is the jar itself.
// When several sources provide the same class, the one with the smallest
// Source path is visible and the others are shadowed until it is removed.
type FileInfo struct {
	Name     string
	Path     string
	Source   string
	Class    *classfile.ClassFile
	ParseErr error
}

type Option func(*Codebase)

// WithWorkers bounds the number of files parsed at once. Values below one
// are ignored.
func WithWorkers(n int) Option {
	return func(c *Codebase) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithParseOptions passes opts to every classfile parse.
func WithParseOptions(opts ...classfile.Option) Option {
	return func(c *Codebase) {
		c.parseOpts = append(c.parseOpts, opts...)
	}
}

// New creates an empty codebase rooted at rootDir, which may also be a
// single jar or class file.
func New(rootDir string, opts ...Option) *Codebase {
	c := &Codebase{
		rootDir: rootDir,
		workers: runtime.NumCPU(),
		files:   make(map[string][]*FileInfo),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Codebase) RootDir() string {
	return c.rootDir
}

func (c *Codebase) Workers() int {
	return c.workers
}

// ScanAll walks the root and parses every .class and .jar file it finds.
// Files that fail to parse are recorded with their error and do not stop
// the scan. Cancelling ctx stops handing out new files; the scan then
// returns ctx.Err() once in-flight files are done.
func (c *Codebase) ScanAll(ctx context.Context) error {
	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				c.scanPath(path)
			}
		}()
	}

	walkErr := filepath.WalkDir(c.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == c.rootDir {
				return err
			}
			log.Warning("skip unreadable path", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			if path != c.rootDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !isScannable(path) {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		select {
		case jobs <- path:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	close(jobs)
	wg.Wait()

	if walkErr != nil {
		if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
			log.Debug("scan cancelled", "root", c.rootDir)
		}
		return walkErr
	}
	log.Debug("scan complete", "root", c.rootDir, "classes", c.Len())
	return nil
}

func isScannable(path string) bool {
	switch filepath.Ext(path) {
	case ".class", ".jar":
		return true
	}
	return false
}

func (c *Codebase) scanPath(path string) {
	switch filepath.Ext(path) {
	case ".class":
		c.ScanFile(path)
	case ".jar":
		c.ScanJar(path)
	}
}

// ScanFile parses a single class file and stores the result, replacing any
// earlier result from the same file. The returned error is the parse error,
// which is also recorded on the FileInfo.
func (c *Codebase) ScanFile(path string) error {
	opts := append(c.parseOpts[:len(c.parseOpts):len(c.parseOpts)], classfile.WithLogger(log))
	cf, err := classfile.ParseFile(path, opts...)
	if err != nil {
		log.Warning("parse failed", "path", path, "error", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.storeLocked(&FileInfo{
		Name:     c.classNameFor(path),
		Path:     path,
		Source:   path,
		Class:    cf,
		ParseErr: err,
	})
	return err
}

// classNameFor derives the class key from a path below the root.
func (c *Codebase) classNameFor(path string) string {
	rel, err := filepath.Rel(c.rootDir, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(path)
	}
	return strings.TrimSuffix(filepath.ToSlash(rel), ".class")
}

func (c *Codebase) storeLocked(f *FileInfo) {
	list := c.files[f.Name]
	i := sort.Search(len(list), func(i int) bool {
		return list[i].Source >= f.Source
	})
	if i < len(list) && list[i].Source == f.Source {
		list[i] = f
		return
	}
	list = append(list, nil)
	copy(list[i+1:], list[i:])
	list[i] = f
	c.files[f.Name] = list
	if len(list) > 1 {
		log.Warning("class provided by more than one source",
			"class", f.Name, "using", list[0].Path, "sources", len(list))
	}
}

// RemoveSource drops every result that was read from source, a class file
// or a jar on disk. A class another source also provides stays, now served
// by that source.
func (c *Codebase) RemoveSource(source string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, list := range c.files {
		kept := list[:0]
		for _, f := range list {
			if f.Source != source {
				kept = append(kept, f)
			}
		}
		if len(kept) == 0 {
			delete(c.files, name)
		} else {
			c.files[name] = kept
		}
	}
}

func (c *Codebase) GetFile(name string) *FileInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if list := c.files[name]; len(list) > 0 {
		return list[0]
	}
	return nil
}

// Providers returns every source's result for name, the visible one first.
func (c *Codebase) Providers(name string) []*FileInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*FileInfo(nil), c.files[name]...)
}

func (c *Codebase) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.files)
}

// Files returns the visible result for every class, sorted by name.
func (c *Codebase) Files() []*FileInfo {
	c.mu.RLock()
	files := make([]*FileInfo, 0, len(c.files))
	for _, list := range c.files {
		files = append(files, list[0])
	}
	c.mu.RUnlock()

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files
}

// Classes returns the successfully parsed classes, keyed by name.
func (c *Codebase) Classes() map[string]*classfile.ClassFile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	classes := make(map[string]*classfile.ClassFile, len(c.files))
	for name, list := range c.files {
		if f := list[0]; f.ParseErr == nil && f.Class != nil {
			classes[name] = f.Class
		}
	}
	return classes
}

// Failed returns the results that carry a parse error, sorted by name.
func (c *Codebase) Failed() []*FileInfo {
	var failed []*FileInfo
	for _, f := range c.Files() {
		if f.ParseErr != nil {
			failed = append(failed, f)
		}
	}
	return failed
}
