package codebase

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"time"
)

// FileWatcher keeps a Codebase in step with the files under its root by
// polling modification times.
type FileWatcher struct {
	codebase     *Codebase
	pollInterval time.Duration
	modTimes     map[string]time.Time
	onChange     func(changed, removed []string)
}

func NewFileWatcher(c *Codebase, interval time.Duration) *FileWatcher {
	if interval <= 0 {
		interval = time.Second
	}
	return &FileWatcher{
		codebase:     c,
		pollInterval: interval,
		modTimes:     make(map[string]time.Time),
	}
}

// OnChange registers fn to be called after every poll that saw a change.
func (w *FileWatcher) OnChange(fn func(changed, removed []string)) {
	w.onChange = fn
}

// Run polls until ctx is done and returns ctx.Err().
func (w *FileWatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.Poll()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.Poll()
		}
	}
}

// Poll rescans new or modified sources and forgets deleted ones. It
// returns the paths it rescanned and the paths it dropped.
func (w *FileWatcher) Poll() (changed, removed []string) {
	current := make(map[string]bool)

	filepath.WalkDir(w.codebase.RootDir(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != w.codebase.RootDir() && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !isScannable(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}

		current[path] = true

		lastMod, known := w.modTimes[path]
		if !known || info.ModTime().After(lastMod) {
			w.modTimes[path] = info.ModTime()
			if known {
				w.codebase.RemoveSource(path)
			}
			w.codebase.scanPath(path)
			changed = append(changed, path)
		}
		return nil
	})

	for path := range w.modTimes {
		if !current[path] {
			delete(w.modTimes, path)
			w.codebase.RemoveSource(path)
			removed = append(removed, path)
		}
	}

	if len(changed)+len(removed) > 0 {
		log.Debug("sources changed", "changed", len(changed), "removed", len(removed))
		if w.onChange != nil {
			w.onChange(changed, removed)
		}
	}
	return changed, removed
}
