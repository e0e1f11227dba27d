// Package watch polls glob patterns for filesystem changes.
package watch

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

type ChangeSet struct {
	Added    []string
	Removed  []string
	Modified []string
}

type Watcher struct {
	patterns []string
	interval time.Duration
}

func New(patterns []string, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	return &Watcher{patterns: patterns, interval: interval}
}

// Run takes an initial snapshot, then polls on the configured interval and
// delivers a ChangeSet for every detected change until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context, changes chan<- ChangeSet) error {
	prev, err := w.snapshot()
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			next, err := w.snapshot()
			if err != nil {
				return err
			}
			cs := diff(prev, next)
			if cs == nil {
				continue
			}
			prev = next
			select {
			case changes <- *cs:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// snapshot maps every matched file to its modification time. Files that
// vanish between glob and stat are skipped.
func (w *Watcher) snapshot() (map[string]int64, error) {
	files := make(map[string]int64)
	for _, pattern := range w.patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil || info.IsDir() {
				continue
			}
			files[match] = info.ModTime().UnixNano()
		}
	}
	return files, nil
}

func diff(prev, next map[string]int64) *ChangeSet {
	var cs ChangeSet
	for path, mod := range next {
		prevMod, ok := prev[path]
		switch {
		case !ok:
			cs.Added = append(cs.Added, path)
		case prevMod != mod:
			cs.Modified = append(cs.Modified, path)
		}
	}
	for path := range prev {
		if _, ok := next[path]; !ok {
			cs.Removed = append(cs.Removed, path)
		}
	}
	if len(cs.Added)+len(cs.Removed)+len(cs.Modified) == 0 {
		return nil
	}
	sort.Strings(cs.Added)
	sort.Strings(cs.Removed)
	sort.Strings(cs.Modified)
	return &cs
}
