// Package watcher reports batches of Go source changes under a directory
// tree. The watch command re-runs the analysis for every batch.
package watcher

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/flowlens/pkg/errors"
)

// DefaultDebounce is the quiet period after the last change before a batch
// is delivered.
const DefaultDebounce = 300 * time.Millisecond

// Event is one batch of changed files.
type Event struct {
	Paths []string
	Time  time.Time
}

// Options configures a [Watcher].
type Options struct {
	Debounce time.Duration
	Logger   *log.Logger
}

// Watcher watches every directory under a root. Directories created later
// are added as they appear.
type Watcher struct {
	fsw      *fsnotify.Watcher
	root     string
	debounce time.Duration
	logger   *log.Logger
	events   chan Event
}

// New starts watching root.
func New(root string, opts Options) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "create watcher")
	}
	w := &Watcher{
		fsw:      fsw,
		root:     root,
		debounce: opts.Debounce,
		logger:   opts.Logger,
		events:   make(chan Event, 16),
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.logger == nil {
		w.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	n, err := w.addTree(root)
	if err != nil {
		fsw.Close()
		return nil, err
	}
	w.logger.Debug("watching", "root", root, "dirs", n)
	return w, nil
}

// addTree adds root and every directory below it that may hold sources.
func (w *Watcher) addTree(root string) (int, error) {
	n := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Warn("cannot watch directory", "path", path, "error", err)
			return nil
		}
		n++
		return nil
	})
	if err != nil {
		return n, errors.Wrap(errors.ErrCodeIO, err, "watch %s", root)
	}
	return n, nil
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "testdata" || name == "vendor"
}

// relevant reports whether a change to path can alter the analysis.
func relevant(path string) bool {
	name := filepath.Base(path)
	return strings.HasSuffix(name, ".go") || name == "go.mod" || name == "go.sum"
}

// Events returns the batch channel. It is closed when Run returns.
func (w *Watcher) Events() <-chan Event { return w.events }

// Run delivers batches until ctx is done or the underlying watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.events)
	defer w.fsw.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	var pending []string

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() && !skipDir(info.Name()) {
					if _, err := w.addTree(ev.Name); err != nil {
						w.logger.Warn("cannot watch new directory", "path", ev.Name, "error", err)
					}
					continue
				}
			}
			if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) || !relevant(ev.Name) {
				continue
			}
			if !slices.Contains(pending, ev.Name) {
				pending = append(pending, ev.Name)
			}
			timer.Reset(w.debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			slices.Sort(pending)
			batch := Event{Paths: pending, Time: time.Now()}
			pending = nil
			select {
			case w.events <- batch:
			case <-ctx.Done():
				return nil
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}
