package local

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kamal-hamza/px-cli/internal/logger"
)

// DefaultDebounce is used when a Watcher is created with a zero debounce
const DefaultDebounce = 500 * time.Millisecond

// Change reports a settled burst of filesystem events
type Change struct {
	Events int
	Last   string
}

// Watcher reports changes under a library directory. Bursts of events are
// coalesced: one Change is delivered after no event arrived for the
// debounce interval.
type Watcher struct {
	root     string
	debounce time.Duration
	fsw      *fsnotify.Watcher
	changes  chan Change
}

// NewWatcher watches root and every non-hidden directory below it
func NewWatcher(root string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		root:     root,
		debounce: debounce,
		fsw:      fsw,
		changes:  make(chan Change, 1),
	}
	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
}

// Changes delivers settled changes. A slow reader sees one pending Change
// rather than a backlog.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Run processes events until ctx is cancelled or the watcher is closed
func (w *Watcher) Run(ctx context.Context) error {
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	var pending Change
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if isHidden(filepath.Base(event.Name)) {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}

			if event.Has(fsnotify.Create) {
				// New directories are watched too; errors just leave them unwatched
				if err := w.addTree(event.Name); err != nil {
					logger.Debug("not watching new path", logger.KeyPath, event.Name, logger.KeyError, err.Error())
				}
			}

			pending.Events++
			pending.Last = event.Name
			timer.Reset(w.debounce)

		case <-timer.C:
			if pending.Events == 0 {
				continue
			}
			select {
			case w.changes <- pending:
			default:
				// A change is already queued; the reader will re-list anyway
			}
			logger.Debug("library changed", logger.KeyPath, pending.Last, logger.KeyCount, pending.Events)
			pending = Change{}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", logger.KeyError, err.Error())

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close stops watching
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~")
}
