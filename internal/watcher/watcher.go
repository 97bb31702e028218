// Package watcher monitors import staging folders for new arrivals.
// It only reports activity; nothing is imported until the user selects
// entries explicitly.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event signals that something arrived or changed inside a watched
// staging folder, after the file stopped growing.
type Event struct {
	FolderID string
	Path     string
	ModTime  time.Time
}

// Watcher watches import folders with fsnotify and debounces bursts of
// write events into a single arrival notification per path.
type Watcher struct {
	logger   *slog.Logger
	settle   time.Duration
	notifier *fsnotify.Watcher

	mu      sync.Mutex
	folders map[string]string      // watched root path -> folder ID
	pending map[string]*time.Timer // path -> settle timer
	closed  bool

	events chan Event
	done   chan struct{}
}

// New creates a watcher. settle is how long a path must stay quiet
// before an event is emitted; zero picks a sensible default.
func New(logger *slog.Logger, settle time.Duration) (*Watcher, error) {
	if settle <= 0 {
		settle = 2 * time.Second
	}

	notifier, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	return &Watcher{
		logger:   logger,
		settle:   settle,
		notifier: notifier,
		folders:  make(map[string]string),
		pending:  make(map[string]*time.Timer),
		events:   make(chan Event, 100),
		done:     make(chan struct{}),
	}, nil
}

// AddFolder starts watching an import folder root.
func (w *Watcher) AddFolder(folderID, path string) error {
	path = filepath.Clean(path)

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat import folder: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("import folder is not a directory: %s", path)
	}

	if err := w.notifier.Add(path); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	w.mu.Lock()
	w.folders[path] = folderID
	w.mu.Unlock()

	w.logger.Debug("watching import folder", "folder_id", folderID, "path", path)
	return nil
}

// Events returns the channel arrival notifications are delivered on.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start processes filesystem notifications until the context is
// canceled. It blocks; run it in its own goroutine. The events channel
// stays open until Stop so that settle timers still in flight cannot
// hit a closed channel.
func (w *Watcher) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			return nil
		case event, ok := <-w.notifier.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				w.schedule(event.Name)
			}
		case err, ok := <-w.notifier.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// Stop stops the watcher, cancels any pending settle timers and closes
// the events channel. Safe to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
	close(w.done)
	close(w.events)
	w.mu.Unlock()

	return w.notifier.Close()
}

// schedule arms (or re-arms) the settle timer for a path. Hidden files
// and partial-download droppings never settle into events.
func (w *Watcher) schedule(path string) {
	base := filepath.Base(path)
	if base == "" || base[0] == '.' {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.settle)
		return
	}
	w.pending[path] = time.AfterFunc(w.settle, func() {
		w.emit(path)
	})
}

func (w *Watcher) emit(path string) {
	w.mu.Lock()
	delete(w.pending, path)
	folderID := w.folders[filepath.Dir(path)]
	w.mu.Unlock()

	info, err := os.Stat(path)
	if err != nil {
		// Settled and vanished, likely a temp file.
		return
	}

	event := Event{
		FolderID: folderID,
		Path:     path,
		ModTime:  info.ModTime(),
	}

	// Stop closes the channel under the same lock, so a timer that fired
	// during shutdown cannot send into it.
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	select {
	case w.events <- event:
	default:
		w.logger.Warn("watcher event buffer full, dropping event", "path", path)
	}
}
