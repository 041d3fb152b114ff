package pipeline

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/salacoste/swagger-mcp-server/internal/logging"
)

// GenerationWatcher watches search_index/current for the atomic symlink
// swap writeGenerationMarker performs at the end of a Run, and calls
// OnGenerationChange so a long-lived server can reload without a restart.
// Grounded on the teacher's internal/core.MangleWatcher: an fsnotify.Watcher
// wrapped in a domain type with a debounced, channel-driven event loop.
type GenerationWatcher struct {
	mu      sync.Mutex
	watcher *fsnotify.Watcher
	dir     string

	debounce    time.Duration
	lastEventAt time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewGenerationWatcher watches indexDir (search.index_directory) for
// changes to its "current" symlink.
func NewGenerationWatcher(indexDir string) (*GenerationWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &GenerationWatcher{
		watcher:  watcher,
		dir:      indexDir,
		debounce: 250 * time.Millisecond,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start adds indexDir to the watch list and begins the event loop in a
// goroutine. onChange is invoked (off the event-loop goroutine is not
// guaranteed; callers must be safe to call from this watcher's own
// goroutine) once per settled batch of symlink-swap events.
func (w *GenerationWatcher) Start(ctx context.Context, onChange func()) error {
	if err := w.watcher.Add(w.dir); err != nil {
		logging.BootWarn("generation watcher: initial watch of %s failed: %v", w.dir, err)
	} else {
		logging.Boot("generation watcher: watching %s", w.dir)
	}
	go w.run(ctx, onChange)
	return nil
}

// Stop terminates the event loop and closes the underlying fsnotify watcher.
func (w *GenerationWatcher) Stop() {
	close(w.stopCh)
	<-w.doneCh
	if err := w.watcher.Close(); err != nil {
		logging.BootWarn("generation watcher: close failed: %v", err)
	}
}

func (w *GenerationWatcher) run(ctx context.Context, onChange func()) {
	defer close(w.doneCh)

	debounceTicker := time.NewTicker(100 * time.Millisecond)
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.BootWarn("generation watcher error: %v", err)
		case <-debounceTicker.C:
			w.maybeFire(onChange)
		}
	}
}

// handleEvent records that the "current" entry moved. Any other file in
// indexDir (a new generation's own directory being populated) is ignored;
// only the symlink swap itself means a new generation is live.
func (w *GenerationWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Base(event.Name) != "current" {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Rename|fsnotify.Write) == 0 {
		return
	}
	w.mu.Lock()
	w.lastEventAt = time.Now()
	w.mu.Unlock()
}

func (w *GenerationWatcher) maybeFire(onChange func()) {
	w.mu.Lock()
	due := !w.lastEventAt.IsZero() && time.Since(w.lastEventAt) >= w.debounce
	if due {
		w.lastEventAt = time.Time{}
	}
	w.mu.Unlock()
	if due {
		onChange()
	}
}
