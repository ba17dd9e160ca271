// Package filewatcher monitors the source data file for changes.
// A change signal is the explicit rebuild trigger: the host reacts by
// forcing a re-embed of the whole index.
package filewatcher

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher watches one file and emits a signal per settled change.
// Writes are debounced because editors and exporters produce bursts of
// events for a single save.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
}

// New creates a file watcher.
func New(debounce time.Duration) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Watcher{watcher: w, debounce: debounce}, nil
}

// Watch monitors path until ctx is done, emitting one signal per settled
// change. The parent directory is watched because many tools replace the
// file instead of writing it in place.
func (w *Watcher) Watch(ctx context.Context, path string) (<-chan struct{}, error) {
	dir := filepath.Dir(path)
	if err := w.watcher.Add(dir); err != nil {
		return nil, err
	}
	target := filepath.Base(path)

	signals := make(chan struct{}, 1)

	go func() {
		defer close(signals)

		var timer *time.Timer
		var timerC <-chan time.Time

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(w.debounce)
					timerC = timer.C
				} else {
					timer.Reset(w.debounce)
				}
			case <-timerC:
				timer = nil
				timerC = nil
				select {
				case signals <- struct{}{}:
				default: // a signal is already pending
				}
			case _, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return signals, nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}
