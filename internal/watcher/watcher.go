package watcher

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/osmarcav/priority-graph/internal/strategy"
)

// Watcher reloads a strategy document whenever its file changes on disk
// and hands the re-parsed document to a callback. Documents that fail
// validation are reported through onError and never reach onChange.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	onChange func(*strategy.Document)
	onError  func(error)
	stopCh   chan struct{}
}

// New creates a watcher for the strategy document at path. The parent
// directory is watched rather than the file itself, so editors that
// replace the file on save are still picked up.
func New(path string, onChange func(*strategy.Document), onError func(error)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	w := &Watcher{
		watcher:  fsw,
		path:     path,
		onChange: onChange,
		onError:  onError,
		stopCh:   make(chan struct{}),
	}

	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return w, nil
}

// Start begins watching in a background goroutine.
func (w *Watcher) Start() {
	go w.watchLoop()
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	close(w.stopCh)
	w.watcher.Close()
}

// watchLoop processes filesystem events for the strategy document.
func (w *Watcher) watchLoop() {
	target := filepath.Base(w.path)
	debounceTimer := time.NewTimer(0)
	<-debounceTimer.C // drain initial timer

	for {
		select {
		case <-w.stopCh:
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

			// Debounce: editors fire several events per save.
			debounceTimer.Reset(100 * time.Millisecond)

		case <-debounceTimer.C:
			doc, err := strategy.LoadValidated(w.path)
			if err != nil {
				if w.onError != nil {
					w.onError(err)
				}
				continue
			}
			if w.onChange != nil {
				w.onChange(doc)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}
