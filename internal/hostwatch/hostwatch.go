// Package hostwatch notifies the CLI when a host-file the operator is
// editing changes on disk, so "--watch" can re-run against the edited host
// list instead of a stale one.
package hostwatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher notifies on Changed whenever path is written, created or
// atomically renamed into place - the pattern most editors use for saves.
type Watcher struct {
	Changed chan string

	watcher *fsnotify.Watcher
	path    string
	log     *slog.Logger
}

// New starts watching path. Call Close when done.
func New(ctx context.Context, path string, log *slog.Logger) (*Watcher, error) {
	if log == nil {
		log = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(path); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		Changed: make(chan string, 1),
		watcher: fw,
		path:    path,
		log:     log,
	}
	go w.run(ctx)
	return w, nil
}

func (w *Watcher) run(ctx context.Context) {
	defer w.watcher.Close()
	defer close(w.Changed)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.log.Debug("host file event", "op", event.Op.String(), "file", event.Name)

			// Editors using atomic writes remove the original from the
			// watch list; re-add it so future saves keep notifying.
			if event.Op&(fsnotify.Rename|fsnotify.Remove|fsnotify.Create) != 0 {
				go w.reattach()
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			select {
			case w.Changed <- w.path:
			default:
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("host file watch error", "error", err)
		}
	}
}

func (w *Watcher) reattach() {
	for attempt := 0; attempt < 5; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(10<<uint(attempt-1)) * time.Millisecond)
		}
		w.watcher.Remove(w.path)
		if err := w.watcher.Add(w.path); err == nil {
			return
		}
	}
	w.log.Error("failed to re-add host file watch", "path", w.path)
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
