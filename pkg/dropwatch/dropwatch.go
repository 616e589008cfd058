// Package dropwatch observes a directory and reports files that appear in
// it once they have settled.
package dropwatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/caiomaz/ovoscan/pkg/util"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// settleDelay is how long a file must go without further writes before it
// is considered fully dropped. Copies into the directory arrive as a create
// followed by a burst of writes.
const settleDelay = 250 * time.Millisecond

// Watcher reports dropped files to its handler, one call per settled file.
type Watcher struct {
	Handle func(pathname string)

	log     *zerolog.Logger
	mutex   sync.Mutex
	pending map[string]*time.Timer
}

// Watch begins observing dir, invoking the handler for every file that
// appears, until the context is canceled. It returns once the underlying
// watch is established; reporting happens on background goroutines.
func (w *Watcher) Watch(ctx context.Context, log *zerolog.Logger, dir string) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("unable to create watcher: %w", err)
	}

	err = fsw.Add(dir)
	if err != nil {
		fsw.Close()
		return fmt.Errorf("unable to watch %s: %w", dir, err)
	}

	w.log = log
	w.pending = map[string]*time.Timer{}

	go func() {
		defer func() {
			util.LogRecover()
			fsw.Close()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-fsw.Events:
				if !ok {
					return
				}

				if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
					w.mark(event.Name)
				}
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}

				w.log.Warn().Err(err).Str("dir", dir).Msg("watch error")
			}
		}
	}()

	return nil
}

//--------------------------------------------------------------------------------
// private

// mark schedules the file for handling, pushing the deadline back every time
// another event arrives for it.
func (w *Watcher) mark(pathname string) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if timer, ok := w.pending[pathname]; ok {
		timer.Reset(settleDelay)
		return
	}

	w.pending[pathname] = time.AfterFunc(settleDelay, func() {
		defer util.LogRecover()

		w.mutex.Lock()
		delete(w.pending, pathname)
		w.mutex.Unlock()

		w.Handle(pathname)
	})
}
