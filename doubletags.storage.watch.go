package doubletags

import (
	"context"
	"errors"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchPartials loads every partial from store and keeps the engine in sync
// with its directory until ctx is done: created or rewritten files are
// registered, removed or renamed ones unregistered.
//
// WatchPartials returns once the directory is being watched. The returned
// channel is closed when watching stops.
func (e *Engine) WatchPartials(ctx context.Context, store *FilesystemPartialStore) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, NewWatchError(err, store.Dir())
	}
	if err := watcher.Add(store.Dir()); err != nil {
		watcher.Close()
		return nil, NewWatchError(err, store.Dir())
	}

	// Load after the watch is in place so no write between the two is missed.
	if _, err := e.LoadPartials(ctx, store); err != nil {
		watcher.Close()
		return nil, err
	}

	e.logger.Debug(LogMsgWatchStarted, zap.String(LogFieldDir, store.Dir()))

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				e.logger.Debug(LogMsgWatchStopped, zap.String(LogFieldDir, store.Dir()))
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				e.handlePartialEvent(ctx, store, event)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				e.logger.Warn(LogMsgWatchError, zap.Error(err))
			}
		}
	}()

	return done, nil
}

func (e *Engine) handlePartialEvent(ctx context.Context, store *FilesystemPartialStore, event fsnotify.Event) {
	name, ok := PartialNameFromFile(event.Name)
	if !ok {
		return
	}

	switch {
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		source, err := store.Get(ctx, name)
		if err != nil {
			// Removed again before it could be read; the remove event follows.
			if !errors.Is(err, ErrPartialNotFound) {
				e.logger.Warn(LogMsgWatchReloadFailed, zap.String(LogFieldPartial, name), zap.Error(err))
			}
			return
		}
		e.mu.Lock()
		e.partials[name] = source
		e.mu.Unlock()
		e.logger.Debug(LogMsgWatchReloaded,
			zap.String(LogFieldPartial, name),
			zap.String(LogFieldEvent, event.Op.String()))
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		e.DeletePartial(name)
	}
}
