package doubletags

import (
	"context"

	"go.uber.org/zap"
)

// LoadPartials registers every partial in store on the engine, replacing
// registered partials of the same name. Returns the number loaded.
func (e *Engine) LoadPartials(ctx context.Context, store PartialStore) (int, error) {
	names, err := store.List(ctx)
	if err != nil {
		return 0, err
	}

	loaded := make(map[string]string, len(names))
	for _, name := range names {
		source, err := store.Get(ctx, name)
		if err != nil {
			return 0, err
		}
		loaded[name] = source
	}

	e.mu.Lock()
	for name, source := range loaded {
		e.partials[name] = source
	}
	e.mu.Unlock()

	e.logger.Debug(LogMsgPartialsLoaded, zap.Int(LogFieldCount, len(loaded)))
	return len(loaded), nil
}

// SavePartials writes every registered partial to store.
func (e *Engine) SavePartials(ctx context.Context, store PartialStore) error {
	partials := e.Partials()
	for _, name := range e.PartialNames() {
		if err := store.Save(ctx, name, partials[name]); err != nil {
			return err
		}
	}

	e.logger.Debug(LogMsgPartialsSaved, zap.Int(LogFieldCount, len(partials)))
	return nil
}

// RenderStored renders the template stored under name in store. Partials
// are taken from the engine; load them first with LoadPartials.
func (e *Engine) RenderStored(ctx context.Context, store PartialStore, name string, view any) (string, error) {
	source, err := store.Get(ctx, name)
	if err != nil {
		return "", err
	}
	return e.RenderContext(ctx, source, view, nil)
}
