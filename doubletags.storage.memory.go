package doubletags

import (
	"context"
	"sort"
	"sync"
)

// MemoryPartialStore is an in-memory implementation of PartialStore.
// It is primarily intended for testing and development.
// All data is lost when the process terminates.
type MemoryPartialStore struct {
	mu       sync.RWMutex
	partials map[string]string
	closed   bool
}

// MemoryPartialStoreDriver is the driver for creating MemoryPartialStore instances.
type MemoryPartialStoreDriver struct{}

func init() {
	RegisterPartialStoreDriver(StoreDriverMemory, &MemoryPartialStoreDriver{})
}

// Open creates a new MemoryPartialStore.
// The connection string is ignored for memory stores.
func (d *MemoryPartialStoreDriver) Open(connectionString string) (PartialStore, error) {
	return NewMemoryPartialStore(), nil
}

// NewMemoryPartialStore creates a new in-memory partial store.
func NewMemoryPartialStore() *MemoryPartialStore {
	return &MemoryPartialStore{
		partials: make(map[string]string),
	}
}

// Get returns the source of a partial.
func (s *MemoryPartialStore) Get(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return "", NewStoreClosedError()
	}

	source, ok := s.partials[name]
	if !ok {
		return "", NewPartialNotFoundError(name)
	}
	return source, nil
}

// Save stores a partial.
func (s *MemoryPartialStore) Save(ctx context.Context, name, source string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validatePartialName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStoreClosedError()
	}

	s.partials[name] = source
	return nil
}

// Delete removes a partial.
func (s *MemoryPartialStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStoreClosedError()
	}

	if _, ok := s.partials[name]; !ok {
		return NewPartialNotFoundError(name)
	}
	delete(s.partials, name)
	return nil
}

// List returns all partial names in sorted order.
func (s *MemoryPartialStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStoreClosedError()
	}

	names := make([]string, 0, len(s.partials))
	for name := range s.partials {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Close marks the store as closed and releases its data.
func (s *MemoryPartialStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.partials = nil
	return nil
}
