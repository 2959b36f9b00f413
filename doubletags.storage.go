package doubletags

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// PartialStore is the interface for pluggable partial backends.
// Implementations must be safe for concurrent use.
//
// The interface follows patterns from database/sql for familiarity:
// - Context for cancellation and timeouts
// - Explicit error returns
// - Close for resource cleanup
type PartialStore interface {
	// Get returns the source of a partial.
	// Returns an error wrapping ErrPartialNotFound if it doesn't exist.
	Get(ctx context.Context, name string) (string, error)

	// Save stores a partial, replacing any existing source.
	Save(ctx context.Context, name, source string) error

	// Delete removes a partial.
	// Returns an error wrapping ErrPartialNotFound if it doesn't exist.
	Delete(ctx context.Context, name string) error

	// List returns all partial names in sorted order.
	List(ctx context.Context) ([]string, error)

	// Close releases any resources held by the store.
	// After Close, every other method returns an error wrapping ErrStoreClosed.
	Close() error
}

// PartialStoreDriver is a factory for creating store instances.
// Drivers register themselves during init().
type PartialStoreDriver interface {
	// Open creates a new store with the given connection string.
	// The format of the connection string is driver-specific.
	Open(connectionString string) (PartialStore, error)
}

// Partial store driver registry
var (
	storeDriversMu sync.RWMutex
	storeDrivers   = make(map[string]PartialStoreDriver)
)

// RegisterPartialStoreDriver registers a store driver by name.
// This is typically called from a driver's init() function.
// Panics if the driver is nil or a driver with the same name is already registered.
func RegisterPartialStoreDriver(name string, driver PartialStoreDriver) {
	storeDriversMu.Lock()
	defer storeDriversMu.Unlock()

	if driver == nil {
		panic(ErrMsgNilStoreDriver)
	}
	if _, exists := storeDrivers[name]; exists {
		panic(ErrMsgStoreDriverExists + ": " + name)
	}
	storeDrivers[name] = driver
}

// OpenPartialStore opens a store using the named driver.
// The connection string format is driver-specific.
//
// Example:
//
//	store, err := doubletags.OpenPartialStore("memory", "")
//	store, err := doubletags.OpenPartialStore("filesystem", "/path/to/partials")
//	store, err := doubletags.OpenPartialStore("sqlite", "/path/to/partials.db")
func OpenPartialStore(driverName, connectionString string) (PartialStore, error) {
	storeDriversMu.RLock()
	driver, ok := storeDrivers[driverName]
	storeDriversMu.RUnlock()

	if !ok {
		return nil, NewStoreDriverNotFoundError(driverName)
	}

	return driver.Open(connectionString)
}

// ListPartialStoreDrivers returns the names of all registered drivers in sorted order.
func ListPartialStoreDrivers() []string {
	storeDriversMu.RLock()
	defer storeDriversMu.RUnlock()

	names := make([]string, 0, len(storeDrivers))
	for name := range storeDrivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// validatePartialName rejects names no store accepts. The filesystem store
// uses names as file names, and every store applies the same rules.
func validatePartialName(name string) error {
	if name == "" {
		return NewEmptyPartialNameError()
	}
	if strings.Contains(name, "..") {
		return NewInvalidPartialNameError(name, ErrMsgPathTraversalDetected)
	}
	if strings.ContainsAny(name, invalidPartialNameChars) {
		return NewInvalidPartialNameError(name, ErrMsgInvalidPartialName)
	}
	return nil
}

// invalidPartialNameChars are characters not allowed in stored partial names
const invalidPartialNameChars = "/\\:*?\"<>|\x00\n"
