package doubletags

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/natefinch/atomic"
)

// FilesystemPartialStore stores each partial as a file in one directory.
//
// Directory structure:
//
//	<dir>/
//	  header.tmpl
//	  footer.tmpl
//	  ...
//
// Files are replaced atomically, so a concurrent reader (or WatchPartials)
// never sees a half-written partial.
type FilesystemPartialStore struct {
	mu     sync.RWMutex
	dir    string
	closed bool
}

// FilesystemPartialStoreDriver is the driver for creating FilesystemPartialStore instances.
type FilesystemPartialStoreDriver struct{}

func init() {
	RegisterPartialStoreDriver(StoreDriverFilesystem, &FilesystemPartialStoreDriver{})
}

// Open creates a new FilesystemPartialStore.
// The connection string is the directory path.
func (d *FilesystemPartialStoreDriver) Open(connectionString string) (PartialStore, error) {
	return NewFilesystemPartialStore(connectionString)
}

// NewFilesystemPartialStore creates a store rooted at dir.
// The directory will be created if it doesn't exist.
func NewFilesystemPartialStore(dir string) (*FilesystemPartialStore, error) {
	if dir == "" {
		return nil, NewStoreConfigError(ErrMsgInvalidStoreDir)
	}

	if err := os.MkdirAll(dir, FilesystemDirPermissions); err != nil {
		return nil, NewStoreError(err, dir)
	}

	return &FilesystemPartialStore{dir: dir}, nil
}

// Dir returns the directory the store reads and writes.
func (s *FilesystemPartialStore) Dir() string {
	return s.dir
}

// Get returns the source of a partial.
func (s *FilesystemPartialStore) Get(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := validatePartialName(name); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return "", NewStoreClosedError()
	}

	data, err := os.ReadFile(s.partialPath(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", NewPartialNotFoundError(name)
		}
		return "", NewStoreError(err, name)
	}
	return string(data), nil
}

// Save writes a partial, replacing the file atomically.
func (s *FilesystemPartialStore) Save(ctx context.Context, name, source string) error {
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

	if err := atomic.WriteFile(s.partialPath(name), strings.NewReader(source)); err != nil {
		return NewStoreError(err, name)
	}
	return nil
}

// Delete removes a partial's file.
func (s *FilesystemPartialStore) Delete(ctx context.Context, name string) error {
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

	if err := os.Remove(s.partialPath(name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewPartialNotFoundError(name)
		}
		return NewStoreError(err, name)
	}
	return nil
}

// List returns the names of all partial files in sorted order.
// Files without the partial extension are ignored.
func (s *FilesystemPartialStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStoreClosedError()
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, NewStoreError(err, s.dir)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if name, ok := PartialNameFromFile(entry.Name()); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Close marks the store as closed. Files are left in place.
func (s *FilesystemPartialStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

func (s *FilesystemPartialStore) partialPath(name string) string {
	return filepath.Join(s.dir, name+FilesystemPartialExt)
}

// PartialNameFromFile returns the partial name stored in a file, or false if
// the file is not a partial file.
func PartialNameFromFile(path string) (string, bool) {
	base := filepath.Base(path)
	if filepath.Ext(base) != FilesystemPartialExt {
		return "", false
	}
	name := strings.TrimSuffix(base, FilesystemPartialExt)
	if validatePartialName(name) != nil {
		return "", false
	}
	return name, true
}
