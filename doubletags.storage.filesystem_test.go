package doubletags

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesystemPartialStore(t *testing.T) {
	testPartialStore(t, func(t *testing.T) PartialStore {
		store, err := NewFilesystemPartialStore(t.TempDir())
		require.NoError(t, err)
		return store
	})
}

func TestFilesystemPartialStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "partials")

	store, err := NewFilesystemPartialStore(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestFilesystemPartialStore_EmptyDir(t *testing.T) {
	_, err := NewFilesystemPartialStore("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgInvalidStoreDir)
}

func TestFilesystemPartialStore_FileLayout(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFilesystemPartialStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "footer", "bye"))

	data, err := os.ReadFile(filepath.Join(dir, "footer"+FilesystemPartialExt))
	require.NoError(t, err)
	assert.Equal(t, "bye", string(data))
}

func TestFilesystemPartialStore_ListIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFilesystemPartialStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.tmpl"), []byte("A"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.tmpl123"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.tmpl"), 0o755))

	names, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, names)
}

func TestPartialNameFromFile(t *testing.T) {
	tests := []struct {
		path string
		name string
		ok   bool
	}{
		{"/x/header.tmpl", "header", true},
		{"header.tmpl", "header", true},
		{"/x/header.tmpl4821", "", false},
		{"/x/header.txt", "", false},
		{"/x/.tmpl", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			name, ok := PartialNameFromFile(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.name, name)
		})
	}
}

func TestFilesystemPartialStore_Driver(t *testing.T) {
	dir := t.TempDir()

	store, err := OpenPartialStore(StoreDriverFilesystem, dir)
	require.NoError(t, err)
	defer store.Close()

	fsStore, ok := store.(*FilesystemPartialStore)
	require.True(t, ok)
	assert.Equal(t, dir, fsStore.Dir())
}
