package doubletags

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPartialStoreDriver hands out a fixed store
type stubPartialStoreDriver struct {
	store PartialStore
	dsn   string
}

func (d *stubPartialStoreDriver) Open(connectionString string) (PartialStore, error) {
	d.dsn = connectionString
	return d.store, nil
}

func unregisterDriver(names ...string) {
	storeDriversMu.Lock()
	defer storeDriversMu.Unlock()
	for _, name := range names {
		delete(storeDrivers, name)
	}
}

func TestRegisterPartialStoreDriver(t *testing.T) {
	defer unregisterDriver("test-driver")

	RegisterPartialStoreDriver("test-driver", &stubPartialStoreDriver{store: NewMemoryPartialStore()})

	assert.Contains(t, ListPartialStoreDrivers(), "test-driver")
}

func TestRegisterPartialStoreDriver_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() {
		RegisterPartialStoreDriver("nil-driver", nil)
	})
}

func TestRegisterPartialStoreDriver_PanicsOnDuplicate(t *testing.T) {
	defer unregisterDriver("dup-driver")

	driver := &stubPartialStoreDriver{store: NewMemoryPartialStore()}
	RegisterPartialStoreDriver("dup-driver", driver)

	assert.Panics(t, func() {
		RegisterPartialStoreDriver("dup-driver", driver)
	})
}

func TestOpenPartialStore(t *testing.T) {
	defer unregisterDriver("open-test")

	store := NewMemoryPartialStore()
	driver := &stubPartialStoreDriver{store: store}
	RegisterPartialStoreDriver("open-test", driver)

	opened, err := OpenPartialStore("open-test", "connection-string")
	require.NoError(t, err)
	assert.Same(t, store, opened)
	assert.Equal(t, "connection-string", driver.dsn)
}

func TestOpenPartialStore_DriverNotFound(t *testing.T) {
	_, err := OpenPartialStore("nonexistent-driver", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgStoreDriverNotFound)
}

func TestListPartialStoreDrivers_BuiltIns(t *testing.T) {
	drivers := ListPartialStoreDrivers()
	for _, name := range []string{StoreDriverFilesystem, StoreDriverMemory, StoreDriverPostgres, StoreDriverSQLite} {
		assert.Contains(t, drivers, name)
	}
	assert.IsIncreasing(t, drivers)
}

func TestValidatePartialName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"header", true},
		{"user-card_v2", true},
		{"with.dot", true},
		{"", false},
		{"../etc/passwd", false},
		{"a..b", false},
		{"dir/name", false},
		{"dir\\name", false},
		{"colon:name", false},
		{"line\nbreak", false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.name), func(t *testing.T) {
			err := validatePartialName(tt.name)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

// testPartialStore runs the behaviour every PartialStore must share.
// newStore must return an empty, open store.
func testPartialStore(t *testing.T, newStore func(t *testing.T) PartialStore) {
	ctx := context.Background()

	t.Run("save and get", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		require.NoError(t, store.Save(ctx, "header", "<h1>{{title}}</h1>"))

		source, err := store.Get(ctx, "header")
		require.NoError(t, err)
		assert.Equal(t, "<h1>{{title}}</h1>", source)
	})

	t.Run("save replaces", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		require.NoError(t, store.Save(ctx, "p", "v1"))
		require.NoError(t, store.Save(ctx, "p", "v2"))

		source, err := store.Get(ctx, "p")
		require.NoError(t, err)
		assert.Equal(t, "v2", source)

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"p"}, names)
	})

	t.Run("empty source", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		require.NoError(t, store.Save(ctx, "blank", ""))
		source, err := store.Get(ctx, "blank")
		require.NoError(t, err)
		assert.Equal(t, "", source)
	})

	t.Run("get missing", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		_, err := store.Get(ctx, "missing")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrPartialNotFound))
	})

	t.Run("delete", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		require.NoError(t, store.Save(ctx, "gone", "x"))
		require.NoError(t, store.Delete(ctx, "gone"))

		_, err := store.Get(ctx, "gone")
		assert.True(t, errors.Is(err, ErrPartialNotFound))

		err = store.Delete(ctx, "gone")
		assert.True(t, errors.Is(err, ErrPartialNotFound))
	})

	t.Run("list sorted", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, names)

		for _, name := range []string{"c", "a", "b"} {
			require.NoError(t, store.Save(ctx, name, name))
		}

		names, err = store.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, names)
	})

	t.Run("rejects invalid names", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		assert.Error(t, store.Save(ctx, "", "x"))
		assert.Error(t, store.Save(ctx, "../escape", "x"))
	})

	t.Run("cancelled context", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		assert.ErrorIs(t, store.Save(cancelled, "x", "x"), context.Canceled)
		_, err := store.Get(cancelled, "x")
		assert.ErrorIs(t, err, context.Canceled)
		_, err = store.List(cancelled)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("closed", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Close())

		_, err := store.Get(ctx, "x")
		assert.True(t, errors.Is(err, ErrStoreClosed))
		assert.True(t, errors.Is(store.Save(ctx, "x", "x"), ErrStoreClosed))
		assert.True(t, errors.Is(store.Delete(ctx, "x"), ErrStoreClosed))
		_, err = store.List(ctx)
		assert.True(t, errors.Is(err, ErrStoreClosed))
	})

	t.Run("concurrent saves", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				assert.NoError(t, store.Save(ctx, fmt.Sprintf("p%d", i), "x"))
			}(i)
		}
		wg.Wait()

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Len(t, names, 10)
	})
}

func TestEngine_LoadAndSavePartials(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryPartialStore()
	require.NoError(t, store.Save(ctx, "greet", "Hi {{name}}!"))
	require.NoError(t, store.Save(ctx, "bye", "Bye {{name}}."))

	engine := MustNew(WithPartials(map[string]string{"greet": "old", "local": "L"}))

	count, err := engine.LoadPartials(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, "Hi Sam! Bye Sam.", engine.Render("{{> greet}} {{> bye}}", map[string]any{"name": "Sam"}))

	target := NewMemoryPartialStore()
	require.NoError(t, engine.SavePartials(ctx, target))

	names, err := target.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"bye", "greet", "local"}, names)
}

func TestEngine_LoadPartialsClosedStore(t *testing.T) {
	store := NewMemoryPartialStore()
	require.NoError(t, store.Close())

	_, err := MustNew().LoadPartials(context.Background(), store)
	assert.True(t, errors.Is(err, ErrStoreClosed))
}

func TestEngine_RenderStored(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryPartialStore()
	require.NoError(t, store.Save(ctx, "page", "{{#items}}{{> item}}{{/items}}"))
	require.NoError(t, store.Save(ctx, "item", "[{{.}}]"))

	engine := MustNew()
	_, err := engine.LoadPartials(ctx, store)
	require.NoError(t, err)

	out, err := engine.RenderStored(ctx, store, "page", map[string]any{"items": []any{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, "[1][2]", out)

	_, err = engine.RenderStored(ctx, store, "missing", nil)
	assert.True(t, errors.Is(err, ErrPartialNotFound))
}
