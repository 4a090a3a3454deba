package store_test

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/randalmurphal/rake/pkg/rake/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeFactory creates a store instance for testing.
type storeFactory func(t *testing.T) store.Store

// storeContractTest runs contract tests against any Store implementation.
func storeContractTest(t *testing.T, name string, factory storeFactory) {
	t.Run(name+"/Put_and_Get", func(t *testing.T) {
		s := factory(t)
		defer s.Close()

		require.NoError(t, s.Put("ns", store.KeySuperProperties, `{"plan":"free"}`))

		v, err := s.Get("ns", store.KeySuperProperties)
		require.NoError(t, err)
		assert.Equal(t, `{"plan":"free"}`, v)
	})

	t.Run(name+"/Get_NotFound", func(t *testing.T) {
		s := factory(t)
		defer s.Close()

		_, err := s.Get("ns-missing", "key")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run(name+"/Put_Overwrite", func(t *testing.T) {
		s := factory(t)
		defer s.Close()

		require.NoError(t, s.Put("ns", "k", "first"))
		require.NoError(t, s.Put("ns", "k", "second"))

		v, err := s.Get("ns", "k")
		require.NoError(t, err)
		assert.Equal(t, "second", v)
	})

	t.Run(name+"/Namespaces_Isolated", func(t *testing.T) {
		s := factory(t)
		defer s.Close()

		require.NoError(t, s.Put("a", "k", "from-a"))
		require.NoError(t, s.Put("b", "k", "from-b"))

		v, err := s.Get("a", "k")
		require.NoError(t, err)
		assert.Equal(t, "from-a", v)
	})

	t.Run(name+"/ClearAll", func(t *testing.T) {
		s := factory(t)
		defer s.Close()

		require.NoError(t, s.Put("a", "k1", "1"))
		require.NoError(t, s.Put("a", "k2", "2"))
		require.NoError(t, s.Put("b", "k1", "other"))
		require.NoError(t, s.ClearAll("a"))

		_, err := s.Get("a", "k1")
		assert.ErrorIs(t, err, store.ErrNotFound)
		_, err = s.Get("a", "k2")
		assert.ErrorIs(t, err, store.ErrNotFound)

		v, err := s.Get("b", "k1")
		require.NoError(t, err)
		assert.Equal(t, "other", v)
	})

	t.Run(name+"/ClearAll_Empty", func(t *testing.T) {
		s := factory(t)
		defer s.Close()

		assert.NoError(t, s.ClearAll("nothing-here"))
	})

	t.Run(name+"/Closed", func(t *testing.T) {
		s := factory(t)
		require.NoError(t, s.Close())

		_, err := s.Get("ns", "k")
		assert.ErrorIs(t, err, store.ErrStoreClosed)
		assert.ErrorIs(t, s.Put("ns", "k", "v"), store.ErrStoreClosed)
		assert.ErrorIs(t, s.ClearAll("ns"), store.ErrStoreClosed)
	})
}

func TestMemoryStore_Contract(t *testing.T) {
	storeContractTest(t, "MemoryStore", func(t *testing.T) store.Store {
		return store.NewMemoryStore()
	})
}

func TestSQLiteStore_Contract(t *testing.T) {
	storeContractTest(t, "SQLiteStore", func(t *testing.T) store.Store {
		s, err := store.NewSQLiteStore(":memory:")
		require.NoError(t, err)
		return s
	})
}

func TestNamespace(t *testing.T) {
	assert.Equal(t, "com.rake.android.rkmetrics.RakeAPI_abc", store.Namespace("abc"))
}

func TestMemoryStore_Puts(t *testing.T) {
	s := store.NewMemoryStore()
	require.NoError(t, s.Put("ns", "k", "v"))
	require.NoError(t, s.Put("ns", "k", "v2"))
	assert.Equal(t, 2, s.Puts())
}

func TestSQLiteStore_Persistence(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "rake.db")

	s1, err := store.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s1.Put("ns", store.KeySuperProperties, `{"a":1}`))
	require.NoError(t, s1.Close())

	s2, err := store.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer s2.Close()

	v, err := s2.Get("ns", store.KeySuperProperties)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, v)
}

func TestSQLiteStore_InvalidPath(t *testing.T) {
	_, err := store.NewSQLiteStore("/nonexistent/path/db.sqlite")
	assert.Error(t, err)
}

func TestSQLiteStore_CloseIdempotent(t *testing.T) {
	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)

	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}

func TestSQLiteStore_Concurrent(t *testing.T) {
	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer s.Close()

	const numGoroutines = 20
	const numOps = 20

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()

			ns := "ns-" + string(rune('a'+id%26))
			for j := 0; j < numOps; j++ {
				switch j % 3 {
				case 0, 1:
					_ = s.Put(ns, "k", "v")
				case 2:
					_, _ = s.Get(ns, "k")
				}
			}
		}(i)
	}

	wg.Wait()

	v, err := s.Get("ns-a", "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}
