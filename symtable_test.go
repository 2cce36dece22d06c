package symtable

import (
	"math/rand/v2"
	"slices"
	"strconv"
	"testing"

	"github.com/indigo-web/symtable/errors"
	"github.com/indigo-web/symtable/settings"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func newTable[V any](t *testing.T, backend settings.Backend) Table[V] {
	tbl, err := New[V](NewFactory(settings.Settings{Backend: backend}))
	require.NoError(t, err)
	return tbl
}

func TestNew(t *testing.T) {
	t.Run("backends", func(t *testing.T) {
		for _, backend := range []settings.Backend{settings.Hash, settings.List, ""} {
			tbl := newTable[int](t, backend)
			require.True(t, tbl.Put("a", 1))
			require.Equal(t, 1, tbl.Len())
		}
	})

	t.Run("unknown backend", func(t *testing.T) {
		tbl, err := New[int](NewFactory(settings.Settings{Backend: "tree"}))
		require.Nil(t, tbl)
		require.True(t, errors.Is(err, errors.ErrBackend))
	})

	t.Run("bad stages", func(t *testing.T) {
		_, err := New[int](NewFactory(settings.Settings{
			Growth: settings.Growth{Stages: []int{5, 3}},
		}))
		require.True(t, errors.Is(err, errors.ErrStages))
	})

	t.Run("memory limit", func(t *testing.T) {
		for _, backend := range []settings.Backend{settings.Hash, settings.List} {
			tbl, err := New[int](NewFactory(settings.Settings{
				Backend: backend,
				Memory:  settings.Memory{Limit: 1},
			}))
			require.Nil(t, tbl)
			require.True(t, errors.Is(err, errors.ErrNoMemory))
		}
	})

	t.Run("shared limit", func(t *testing.T) {
		factory := NewFactory(settings.Settings{
			Backend: settings.List,
			Memory:  settings.Memory{Limit: 1024},
		})

		var tables []Table[int]
		for {
			tbl, err := New[int](factory)
			if err != nil {
				require.True(t, errors.Is(err, errors.ErrNoMemory))
				break
			}

			tables = append(tables, tbl)
		}

		require.NotEmpty(t, tables)
		tables[0].Free()
		_, err := New[int](factory)
		require.NoError(t, err)
	})
}

func TestInstrument(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		factory := NewFactory(settings.Settings{})
		before := factory.Allocator()
		require.NoError(t, factory.Instrument(prometheus.NewRegistry()))
		require.Equal(t, before, factory.Allocator())
	})

	t.Run("enabled", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		factory := NewFactory(settings.Settings{
			Metrics: settings.Metrics{Enabled: true, Namespace: "test"},
		})
		require.NoError(t, factory.Instrument(reg))

		tbl, err := New[int](factory)
		require.NoError(t, err)
		tbl.Put("a", 1)

		count, err := testutil.GatherAndCount(reg, "test_alloc_inuse_bytes")
		require.NoError(t, err)
		require.Equal(t, 1, count)

		tbl.Free()
		require.Error(t, factory.Instrument(reg))
	})
}

func TestMap(t *testing.T) {
	for _, backend := range []settings.Backend{settings.Hash, settings.List} {
		t.Run(string(backend), func(t *testing.T) {
			tbl := newTable[int](t, backend)
			for i := 0; i < 100; i++ {
				tbl.Put(strconv.Itoa(i), i)
			}

			sum := 0
			Map(tbl, func(_ string, value int, acc *int) {
				*acc += value
			}, &sum)
			require.Equal(t, 4950, sum)

			require.PanicsWithValue(t, errors.ErrVisitor, func() {
				Map[int, *int](tbl, nil, &sum)
			})
		})
	}

	t.Run("nil table", func(t *testing.T) {
		sum := 0
		require.PanicsWithValue(t, errors.ErrNilTable, func() {
			Map(nil, func(_ string, value int, acc *int) {
				*acc += value
			}, &sum)
		})
	})
}

// TestEquivalence runs the same random sequence of operations against both backends and
// expects them to respond identically.
func TestEquivalence(t *testing.T) {
	hash := newTable[int](t, settings.Hash)
	list := newTable[int](t, settings.List)
	rnd := rand.New(rand.NewPCG(1, 2))

	for i := 0; i < 20_000; i++ {
		key := strconv.Itoa(rnd.IntN(1500))

		switch op := rnd.IntN(5); op {
		case 0, 1:
			require.Equal(t, list.Put(key, i), hash.Put(key, i), "put %s", key)
		case 2:
			lv, lf := list.Replace(key, i)
			hv, hf := hash.Replace(key, i)
			require.Equal(t, lf, hf, "replace %s", key)
			require.Equal(t, lv, hv, "replace %s", key)
		case 3:
			lv, lf := list.Remove(key)
			hv, hf := hash.Remove(key)
			require.Equal(t, lf, hf, "remove %s", key)
			require.Equal(t, lv, hv, "remove %s", key)
		case 4:
			lv, lf := list.Get(key)
			hv, hf := hash.Get(key)
			require.Equal(t, lf, hf, "get %s", key)
			require.Equal(t, lv, hv, "get %s", key)
		}

		require.Equal(t, list.Len(), hash.Len())
	}

	type pair struct {
		Key   string
		Value int
	}

	collect := func(tbl Table[int]) (pairs []pair) {
		for key, value := range tbl.All() {
			pairs = append(pairs, pair{key, value})
		}

		slices.SortFunc(pairs, func(a, b pair) int {
			if a.Key < b.Key {
				return -1
			} else if a.Key > b.Key {
				return 1
			}

			return 0
		})

		return pairs
	}

	require.Equal(t, collect(list), collect(hash))
}
