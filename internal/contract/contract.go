package contract

import (
	"iter"
	"testing"

	"github.com/dchest/uniuri"
	"github.com/indigo-web/symtable/errors"
	"github.com/stretchr/testify/require"
)

// Table is the behaviour both backends share, specialized for int values.
type Table interface {
	Len() int
	Put(key string, value int) bool
	PutBytes(key []byte, value int) bool
	Replace(key string, value int) (int, bool)
	Contains(key string) bool
	ContainsBytes(key []byte) bool
	Get(key string) (int, bool)
	GetBytes(key []byte) (int, bool)
	Remove(key string) (int, bool)
	ForEach(visit func(key string, value int))
	All() iter.Seq2[string, int]
	Free()
}

// Run runs the shared test-suite against tables, produced by newTable.
func Run(t *testing.T, newTable func(t *testing.T) Table) {
	t.Run("example", func(t *testing.T) {
		tbl := newTable(t)
		require.True(t, tbl.Put("a", 1))
		require.True(t, tbl.Put("b", 2))
		require.False(t, tbl.Put("a", 3))
		testKey(t, tbl, "a", 1, true)

		prev, found := tbl.Replace("a", 3)
		require.True(t, found)
		require.Equal(t, 1, prev)
		testKey(t, tbl, "a", 3, true)

		removed, found := tbl.Remove("b")
		require.True(t, found)
		require.Equal(t, 2, removed)
		require.Equal(t, 1, tbl.Len())
	})

	t.Run("brand-new instance", func(t *testing.T) {
		tbl := newTable(t)
		require.Zero(t, tbl.Len())
		testKey(t, tbl, "", 0, false)
		testKey(t, tbl, "any key", 0, false)
	})

	t.Run("round trip", func(t *testing.T) {
		tbl := newTable(t)
		for i, key := range []string{"hello", "", "Hello", "hello ", "\x00", "привіт"} {
			require.True(t, tbl.Put(key, i))
			testKey(t, tbl, key, i, true)
		}

		require.Equal(t, 6, tbl.Len())
	})

	t.Run("duplicate insertion", func(t *testing.T) {
		tbl := newTable(t)
		require.True(t, tbl.Put("key", 1))
		require.False(t, tbl.Put("key", 2))
		require.False(t, tbl.PutBytes([]byte("key"), 3))
		testKey(t, tbl, "key", 1, true)
		require.Equal(t, 1, tbl.Len())
	})

	t.Run("replace", func(t *testing.T) {
		tbl := newTable(t)
		require.True(t, tbl.Put("key", 1))
		prev, found := tbl.Replace("key", 2)
		require.True(t, found)
		require.Equal(t, 1, prev)
		testKey(t, tbl, "key", 2, true)
		require.Equal(t, 1, tbl.Len())
	})

	t.Run("remove", func(t *testing.T) {
		tbl := newTable(t)
		require.True(t, tbl.Put("key", 1))
		require.True(t, tbl.Put("another", 2))
		value, found := tbl.Remove("key")
		require.True(t, found)
		require.Equal(t, 1, value)
		require.Equal(t, 1, tbl.Len())
		require.False(t, tbl.Contains("key"))
		testKey(t, tbl, "another", 2, true)

		t.Run("and put again", func(t *testing.T) {
			require.True(t, tbl.Put("key", 3))
			testKey(t, tbl, "key", 3, true)
		})
	})

	t.Run("absent key", func(t *testing.T) {
		tbl := newTable(t)
		require.True(t, tbl.Put("present", 1))

		_, found := tbl.Remove("absent")
		require.False(t, found)
		prev, found := tbl.Replace("absent", 2)
		require.False(t, found)
		require.Zero(t, prev)
		testKey(t, tbl, "absent", 0, false)
		require.Equal(t, 1, tbl.Len())
	})

	t.Run("length", func(t *testing.T) {
		tbl := newTable(t)
		inserted := 0
		for i := 0; i < 1000; i++ {
			if tbl.Put(uniuri.NewLen(3), i) {
				inserted++
			}
		}

		require.Equal(t, inserted, tbl.Len())
	})

	t.Run("defensive key copy", func(t *testing.T) {
		tbl := newTable(t)
		buff := []byte("hello")
		require.True(t, tbl.PutBytes(buff, 1))
		copy(buff, "world")

		testKey(t, tbl, "hello", 1, true)
		testKey(t, tbl, "world", 0, false)
		require.True(t, tbl.ContainsBytes([]byte("hello")))
		value, found := tbl.GetBytes([]byte("hello"))
		require.True(t, found)
		require.Equal(t, 1, value)
	})

	t.Run("for each", func(t *testing.T) {
		tbl := newTable(t)
		want := fill(t, tbl, 2000)

		seen := make(map[string]int, len(want))
		tbl.ForEach(func(key string, value int) {
			seen[key]++
			require.Equal(t, want[key], value)
		})

		require.Len(t, seen, tbl.Len())
		for key := range want {
			require.Equal(t, 1, seen[key], key)
		}
	})

	t.Run("iterator", func(t *testing.T) {
		tbl := newTable(t)
		want := fill(t, tbl, 100)

		var fromForEach []string
		tbl.ForEach(func(key string, _ int) {
			fromForEach = append(fromForEach, key)
		})

		var fromIter []string
		for key, value := range tbl.All() {
			require.Equal(t, want[key], value)
			fromIter = append(fromIter, key)
		}

		require.Equal(t, fromForEach, fromIter)

		visited := 0
		for range tbl.All() {
			visited++
			if visited == 10 {
				break
			}
		}

		require.Equal(t, 10, visited)
	})

	t.Run("removal of many", func(t *testing.T) {
		tbl := newTable(t)
		want := fill(t, tbl, 1500)

		removed := 0
		for key, value := range want {
			if value%2 == 0 {
				v, found := tbl.Remove(key)
				require.True(t, found)
				require.Equal(t, value, v)
				removed++
			}
		}

		require.Equal(t, len(want)-removed, tbl.Len())
		for key, value := range want {
			testKey(t, tbl, key, value, value%2 != 0)
		}
	})

	t.Run("precondition violations", func(t *testing.T) {
		tbl := newTable(t)
		require.PanicsWithValue(t, errors.ErrVisitor, func() {
			tbl.ForEach(nil)
		})

		tbl.Free()
		require.PanicsWithValue(t, errors.ErrFreed, func() {
			tbl.Len()
		})
		require.PanicsWithValue(t, errors.ErrFreed, func() {
			tbl.Put("key", 1)
		})
		require.PanicsWithValue(t, errors.ErrFreed, func() {
			tbl.Free()
		})
	})
}

// fill puts n distinct random keys, returning what has been put.
func fill(t *testing.T, tbl Table, n int) map[string]int {
	want := make(map[string]int, n)
	for len(want) < n {
		key := uniuri.NewLen(8)
		if _, found := want[key]; found {
			continue
		}

		require.True(t, tbl.Put(key, len(want)))
		want[key] = len(want)
	}

	return want
}

func testKey(t *testing.T, tbl Table, key string, wantedValue int, wantedFound bool) {
	value, found := tbl.Get(key)
	require.Equal(t, wantedFound, found, key)
	require.Equal(t, wantedValue, value, key)
	require.Equal(t, wantedFound, tbl.Contains(key), key)
}
