package chain

import (
	"cmp"
	"slices"
	"strings"
	"unsafe"
)

type Binding[V any] struct {
	Key   string
	Value V
	// Seq is the insertion stamp, growing with every binding put into the same table.
	Seq uint64
}

// Chain is a sequence of bindings. It's stored in insertion order, however logically it's
// walked from the tail, so the most recently inserted binding always comes first.
type Chain[V any] []Binding[V]

// Push takes an owned copy of the key and adds a new binding, stamped with seq. The key
// uniqueness isn't checked.
func (c Chain[V]) Push(key string, value V, seq uint64) Chain[V] {
	return append(c, Binding[V]{
		Key:   strings.Clone(key),
		Value: value,
		Seq:   seq,
	})
}

// Restore brings the chain back to the insertion order after it was assembled from bindings
// of several other chains.
func (c Chain[V]) Restore() {
	slices.SortFunc(c, func(a, b Binding[V]) int {
		return cmp.Compare(a.Seq, b.Seq)
	})
}

// Index returns the position of the key, or -1 if there's no such a key.
func (c Chain[V]) Index(key string) int {
	for i := len(c) - 1; i >= 0; i-- {
		if c[i].Key == key {
			return i
		}
	}

	return -1
}

// Delete removes the binding at i preserving the order of remaining ones.
func (c Chain[V]) Delete(i int) Chain[V] {
	return slices.Delete(c, i, i+1)
}

// Walk calls the visitor on every binding, most recent first. Returns false if the visitor
// asked to stop.
func (c Chain[V]) Walk(visit func(key string, value V) bool) bool {
	for i := len(c) - 1; i >= 0; i-- {
		if !visit(c[i].Key, c[i].Value) {
			return false
		}
	}

	return true
}

// Size returns the nominal amount of memory a binding with the key occupies.
func Size[V any](key string) int {
	return int(unsafe.Sizeof(Binding[V]{})) + len(key)
}
