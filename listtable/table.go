package listtable

import (
	"iter"
	"unsafe"

	"github.com/indigo-web/symtable/alloc"
	"github.com/indigo-web/symtable/errors"
	"github.com/indigo-web/symtable/internal/chain"
	"github.com/indigo-web/utils/uf"
	"go.uber.org/zap"
)

// Table is an associative structure keeping all the bindings in a single chain. It acts as
// a map but uses linear search instead, which proves to be more efficient on relatively low
// amount of entries, and serves as a trivially correct reference for the hashtable.
//
// WARNING: Table is not thread-safe. Concurrent access must be serialized by the caller, and
// the visitor of ForEach must not call back into the same table.
type Table[V any] struct {
	bindings  chain.Chain[V]
	seq       uint64
	allocator alloc.Allocator
	logger    *zap.Logger
	freed     bool
}

// New returns an empty table. If the allocator refuses to provide the table itself,
// errors.ErrNoMemory is returned.
func New[V any](opts ...Option) (*Table[V], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if !o.allocator.Alloc(int(unsafe.Sizeof(Table[V]{}))) {
		return nil, errors.Wrapf(errors.ErrNoMemory, "create list table")
	}

	return &Table[V]{
		bindings:  make(chain.Chain[V], 0, o.prealloc),
		allocator: o.allocator,
		logger:    o.logger,
	}, nil
}

// Len returns the number of bindings.
func (t *Table[V]) Len() int {
	t.mustBeAlive()
	return len(t.bindings)
}

// Put inserts a new binding, unless there's already one with the same key. Returns true only
// if the binding was inserted. The key is copied.
func (t *Table[V]) Put(key string, value V) bool {
	t.mustBeAlive()

	if t.bindings.Index(key) != -1 {
		return false
	}

	if !t.allocator.Alloc(chain.Size[V](key)) {
		t.logger.Debug("binding refused", zap.Int("key_length", len(key)))
		return false
	}

	t.bindings = t.bindings.Push(key, value, t.seq)
	t.seq++

	return true
}

// PutBytes is the same as Put, but for byte-slice keys.
func (t *Table[V]) PutBytes(key []byte, value V) bool {
	return t.Put(uf.B2S(key), value)
}

// Replace swaps the value of an existing binding and returns the previous one.
func (t *Table[V]) Replace(key string, value V) (prev V, found bool) {
	t.mustBeAlive()

	i := t.bindings.Index(key)
	if i == -1 {
		return prev, false
	}

	prev = t.bindings[i].Value
	t.bindings[i].Value = value

	return prev, true
}

// Contains indicates, whether there's a binding with the key.
func (t *Table[V]) Contains(key string) bool {
	t.mustBeAlive()
	return t.bindings.Index(key) != -1
}

func (t *Table[V]) ContainsBytes(key []byte) bool {
	return t.Contains(uf.B2S(key))
}

// Get returns a value and a bool, indicating whether the value was found.
func (t *Table[V]) Get(key string) (value V, found bool) {
	t.mustBeAlive()

	if i := t.bindings.Index(key); i != -1 {
		return t.bindings[i].Value, true
	}

	return value, false
}

func (t *Table[V]) GetBytes(key []byte) (V, bool) {
	return t.Get(uf.B2S(key))
}

// Remove deletes the binding and returns its value.
func (t *Table[V]) Remove(key string) (value V, found bool) {
	t.mustBeAlive()

	i := t.bindings.Index(key)
	if i == -1 {
		return value, false
	}

	value = t.bindings[i].Value
	t.allocator.Free(chain.Size[V](t.bindings[i].Key))
	t.bindings = t.bindings.Delete(i)

	return value, true
}

// ForEach calls the visitor once per binding, the most recently inserted first. The visitor
// must not mutate the table.
func (t *Table[V]) ForEach(visit func(key string, value V)) {
	t.mustBeAlive()
	if visit == nil {
		panic(errors.ErrVisitor)
	}

	t.bindings.Walk(func(key string, value V) bool {
		visit(key, value)
		return true
	})
}

// All returns an iterator over the bindings.
func (t *Table[V]) All() iter.Seq2[string, V] {
	t.mustBeAlive()

	return func(yield func(string, V) bool) {
		t.bindings.Walk(yield)
	}
}

// Free releases every binding. The table must not be used afterwards.
func (t *Table[V]) Free() {
	t.mustBeAlive()

	for _, b := range t.bindings {
		t.allocator.Free(chain.Size[V](b.Key))
	}

	t.allocator.Free(int(unsafe.Sizeof(*t)))
	t.bindings = nil
	t.freed = true
}

func (t *Table[V]) mustBeAlive() {
	if t == nil {
		panic(errors.ErrNilTable)
	}

	if t.freed {
		panic(errors.ErrFreed)
	}
}
