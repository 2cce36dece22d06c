package hashtable

import (
	"iter"
	"unsafe"

	"github.com/indigo-web/symtable/alloc"
	"github.com/indigo-web/symtable/errors"
	"github.com/indigo-web/symtable/internal/chain"
	"github.com/indigo-web/utils/uf"
	"go.uber.org/zap"
)

// Table is a chained hash table mapping string keys to values of V. The bucket array grows
// through the stages as the table fills, and never shrinks.
//
// WARNING: Table is not thread-safe. Concurrent access must be serialized by the caller, and
// the visitor of ForEach must not call back into the same table.
type Table[V any] struct {
	stages    Stages
	stage     int
	buckets   []chain.Chain[V]
	length    int
	seq       uint64
	allocator alloc.Allocator
	logger    *zap.Logger
}

// New returns an empty table with as many buckets as the first stage defines. If the allocator
// refuses to provide the initial storage, errors.ErrNoMemory is returned.
func New[V any](opts ...Option) (*Table[V], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if err := o.stages.validate(); err != nil {
		return nil, err
	}

	size := int(unsafe.Sizeof(Table[V]{})) + bucketsSize[V](o.stages[0])
	if !o.allocator.Alloc(size) {
		return nil, errors.Wrapf(errors.ErrNoMemory, "create table with %d buckets", o.stages[0])
	}

	return &Table[V]{
		stages:    o.stages,
		buckets:   make([]chain.Chain[V], o.stages[0]),
		allocator: o.allocator,
		logger:    o.logger,
	}, nil
}

// Len returns the number of bindings.
func (t *Table[V]) Len() int {
	t.mustBeAlive()
	return t.length
}

// Buckets returns the current number of buckets.
func (t *Table[V]) Buckets() int {
	t.mustBeAlive()
	return len(t.buckets)
}

// Stage returns the index of the current growth stage.
func (t *Table[V]) Stage() int {
	t.mustBeAlive()
	return t.stage
}

// Put inserts a new binding, unless there's already one with the same key. Returns true only
// if the binding was inserted. The key is copied, so the caller is free to reuse its memory.
// If the allocator refuses to account the binding, false is returned and the table stays as it
// was. Putting may cause the table to grow; growth failure isn't considered an error.
func (t *Table[V]) Put(key string, value V) bool {
	t.mustBeAlive()

	if t.Contains(key) {
		return false
	}

	if t.stages.due(t.stage, t.length) {
		t.grow()
	}

	if !t.allocator.Alloc(chain.Size[V](key)) {
		t.logger.Debug("binding refused", zap.Int("key_length", len(key)))
		return false
	}

	i := Sum(key, len(t.buckets))
	t.buckets[i] = t.buckets[i].Push(key, value, t.seq)
	t.length++
	t.seq++

	return true
}

// PutBytes is the same as Put, but for byte-slice keys.
func (t *Table[V]) PutBytes(key []byte, value V) bool {
	return t.Put(uf.B2S(key), value)
}

// Replace swaps the value of an existing binding and returns the previous one. If the key
// isn't presented, nothing happens and false is returned.
func (t *Table[V]) Replace(key string, value V) (prev V, found bool) {
	t.mustBeAlive()

	c := t.bucket(key)
	i := c.Index(key)
	if i == -1 {
		return prev, false
	}

	prev = c[i].Value
	c[i].Value = value

	return prev, true
}

// Contains reports, whether the key is presented.
func (t *Table[V]) Contains(key string) bool {
	t.mustBeAlive()
	return t.bucket(key).Index(key) != -1
}

// ContainsBytes is the same as Contains, but for byte-slice keys.
func (t *Table[V]) ContainsBytes(key []byte) bool {
	return t.Contains(uf.B2S(key))
}

// Get returns the value, corresponding to the key, and whether it was found at all.
func (t *Table[V]) Get(key string) (value V, found bool) {
	t.mustBeAlive()

	c := t.bucket(key)
	if i := c.Index(key); i != -1 {
		return c[i].Value, true
	}

	return value, false
}

// GetBytes is the same as Get, but for byte-slice keys. The key isn't copied.
func (t *Table[V]) GetBytes(key []byte) (V, bool) {
	return t.Get(uf.B2S(key))
}

// Remove deletes the binding and returns its value. If the key isn't presented, nothing
// happens and false is returned.
func (t *Table[V]) Remove(key string) (value V, found bool) {
	t.mustBeAlive()

	idx := Sum(key, len(t.buckets))
	c := t.buckets[idx]
	i := c.Index(key)
	if i == -1 {
		return value, false
	}

	value = c[i].Value
	t.allocator.Free(chain.Size[V](c[i].Key))
	t.buckets[idx] = c.Delete(i)
	t.length--

	return value, true
}

// ForEach calls the visitor once per binding: buckets in ascending order, and within each
// bucket the most recently inserted binding first. The visitor must not mutate the table.
func (t *Table[V]) ForEach(visit func(key string, value V)) {
	t.mustBeAlive()
	if visit == nil {
		panic(errors.ErrVisitor)
	}

	for _, c := range t.buckets {
		c.Walk(func(key string, value V) bool {
			visit(key, value)
			return true
		})
	}
}

// All returns an iterator over the bindings, in the same order as ForEach walks them.
func (t *Table[V]) All() iter.Seq2[string, V] {
	t.mustBeAlive()

	return func(yield func(string, V) bool) {
		for _, c := range t.buckets {
			if !c.Walk(yield) {
				return
			}
		}
	}
}

// Free releases every binding and the bucket array. The table must not be used afterwards.
func (t *Table[V]) Free() {
	t.mustBeAlive()

	for _, c := range t.buckets {
		for _, b := range c {
			t.allocator.Free(chain.Size[V](b.Key))
		}
	}

	t.allocator.Free(int(unsafe.Sizeof(*t)) + bucketsSize[V](len(t.buckets)))
	t.buckets = nil
	t.length = 0
}

func (t *Table[V]) bucket(key string) chain.Chain[V] {
	return t.buckets[Sum(key, len(t.buckets))]
}

// grow advances to the next stage and moves every binding into a new bucket array, keeping
// the insertion order within each bucket. If the new array cannot be allocated, the table keeps
// on using the current one.
func (t *Table[V]) grow() {
	next := t.stage + 1
	n := t.stages[next]

	if !t.allocator.Alloc(bucketsSize[V](n)) {
		t.logger.Warn(
			"growth abandoned",
			zap.Int("buckets", len(t.buckets)),
			zap.Int("wanted", n),
			zap.Int("bindings", t.length),
		)
		return
	}

	buckets := make([]chain.Chain[V], n)
	for _, c := range t.buckets {
		for _, b := range c {
			i := Sum(b.Key, n)
			buckets[i] = append(buckets[i], b)
		}
	}

	// bindings of a single new bucket may come from several old ones, each in its own order
	for _, c := range buckets {
		if len(c) > 1 {
			c.Restore()
		}
	}

	t.logger.Debug(
		"table grown",
		zap.Int("from", len(t.buckets)),
		zap.Int("to", n),
		zap.Int("bindings", t.length),
	)

	t.allocator.Free(bucketsSize[V](len(t.buckets)))
	t.buckets, t.stage = buckets, next
}

func (t *Table[V]) mustBeAlive() {
	if t == nil {
		panic(errors.ErrNilTable)
	}

	if t.buckets == nil {
		panic(errors.ErrFreed)
	}
}

func bucketsSize[V any](n int) int {
	return n * int(unsafe.Sizeof(chain.Chain[V](nil)))
}
