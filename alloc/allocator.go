package alloc

import (
	"github.com/indigo-web/symtable/errors"
)

// Allocator is a memory capability, consumed by the tables. It doesn't hand out the memory
// itself, as the Go runtime does this job anyway, but decides whether a table is allowed to
// take n more bytes. This makes an out-of-memory condition an ordinary, recoverable outcome,
// exactly as a failed malloc would be.
type Allocator interface {
	// Alloc reserves n bytes. If the reservation cannot be satisfied, false is returned and
	// nothing is reserved.
	Alloc(n int) (ok bool)
	// Free returns n previously reserved bytes.
	Free(n int)
}

type unbounded struct{}

// Unbounded returns an allocator which never refuses.
func Unbounded() Allocator {
	return unbounded{}
}

func (unbounded) Alloc(int) bool {
	return true
}

func (unbounded) Free(int) {}

// Budget is an allocator limited by a fixed amount of bytes. Reservations exceeding the limit
// are refused, just as the limited buffers of the http parser do. Not thread-safe.
type Budget struct {
	inuse, limit int
}

func NewBudget(limit int) *Budget {
	return &Budget{
		limit: limit,
	}
}

func (b *Budget) Alloc(n int) (ok bool) {
	if b.inuse+n > b.limit {
		return false
	}

	b.inuse += n
	return true
}

// Free returns n bytes back to the budget. Freeing more than is currently reserved means the
// accounting is broken, so it panics with errors.ErrOverFree, leaving the budget as it was.
func (b *Budget) Free(n int) {
	if n > b.inuse {
		panic(errors.ErrOverFree)
	}

	b.inuse -= n
}

// InUse returns the number of currently reserved bytes.
func (b *Budget) InUse() int {
	return b.inuse
}

// Limit returns the maximal number of bytes that can be reserved at once.
func (b *Budget) Limit() int {
	return b.limit
}
