package alloctest

import (
	"github.com/stretchr/testify/mock"
)

// Allocator is a mock alloc.Allocator.
type Allocator struct {
	mock.Mock
}

func (a *Allocator) Alloc(n int) bool {
	return a.Called(n).Bool(0)
}

func (a *Allocator) Free(n int) {
	a.Called(n)
}

// Refusing returns an allocator refusing every reservation.
func Refusing() *Allocator {
	a := new(Allocator)
	a.On("Alloc", mock.Anything).Return(false)
	a.On("Free", mock.Anything).Return()
	return a
}

// RefusingAbove returns an allocator which accepts reservations of up to n bytes and refuses
// the bigger ones. Handy to let bindings in but keep the bucket arrays out.
func RefusingAbove(n int) *Allocator {
	a := new(Allocator)
	a.On("Alloc", mock.MatchedBy(func(size int) bool { return size <= n })).Return(true)
	a.On("Alloc", mock.MatchedBy(func(size int) bool { return size > n })).Return(false)
	a.On("Free", mock.Anything).Return()
	return a
}
