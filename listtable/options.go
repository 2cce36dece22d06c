package listtable

import (
	"github.com/indigo-web/symtable/alloc"
	"go.uber.org/zap"
)

type Option func(*options)

type options struct {
	prealloc  int
	allocator alloc.Allocator
	logger    *zap.Logger
}

func defaultOptions() options {
	return options{
		allocator: alloc.Unbounded(),
		logger:    zap.NewNop(),
	}
}

// WithPrealloc pre-allocates the room for n bindings.
func WithPrealloc(n int) Option {
	return func(o *options) {
		o.prealloc = max(n, 0)
	}
}

func WithAllocator(a alloc.Allocator) Option {
	return func(o *options) {
		if a != nil {
			o.allocator = a
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
