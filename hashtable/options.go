package hashtable

import (
	"github.com/indigo-web/symtable/alloc"
	"go.uber.org/zap"
)

type Option func(*options)

type options struct {
	stages    Stages
	allocator alloc.Allocator
	logger    *zap.Logger
}

func defaultOptions() options {
	return options{
		stages:    DefaultStages,
		allocator: alloc.Unbounded(),
		logger:    zap.NewNop(),
	}
}

// WithStages replaces the default growth stages. The stages are copied.
func WithStages(stages ...int) Option {
	return func(o *options) {
		o.stages = append(Stages(nil), stages...)
	}
}

// WithAllocator sets the allocator, which every bucket array and binding is accounted in.
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
