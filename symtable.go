package symtable

import (
	"iter"
	"math"

	"github.com/indigo-web/symtable/alloc"
	"github.com/indigo-web/symtable/errors"
	"github.com/indigo-web/symtable/hashtable"
	"github.com/indigo-web/symtable/listtable"
	"github.com/indigo-web/symtable/settings"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Table is a collection of bindings, each consisting of a unique string key and a value. Both
// backends, hashtable.Table and listtable.Table, implement it with identical semantics, so
// they are freely substitutable.
//
// Tables aren't thread-safe. A visitor passed to ForEach (as well as the body of a loop over
// All) must not call back into the same table.
type Table[V any] interface {
	// Len returns the number of bindings.
	Len() int
	// Put adds a new binding and returns true, unless the key is already presented or there
	// isn't enough memory. In both cases the table stays unchanged and false is returned.
	Put(key string, value V) bool
	PutBytes(key []byte, value V) bool
	// Replace swaps the value of an existing binding, returning the previous one. If there's
	// no such key, false is returned.
	Replace(key string, value V) (V, bool)
	Contains(key string) bool
	ContainsBytes(key []byte) bool
	Get(key string) (V, bool)
	GetBytes(key []byte) (V, bool)
	// Remove deletes the binding, returning its value. If there's no such key, false is
	// returned.
	Remove(key string) (V, bool)
	ForEach(visit func(key string, value V))
	All() iter.Seq2[string, V]
	// Free releases every binding. The table must not be used afterwards.
	Free()
}

var (
	_ Table[any] = (*hashtable.Table[any])(nil)
	_ Table[any] = (*listtable.Table[any])(nil)
)

// Map applies the function to every binding, passing the extra argument along.
func Map[V, C any](t Table[V], apply func(key string, value V, extra C), extra C) {
	if t == nil {
		panic(errors.ErrNilTable)
	}

	if apply == nil {
		panic(errors.ErrVisitor)
	}

	t.ForEach(func(key string, value V) {
		apply(key, value, extra)
	})
}

// Factory produces tables out of the settings. All the tables produced by the same factory
// share its allocator, and so the memory limit.
type Factory struct {
	settings  settings.Settings
	allocator alloc.Allocator
	logger    *zap.Logger
}

func NewFactory(s settings.Settings) *Factory {
	s = settings.Fill(s)

	var allocator alloc.Allocator = alloc.Unbounded()
	if s.Memory.Limit > 0 {
		allocator = alloc.NewBudget(int(min(s.Memory.Limit, math.MaxInt)))
	}

	return &Factory{
		settings:  s,
		allocator: allocator,
		logger:    zap.NewNop(),
	}
}

// Logger sets the logger every produced table reports to.
func (f *Factory) Logger(logger *zap.Logger) *Factory {
	if logger != nil {
		f.logger = logger
	}

	return f
}

// Instrument exposes the allocator via prometheus collectors, registered in reg. Does nothing
// unless metrics are enabled in the settings.
func (f *Factory) Instrument(reg prometheus.Registerer) error {
	if !f.settings.Metrics.Enabled {
		return nil
	}

	instrumented, err := alloc.Register(reg, f.settings.Metrics.Namespace, f.allocator)
	if err != nil {
		return err
	}

	f.allocator = instrumented
	return nil
}

// Allocator returns the allocator shared by the produced tables.
func (f *Factory) Allocator() alloc.Allocator {
	return f.allocator
}

func (f *Factory) Settings() settings.Settings {
	return f.settings
}

// New returns an empty table of the backend, chosen by the factory settings.
func New[V any](f *Factory) (Table[V], error) {
	switch f.settings.Backend {
	case settings.Hash:
		tbl, err := hashtable.New[V](
			hashtable.WithStages(f.settings.Growth.Stages...),
			hashtable.WithAllocator(f.allocator),
			hashtable.WithLogger(f.logger.Named("hashtable")),
		)
		if err != nil {
			return nil, err
		}

		return tbl, nil
	case settings.List:
		tbl, err := listtable.New[V](
			listtable.WithPrealloc(f.settings.List.Prealloc),
			listtable.WithAllocator(f.allocator),
			listtable.WithLogger(f.logger.Named("listtable")),
		)
		if err != nil {
			return nil, err
		}

		return tbl, nil
	default:
		return nil, errors.Wrapf(errors.ErrBackend, "%q", f.settings.Backend)
	}
}
