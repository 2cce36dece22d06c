package alloc

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics wraps an upstream allocator, exposing its activity as prometheus collectors.
type Metrics[U Allocator] struct {
	upstream U

	allocateBytesCounter prometheus.Counter
	inuseBytesGauge      prometheus.Gauge
	refusedCounter       prometheus.Counter
}

func NewMetrics[U Allocator](
	upstream U,
	allocateBytesCounter prometheus.Counter,
	inuseBytesGauge prometheus.Gauge,
	refusedCounter prometheus.Counter,
) *Metrics[U] {
	return &Metrics[U]{
		upstream:             upstream,
		allocateBytesCounter: allocateBytesCounter,
		inuseBytesGauge:      inuseBytesGauge,
		refusedCounter:       refusedCounter,
	}
}

// Register creates the collectors under the namespace, registers them in reg and returns the
// wrapped allocator.
func Register[U Allocator](reg prometheus.Registerer, namespace string, upstream U) (*Metrics[U], error) {
	allocated := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "alloc",
		Name:      "allocated_bytes_total",
		Help:      "Total number of bytes reserved by tables.",
	})
	inuse := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "alloc",
		Name:      "inuse_bytes",
		Help:      "Number of bytes currently reserved by tables.",
	})
	refused := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "alloc",
		Name:      "refused_total",
		Help:      "Number of reservations refused by the upstream allocator.",
	})

	for _, c := range []prometheus.Collector{allocated, inuse, refused} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return NewMetrics(upstream, allocated, inuse, refused), nil
}

func (m *Metrics[U]) Alloc(n int) bool {
	if !m.upstream.Alloc(n) {
		m.refusedCounter.Inc()
		return false
	}

	m.allocateBytesCounter.Add(float64(n))
	m.inuseBytesGauge.Add(float64(n))
	return true
}

func (m *Metrics[U]) Free(n int) {
	m.upstream.Free(n)
	m.inuseBytesGauge.Sub(float64(n))
}

// Upstream returns the wrapped allocator.
func (m *Metrics[U]) Upstream() U {
	return m.upstream
}
