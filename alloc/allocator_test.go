package alloc

import (
	"testing"

	"github.com/indigo-web/symtable/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestBudget(t *testing.T) {
	t.Run("no overflow", func(t *testing.T) {
		b := NewBudget(20)
		require.True(t, b.Alloc(10))
		require.True(t, b.Alloc(10))
		require.Equal(t, 20, b.InUse())
	})

	t.Run("overflow", func(t *testing.T) {
		b := NewBudget(20)
		require.True(t, b.Alloc(15))
		require.False(t, b.Alloc(6))
		// refused reservation must not be accounted
		require.Equal(t, 15, b.InUse())
		require.True(t, b.Alloc(5))
	})

	t.Run("free", func(t *testing.T) {
		b := NewBudget(10)
		require.True(t, b.Alloc(10))
		b.Free(4)
		require.Equal(t, 6, b.InUse())
		require.True(t, b.Alloc(4))
		b.Free(10)
		require.Zero(t, b.InUse())
	})

	t.Run("over-free", func(t *testing.T) {
		b := NewBudget(10)
		require.True(t, b.Alloc(4))
		require.PanicsWithValue(t, errors.ErrOverFree, func() {
			b.Free(5)
		})
		require.Equal(t, 4, b.InUse())
	})
}

func TestUnbounded(t *testing.T) {
	a := Unbounded()
	for i := 0; i < 10; i++ {
		require.True(t, a.Alloc(1<<30))
	}
	a.Free(1 << 30)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := Register(reg, "test", NewBudget(100))
	require.NoError(t, err)

	require.True(t, m.Alloc(60))
	require.False(t, m.Alloc(50))
	m.Free(20)

	require.Equal(t, float64(60), testutil.ToFloat64(m.allocateBytesCounter))
	require.Equal(t, float64(40), testutil.ToFloat64(m.inuseBytesGauge))
	require.Equal(t, float64(1), testutil.ToFloat64(m.refusedCounter))
	require.Equal(t, 40, m.Upstream().InUse())

	t.Run("over-free keeps the gauge", func(t *testing.T) {
		require.PanicsWithValue(t, errors.ErrOverFree, func() {
			m.Free(41)
		})
		require.Equal(t, float64(40), testutil.ToFloat64(m.inuseBytesGauge))
		require.Equal(t, 40, m.Upstream().InUse())
	})

	t.Run("duplicate registration", func(t *testing.T) {
		_, err := Register(reg, "test", Unbounded())
		require.Error(t, err)
	})
}
