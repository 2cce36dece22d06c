package errors

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapf(t *testing.T) {
	err := Wrapf(ErrNoMemory, "allocate %d buckets", 509)
	require.True(t, Is(err, ErrNoMemory))
	require.False(t, Is(err, ErrStages))
	require.Contains(t, err.Error(), "allocate 509 buckets")
	require.Contains(t, err.Error(), ErrNoMemory.Error())
}
