package buffer

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRing_AppendBelowCapacity(t *testing.T) {
	r, err := NewRing[int](5)
	require.NoError(t, err)

	r.Append(1)
	r.Append(2)
	r.Append(3)

	assert.Equal(t, 3, r.Len())
	assert.Equal(t, 5, r.Cap())
	assert.Equal(t, []int{1, 2, 3}, r.Snapshot())
	assert.EqualValues(t, 3, r.Writes())
	assert.Zero(t, r.Drops())
}

func TestRing_EvictsOldestOnOverflow(t *testing.T) {
	r, err := NewRing[int](3)
	require.NoError(t, err)

	for i := 1; i <= 7; i++ {
		r.Append(i)
	}

	assert.Equal(t, 3, r.Len(), "size never exceeds capacity")
	assert.Equal(t, []int{5, 6, 7}, r.Snapshot(), "oldest entries dropped first")
	assert.EqualValues(t, 7, r.Writes())
	assert.EqualValues(t, 4, r.Drops())
}

func TestRing_SnapshotIsACopy(t *testing.T) {
	r, err := NewRing[string](2)
	require.NoError(t, err)

	r.Append("a")
	snap := r.Snapshot()
	snap[0] = "mutated"

	assert.Equal(t, []string{"a"}, r.Snapshot())
}

func TestRing_Clear(t *testing.T) {
	r, err := NewRing[int](3)
	require.NoError(t, err)

	r.Append(1)
	r.Append(2)
	r.Clear()

	assert.Zero(t, r.Len())
	assert.Empty(t, r.Snapshot())

	// Buffer is usable after clearing
	r.Append(9)
	assert.Equal(t, []int{9}, r.Snapshot())
}

func TestRing_CapacityBelowOneRaisedToOne(t *testing.T) {
	r, err := NewRing[int](0)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Cap())

	r.Append(1)
	r.Append(2)
	assert.Equal(t, []int{2}, r.Snapshot())
}

func TestRing_PrometheusInstrumentation(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewRing[int](2, WithMetrics(reg, "test_buffer"))
	require.NoError(t, err)

	r.Append(1)
	r.Append(2)
	r.Append(3) // one eviction

	size, err := testutil.GatherAndCount(reg, "test_buffer_size")
	require.NoError(t, err)
	assert.Equal(t, 1, size)

	dropped := testutil.ToFloat64(r.dropCounter)
	assert.Equal(t, 1.0, dropped)
	assert.Equal(t, 2.0, testutil.ToFloat64(r.sizeGauge))
}

func TestRing_DuplicateRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewRing[int](2, WithMetrics(reg, "dup"))
	require.NoError(t, err)

	_, err = NewRing[int](2, WithMetrics(reg, "dup"))
	assert.Error(t, err)
}

func TestRing_ConcurrentAppends(t *testing.T) {
	r, err := NewRing[int](100)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				r.Append(i)
				_ = r.Snapshot()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, r.Len())
	assert.EqualValues(t, 10000, r.Writes())
	assert.EqualValues(t, 9900, r.Drops())
}
