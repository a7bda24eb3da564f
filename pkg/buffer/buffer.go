// Package buffer provides a bounded FIFO ring buffer used for metric and
// alert history. When full, the oldest entry is evicted to make room for
// the newest; eviction follows append order, not any timestamp carried by
// the entries themselves.
package buffer

import (
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Ring is a thread-safe bounded FIFO buffer that drops the oldest entry
// on overflow.
type Ring[T any] struct {
	mu    sync.RWMutex
	items []T
	cap   int
	size  int
	head  int // next write position
	tail  int // oldest entry position

	// Statistics, always tracked
	writes atomic.Int64
	drops  atomic.Int64

	// Optional Prometheus instrumentation
	sizeGauge   prometheus.Gauge
	dropCounter prometheus.Counter
}

// Option configures a Ring.
type Option func(*ringOptions)

type ringOptions struct {
	registerer prometheus.Registerer
	prefix     string
}

// WithMetrics exposes the ring's size and drop count as Prometheus
// metrics named <prefix>_size and <prefix>_dropped_total.
func WithMetrics(reg prometheus.Registerer, prefix string) Option {
	return func(o *ringOptions) {
		o.registerer = reg
		o.prefix = prefix
	}
}

// NewRing creates a ring buffer holding at most capacity entries.
// A capacity below one is raised to one.
func NewRing[T any](capacity int, opts ...Option) (*Ring[T], error) {
	if capacity <= 0 {
		capacity = 1
	}

	var o ringOptions
	for _, opt := range opts {
		opt(&o)
	}

	r := &Ring[T]{
		items: make([]T, capacity),
		cap:   capacity,
	}

	if o.registerer != nil && o.prefix != "" {
		r.sizeGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: o.prefix + "_size",
			Help: "Current number of entries held in the buffer",
		})
		r.dropCounter = prometheus.NewCounter(prometheus.CounterOpts{
			Name: o.prefix + "_dropped_total",
			Help: "Total entries evicted due to buffer overflow",
		})
		if err := o.registerer.Register(r.sizeGauge); err != nil {
			return nil, err
		}
		if err := o.registerer.Register(r.dropCounter); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Append adds an entry, evicting the oldest one when the buffer is full.
func (r *Ring[T]) Append(item T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.size == r.cap {
		// Evict oldest
		var zero T
		r.items[r.tail] = zero
		r.tail = (r.tail + 1) % r.cap
		r.size--
		r.drops.Add(1)
		if r.dropCounter != nil {
			r.dropCounter.Inc()
		}
	}

	r.items[r.head] = item
	r.head = (r.head + 1) % r.cap
	r.size++
	r.writes.Add(1)
	if r.sizeGauge != nil {
		r.sizeGauge.Set(float64(r.size))
	}
}

// Snapshot returns a copy of the buffered entries, oldest first.
func (r *Ring[T]) Snapshot() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]T, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.items[(r.tail+i)%r.cap]
	}
	return out
}

// Len returns the current number of entries.
func (r *Ring[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.size
}

// Cap returns the maximum number of entries the buffer can hold.
func (r *Ring[T]) Cap() int {
	return r.cap // immutable, no lock needed
}

// Clear removes all entries.
func (r *Ring[T]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	for i := range r.items {
		r.items[i] = zero
	}
	r.head = 0
	r.tail = 0
	r.size = 0
	if r.sizeGauge != nil {
		r.sizeGauge.Set(0)
	}
}

// Writes returns the total number of appends since creation.
func (r *Ring[T]) Writes() int64 {
	return r.writes.Load()
}

// Drops returns the total number of entries evicted due to overflow.
func (r *Ring[T]) Drops() int64 {
	return r.drops.Load()
}
