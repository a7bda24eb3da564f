package clock

import (
	"sort"
	"sync"
	"time"
)

// Mock is a Clock whose time only moves when Advance or Set is called.
// Tickers created from it fire deterministically as virtual time passes
// their next deadline. Safe for concurrent use.
type Mock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*mockTicker
}

// NewMock creates a mock clock starting at t.
func NewMock(t time.Time) *Mock {
	return &Mock{now: t}
}

// Now returns the current virtual time.
func (m *Mock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set jumps the virtual clock to t without firing any tickers.
func (m *Mock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// NewTicker returns a ticker driven by virtual time.
func (m *Mock) NewTicker(d time.Duration) Ticker {
	if d <= 0 {
		panic("clock: non-positive ticker interval")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t := &mockTicker{
		clock:    m,
		interval: d,
		next:     m.now.Add(d),
		ch:       make(chan time.Time, 1),
	}
	m.tickers = append(m.tickers, t)
	return t
}

// Advance moves the virtual clock forward by d, firing every ticker whose
// deadline falls within the window, in deadline order. Tick delivery is
// non-blocking: like time.Ticker, a tick is dropped when the receiver has
// not consumed the previous one.
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)

	for {
		due := m.dueTickersLocked(target)
		if len(due) == 0 {
			break
		}
		t := due[0]
		m.now = t.next
		t.next = t.next.Add(t.interval)

		select {
		case t.ch <- m.now:
		default:
		}
	}

	m.now = target
	m.mu.Unlock()

	// Give receivers a chance to run before the caller asserts.
	time.Sleep(time.Millisecond)
}

// dueTickersLocked returns active tickers with deadlines at or before
// target, earliest first.
func (m *Mock) dueTickersLocked(target time.Time) []*mockTicker {
	var due []*mockTicker
	for _, t := range m.tickers {
		if !t.stopped && !t.next.After(target) {
			due = append(due, t)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].next.Before(due[j].next) })
	return due
}

type mockTicker struct {
	clock    *Mock
	interval time.Duration
	next     time.Time
	ch       chan time.Time
	stopped  bool
}

func (t *mockTicker) C() <-chan time.Time {
	return t.ch
}

func (t *mockTicker) Stop() {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	t.stopped = true
}
