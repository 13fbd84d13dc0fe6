package hotkey

import (
	"context"
	"fmt"
	"iter"
	"sync"
	"time"
)

// MemorySource is an in-memory Source. Events are fed in batches with Push;
// each Dispatch makes at most one batch visible, the way one kernel read
// burst becomes one listener cycle.
type MemorySource struct {
	mu       sync.Mutex
	seat     string
	batches  [][]RawEvent
	failWith error
	pending  []RawEvent
	ready    chan struct{}
	closed   bool
}

// NewMemorySource returns a MemorySource that accepts any non-empty seat.
func NewMemorySource() *MemorySource {
	return &MemorySource{ready: make(chan struct{}, 1)}
}

// Push queues one cycle's worth of events.
func (m *MemorySource) Push(events ...RawEvent) {
	m.mu.Lock()
	m.batches = append(m.batches, events)
	m.mu.Unlock()
	m.signal()
}

// Fail makes the next Dispatch return err.
func (m *MemorySource) Fail(err error) {
	m.mu.Lock()
	m.failWith = err
	m.mu.Unlock()
	m.signal()
}

func (m *MemorySource) signal() {
	select {
	case m.ready <- struct{}{}:
	default:
	}
}

func (m *MemorySource) AssignSeat(seat string) error {
	if seat == "" {
		return fmt.Errorf("%w: empty seat name", ErrSeatAssignment)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seat != "" {
		return fmt.Errorf("%w: already assigned to %s", ErrSeatAssignment, m.seat)
	}
	m.seat = seat
	return nil
}

// Seat returns the assigned seat.
func (m *MemorySource) Seat() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seat
}

func (m *MemorySource) Dispatch() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		err := m.failWith
		m.failWith = nil
		return err
	}
	if len(m.batches) > 0 {
		m.pending = append(m.pending, m.batches[0]...)
		m.batches = m.batches[1:]
	}
	if len(m.batches) > 0 {
		m.signal()
	}
	return nil
}

func (m *MemorySource) PollBlock(ctx context.Context, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	ready := len(m.batches) > 0 || m.failWith != nil
	m.mu.Unlock()
	if ready {
		return nil
	}

	var expired <-chan time.Time
	if timeout >= 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-m.ready:
	case <-expired:
	}
	return nil
}

func (m *MemorySource) Events() iter.Seq[RawEvent] {
	return func(yield func(RawEvent) bool) {
		for {
			m.mu.Lock()
			if len(m.pending) == 0 {
				m.mu.Unlock()
				return
			}
			ev := m.pending[0]
			m.pending = m.pending[1:]
			m.mu.Unlock()

			if !yield(ev) {
				return
			}
		}
	}
}

func (m *MemorySource) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Closed reports whether Close was called.
func (m *MemorySource) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
