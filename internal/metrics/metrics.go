package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

// Lifecycle counters. Incremented by the order and refund services on
// committed writes only, so a rejected precondition never shows up here.
var (
	OrdersPlaced      Counter
	OrdersCancelled   Counter
	OrdersModified    Counter
	StatusTransitions Counter
	StatusConflicts   Counter
	RefundsInitiated  Counter
)

// Snapshot returns the current counter values keyed by name.
func Snapshot() map[string]uint64 {
	return map[string]uint64{
		"orders_placed":      OrdersPlaced.Load(),
		"orders_cancelled":   OrdersCancelled.Load(),
		"orders_modified":    OrdersModified.Load(),
		"status_transitions": StatusTransitions.Load(),
		"status_conflicts":   StatusConflicts.Load(),
		"refunds_initiated":  RefundsInitiated.Load(),
	}
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
