package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value atomic.Uint64
}

func (c *Counter) Inc() {
	c.value.Add(1)
}

func (c *Counter) Add(n uint64) {
	c.value.Add(n)
}

func (c *Counter) Load() uint64 {
	return c.value.Load()
}

// Process-wide counters, reported by the health endpoint.
var (
	ReorderWrites   Counter
	ReorderFailures Counter
	EmailsSent      Counter
	EmailsFailed    Counter
)

// Snapshot returns the current value of every counter by name.
func Snapshot() map[string]uint64 {
	return map[string]uint64{
		"reorder_writes":   ReorderWrites.Load(),
		"reorder_failures": ReorderFailures.Load(),
		"emails_sent":      EmailsSent.Load(),
		"emails_failed":    EmailsFailed.Load(),
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
