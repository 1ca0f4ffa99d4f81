package logic

import (
	"sync"
	"time"
)

// Counter tallies button events and paces heartbeat reports.
type Counter struct {
	mu            sync.Mutex
	startTime     time.Time
	counts        EventCounts
	lastHeartbeat time.Time
}

// NewCounter creates a counter. The startTime is used for calculating uptime
// in heartbeat reports.
func NewCounter(startTime time.Time) *Counter {
	return &Counter{
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Record counts one event of the given kind.
func (c *Counter) Record(kind EventKind) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch kind {
	case EventPress:
		c.counts.Press++
	case EventLongPress:
		c.counts.LongPress++
	case EventRelease:
		c.counts.Release++
	case EventShortRelease:
		c.counts.ShortRelease++
	}
}

// Counts returns a copy of the totals so far.
func (c *Counter) Counts() EventCounts {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if the interval has not elapsed,
// or if interval is <= 0 (disabled).
func (c *Counter) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if now.Sub(c.lastHeartbeat) < interval {
		return nil
	}

	c.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(c.startTime),
		Counts:    c.counts,
	}
}
