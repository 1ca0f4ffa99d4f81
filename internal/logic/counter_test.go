package logic

import (
	"testing"
	"time"
)

func TestCounterRecord(t *testing.T) {
	c := NewCounter(epoch)
	c.Record(EventPress)
	c.Record(EventPress)
	c.Record(EventLongPress)
	c.Record(EventRelease)
	c.Record(EventShortRelease)
	c.Record(EventKind("IGNORED"))

	got := c.Counts()
	want := EventCounts{Press: 2, LongPress: 1, Release: 1, ShortRelease: 1}
	if got != want {
		t.Errorf("counts: got %+v, want %+v", got, want)
	}
}

func TestCheckHeartbeatDisabledWithZeroInterval(t *testing.T) {
	c := NewCounter(epoch)

	if hb := c.CheckHeartbeat(epoch.Add(15*time.Minute), 0); hb != nil {
		t.Error("should not return heartbeat when interval is 0 (disabled)")
	}
	if hb := c.CheckHeartbeat(epoch.Add(15*time.Minute), -time.Minute); hb != nil {
		t.Error("should not return heartbeat when interval is negative")
	}
}

func TestCheckHeartbeatBeforeInterval(t *testing.T) {
	c := NewCounter(epoch)
	if hb := c.CheckHeartbeat(epoch.Add(14*time.Minute), 15*time.Minute); hb != nil {
		t.Error("should not return heartbeat before interval")
	}
}

func TestCheckHeartbeatUpdatesLastTime(t *testing.T) {
	c := NewCounter(epoch)

	t1 := epoch.Add(15 * time.Minute)
	hb := c.CheckHeartbeat(t1, 15*time.Minute)
	if hb == nil {
		t.Fatal("should return first heartbeat")
	}
	if !hb.Timestamp.Equal(t1) {
		t.Errorf("timestamp: got %v, want %v", hb.Timestamp, t1)
	}
	if hb.Uptime != 15*time.Minute {
		t.Errorf("uptime: got %v, want 15m", hb.Uptime)
	}

	if c.CheckHeartbeat(t1.Add(time.Second), 15*time.Minute) != nil {
		t.Error("should not return heartbeat immediately after previous")
	}

	if c.CheckHeartbeat(t1.Add(15*time.Minute), 15*time.Minute) == nil {
		t.Error("should return second heartbeat")
	}
}

func TestHeartbeatContainsEventCounts(t *testing.T) {
	c := NewCounter(epoch)
	c.Record(EventPress)
	c.Record(EventRelease)
	c.Record(EventShortRelease)

	hb := c.CheckHeartbeat(epoch.Add(time.Minute), time.Minute)
	if hb == nil {
		t.Fatal("should return heartbeat")
	}
	want := EventCounts{Press: 1, Release: 1, ShortRelease: 1}
	if hb.Counts != want {
		t.Errorf("counts: got %+v, want %+v", hb.Counts, want)
	}
}
