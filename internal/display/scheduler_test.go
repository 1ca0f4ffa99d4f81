package display

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func at(ms int) time.Time {
	return epoch.Add(time.Duration(ms) * time.Millisecond)
}

// recorder is a Writer that records every call as "L<n>:<text>" or "R:<pattern>".
type recorder struct {
	mu     sync.Mutex
	writes []string
	failOn map[int]error
}

func (r *recorder) WriteLine(line int, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failOn[line]; err != nil {
		return err
	}
	r.writes = append(r.writes, fmt.Sprintf("L%d:%s", line, text))
	return nil
}

func (r *recorder) WriteRumble(pattern string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = append(r.writes, "R:"+pattern)
	return nil
}

func (r *recorder) take() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	w := r.writes
	r.writes = nil
	return w
}

func newTestScheduler() (*Scheduler, *recorder) {
	rec := &recorder{}
	return NewScheduler(rec), rec
}

func mustAdvance(t *testing.T, s *Scheduler, now time.Time) {
	t.Helper()
	if err := s.Advance(now); err != nil {
		t.Fatalf("Advance(%v): %v", now.Sub(epoch), err)
	}
}

func TestStatusRoundTrip(t *testing.T) {
	s, rec := newTestScheduler()

	if err := s.SubmitStatus(0, "hi"); err != nil {
		t.Fatalf("SubmitStatus: %v", err)
	}
	mustAdvance(t, s, at(0))

	if got := s.Current(0); got != (Line{Text: "hi"}) {
		t.Errorf("current: got %+v, want {hi 0}", got)
	}
	if got := rec.take(); !reflect.DeepEqual(got, []string{"L0:hi"}) {
		t.Errorf("writes: got %v, want [L0:hi]", got)
	}
	if _, ok := s.Pending(0); ok {
		t.Error("pending status should be cleared after flush")
	}
}

func TestStatusIdempotent(t *testing.T) {
	s, rec := newTestScheduler()

	s.SubmitStatus(1, "same")
	s.SubmitStatus(1, "same")
	mustAdvance(t, s, at(0))
	s.SubmitStatus(1, "same")
	mustAdvance(t, s, at(100))

	if got := rec.take(); !reflect.DeepEqual(got, []string{"L1:same"}) {
		t.Errorf("writes: got %v, want exactly one write", got)
	}
}

func TestStatusOverwriteBeforeFlush(t *testing.T) {
	s, rec := newTestScheduler()

	s.SubmitStatus(0, "first")
	s.SubmitStatus(0, "second")
	mustAdvance(t, s, at(0))

	if got := rec.take(); !reflect.DeepEqual(got, []string{"L0:second"}) {
		t.Errorf("writes: got %v", got)
	}
}

func TestStatusReplacesStatus(t *testing.T) {
	s, rec := newTestScheduler()

	s.SubmitStatus(2, "one")
	mustAdvance(t, s, at(0))
	s.SubmitStatus(2, "two")
	mustAdvance(t, s, at(50))

	if got := rec.take(); !reflect.DeepEqual(got, []string{"L2:one", "L2:two"}) {
		t.Errorf("writes: got %v", got)
	}
}

func TestStatusMultiLine(t *testing.T) {
	s, rec := newTestScheduler()

	if err := s.SubmitStatus(1, "a\nb"); err != nil {
		t.Fatalf("SubmitStatus: %v", err)
	}
	mustAdvance(t, s, at(0))

	got := rec.take()
	if len(got) != 2 {
		t.Fatalf("expected 2 writes, got %v", got)
	}
	if s.Current(1).Text != "a" || s.Current(2).Text != "b" {
		t.Errorf("current: line1=%q line2=%q", s.Current(1).Text, s.Current(2).Text)
	}
}

func TestStatusErrors(t *testing.T) {
	s, rec := newTestScheduler()

	tests := []struct {
		line int
		text string
		want error
	}{
		{3, "x", ErrInvalidLine},
		{-1, "x", ErrInvalidLine},
		{1, "a\nb\nc", ErrTooManyLines},
		{0, "a\nb\nc\nd", ErrTooManyLines},
	}
	for _, tt := range tests {
		if err := s.SubmitStatus(tt.line, tt.text); !errors.Is(err, tt.want) {
			t.Errorf("SubmitStatus(%d, %q): got %v, want %v", tt.line, tt.text, err, tt.want)
		}
	}

	// Rejected calls leave nothing behind.
	for i := 0; i < NumLines; i++ {
		if p, ok := s.Pending(i); ok {
			t.Errorf("line %d: unexpected pending %q", i, p)
		}
	}
	mustAdvance(t, s, at(0))
	if got := rec.take(); len(got) != 0 {
		t.Errorf("expected no writes, got %v", got)
	}
}

func TestSubmitAlertsSynchronized(t *testing.T) {
	s, rec := newTestScheduler()

	if err := s.SubmitAlerts([]string{"A", "B", ""}, 1000*time.Millisecond, ".."); err != nil {
		t.Fatalf("SubmitAlerts: %v", err)
	}

	// No padding when all queues start empty.
	wantQueues := [][]Line{
		{{Text: "A", Duration: time.Second}},
		{{Text: "B", Duration: time.Second}},
		{{Text: "", Duration: time.Second}},
		{{Text: "..", Duration: time.Second}},
	}
	for i, want := range wantQueues {
		if got := s.Queued(i); !reflect.DeepEqual(got, want) {
			t.Errorf("line %d queue: got %+v, want %+v", i, got, want)
		}
	}

	mustAdvance(t, s, at(0))
	got := rec.take()
	wantWrites := map[string]bool{"L0:A": true, "L1:B": true, "R:..": true}
	if len(got) != len(wantWrites) {
		t.Fatalf("writes: got %v", got)
	}
	for _, w := range got {
		if !wantWrites[w] {
			t.Errorf("unexpected write %q", w)
		}
	}

	for i := 0; i < NumLines; i++ {
		if s.Expired(i, at(999)) {
			t.Errorf("line %d expired early", i)
		}
		if !s.Expired(i, at(1000)) {
			t.Errorf("line %d not expired at 1000ms", i)
		}
	}
}

func TestAlertRevertsToStatus(t *testing.T) {
	s, rec := newTestScheduler()

	s.SubmitStatus(0, "ready")
	mustAdvance(t, s, at(0))
	rec.take()

	s.SubmitAlert(0, "ALERT", 500*time.Millisecond, "")
	mustAdvance(t, s, at(100))
	if got := rec.take(); !reflect.DeepEqual(got, []string{"L0:ALERT"}) {
		t.Fatalf("writes: got %v", got)
	}

	mustAdvance(t, s, at(550))
	if got := rec.take(); len(got) != 0 {
		t.Errorf("alert should still be showing, got writes %v", got)
	}

	mustAdvance(t, s, at(600))
	if got := rec.take(); !reflect.DeepEqual(got, []string{"L0:ready"}) {
		t.Errorf("writes: got %v, want status restored", got)
	}
	if got := s.Current(0); got != (Line{Text: "ready"}) {
		t.Errorf("current: got %+v", got)
	}
}

func TestAlertOutranksPendingStatus(t *testing.T) {
	s, rec := newTestScheduler()

	s.SubmitAlert(0, "ALERT", time.Second, "")
	s.SubmitStatus(0, "status")
	mustAdvance(t, s, at(0))

	if got := rec.take(); !reflect.DeepEqual(got, []string{"L0:ALERT"}) {
		t.Fatalf("writes: got %v", got)
	}
	if p, ok := s.Pending(0); !ok || p != "status" {
		t.Errorf("status should stay pending, got %q %v", p, ok)
	}

	mustAdvance(t, s, at(1000))
	if got := rec.take(); !reflect.DeepEqual(got, []string{"L0:status"}) {
		t.Errorf("writes: got %v", got)
	}
}

func TestBlankAlertRowShowsStatus(t *testing.T) {
	s, rec := newTestScheduler()

	s.SubmitStatus(1, "keep")
	mustAdvance(t, s, at(0))
	rec.take()

	// Alert on row 0 only; row 1 keeps its status, no rewrite needed.
	s.SubmitAlert(0, "X", time.Second, "")
	mustAdvance(t, s, at(100))
	if got := rec.take(); !reflect.DeepEqual(got, []string{"L0:X"}) {
		t.Errorf("writes: got %v", got)
	}

	// New status on row 1 shows through the blank alert slot right away
	// without shortening it.
	s.SubmitStatus(1, "new")
	mustAdvance(t, s, at(200))
	if got := rec.take(); !reflect.DeepEqual(got, []string{"L1:new"}) {
		t.Errorf("writes: got %v", got)
	}
	if s.Expired(1, at(1099)) {
		t.Error("blank slot on row 1 should still run until 1100ms")
	}
}

func TestRedundantAlertWriteSuppressed(t *testing.T) {
	s, rec := newTestScheduler()

	s.SubmitAlert(0, "same", 100*time.Millisecond, "")
	s.SubmitAlert(0, "same", 100*time.Millisecond, "")
	mustAdvance(t, s, at(0))
	mustAdvance(t, s, at(100))

	if got := rec.take(); !reflect.DeepEqual(got, []string{"L0:same"}) {
		t.Errorf("writes: got %v", got)
	}
	if len(s.Queued(0)) != 0 {
		t.Error("second alert should have been taken")
	}
	if s.Expired(0, at(150)) {
		t.Error("second alert timing should restart at 100ms")
	}
}

func TestRumbleAlwaysWrites(t *testing.T) {
	s, rec := newTestScheduler()

	s.Rumble(".-")
	mustAdvance(t, s, at(0))
	s.Rumble(".-")
	mustAdvance(t, s, at(50))

	if got := rec.take(); !reflect.DeepEqual(got, []string{"R:.-", "R:.-"}) {
		t.Errorf("writes: got %v", got)
	}
	if got := s.Shown()[RumbleLine]; got != ".-" {
		t.Errorf("shown rumble: got %q", got)
	}
}

func TestRumbleValidation(t *testing.T) {
	s, _ := newTestScheduler()

	if err := s.Rumble("........."); !errors.Is(err, ErrRumbleTooLong) {
		t.Errorf("expected ErrRumbleTooLong, got %v", err)
	}
	if err := s.Rumble(".x"); !errors.Is(err, ErrInvalidRumble) {
		t.Errorf("expected ErrInvalidRumble, got %v", err)
	}
	if err := s.SubmitAlerts([]string{"a"}, time.Second, "-----_"); !errors.Is(err, ErrInvalidRumble) {
		t.Errorf("expected ErrInvalidRumble, got %v", err)
	}
	if err := s.Rumble(". - . -"); err != nil {
		t.Errorf("valid pattern rejected: %v", err)
	}
	if err := s.Rumble(""); err != nil {
		t.Errorf("empty pattern rejected: %v", err)
	}
}

func TestSubmitAlertsErrorsLeaveQueuesUntouched(t *testing.T) {
	s, _ := newTestScheduler()

	if err := s.SubmitAlerts([]string{"a", "b", "c", "d"}, time.Second, ""); !errors.Is(err, ErrTooManyLines) {
		t.Errorf("expected ErrTooManyLines, got %v", err)
	}
	if err := s.SubmitAlerts([]string{"a"}, 0, ""); !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("expected ErrInvalidDuration, got %v", err)
	}
	if err := s.SubmitAlert(2, "a\nb", time.Second, ""); !errors.Is(err, ErrTooManyLines) {
		t.Errorf("expected ErrTooManyLines, got %v", err)
	}
	if err := s.SubmitAlert(3, "a", time.Second, ""); !errors.Is(err, ErrInvalidLine) {
		t.Errorf("expected ErrInvalidLine, got %v", err)
	}
	if err := s.SubmitAlerts(nil, time.Second, "........."); !errors.Is(err, ErrRumbleTooLong) {
		t.Errorf("expected ErrRumbleTooLong, got %v", err)
	}

	for i := 0; i < NumLines; i++ {
		if q := s.Queued(i); len(q) != 0 {
			t.Errorf("line %d: queue should be empty, got %+v", i, q)
		}
	}
}

func TestSubmitAlertsPadsShorterQueues(t *testing.T) {
	s, _ := newTestScheduler()

	// Unequal backlog, as left behind by a line whose write was deferred.
	s.slots[0].queue = []Line{{Text: "x", Duration: 300 * time.Millisecond}}
	s.slots[RumbleLine].queue = []Line{{Text: ".", Duration: 100 * time.Millisecond}}

	if err := s.SubmitAlerts([]string{"n"}, time.Second, "-"); err != nil {
		t.Fatalf("SubmitAlerts: %v", err)
	}

	want := map[int][]Line{
		0: {{Text: "x", Duration: 300 * time.Millisecond}, {Text: "n", Duration: time.Second}},
		1: {{Duration: 300 * time.Millisecond}, {Duration: time.Second}},
		2: {{Duration: 300 * time.Millisecond}, {Duration: time.Second}},
		3: {{Text: ".", Duration: 100 * time.Millisecond}, {Duration: 200 * time.Millisecond}, {Text: "-", Duration: time.Second}},
	}
	for line, w := range want {
		if got := s.Queued(line); !reflect.DeepEqual(got, w) {
			t.Errorf("line %d: got %+v, want %+v", line, got, w)
		}
	}
}

func TestSubmitAlertsCountsRunningAlert(t *testing.T) {
	s, _ := newTestScheduler()

	s.SubmitAlerts([]string{"first"}, time.Second, "")
	mustAdvance(t, s, at(0))
	mustAdvance(t, s, at(400))

	// Running alerts have 600ms left on every line: no padding.
	s.SubmitAlerts([]string{"second"}, time.Second, "")
	for i := 0; i < NumLines; i++ {
		if q := s.Queued(i); len(q) != 1 {
			t.Errorf("line %d: expected exactly the new entry, got %+v", i, q)
		}
	}
}

func TestAdvanceThrottle(t *testing.T) {
	s, rec := newTestScheduler()

	mustAdvance(t, s, at(0))
	s.SubmitStatus(0, "late")
	mustAdvance(t, s, at(49))
	if got := rec.take(); len(got) != 0 {
		t.Errorf("advance inside throttle window wrote %v", got)
	}

	mustAdvance(t, s, at(50))
	if got := rec.take(); !reflect.DeepEqual(got, []string{"L0:late"}) {
		t.Errorf("writes: got %v", got)
	}
}

func TestRoundRobinWriteOrder(t *testing.T) {
	s, rec := newTestScheduler()

	s.SubmitStatus(0, "a\nb\nc")
	mustAdvance(t, s, at(0))
	if got := rec.take(); !reflect.DeepEqual(got, []string{"L0:a", "L1:b", "L2:c"}) {
		t.Fatalf("writes: got %v", got)
	}

	// Last written line was 2, so the next pass starts at the rumble line.
	s.SubmitStatus(0, "d\ne\nf")
	s.Rumble(".")
	mustAdvance(t, s, at(50))
	if got := rec.take(); !reflect.DeepEqual(got, []string{"R:.", "L0:d", "L1:e", "L2:f"}) {
		t.Errorf("writes: got %v", got)
	}

	s.SubmitStatus(0, "g\nh")
	mustAdvance(t, s, at(100))
	if got := rec.take(); !reflect.DeepEqual(got, []string{"L0:g", "L1:h"}) {
		t.Errorf("writes: got %v", got)
	}
}

func TestFailedWriteIsRetried(t *testing.T) {
	s, rec := newTestScheduler()
	rec.failOn = map[int]error{0: errors.New("i2c nak")}

	s.SubmitStatus(0, "x")
	if err := s.Advance(at(0)); err == nil {
		t.Fatal("expected write error")
	}

	rec.failOn = nil
	s.SubmitStatus(0, "x")
	mustAdvance(t, s, at(50))
	if got := rec.take(); !reflect.DeepEqual(got, []string{"L0:x"}) {
		t.Errorf("writes: got %v, want the failed text rewritten", got)
	}
}

func TestConcurrentProducers(t *testing.T) {
	s, _ := newTestScheduler()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.SubmitStatus(i%TextLines, fmt.Sprintf("s%d-%d", i, j))
			}
		}(i)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.SubmitAlerts([]string{fmt.Sprintf("a%d", i)}, 10*time.Millisecond, ".")
			}
		}(i)
	}
	done := make(chan struct{})
	go func() {
		for ms := 0; ; ms += 50 {
			select {
			case <-done:
				return
			default:
			}
			s.Advance(at(ms))
		}
	}()
	wg.Wait()
	close(done)

	// Every line holds the same backlog.
	var first time.Duration
	for i := 0; i < NumLines; i++ {
		var total time.Duration
		for _, l := range s.Queued(i) {
			total += l.Duration
		}
		if i == 0 {
			first = total
		} else if total != first {
			t.Errorf("line %d backlog %v differs from line 0 backlog %v", i, total, first)
		}
	}
}
