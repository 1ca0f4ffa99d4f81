package display

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// slot is the scheduling state of one line.
type slot struct {
	current Line      // entry occupying the line
	setTime time.Time // when current was taken
	queue   []Line    // pending alerts, FIFO

	status     string // permanent text shown between alerts (text rows only)
	shown      string // last text handed to the device
	shownValid bool   // false after a failed write
}

type write struct {
	line int
	text string
}

// Scheduler multiplexes the four display lines between timed alerts and
// status text.
//
// Lock order is mu, then statusMu. Producers take only the lock they need and
// no device call is ever made while either is held.
type Scheduler struct {
	w Writer

	mu          sync.Mutex
	slots       [NumLines]slot
	lastLine    int
	lastAdvance time.Time
	advanced    bool

	statusMu sync.Mutex
	pending  [NumLines]*string
}

// NewScheduler creates a scheduler writing to w. The device is assumed
// blank at start.
func NewScheduler(w Writer) *Scheduler {
	s := &Scheduler{w: w, lastLine: NumLines - 1}
	for i := range s.slots {
		s.slots[i].shownValid = true
	}
	return s
}

// SubmitStatus sets the status text of line, to be shown on the next free
// advance. Text containing newlines continues on the following rows. A later
// call before the flush replaces the earlier text. Nothing is applied if the
// text would not fit.
func (s *Scheduler) SubmitStatus(line int, text string) error {
	parts, err := splitText(line, text)
	if err != nil {
		return err
	}

	s.statusMu.Lock()
	for i, p := range parts {
		p := p
		s.pending[line+i] = &p
	}
	s.statusMu.Unlock()
	return nil
}

// Rumble plays pattern on the next free advance of the rumble line.
func (s *Scheduler) Rumble(pattern string) error {
	if err := ValidateRumble(pattern); err != nil {
		return err
	}

	s.statusMu.Lock()
	s.pending[RumbleLine] = &pattern
	s.statusMu.Unlock()
	return nil
}

// SubmitAlert queues a single alert starting at line; text may span several
// rows with newlines. Rows not covered keep their status text while the
// alert is shown.
func (s *Scheduler) SubmitAlert(line int, text string, d time.Duration, rumble string) error {
	parts, err := splitText(line, text)
	if err != nil {
		return err
	}
	texts := make([]string, line+len(parts))
	copy(texts[line:], parts)
	return s.SubmitAlerts(texts, d, rumble)
}

// SubmitAlerts queues one alert across all lines: texts[i] on row i and
// rumble on the rumble line, all for d. Shorter queues are padded first so
// the four parts start, and expire, together.
func (s *Scheduler) SubmitAlerts(texts []string, d time.Duration, rumble string) error {
	if len(texts) > TextLines {
		return ErrTooManyLines
	}
	if d <= 0 {
		return ErrInvalidDuration
	}
	if err := ValidateRumble(rumble); err != nil {
		return err
	}

	var entries [NumLines]Line
	for i := 0; i < TextLines; i++ {
		if i < len(texts) {
			entries[i].Text = texts[i]
		}
		entries[i].Duration = d
	}
	entries[RumbleLine] = Line{Text: rumble, Duration: d}

	s.mu.Lock()
	defer s.mu.Unlock()

	var totals [NumLines]time.Duration
	var maxTotal time.Duration
	for i := range s.slots {
		totals[i] = s.outstanding(i)
		if totals[i] > maxTotal {
			maxTotal = totals[i]
		}
	}
	for i := range s.slots {
		sl := &s.slots[i]
		if gap := maxTotal - totals[i]; gap > 0 {
			sl.queue = append(sl.queue, Line{Duration: gap})
		}
		sl.queue = append(sl.queue, entries[i])
	}
	return nil
}

// outstanding is how long line stays busy, as of the last advance: the
// unexpired part of the current entry plus everything queued. Requires mu.
func (s *Scheduler) outstanding(line int) time.Duration {
	sl := &s.slots[line]
	var total time.Duration
	if rem := sl.current.Duration - s.lastAdvance.Sub(sl.setTime); rem > 0 {
		total = rem
	}
	for _, l := range sl.queue {
		total += l.Duration
	}
	return total
}

// Advance moves every due line forward and writes the changes to the device.
// Calls closer than MinAdvanceInterval to the previous advance do nothing.
func (s *Scheduler) Advance(now time.Time) error {
	s.mu.Lock()
	if s.advanced && now.Sub(s.lastAdvance) < MinAdvanceInterval {
		s.mu.Unlock()
		return nil
	}
	s.advanced = true
	s.lastAdvance = now

	s.statusMu.Lock()
	var writes []write
	// Start just after the line written last so no line is always first.
	first := (s.lastLine + 1) % NumLines
	for i := 0; i < NumLines; i++ {
		line := (first + i) % NumLines
		if w, ok := s.step(line, now); ok {
			writes = append(writes, w)
			s.lastLine = line
		}
	}
	s.statusMu.Unlock()
	s.mu.Unlock()

	var errs []error
	for _, w := range writes {
		if w.line == RumbleLine {
			if err := s.w.WriteRumble(w.text); err != nil {
				errs = append(errs, fmt.Errorf("write rumble: %w", err))
			}
			continue
		}
		if err := s.w.WriteLine(w.line, w.text); err != nil {
			errs = append(errs, fmt.Errorf("write line %d: %w", w.line, err))
			s.mu.Lock()
			s.slots[w.line].shownValid = false
			s.mu.Unlock()
		}
	}
	return errors.Join(errs...)
}

// step advances one line. Requires mu and statusMu.
func (s *Scheduler) step(line int, now time.Time) (write, bool) {
	sl := &s.slots[line]
	pending := s.pending[line]
	expired := now.Sub(sl.setTime) >= sl.current.Duration

	switch {
	case expired && len(sl.queue) > 0:
		next := sl.queue[0]
		sl.queue = sl.queue[1:]
		sl.current = next
		sl.setTime = now
		if line == RumbleLine {
			return s.play(next.Text)
		}
		if next.Text == "" {
			// Padding or an unused row of a multi-row alert.
			return s.show(line, sl.status)
		}
		return s.show(line, next.Text)

	case pending != nil && expired:
		s.pending[line] = nil
		sl.current = Line{Text: *pending}
		sl.setTime = now
		if line == RumbleLine {
			return s.play(*pending)
		}
		sl.status = *pending
		return s.show(line, sl.status)

	case pending != nil && sl.current.Text == "":
		// A blank alert slot is running; status can show through without
		// disturbing its timing.
		s.pending[line] = nil
		if line == RumbleLine {
			return s.play(*pending)
		}
		sl.status = *pending
		return s.show(line, sl.status)

	case expired && sl.current.Duration > 0:
		// Alert over, nothing queued: fall back to the status text.
		sl.setTime = now
		if line == RumbleLine {
			sl.current = Line{}
			return write{}, false
		}
		sl.current = Line{Text: sl.status}
		return s.show(line, sl.status)
	}
	return write{}, false
}

// show records text as displayed on line, reporting whether a device write
// is needed. Requires mu.
func (s *Scheduler) show(line int, text string) (write, bool) {
	sl := &s.slots[line]
	if sl.shownValid && sl.shown == text {
		return write{}, false
	}
	sl.shown = text
	sl.shownValid = true
	return write{line, text}, true
}

// play records pattern as the last rumble, reporting whether there is
// anything to play. Requires mu.
func (s *Scheduler) play(pattern string) (write, bool) {
	if pattern == "" {
		return write{}, false
	}
	s.slots[RumbleLine].shown = pattern
	return write{RumbleLine, pattern}, true
}

// Current returns the entry occupying line. Out-of-range lines return a
// zero Line.
func (s *Scheduler) Current(line int) Line {
	if line < 0 || line >= NumLines {
		return Line{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slots[line].current
}

// Queued returns a copy of the alerts waiting on line.
func (s *Scheduler) Queued(line int) []Line {
	if line < 0 || line >= NumLines {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Line(nil), s.slots[line].queue...)
}

// Expired reports whether the entry on line has run its course at now.
// Status text is always expired.
func (s *Scheduler) Expired(line int, now time.Time) bool {
	if line < 0 || line >= NumLines {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sl := &s.slots[line]
	return now.Sub(sl.setTime) >= sl.current.Duration
}

// Pending returns status text waiting to be flushed on line.
func (s *Scheduler) Pending(line int) (string, bool) {
	if line < 0 || line >= NumLines {
		return "", false
	}
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	if p := s.pending[line]; p != nil {
		return *p, true
	}
	return "", false
}

// Shown returns the text last written to each row; the rumble entry holds
// the last pattern played.
func (s *Scheduler) Shown() [NumLines]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out [NumLines]string
	for i := range s.slots {
		out[i] = s.slots[i].shown
	}
	return out
}
