package logic

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

var listenerSeq atomic.Uint64

// Button tracks the edge and hold state of one digital input and dispatches
// press, long-press, release and short-release events to named listeners.
//
// Update is meant to be called from a single polling goroutine. Accessors and
// listener registration are safe from any goroutine; reads are snapshots and
// may lag the poller by one tick.
type Button struct {
	mu sync.RWMutex

	isPressed    bool
	risingEdge   bool
	fallingEdge  bool
	timeHeld     time.Duration
	timeReleased time.Duration
	threshold    time.Duration

	lastUpdate    time.Time
	lastLongPress time.Time

	onPress        Registry
	onLongPress    Registry
	onRelease      Registry
	onShortRelease Registry
}

// NewButton returns a released button with the default long-press threshold.
func NewButton() *Button {
	return &Button{threshold: DefaultLongPressThreshold}
}

// Update consumes one sample taken at now and fires the matching listeners.
func (b *Button) Update(sample bool, now time.Time) {
	b.mu.Lock()
	b.risingEdge = !b.isPressed && sample
	b.fallingEdge = b.isPressed && !sample
	b.isPressed = sample

	var elapsed time.Duration
	if !b.lastUpdate.IsZero() && now.After(b.lastUpdate) {
		elapsed = now.Sub(b.lastUpdate)
	}
	if sample {
		b.timeHeld += elapsed
	} else {
		b.timeReleased += elapsed
	}

	var fire []*Registry
	switch {
	case b.risingEdge:
		fire = append(fire, &b.onPress)
	case b.isPressed && b.timeHeld >= b.threshold && now.Sub(b.lastLongPress) >= b.threshold:
		// lastLongPress is armed at press start, so this repeats once per
		// threshold while the button stays down.
		b.lastLongPress = now
		fire = append(fire, &b.onLongPress)
	case b.fallingEdge:
		fire = append(fire, &b.onRelease)
		if b.timeHeld < b.threshold {
			fire = append(fire, &b.onShortRelease)
		}
	}
	b.mu.Unlock()

	// Listeners see the durations from before the edge resets below.
	for _, r := range fire {
		r.Fire()
	}

	b.mu.Lock()
	if b.risingEdge {
		b.timeHeld = 0
		b.lastLongPress = now
	}
	if b.fallingEdge {
		b.timeReleased = 0
	}
	b.lastUpdate = now
	b.mu.Unlock()
}

// IsPressed reports whether the button was down at the last Update.
func (b *Button) IsPressed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.isPressed
}

// RisingEdge reports whether the last Update saw a release→press transition.
func (b *Button) RisingEdge() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.risingEdge
}

// FallingEdge reports whether the last Update saw a press→release transition.
func (b *Button) FallingEdge() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.fallingEdge
}

// TimeHeld is the length of the current (or last) continuous press.
func (b *Button) TimeHeld() time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.timeHeld
}

// TimeReleased is the length of the current (or last) continuous release.
func (b *Button) TimeReleased() time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.timeReleased
}

// LongPressThreshold returns the hold time that separates short and long presses.
func (b *Button) LongPressThreshold() time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.threshold
}

// SetLongPressThreshold changes the threshold. It applies from the next
// Update, including to a press already in progress.
func (b *Button) SetLongPressThreshold(d time.Duration) {
	b.mu.Lock()
	b.threshold = d
	b.mu.Unlock()
}

// Snapshot returns a consistent copy of the button state.
func (b *Button) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Snapshot{
		IsPressed:          b.isPressed,
		RisingEdge:         b.risingEdge,
		FallingEdge:        b.fallingEdge,
		TimeHeld:           b.timeHeld,
		TimeReleased:       b.timeReleased,
		LongPressThreshold: b.threshold,
	}
}

// OnPress registers fn to run when the button goes down.
// Returns false if name is already used for press listeners.
func (b *Button) OnPress(name string, fn func()) bool {
	return b.onPress.Add(name, fn)
}

// OnLongPress registers fn to run each time the button has been held for
// another LongPressThreshold. It never fires on the tick of the press itself.
func (b *Button) OnLongPress(name string, fn func()) bool {
	return b.onLongPress.Add(name, fn)
}

// OnRelease registers fn to run when the button goes up.
func (b *Button) OnRelease(name string, fn func()) bool {
	return b.onRelease.Add(name, fn)
}

// OnShortRelease registers fn to run when the button goes up after being
// held for less than LongPressThreshold. Release listeners fire too.
func (b *Button) OnShortRelease(name string, fn func()) bool {
	return b.onShortRelease.Add(name, fn)
}

// AddListener registers fn for the given kind. Returns false for a duplicate
// name or an unknown kind.
func (b *Button) AddListener(kind EventKind, name string, fn func()) bool {
	r := b.registry(kind)
	if r == nil {
		return false
	}
	return r.Add(name, fn)
}

// Listen registers fn for kind under a generated name and returns that name.
func (b *Button) Listen(kind EventKind, fn func()) (string, error) {
	r := b.registry(kind)
	if r == nil {
		return "", fmt.Errorf("listen %q: %w", kind, ErrUnknownEventKind)
	}
	for {
		name := fmt.Sprintf("listener-%d", listenerSeq.Add(1))
		if r.Add(name, fn) {
			return name, nil
		}
	}
}

// RemoveListener removes name from every event channel that holds it.
// Returns true if at least one listener was removed.
func (b *Button) RemoveListener(name string) bool {
	removed := false
	for _, kind := range EventKinds {
		if b.registry(kind).Remove(name) {
			removed = true
		}
	}
	return removed
}

// Listeners returns the registered names for kind, in firing order.
func (b *Button) Listeners(kind EventKind) []string {
	r := b.registry(kind)
	if r == nil {
		return nil
	}
	return r.Names()
}

func (b *Button) registry(kind EventKind) *Registry {
	switch kind {
	case EventPress:
		return &b.onPress
	case EventLongPress:
		return &b.onLongPress
	case EventRelease:
		return &b.onRelease
	case EventShortRelease:
		return &b.onShortRelease
	default:
		return nil
	}
}
