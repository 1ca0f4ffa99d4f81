package gpio

import (
	"sync"
	"time"
)

// FakeReader is a test double holding settable input levels.
type FakeReader struct {
	mu     sync.Mutex
	levels []bool
	errs   map[int]error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeReader creates a FakeReader with n inputs, all released.
func NewFakeReader(n int) *FakeReader {
	return &FakeReader{levels: make([]bool, n), errs: make(map[int]error)}
}

// Set sets the logical state of input i.
func (f *FakeReader) Set(i int, pressed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.levels[i] = pressed
}

// SetError makes reads of input i fail with err; nil clears it.
func (f *FakeReader) SetError(i int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.errs, i)
		return
	}
	f.errs[i] = err
}

// Read returns the current level of input i.
func (f *FakeReader) Read(i int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i < 0 || i >= len(f.levels) {
		return false, ErrInvalidInput
	}
	if err := f.errs[i]; err != nil {
		return false, err
	}
	return f.levels[i], nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// MotorChange is one recorded motor switch.
type MotorChange struct {
	On bool
	At time.Time
}

// FakeMotor records every switch of the motor.
type FakeMotor struct {
	mu      sync.Mutex
	changes []MotorChange
	now     func() time.Time

	// SetError, if set, will be returned by Set()
	SetError error

	Closed bool
}

// NewFakeMotor creates a FakeMotor stamping changes with time.Now.
func NewFakeMotor() *FakeMotor {
	return &FakeMotor{now: time.Now}
}

// Set records the change.
func (m *FakeMotor) Set(on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetError != nil {
		return m.SetError
	}
	m.changes = append(m.changes, MotorChange{On: on, At: m.now()})
	return nil
}

// Changes returns a copy of the recorded changes.
func (m *FakeMotor) Changes() []MotorChange {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MotorChange(nil), m.changes...)
}

// Close marks the motor as closed.
func (m *FakeMotor) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}
