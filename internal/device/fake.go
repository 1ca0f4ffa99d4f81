package device

import (
	"fmt"
	"sync"

	"github.com/sweeney/gamepad-hub/internal/controller"
	"github.com/sweeney/gamepad-hub/internal/display"
)

// Fake is a test double for the whole controller hardware. Inputs are set
// directly; output is recorded.
type Fake struct {
	mu      sync.Mutex
	buttons map[controller.ButtonID]bool
	axes    map[controller.AxisID]float64
	rows    [display.TextLines]string
	writes  []string

	// ReadError, if set, will be returned by every read.
	ReadError error
	// WriteError, if set, will be returned by every write.
	WriteError error
}

var (
	_ controller.Inputs = (*Fake)(nil)
	_ display.Writer    = (*Fake)(nil)
)

// NewFake creates a Fake with every button released and sticks centred.
func NewFake() *Fake {
	return &Fake{
		buttons: make(map[controller.ButtonID]bool),
		axes:    make(map[controller.AxisID]float64),
	}
}

// Press sets whether id is held down.
func (f *Fake) Press(id controller.ButtonID, down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buttons[id] = down
}

// SetAxis sets the position of id.
func (f *Fake) SetAxis(id controller.AxisID, v float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.axes[id] = v
}

// ReadDigital returns the state set by Press.
func (f *Fake) ReadDigital(id controller.ButtonID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReadError != nil {
		return false, f.ReadError
	}
	return f.buttons[id], nil
}

// ReadAnalog returns the value set by SetAxis.
func (f *Fake) ReadAnalog(id controller.AxisID) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	return f.axes[id], nil
}

// WriteLine records "L<line>:<text>".
func (f *Fake) WriteLine(line int, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteError != nil {
		return f.WriteError
	}
	if line < 0 || line >= display.TextLines {
		return fmt.Errorf("fake: row %d out of range", line)
	}
	f.rows[line] = text
	f.writes = append(f.writes, fmt.Sprintf("L%d:%s", line, text))
	return nil
}

// WriteRumble records "R:<pattern>".
func (f *Fake) WriteRumble(pattern string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteError != nil {
		return f.WriteError
	}
	f.writes = append(f.writes, "R:"+pattern)
	return nil
}

// Rows returns what the screen currently shows.
func (f *Fake) Rows() [display.TextLines]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows
}

// Writes returns every recorded write in order.
func (f *Fake) Writes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.writes...)
}

// ResetWrites forgets recorded writes.
func (f *Fake) ResetWrites() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = nil
}
