// Package controller composes the buttons, axes and display scheduler of one
// physical controller. Update is the single per-tick entry point; producers
// may submit display content from any goroutine.
package controller

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sweeney/gamepad-hub/internal/display"
	"github.com/sweeney/gamepad-hub/internal/logic"
)

// Inputs samples the controller hardware.
type Inputs interface {
	// ReadDigital returns whether the button is down.
	ReadDigital(id ButtonID) (bool, error)
	// ReadAnalog returns the axis position, nominally in [-1, 1].
	ReadAnalog(id AxisID) (float64, error)
}

// Controller is one controller (e.g. master or partner). Instances share
// no state.
type Controller struct {
	name string
	in   Inputs
	now  func() time.Time

	buttons [NumButtons]*logic.Button

	mu   sync.RWMutex
	axes [NumAxes]float64

	display *display.Scheduler
}

// Option configures a Controller.
type Option func(*Controller)

// WithLongPressThreshold sets the initial long-press threshold of every button.
func WithLongPressThreshold(d time.Duration) Option {
	return func(c *Controller) {
		for _, b := range c.buttons {
			b.SetLongPressThreshold(d)
		}
	}
}

// New creates a controller reading from in and displaying on out.
// now must be monotonic; tests pass a fake clock.
func New(name string, in Inputs, out display.Writer, now func() time.Time, opts ...Option) *Controller {
	c := &Controller{
		name:    name,
		in:      in,
		now:     now,
		display: display.NewScheduler(out),
	}
	for i := range c.buttons {
		c.buttons[i] = logic.NewButton()
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the controller name given to New.
func (c *Controller) Name() string {
	return c.name
}

// Update samples every button and axis once, firing button listeners on the
// calling goroutine, then advances the display. A failed read leaves that
// input at its previous value; all failures are returned together.
func (c *Controller) Update() error {
	t := c.now()
	var errs []error

	for i, id := range Buttons {
		pressed, err := c.in.ReadDigital(id)
		if err != nil {
			errs = append(errs, fmt.Errorf("read button %s: %w", id, err))
			continue
		}
		c.buttons[i].Update(pressed, t)
	}

	c.mu.RLock()
	axes := c.axes
	c.mu.RUnlock()
	for i, id := range Axes {
		v, err := c.in.ReadAnalog(id)
		if err != nil {
			errs = append(errs, fmt.Errorf("read axis %s: %w", id, err))
			continue
		}
		axes[i] = v
	}
	c.mu.Lock()
	c.axes = axes
	c.mu.Unlock()

	if err := c.display.Advance(t); err != nil {
		errs = append(errs, fmt.Errorf("advance display: %w", err))
	}
	return errors.Join(errs...)
}

// Button returns the button for id, or nil and ErrInvalidButton.
func (c *Controller) Button(id ButtonID) (*logic.Button, error) {
	i, err := ButtonIndex(id)
	if err != nil {
		return nil, err
	}
	return c.buttons[i], nil
}

// Axis returns the last sampled value of id, or 0 and ErrInvalidAxis.
func (c *Controller) Axis(id AxisID) (float64, error) {
	i, err := AxisIndex(id)
	if err != nil {
		return 0, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.axes[i], nil
}

// AddListener registers fn on button id for kind.
func (c *Controller) AddListener(id ButtonID, kind logic.EventKind, name string, fn func()) error {
	b, err := c.Button(id)
	if err != nil {
		return fmt.Errorf("add listener %q: %w", name, err)
	}
	if _, err := logic.ParseEventKind(string(kind)); err != nil {
		return fmt.Errorf("add listener %q: %w", name, err)
	}
	if !b.AddListener(kind, name, fn) {
		return fmt.Errorf("add listener %q on %s: %w", name, id, logic.ErrDuplicateListener)
	}
	return nil
}

// RemoveListener removes name from every event channel of button id.
func (c *Controller) RemoveListener(id ButtonID, name string) error {
	b, err := c.Button(id)
	if err != nil {
		return fmt.Errorf("remove listener %q: %w", name, err)
	}
	if !b.RemoveListener(name) {
		return fmt.Errorf("remove listener %q on %s: %w", name, id, logic.ErrUnknownListener)
	}
	return nil
}

// SubmitStatus sets permanent text on a row; see display.Scheduler.SubmitStatus.
func (c *Controller) SubmitStatus(line int, text string) error {
	return c.display.SubmitStatus(line, text)
}

// SubmitAlert queues a timed alert starting at line.
func (c *Controller) SubmitAlert(line int, text string, d time.Duration, rumble string) error {
	return c.display.SubmitAlert(line, text, d, rumble)
}

// SubmitAlerts queues a timed alert spanning the rows in texts.
func (c *Controller) SubmitAlerts(texts []string, d time.Duration, rumble string) error {
	return c.display.SubmitAlerts(texts, d, rumble)
}

// Rumble plays pattern as soon as the rumble line is free.
func (c *Controller) Rumble(pattern string) error {
	return c.display.Rumble(pattern)
}

// Display exposes the scheduler for inspection.
func (c *Controller) Display() *display.Scheduler {
	return c.display
}

// State is a point-in-time view of a controller.
type State struct {
	Name    string
	Buttons map[ButtonID]logic.Snapshot
	Axes    map[AxisID]float64
	Lines   [display.NumLines]string
}

// State returns a snapshot of buttons, axes and displayed lines.
func (c *Controller) State() State {
	s := State{
		Name:    c.name,
		Buttons: make(map[ButtonID]logic.Snapshot, NumButtons),
		Axes:    make(map[AxisID]float64, NumAxes),
		Lines:   c.display.Shown(),
	}
	for i, id := range Buttons {
		s.Buttons[id] = c.buttons[i].Snapshot()
	}
	c.mu.RLock()
	for i, id := range Axes {
		s.Axes[id] = c.axes[i]
	}
	c.mu.RUnlock()
	return s
}
