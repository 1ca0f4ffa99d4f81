package gpio

import (
	"context"
	"log"
	"time"
)

// Rumble timings.
const (
	DefaultShortBuzz = 100 * time.Millisecond
	DefaultLongBuzz  = 300 * time.Millisecond
	DefaultPause     = 200 * time.Millisecond
	DefaultGap       = 50 * time.Millisecond
)

// Step is one motor state held for a duration.
type Step struct {
	On  bool
	For time.Duration
}

// Timing maps pattern symbols to motor steps.
type Timing struct {
	Short time.Duration // '.'
	Long  time.Duration // '-'
	Pause time.Duration // ' '
	Gap   time.Duration // off time after each buzz
}

// DefaultTiming returns the standard rumble timings.
func DefaultTiming() Timing {
	return Timing{Short: DefaultShortBuzz, Long: DefaultLongBuzz, Pause: DefaultPause, Gap: DefaultGap}
}

// Steps expands a rumble pattern into motor steps. Unknown symbols are
// skipped. The motor is always off at the end.
func (t Timing) Steps(pattern string) []Step {
	var steps []Step
	for _, c := range pattern {
		switch c {
		case '.':
			steps = append(steps, Step{On: true, For: t.Short}, Step{On: false, For: t.Gap})
		case '-':
			steps = append(steps, Step{On: true, For: t.Long}, Step{On: false, For: t.Gap})
		case ' ':
			steps = append(steps, Step{On: false, For: t.Pause})
		}
	}
	return steps
}

// Player plays rumble patterns on a motor from its own goroutine, so the
// polling loop never waits on a buzz. A new pattern interrupts the one
// playing.
type Player struct {
	motor  Motor
	timing Timing
	queue  chan string
}

// NewPlayer creates a player for motor.
func NewPlayer(motor Motor, timing Timing) *Player {
	return &Player{motor: motor, timing: timing, queue: make(chan string, 1)}
}

// WriteRumble schedules pattern, replacing any pattern not yet started.
func (p *Player) WriteRumble(pattern string) error {
	for {
		select {
		case p.queue <- pattern:
			return nil
		default:
		}
		select {
		case <-p.queue:
		default:
		}
	}
}

// Run plays patterns until ctx is done, then switches the motor off.
func (p *Player) Run(ctx context.Context) error {
	defer p.set(false)
	for {
		select {
		case <-ctx.Done():
			return nil
		case pattern := <-p.queue:
			p.play(ctx, pattern)
		}
	}
}

func (p *Player) play(ctx context.Context, pattern string) {
	steps := p.timing.Steps(pattern)
	for len(steps) > 0 {
		s := steps[0]
		steps = steps[1:]
		p.set(s.On)

		timer := time.NewTimer(s.For)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case next := <-p.queue:
			timer.Stop()
			steps = p.timing.Steps(next)
		case <-timer.C:
		}
	}
}

func (p *Player) set(on bool) {
	if err := p.motor.Set(on); err != nil {
		log.Printf("rumble: %v", err)
	}
}
