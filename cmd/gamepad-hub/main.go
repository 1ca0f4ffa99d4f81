// Command gamepad-hub polls a wired game controller, drives its display and
// rumble motor, and bridges button events and display commands to MQTT.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sweeney/gamepad-hub/internal/adc"
	"github.com/sweeney/gamepad-hub/internal/command"
	"github.com/sweeney/gamepad-hub/internal/controller"
	"github.com/sweeney/gamepad-hub/internal/device"
	"github.com/sweeney/gamepad-hub/internal/gpio"
	"github.com/sweeney/gamepad-hub/internal/i2c"
	"github.com/sweeney/gamepad-hub/internal/lcd"
	"github.com/sweeney/gamepad-hub/internal/logic"
	"github.com/sweeney/gamepad-hub/internal/mqtt"
	"github.com/sweeney/gamepad-hub/internal/status"
	"github.com/sweeney/gamepad-hub/internal/web"
)

type config struct {
	poll       time.Duration
	longPress  time.Duration
	broker     string
	heartbeat  time.Duration
	name       string
	chip       string
	pins       string
	rumblePin  int
	i2cBus     int
	lcdAddr    int
	adcAddr    int
	lcdWidth   int
	httpAddr   string
	printState bool
}

func main() {
	var cfg config
	flag.DurationVar(&cfg.poll, "poll", 10*time.Millisecond, "Controller polling interval")
	flag.DurationVar(&cfg.longPress, "long-press", logic.DefaultLongPressThreshold, "Long-press threshold")
	flag.StringVar(&cfg.broker, "broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	flag.DurationVar(&cfg.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	flag.StringVar(&cfg.name, "name", "master", "Controller name, used in MQTT topics")
	flag.StringVar(&cfg.chip, "gpiochip", gpio.DefaultChip, "GPIO chip")
	flag.StringVar(&cfg.pins, "pins", "", "Button pin overrides, e.g. L1=5,A=23 (BCM numbering)")
	flag.IntVar(&cfg.rumblePin, "rumble-pin", gpio.DefaultRumblePin, "BCM pin of the rumble motor (-1 to disable)")
	flag.IntVar(&cfg.i2cBus, "i2c-bus", i2c.DefaultBus, "I2C bus of the display and sticks (-1 to disable)")
	flag.IntVar(&cfg.lcdAddr, "lcd-addr", lcd.DefaultAddr, "I2C address of the display (0 to disable)")
	flag.IntVar(&cfg.adcAddr, "adc-addr", adc.DefaultAddr, "I2C address of the stick converter (0 to disable)")
	flag.IntVar(&cfg.lcdWidth, "lcd-width", lcd.DefaultWidth, "Display width in characters")
	flag.StringVar(&cfg.httpAddr, "http", ":80", "HTTP status address (empty to disable)")
	flag.BoolVar(&cfg.printState, "print-state", false, "Print current inputs and exit")

	flag.Parse()

	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg config) error {
	if !mqtt.ValidName(cfg.name) {
		return fmt.Errorf("invalid name %q", cfg.name)
	}
	pins, err := resolvePins(cfg.pins)
	if err != nil {
		return err
	}

	// Initialize GPIO
	buttons, err := gpio.NewRealReader(cfg.chip, pins)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer buttons.Close()

	var (
		sticks device.AnalogReader
		screen *lcd.Display
		rumble *gpio.Player
	)
	if cfg.i2cBus >= 0 && (cfg.lcdAddr != 0 || cfg.adcAddr != 0) {
		bus, err := i2c.Open(cfg.i2cBus)
		if err != nil {
			return fmt.Errorf("init i2c: %w", err)
		}
		defer bus.Close()

		if cfg.adcAddr != 0 {
			sticks = adc.New(bus, uint16(cfg.adcAddr), adc.DefaultDeadzone)
		}
		if cfg.lcdAddr != 0 {
			screen, err = lcd.Open(bus, uint8(cfg.lcdAddr), cfg.lcdWidth, lcd.DefaultHeight)
			if err != nil {
				return fmt.Errorf("init lcd: %w", err)
			}
		}
	}
	if cfg.rumblePin >= 0 {
		motor, err := gpio.NewRealMotor(cfg.chip, cfg.rumblePin)
		if err != nil {
			return fmt.Errorf("init rumble: %w", err)
		}
		defer motor.Close()
		rumble = gpio.NewPlayer(motor, gpio.DefaultTiming())
	}

	hw := newHardware(buttons, sticks, screen, rumble)

	// Print state mode
	if cfg.printState {
		return printState(os.Stdout, hw)
	}

	ctrl := controller.New(cfg.name, hw, hw, time.Now, controller.WithLongPressThreshold(cfg.longPress))
	if err := ctrl.SubmitStatus(0, cfg.name); err != nil {
		log.Printf("display: %v", err)
	}

	// Initialize MQTT
	topics := mqtt.NewTopics(cfg.name)
	publisher, err := mqtt.NewRealPublisher(cfg.broker, "gamepad-hub-"+cfg.name, topics)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()
	publisher.OnCommand(func(kind command.Kind, payload []byte) {
		if err := command.Apply(ctrl, kind, payload); err != nil {
			log.Printf("mqtt: %s command rejected: %v", kind, err)
		}
	})

	// Initialize status tracker
	start := time.Now()
	tracker := status.NewTracker(start, status.Config{
		Name:        cfg.name,
		PollMs:      cfg.poll.Milliseconds(),
		LongPressMs: cfg.longPress.Milliseconds(),
		HeartbeatMs: cfg.heartbeat.Milliseconds(),
		Broker:      cfg.broker,
		HTTPPort:    cfg.httpAddr,
	})
	net := readNetworkInfo()
	if net != nil {
		tracker.SetNetwork(net)
	}

	startup := mqtt.SystemEvent{
		Timestamp: start,
		Event:     "STARTUP",
		Retained:  true,
		Config: &mqtt.SystemConfig{
			PollMs:      cfg.poll.Milliseconds(),
			LongPressMs: cfg.longPress.Milliseconds(),
			HeartbeatMs: cfg.heartbeat.Milliseconds(),
			Broker:      cfg.broker,
		},
		Network: mqttNetwork(net),
	}
	if err := publisher.PublishSystem(startup); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	h := newHub(ctrl, logic.NewCounter(start))
	if err := h.listen(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if rumble != nil {
		g.Go(func() error { return rumble.Run(ctx) })
	}

	// Start HTTP status server
	if cfg.httpAddr != "" {
		srv := web.New(cfg.httpAddr, tracker, ctrl)
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("http server error: %v", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			sctx, scancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer scancel()
			return srv.Shutdown(sctx)
		})
		log.Printf("http status server listening on %s", cfg.httpAddr)
	}

	log.Printf("started: name=%s poll=%v long-press=%v broker=%s heartbeat=%v", cfg.name, cfg.poll, cfg.longPress, cfg.broker, cfg.heartbeat)

	ticker := time.NewTicker(cfg.poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	g.Go(func() error {
		defer cancel()
		return runLoop(h, publisher, publisher, tracker, cfg.heartbeat, time.Now, ticker.C, sigCh)
	})

	err = g.Wait()
	if screen != nil {
		if cerr := screen.Clear(); cerr != nil {
			log.Printf("display: %v", cerr)
		}
	}
	return err
}

// newHardware builds the device binding, leaving absent devices as nil
// interfaces.
func newHardware(buttons gpio.Reader, sticks device.AnalogReader, screen *lcd.Display, rumble *gpio.Player) *device.Hardware {
	var (
		lw device.LineWriter
		rw device.RumbleWriter
	)
	if screen != nil {
		lw = screen
	}
	if rumble != nil {
		rw = rumble
	}
	return device.NewHardware(buttons, sticks, lw, rw)
}

// resolvePins returns the BCM pin of every button in polling order, starting
// from the default wiring and applying overrides.
func resolvePins(pinMap string) ([]int, error) {
	pins := append([]int(nil), gpio.DefaultPins...)
	overrides, err := gpio.ParsePins(pinMap)
	if err != nil {
		return nil, err
	}
	for name, pin := range overrides {
		i, err := controller.ButtonIndex(controller.ButtonID(name))
		if err != nil {
			return nil, fmt.Errorf("pin map %s: %w", name, err)
		}
		pins[i] = pin
	}
	seen := make(map[int]controller.ButtonID)
	for i, pin := range pins {
		if other, dup := seen[pin]; dup {
			return nil, fmt.Errorf("pin %d wired to both %s and %s", pin, other, controller.Buttons[i])
		}
		seen[pin] = controller.Buttons[i]
	}
	return pins, nil
}

func printState(w io.Writer, in controller.Inputs) error {
	for _, id := range controller.Buttons {
		down, err := in.ReadDigital(id)
		if err != nil {
			return fmt.Errorf("read %s: %w", id, err)
		}
		state := "up"
		if down {
			state = "down"
		}
		fmt.Fprintf(w, "%s: %s\n", id, state)
	}
	for _, id := range controller.Axes {
		v, err := in.ReadAnalog(id)
		if err != nil {
			return fmt.Errorf("read %s: %w", id, err)
		}
		fmt.Fprintf(w, "%s: %+.2f\n", id, v)
	}
	return nil
}

// hub turns listener callbacks into counted, publishable events. Listeners
// fire on the polling goroutine, so pending needs no lock.
type hub struct {
	ctrl    *controller.Controller
	counter *logic.Counter
	pending []mqtt.ButtonEvent
}

func newHub(ctrl *controller.Controller, counter *logic.Counter) *hub {
	return &hub{ctrl: ctrl, counter: counter}
}

// listen subscribes to every event of every button.
func (h *hub) listen() error {
	for _, id := range controller.Buttons {
		b, err := h.ctrl.Button(id)
		if err != nil {
			return err
		}
		for _, kind := range logic.EventKinds {
			id, kind := id, kind
			err := h.ctrl.AddListener(id, kind, "hub", func() {
				var held time.Duration
				if kind != logic.EventPress {
					held = b.TimeHeld()
				}
				h.counter.Record(kind)
				h.pending = append(h.pending, mqtt.ButtonEvent{
					Controller: h.ctrl.Name(),
					Button:     id,
					Kind:       kind,
					Held:       held,
				})
			})
			if err != nil {
				return fmt.Errorf("subscribe %s: %w", id, err)
			}
		}
	}
	return nil
}

// take returns the events fired since the last call.
func (h *hub) take() []mqtt.ButtonEvent {
	events := h.pending
	h.pending = nil
	return events
}

func runLoop(h *hub, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	var lastErr string

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				tracker.Update(h.ctrl.State(), h.counter.Counts())
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			// Inputs that fail keep their last value; log each distinct
			// failure once rather than every tick.
			if err := h.ctrl.Update(); err != nil {
				if msg := err.Error(); msg != lastErr {
					log.Printf("update error: %v", err)
					lastErr = msg
				}
			} else if lastErr != "" {
				log.Printf("update recovered")
				lastErr = ""
			}

			for _, event := range h.take() {
				event.Timestamp = t
				log.Printf("event: %s %s (held %v)", event.Button, event.Kind, event.Held)
				if err := publisher.Publish(event); err != nil {
					log.Printf("publish error: %v", err)
					// Don't crash on publish failure
				}
				if tracker != nil {
					tracker.RecordEvent(status.Event{At: t, Button: event.Button, Kind: event.Kind, Held: event.Held})
				}
			}

			// Check for heartbeat
			if hbData := h.counter.CheckHeartbeat(t, heartbeat); hbData != nil {
				log.Printf("heartbeat: uptime=%v press=%d long_press=%d release=%d short_release=%d",
					hbData.Uptime, hbData.Counts.Press, hbData.Counts.LongPress, hbData.Counts.Release, hbData.Counts.ShortRelease)

				hbEvent := mqtt.SystemEvent{
					Timestamp: hbData.Timestamp,
					Event:     "HEARTBEAT",
					Heartbeat: mqtt.NewHeartbeatInfo(*hbData),
				}
				// Refresh network info for heartbeat
				if net := readNetworkInfo(); net != nil {
					hbEvent.Network = mqttNetwork(net)
					if tracker != nil {
						tracker.SetNetwork(net)
					}
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}

			// Update status tracker for HTTP consumers
			if tracker != nil {
				tracker.Update(h.ctrl.State(), h.counter.Counts())
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}
		}
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

func mqttNetwork(n *status.NetworkInfo) *mqtt.NetworkInfo {
	if n == nil {
		return nil
	}
	return &mqtt.NetworkInfo{Type: n.Type, IP: n.IP, Status: n.Status, SSID: n.SSID}
}
