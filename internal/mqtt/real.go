package mqtt

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// DefaultBufferSize is how many messages are kept while disconnected.
const DefaultBufferSize = 256

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

// RealPublisher publishes to an actual MQTT broker and subscribes to the
// display command topics. Messages published while the broker is away are
// buffered and sent on reconnect.
type RealPublisher struct {
	client paho.Client
	topics Topics
	now    func() time.Time

	mu        sync.Mutex
	buffer    *outbox
	handler   CommandHandler
	connected bool // set after the first successful connect
}

// NewRealPublisher connects to broker. If the broker cannot be reached in
// time the publisher is still returned; it keeps retrying in the background
// and buffers until connected.
func NewRealPublisher(broker, clientID string, topics Topics) (*RealPublisher, error) {
	p := &RealPublisher{
		topics: topics,
		now:    time.Now,
		buffer: newOutbox(DefaultBufferSize),
	}

	will, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "SHUTDOWN",
		Reason:    "MQTT_DISCONNECT",
	})
	if err != nil {
		return nil, fmt.Errorf("format will: %w", err)
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(topics.System, string(will), 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		})

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		log.Printf("mqtt: broker %s not reachable yet, buffering", broker)
		return p, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	return p, nil
}

// newPublisher wraps an existing client.
func newPublisher(client paho.Client, topics Topics, now func() time.Time) *RealPublisher {
	return &RealPublisher{
		client: client,
		topics: topics,
		now:    now,
		buffer: newOutbox(DefaultBufferSize),
	}
}

// onConnect runs on every (re)connect: it resubscribes, announces the
// reconnect and flushes the buffer.
func (p *RealPublisher) onConnect(c paho.Client) {
	p.mu.Lock()
	reconnect := p.connected
	p.connected = true
	h := p.handler
	p.mu.Unlock()

	if h != nil {
		p.subscribe(c, h)
	}

	if reconnect {
		log.Printf("mqtt: reconnected")
		payload, err := FormatSystemPayload(SystemEvent{Timestamp: p.now(), Event: "RECONNECTED"})
		if err == nil {
			p.send(bufferedMsg{topic: p.topics.System, payload: payload, qos: 1})
		}
	}

	p.mu.Lock()
	pending := p.buffer.drainAll()
	p.mu.Unlock()
	if len(pending) > 0 {
		log.Printf("mqtt: replaying %d buffered messages", len(pending))
	}
	for _, msg := range pending {
		if err := p.send(msg); err != nil {
			log.Printf("mqtt: replay: %v", err)
		}
	}
}

func (p *RealPublisher) subscribe(c paho.Client, h CommandHandler) {
	kinds := p.topics.Commands()
	filters := make(map[string]byte, len(kinds))
	for topic := range kinds {
		filters[topic] = 1
	}
	token := c.SubscribeMultiple(filters, func(_ paho.Client, m paho.Message) {
		kind, ok := kinds[m.Topic()]
		if !ok {
			return
		}
		h(kind, m.Payload())
	})
	if !token.WaitTimeout(publishTimeout) {
		log.Printf("mqtt: subscribe timeout")
		return
	}
	if err := token.Error(); err != nil {
		log.Printf("mqtt: subscribe: %v", err)
	}
}

// OnCommand installs h for inbound display commands. Commands arrive on the
// client's goroutine.
func (p *RealPublisher) OnCommand(h CommandHandler) {
	p.mu.Lock()
	p.handler = h
	p.mu.Unlock()

	if p.client.IsConnectionOpen() {
		p.subscribe(p.client, h)
	}
}

// Publish sends a button event to the MQTT broker.
func (p *RealPublisher) Publish(event ButtonEvent) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 0 (at-most-once), not retained
	return p.publish(bufferedMsg{topic: p.topics.Events, payload: payload})
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 (at-least-once) for lifecycle events
	return p.publish(bufferedMsg{topic: p.topics.System, payload: payload, qos: 1, retained: event.Retained})
}

// publish sends msg now, or buffers it while disconnected.
func (p *RealPublisher) publish(msg bufferedMsg) error {
	p.mu.Lock()
	if !p.client.IsConnectionOpen() {
		p.buffer.push(msg)
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()
	return p.send(msg)
}

func (p *RealPublisher) send(msg bufferedMsg) error {
	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	if !token.WaitTimeout(publishTimeout) {
		return errors.New("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Buffered returns how many messages wait for the broker.
func (p *RealPublisher) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buffer.len()
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
