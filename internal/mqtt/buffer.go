package mqtt

import "log"

// bufferedMsg stores a serialized MQTT message for replay after reconnection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// outbox is a bounded FIFO of messages held while disconnected. When full,
// the oldest QoS 0 message is dropped first; QoS 1 messages are dropped only
// when nothing else is left.
// Not safe for concurrent use; caller must synchronize.
type outbox struct {
	msgs     []bufferedMsg
	capacity int
	dropped  int // messages lost since the last drain
}

func newOutbox(capacity int) *outbox {
	return &outbox{capacity: capacity}
}

func (o *outbox) push(msg bufferedMsg) {
	if len(o.msgs) == o.capacity {
		if o.dropped == 0 {
			log.Printf("mqtt: buffer full (%d messages), dropping oldest", o.capacity)
		}
		o.dropped++
		victim := 0
		for i, m := range o.msgs {
			if m.qos == 0 {
				victim = i
				break
			}
		}
		o.msgs = append(o.msgs[:victim], o.msgs[victim+1:]...)
	}
	o.msgs = append(o.msgs, msg)
}

// drainAll returns the buffered messages oldest first and empties the box.
func (o *outbox) drainAll() []bufferedMsg {
	if len(o.msgs) == 0 {
		return nil
	}
	if o.dropped > 0 {
		log.Printf("mqtt: %d buffered messages were dropped", o.dropped)
	}
	out := o.msgs
	o.msgs = nil
	o.dropped = 0
	return out
}

func (o *outbox) len() int {
	return len(o.msgs)
}
