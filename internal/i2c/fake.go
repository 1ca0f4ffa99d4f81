package i2c

import "sync"

// Tx is one recorded transaction.
type Tx struct {
	Addr  uint16
	Write []byte
	Read  int
}

// FakeBus is a test double recording every transaction. Reads are answered
// from Responses, keyed by address; the last response repeats.
type FakeBus struct {
	mu        sync.Mutex
	txs       []Tx
	responses map[uint16][][]byte

	// TxError, if set, will be returned by Tx()
	TxError error
	Closed  bool
}

// NewFakeBus creates an empty FakeBus.
func NewFakeBus() *FakeBus {
	return &FakeBus{responses: make(map[uint16][][]byte)}
}

// Respond queues data to be read back from addr.
func (f *FakeBus) Respond(addr uint16, data ...[]byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[addr] = append(f.responses[addr], data...)
}

// Tx records the transaction and fills r from the queued responses.
func (f *FakeBus) Tx(addr uint16, w, r []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Closed {
		return ErrClosed
	}
	if f.TxError != nil {
		return f.TxError
	}
	f.txs = append(f.txs, Tx{Addr: addr, Write: append([]byte(nil), w...), Read: len(r)})
	if len(r) > 0 {
		q := f.responses[addr]
		if len(q) > 0 {
			copy(r, q[0])
			if len(q) > 1 {
				f.responses[addr] = q[1:]
			}
		}
	}
	return nil
}

// Txs returns a copy of the recorded transactions.
func (f *FakeBus) Txs() []Tx {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Tx(nil), f.txs...)
}

// Reset forgets recorded transactions.
func (f *FakeBus) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.txs = nil
}

// Close marks the bus as closed.
func (f *FakeBus) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}
