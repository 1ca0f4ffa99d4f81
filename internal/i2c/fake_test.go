package i2c

import (
	"errors"
	"testing"
)

func TestFakeBusRecords(t *testing.T) {
	f := NewFakeBus()

	w := []byte{1, 2}
	if err := f.Tx(0x27, w, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w[0] = 9 // recorded bytes must be a copy

	txs := f.Txs()
	if len(txs) != 1 {
		t.Fatalf("expected 1 tx, got %d", len(txs))
	}
	if txs[0].Addr != 0x27 || txs[0].Write[0] != 1 || txs[0].Read != 0 {
		t.Errorf("unexpected tx: %+v", txs[0])
	}
}

func TestFakeBusResponses(t *testing.T) {
	f := NewFakeBus()
	f.Respond(0x48, []byte{10}, []byte{20})

	r := make([]byte, 1)
	for _, want := range []byte{10, 20, 20} {
		if err := f.Tx(0x48, nil, r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r[0] != want {
			t.Errorf("expected %d, got %d", want, r[0])
		}
	}
}

func TestFakeBusErrors(t *testing.T) {
	f := NewFakeBus()
	f.TxError = errors.New("nack")
	if err := f.Tx(0x27, []byte{0}, nil); err == nil {
		t.Error("expected error")
	}

	f.TxError = nil
	f.Close()
	if err := f.Tx(0x27, []byte{0}, nil); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestDevicePath(t *testing.T) {
	if got := DevicePath(1); got != "/dev/i2c-1" {
		t.Errorf("unexpected path %q", got)
	}
}
