package adc

import (
	"errors"
	"math"
	"testing"

	"github.com/sweeney/gamepad-hub/internal/i2c"
)

func TestScale(t *testing.T) {
	tests := []struct {
		raw      uint8
		deadzone float64
		want     float64
	}{
		{0, 0, -1},
		{255, 0, 1},
		{128, 0, 0.5 / 127.5},
		{128, 0.05, 0},
		{127, 0.05, 0},
		{191, 0.05, 63.5 / 127.5},
	}
	for _, tc := range tests {
		if got := Scale(tc.raw, tc.deadzone); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("Scale(%d, %v) = %v, want %v", tc.raw, tc.deadzone, got, tc.want)
		}
	}
}

func TestRead(t *testing.T) {
	bus := i2c.NewFakeBus()
	bus.Respond(DefaultAddr, []byte{0x80, 0xff})
	p := New(bus, DefaultAddr, DefaultDeadzone)

	v, err := p.Read(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 1 {
		t.Errorf("expected 1, got %v", v)
	}

	txs := bus.Txs()
	if len(txs) != 1 {
		t.Fatalf("expected 1 tx, got %d", len(txs))
	}
	if txs[0].Write[0] != 2 || txs[0].Read != 2 {
		t.Errorf("unexpected tx %+v", txs[0])
	}
}

func TestReadErrors(t *testing.T) {
	bus := i2c.NewFakeBus()
	p := New(bus, DefaultAddr, 0)

	if _, err := p.Read(4); !errors.Is(err, ErrInvalidChannel) {
		t.Errorf("expected ErrInvalidChannel, got %v", err)
	}

	nack := errors.New("nack")
	bus.TxError = nack
	if _, err := p.Read(0); !errors.Is(err, nack) {
		t.Errorf("expected bus error, got %v", err)
	}
}
