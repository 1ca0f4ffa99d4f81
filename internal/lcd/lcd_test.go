package lcd

import (
	"errors"
	"testing"

	"github.com/sweeney/gamepad-hub/internal/i2c"
)

func TestFit(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"hi", 5, "hi   "},
		{"hello world", 5, "hello"},
		{"", 3, "   "},
		{"café", 5, "caf? "},
		{"a\tb", 4, "a?b "},
	}
	for _, tc := range tests {
		if got := string(Fit(tc.in, tc.width)); got != tc.want {
			t.Errorf("Fit(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}

// data decodes the characters sent in 4-bit mode. Each nibble goes out as
// three expander writes (value, value|EN, value); the register-select bit
// marks character data.
func data(txs []i2c.Tx) []byte {
	const rs, en = 0x01, 0x04
	var nibbles []byte
	for _, tx := range txs {
		if len(tx.Write) != 1 {
			continue
		}
		b := tx.Write[0]
		if b&en != 0 && b&rs != 0 {
			nibbles = append(nibbles, b&0xf0)
		}
	}
	var out []byte
	for i := 0; i+1 < len(nibbles); i += 2 {
		out = append(out, nibbles[i]|nibbles[i+1]>>4)
	}
	return out
}

func TestWriteLine(t *testing.T) {
	bus := i2c.NewFakeBus()
	d, err := Open(bus, DefaultAddr, 8, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bus.Reset()
	if err := d.WriteLine(1, "Ready"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	txs := bus.Txs()
	for _, tx := range txs {
		if tx.Addr != DefaultAddr {
			t.Fatalf("write to wrong address 0x%02x", tx.Addr)
		}
	}
	if got := string(data(txs)); got != "Ready   " {
		t.Errorf("expected padded row, got %q", got)
	}

	if err := d.WriteLine(4, "x"); !errors.Is(err, ErrInvalidRow) {
		t.Errorf("expected ErrInvalidRow, got %v", err)
	}
}

func TestWriteLineBusError(t *testing.T) {
	bus := i2c.NewFakeBus()
	d, err := Open(bus, DefaultAddr, 8, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	nack := errors.New("nack")
	bus.TxError = nack
	if err := d.WriteLine(0, "x"); !errors.Is(err, nack) {
		t.Errorf("expected bus error, got %v", err)
	}

	bus.TxError = nil
	if err := d.WriteLine(0, "x"); err != nil {
		t.Errorf("error should not stick, got %v", err)
	}
}

func TestOpenRejectsSize(t *testing.T) {
	if _, err := Open(i2c.NewFakeBus(), DefaultAddr, 0, 2); err == nil {
		t.Error("expected error for zero width")
	}
	if _, err := Open(i2c.NewFakeBus(), DefaultAddr, 16, 5); err == nil {
		t.Error("expected error for five rows")
	}
}
