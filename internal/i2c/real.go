//go:build linux

package i2c

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// ioctl request selecting the target address for subsequent read/write.
const i2cSlave = 0x0703

// Bus is a Linux I2C adapter. It satisfies tinygo.org/x/drivers.I2C.
type Bus struct {
	mu   sync.Mutex
	fd   int
	addr uint16
	path string
}

// Open opens /dev/i2c-n.
func Open(n int) (*Bus, error) {
	path := DevicePath(n)
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &Bus{fd: fd, path: path}, nil
}

// Tx writes w to addr, then reads len(r) bytes back.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fd < 0 {
		return ErrClosed
	}
	if addr != b.addr {
		if err := unix.IoctlSetInt(b.fd, i2cSlave, int(addr)); err != nil {
			return fmt.Errorf("select address 0x%02x: %w", addr, err)
		}
		b.addr = addr
	}
	if len(w) > 0 {
		if _, err := unix.Write(b.fd, w); err != nil {
			return fmt.Errorf("write 0x%02x: %w", addr, err)
		}
	}
	if len(r) > 0 {
		if _, err := unix.Read(b.fd, r); err != nil {
			return fmt.Errorf("read 0x%02x: %w", addr, err)
		}
	}
	return nil
}

// Close releases the adapter.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fd < 0 {
		return nil
	}
	err := unix.Close(b.fd)
	b.fd = -1
	if err != nil {
		return fmt.Errorf("close %s: %w", b.path, err)
	}
	return nil
}
