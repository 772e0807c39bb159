package keypad

import (
	"fmt"
	"io"

	"go.bug.st/serial"
)

const defaultBaud = 9600

// OpenSerial opens a keypad attached to a serial line (8N1).
func OpenSerial(port string, baud int) (io.ReadCloser, error) {
	if baud <= 0 {
		baud = defaultBaud
	}
	p, err := serial.Open(port, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open keypad serial %q: %w", port, err)
	}
	return p, nil
}
