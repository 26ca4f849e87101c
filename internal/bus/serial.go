// internal/bus/serial.go
package bus

import (
	"errors"
	"time"

	"go.bug.st/serial"
)

// SerialTransport watches the RS-485 line through a raw serial port.
// The port is only held between Open and Close so the Modbus client
// can use the same device outside arbitration.
type SerialTransport struct {
	Device   string
	BaudRate int

	port serial.Port
}

// NewSerialTransport returns a 8N1 transport for device.
func NewSerialTransport(device string, baud int) *SerialTransport {
	return &SerialTransport{Device: device, BaudRate: baud}
}

func (t *SerialTransport) Open() error {
	if t.port != nil {
		return nil
	}
	p, err := serial.Open(t.Device, &serial.Mode{
		BaudRate: t.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return err
	}
	t.port = p
	return nil
}

func (t *SerialTransport) SetReadTimeout(d time.Duration) error {
	if t.port == nil {
		return errors.New("serial port not open")
	}
	return t.port.SetReadTimeout(d)
}

func (t *SerialTransport) Read(p []byte) (int, error) {
	if t.port == nil {
		return 0, errors.New("serial port not open")
	}
	return t.port.Read(p)
}

func (t *SerialTransport) Close() error {
	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	return err
}
