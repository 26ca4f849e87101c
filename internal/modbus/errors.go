// internal/modbus/errors.go
package modbus

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goburrow/modbus"
)

var (
	// ErrTransport: the serial line failed (open, timeout, I/O).
	ErrTransport = errors.New("modbus: transport error")

	// ErrProtocol: the device answered with an exception or a malformed frame.
	ErrProtocol = errors.New("modbus: protocol error")
)

// classify wraps a goburrow error into ErrTransport or ErrProtocol.
func classify(op string, addr uint16, err error) error {
	if err == nil {
		return nil
	}

	var mbErr *modbus.ModbusError
	if errors.As(err, &mbErr) {
		return fmt.Errorf("%w: %s @%d: %v", ErrProtocol, op, addr, err)
	}
	// goburrow reports framing and CRC problems as "modbus: ..." strings.
	if strings.HasPrefix(err.Error(), "modbus:") {
		return fmt.Errorf("%w: %s @%d: %v", ErrProtocol, op, addr, err)
	}
	return fmt.Errorf("%w: %s @%d: %v", ErrTransport, op, addr, err)
}
