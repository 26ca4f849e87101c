// internal/modbus/client.go
package modbus

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

// Line defaults of the boiler bus: 9600 8N1, 1s response timeout.
const (
	DefaultBaudRate = 9600
	DefaultTimeout  = time.Second
)

// Config is the RTU line and slave configuration.
type Config struct {
	Device   string
	BaudRate int
	SlaveID  byte
	Timeout  time.Duration
}

// Client implements register reads and writes over Modbus RTU.
// Geometry only: addresses and words in, words out.
// The port is opened lazily by the first request and can be handed back
// with Release so another reader can use the same device.
type Client struct {
	mu      sync.Mutex
	handler *modbus.RTUClientHandler
	client  modbus.Client
}

// New creates an RTU client. No I/O is performed.
func New(cfg Config) (*Client, error) {
	if cfg.Device == "" {
		return nil, errors.New("modbus client: serial device required")
	}
	if cfg.SlaveID == 0 {
		return nil, errors.New("modbus client: slave id must be 1..247")
	}
	if cfg.BaudRate == 0 {
		cfg.BaudRate = DefaultBaudRate
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	h := modbus.NewRTUClientHandler(cfg.Device)
	h.BaudRate = cfg.BaudRate
	h.DataBits = 8
	h.Parity = "N"
	h.StopBits = 1
	h.SlaveId = cfg.SlaveID
	h.Timeout = cfg.Timeout

	return &Client{
		handler: h,
		client:  modbus.NewClient(h),
	}, nil
}

// ReadRegisters reads qty holding registers (FC 3) starting at addr.
func (c *Client) ReadRegisters(addr, qty uint16) ([]uint16, error) {
	if qty == 0 {
		return nil, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := c.client.ReadHoldingRegisters(addr, qty)
	if err != nil {
		return nil, classify("read", addr, err)
	}
	if len(raw) != int(qty)*2 {
		return nil, fmt.Errorf("%w: read @%d: got %d bytes, want %d", ErrProtocol, addr, len(raw), int(qty)*2)
	}
	return unpackRegisters(raw), nil
}

// WriteRegisters writes regs (FC 16) starting at addr.
func (c *Client) WriteRegisters(addr uint16, regs []uint16) error {
	if len(regs) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.client.WriteMultipleRegisters(addr, uint16(len(regs)), packRegisters(regs))
	return classify("write", addr, err)
}

// Release closes the serial port; the next request reopens it.
func (c *Client) Release() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handler.Close()
}

// Close closes the serial port.
func (c *Client) Close() error {
	return c.Release()
}

// ---- helpers (pure geometry) ----

func unpackRegisters(data []byte) []uint16 {
	n := len(data) / 2
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		out[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return out
}

func packRegisters(regs []uint16) []byte {
	out := make([]byte, len(regs)*2)
	for i, r := range regs {
		out[2*i] = byte(r >> 8)
		out[2*i+1] = byte(r)
	}
	return out
}
