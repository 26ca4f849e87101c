// internal/writer/writer.go
package writer

import (
	"errors"
	"fmt"

	"github.com/tamzrod/isystem-bridge/internal/table"
)

// Client is the exact contract the writer uses.
type Client interface {
	WriteRegisters(addr uint16, regs []uint16) error
}

// Writer resolves inbound requests and writes them to the boiler.
type Writer struct {
	base   string
	table  *table.Table
	client Client
}

// New creates a writer for topics under base.
func New(base string, tbl *table.Table, client Client) (*Writer, error) {
	if tbl == nil {
		return nil, errors.New("writer: address table required")
	}
	if client == nil {
		return nil, errors.New("writer: client required")
	}
	return &Writer{base: base, table: tbl, client: client}, nil
}

// Prepare resolves and encodes a request. No IO.
// Errors wrap table.ErrLookupMiss or codec.ErrEncode; the request
// must then be dropped.
func (w *Writer) Prepare(req Request) (Command, error) {
	tag, err := w.table.ResolveWrite(w.base, req.Topic)
	if err != nil {
		return Command{}, err
	}

	regs, err := tag.Encode(req.Payload)
	if err != nil {
		return Command{}, fmt.Errorf("writer: %s: %w", req.Topic, err)
	}

	return Command{
		Topic:     req.Topic,
		Address:   tag.Address,
		Registers: regs,
	}, nil
}

// Execute performs the register write. The caller holds the bus.
func (w *Writer) Execute(cmd Command) error {
	if err := w.client.WriteRegisters(cmd.Address, cmd.Registers); err != nil {
		return fmt.Errorf("writer: addr=%d topic=%s: %w", cmd.Address, cmd.Topic, err)
	}
	return nil
}
