// internal/poller/poller.go
package poller

import (
	"errors"
	"fmt"
	"time"

	"github.com/tamzrod/isystem-bridge/internal/table"
)

// Client abstracts the Modbus operations needed by the poller.
// The poller depends on geometry only.
type Client interface {
	ReadRegisters(addr, qty uint16) ([]uint16, error) // FC 3
}

// Config is the minimal runtime config the poller needs.
type Config struct {
	BaseTopic string
}

// Poller reads zones and maps them onto topics through the address table.
// It never arbitrates the bus: callers hold a lease around ReadRange.
type Poller struct {
	cfg    Config
	client Client
	table  *table.Table
	now    func() time.Time
}

// New creates a poller with immutable config.
func New(cfg Config, client Client, tbl *table.Table) (*Poller, error) {
	if client == nil {
		return nil, errors.New("poller: client required")
	}
	if tbl == nil {
		return nil, errors.New("poller: address table required")
	}
	if len(tbl.Ranges()) == 0 {
		return nil, errors.New("poller: at least one range required")
	}
	return &Poller{cfg: cfg, client: client, table: tbl, now: time.Now}, nil
}

// Ranges returns the zones in read order.
func (p *Poller) Ranges() []table.Range {
	return p.table.Ranges()
}

// ReadRange performs exactly one block read.
// All-or-nothing per range: a transport or decode failure yields no
// publications for that range and leaves the others untouched.
func (p *Poller) ReadRange(r table.Range) BlockResult {
	res := BlockResult{Range: r, At: p.now()}

	regs, err := p.client.ReadRegisters(r.Address, r.Count)
	if err != nil {
		res.Err = err
		return res
	}
	if len(regs) != int(r.Count) {
		res.Err = fmt.Errorf("poller: range %d: got %d words, want %d", r.Address, len(regs), r.Count)
		return res
	}

	pubs, err := p.table.Decode(r.Address, regs)
	if err != nil {
		res.Err = fmt.Errorf("poller: range %d: %w", r.Address, err)
		return res
	}

	// Commit only if the whole block decoded
	for i := range pubs {
		pubs[i].Topic = p.cfg.BaseTopic + pubs[i].Topic
	}
	res.Registers = regs
	res.Publications = pubs
	return res
}
