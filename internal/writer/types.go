// internal/writer/types.go
package writer

import "time"

// Request is one inbound write as received from the broker.
// Raw: not yet resolved against the address table.
type Request struct {
	Topic      string
	Payload    string
	EnqueuedAt time.Time
}

// Command is a resolved, encoded register write.
// Geometry only: address and words.
type Command struct {
	Topic     string
	Address   uint16
	Registers []uint16
}
