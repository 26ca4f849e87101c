// internal/table/errors.go
package table

import "errors"

var (
	// ErrLookupMiss is returned when no tag exists for an address or topic.
	ErrLookupMiss = errors.New("table: no matching tag")

	// ErrUnknownModel is returned by ForModel for unsupported boiler models.
	ErrUnknownModel = errors.New("table: unknown model")
)
