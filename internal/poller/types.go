// internal/poller/types.go
package poller

import (
	"time"

	"github.com/tamzrod/isystem-bridge/internal/table"
)

// BlockResult is the outcome of reading one zone (range).
type BlockResult struct {
	Range table.Range
	At    time.Time

	Registers    []uint16            // raw words, nil on failure
	Publications []table.Publication // full topics (base prefix applied)

	Err error // non-nil means the range produced no publications
}

// PollResult aggregates one read burst.
type PollResult struct {
	At      time.Time
	Elapsed time.Duration
	Blocks  []BlockResult
}

// Failed counts ranges that produced no publications.
func (r PollResult) Failed() int {
	n := 0
	for _, b := range r.Blocks {
		if b.Err != nil {
			n++
		}
	}
	return n
}
