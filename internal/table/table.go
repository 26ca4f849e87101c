// internal/table/table.go
package table

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tamzrod/isystem-bridge/internal/codec"
)

// Table is the immutable address table built once at startup.
// Safe for concurrent reads.
type Table struct {
	reads  map[uint16]ReadTag
	writes map[string]WriteTag
	ranges []Range
}

// New validates the tag lists and builds the lookup maps.
func New(reads []ReadTag, writes []WriteTag, ranges []Range) (*Table, error) {
	t := &Table{
		reads:  make(map[uint16]ReadTag, len(reads)),
		writes: make(map[string]WriteTag, len(writes)),
		ranges: append([]Range(nil), ranges...),
	}

	for _, r := range reads {
		if err := validateRead(r); err != nil {
			return nil, err
		}
		if _, dup := t.reads[r.Address]; dup {
			return nil, fmt.Errorf("table: duplicate read address %d", r.Address)
		}
		t.reads[r.Address] = r
	}

	for _, w := range writes {
		if w.Topic == "" || w.Encode == nil {
			return nil, fmt.Errorf("table: write tag at address %d needs topic and encoder", w.Address)
		}
		if _, dup := t.writes[w.Topic]; dup {
			return nil, fmt.Errorf("table: duplicate write topic %q", w.Topic)
		}
		t.writes[w.Topic] = w
	}

	for _, rg := range ranges {
		if rg.Count == 0 {
			return nil, fmt.Errorf("table: range at address %d has zero count", rg.Address)
		}
	}

	return t, nil
}

func validateRead(r ReadTag) error {
	if r.Width == 0 {
		return fmt.Errorf("table: read tag %d: width must be >= 1", r.Address)
	}
	switch r.Kind {
	case Single:
		if len(r.Topics) != 1 {
			return fmt.Errorf("table: read tag %d: single tag needs exactly one topic", r.Address)
		}
	case Multi:
		if len(r.Topics) < 2 {
			return fmt.Errorf("table: read tag %d: multi tag needs at least two topics", r.Address)
		}
	default:
		return fmt.Errorf("table: read tag %d: unknown kind %d", r.Address, r.Kind)
	}
	for _, tc := range r.Topics {
		if tc.Topic == "" || tc.Decode == nil {
			return fmt.Errorf("table: read tag %d: topic and decoder required", r.Address)
		}
	}
	return nil
}

// Ranges returns the block reads in table order.
func (t *Table) Ranges() []Range {
	return append([]Range(nil), t.ranges...)
}

// ReadTag returns the tag defined at addr.
func (t *Table) ReadTag(addr uint16) (ReadTag, bool) {
	r, ok := t.reads[addr]
	return r, ok
}

// WriteTag looks up a write tag by topic suffix (base prefix already removed).
func (t *Table) WriteTag(suffix string) (WriteTag, error) {
	w, ok := t.writes[suffix]
	if !ok {
		return WriteTag{}, fmt.Errorf("%w: topic %q", ErrLookupMiss, suffix)
	}
	return w, nil
}

// ResolveWrite strips base from an inbound topic and looks up its write tag.
func (t *Table) ResolveWrite(base, topic string) (WriteTag, error) {
	suffix, ok := strings.CutPrefix(topic, base)
	if !ok {
		return WriteTag{}, fmt.Errorf("%w: topic %q outside %q", ErrLookupMiss, topic, base)
	}
	return t.WriteTag(suffix)
}

// WriteTopics returns every write topic suffix, sorted.
func (t *Table) WriteTopics() []string {
	out := make([]string, 0, len(t.writes))
	for topic := range t.writes {
		out = append(out, topic)
	}
	sort.Strings(out)
	return out
}

// Decode maps the words of one block read starting at base onto publications.
// The first decode failure aborts the whole block.
func (t *Table) Decode(base uint16, words []uint16) ([]Publication, error) {
	var pubs []Publication

	for i := range words {
		addr := base + uint16(i)
		tag, ok := t.reads[addr]
		if !ok {
			continue
		}

		end := i + int(tag.Width)
		if end > len(words) {
			return nil, fmt.Errorf("%w: tag %d needs %d words, block ends after %d", codec.ErrDecode, addr, tag.Width, len(words)-i)
		}

		for _, tc := range tag.Topics {
			v, err := tc.Decode(words[i:end])
			if err != nil {
				return nil, fmt.Errorf("table: tag %d (%s): %w", addr, tc.Topic, err)
			}
			pubs = append(pubs, Publication{Topic: tc.Topic, Value: v})
		}
	}

	return pubs, nil
}
