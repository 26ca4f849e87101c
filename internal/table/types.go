// internal/table/types.go
package table

import "github.com/tamzrod/isystem-bridge/internal/codec"

// Kind distinguishes single-topic read tags from fan-out tags.
type Kind uint8

const (
	// Single publishes one topic per address.
	Single Kind = iota
	// Multi publishes several topics decoded from the same words.
	Multi
)

// TopicCodec pairs a topic suffix with its decoder.
type TopicCodec struct {
	Topic  string
	Decode codec.Decoder
}

// ReadTag maps a register address (and Width-1 following ones) to topics.
type ReadTag struct {
	Kind    Kind
	Address uint16
	Width   uint16
	Topics  []TopicCodec
}

// WriteTag maps an inbound topic suffix to a register address.
type WriteTag struct {
	Topic   string
	Address uint16
	Encode  codec.Encoder
}

// Range is one block read: Count registers starting at Address.
type Range struct {
	Address uint16
	Count   uint16
}

// Publication is one decoded value ready to be published.
type Publication struct {
	Topic string
	Value string
}

// ---- constructors used by model tables ----

// Tag builds a single-register, single-topic read tag.
func Tag(addr uint16, topic string, dec codec.Decoder) ReadTag {
	return WideTag(addr, topic, dec, 1)
}

// WideTag builds a single-topic read tag spanning width registers.
func WideTag(addr uint16, topic string, dec codec.Decoder, width uint16) ReadTag {
	return ReadTag{
		Kind:    Single,
		Address: addr,
		Width:   width,
		Topics:  []TopicCodec{{Topic: topic, Decode: dec}},
	}
}

// MultiTag builds a single-register tag published on several topics.
func MultiTag(addr uint16, topics ...TopicCodec) ReadTag {
	return ReadTag{
		Kind:    Multi,
		Address: addr,
		Width:   1,
		Topics:  topics,
	}
}

// Topic is shorthand for a TopicCodec literal.
func Topic(topic string, dec codec.Decoder) TopicCodec {
	return TopicCodec{Topic: topic, Decode: dec}
}

// Write builds a write tag.
func Write(topic string, addr uint16, enc codec.Encoder) WriteTag {
	return WriteTag{Topic: topic, Address: addr, Encode: enc}
}
