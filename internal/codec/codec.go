// internal/codec/codec.go
package codec

// Decoder turns raw register words into the value published for a topic.
// Pure: no IO, no state.
type Decoder func(words []uint16) (string, error)

// Encoder turns an inbound payload into the words written to the device.
// A payload with no register representation yields ErrEncode.
type Encoder func(value string) ([]uint16, error)

func need(words []uint16, n int, name string) error {
	if len(words) < n {
		return decodeErr("%s needs %d word(s), got %d", name, n, len(words))
	}
	return nil
}
