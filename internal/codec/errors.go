// internal/codec/errors.go
package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode is returned when raw words cannot be converted to a value.
	ErrDecode = errors.New("codec: decode failed")

	// ErrEncode is returned when a payload cannot be converted to register words.
	ErrEncode = errors.New("codec: encode failed")
)

func decodeErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDecode, fmt.Sprintf(format, args...))
}

func encodeErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrEncode, fmt.Sprintf(format, args...))
}
