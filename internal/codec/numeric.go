// internal/codec/numeric.go
package codec

import (
	"math"
	"strconv"
	"strings"
)

// Tenth decodes a signed register holding tenths (215 -> "21.5").
func Tenth(words []uint16) (string, error) {
	if err := need(words, 1, "tenth"); err != nil {
		return "", err
	}
	v := float64(int16(words[0])) / 10
	return strconv.FormatFloat(v, 'f', 1, 64), nil
}

// Unit decodes an unsigned register as-is.
func Unit(words []uint16) (string, error) {
	if err := need(words, 1, "unit"); err != nil {
		return "", err
	}
	return strconv.FormatUint(uint64(words[0]), 10), nil
}

// UnitAndTen decodes a counter split over two registers:
// low word 0..9999, high word in ten-thousands.
func UnitAndTen(words []uint16) (string, error) {
	if err := need(words, 2, "unit_and_ten"); err != nil {
		return "", err
	}
	v := uint64(words[0]) + uint64(words[1])*10000
	return strconv.FormatUint(v, 10), nil
}

// WriteTenth encodes a decimal string into a signed tenths register.
func WriteTenth(value string) ([]uint16, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, encodeErr("%q is not a number", value)
	}

	tenths := math.Round(f * 10)
	if tenths < math.MinInt16 || tenths > math.MaxInt16 {
		return nil, encodeErr("%q out of range", value)
	}
	return []uint16{uint16(int16(tenths))}, nil
}

// WriteUnit encodes an unsigned integer string into one register.
func WriteUnit(value string) ([]uint16, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(value), 10, 16)
	if err != nil {
		return nil, encodeErr("%q is not a register value", value)
	}
	return []uint16{uint16(v)}, nil
}
