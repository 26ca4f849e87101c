// internal/codec/mode.go
package codec

import (
	"strconv"
	"strings"
)

// Zone mode register bit layout.
const (
	derogTemporary uint16 = 0x01
	derogPermanent uint16 = 0x02
	modeAntifreeze uint16 = 0x04
	modeNight      uint16 = 0x08
	modeDay        uint16 = 0x10
	modeAuto       uint16 = 0x20
)

// ---- MODE BITS ----

func modeName(v uint16) string {
	switch {
	case v&modeAntifreeze != 0:
		return "antifreeze"
	case v&modeNight != 0:
		return "night"
	case v&modeDay != 0:
		return "day"
	default:
		return "auto"
	}
}

// DerogBit decodes the zone mode bit-field, including the derogation kind
// ("day permanent", "night temporary", "auto").
func DerogBit(words []uint16) (string, error) {
	if err := need(words, 1, "derog_bit"); err != nil {
		return "", err
	}
	v := words[0]
	name := modeName(v)

	switch {
	case v&derogPermanent != 0:
		name += " permanent"
	case v&derogTemporary != 0:
		name += " temporary"
	}
	return name, nil
}

// DerogBitSimple decodes the zone mode bit-field to AUTO, DAY, NIGHT or ANTIFREEZE.
func DerogBitSimple(words []uint16) (string, error) {
	if err := need(words, 1, "derog_bit_simple"); err != nil {
		return "", err
	}
	return strings.ToUpper(modeName(words[0])), nil
}

// WriteDerogBitSimple is the inverse of DerogBitSimple.
// Forced modes are written as permanent derogations.
func WriteDerogBitSimple(value string) ([]uint16, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "AUTO":
		return []uint16{modeAuto}, nil
	case "DAY":
		return []uint16{modeDay | derogPermanent}, nil
	case "NIGHT":
		return []uint16{modeNight | derogPermanent}, nil
	case "ANTIFREEZE":
		return []uint16{modeAntifreeze | derogPermanent}, nil
	default:
		return nil, encodeErr("unknown mode %q", value)
	}
}

// ---- ENUMS ----

var activeModes = map[uint16]string{
	0: "antifreeze",
	1: "night",
	2: "day",
	3: "auto",
}

var boilerModes = map[uint16]string{
	0: "standby",
	1: "heating",
	2: "dhw",
	3: "antifreeze",
	4: "summer",
}

func enum(names map[uint16]string, v uint16) string {
	if name, ok := names[v]; ok {
		return name
	}
	return strconv.FormatUint(uint64(v), 10)
}

// ActiveMode decodes the zone active-mode register.
// Unknown values are published as their decimal code.
func ActiveMode(words []uint16) (string, error) {
	if err := need(words, 1, "active_mode"); err != nil {
		return "", err
	}
	return enum(activeModes, words[0]), nil
}

// BoilerMode decodes the boiler active-mode register.
func BoilerMode(words []uint16) (string, error) {
	if err := need(words, 1, "boiler_mode"); err != nil {
		return "", err
	}
	return enum(boilerModes, words[0]), nil
}
