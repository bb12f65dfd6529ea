// Package regfield encodes and decodes the per-line fields of the GPIO
// controller and iomux registers. All functions are pure: they take a register
// word that was read before and return the word to write back.
package regfield

import (
	"errors"
	"strings"
)

var (
	ErrorUnsupportedAlt   = errors.New("Unsupported ALT value")
	ErrorNoMux            = errors.New("Group has no multiplexer")
	ErrorUnknownDirection = errors.New("Unknown direction")
)

// Direction of a line
type Direction int

const (
	Input  Direction = 0
	Output Direction = 1
)

func (d Direction) String() string {
	switch d {
	case Input:
		return "IN"
	case Output:
		return "OUT"
	}
	return "???"
}

// ParseDirection accepts in/input/out/output in any case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "in", "input":
		return Input, nil
	case "out", "output":
		return Output, nil
	}
	return Input, ErrorUnknownDirection
}

// MuxWord is the content of an iomux register. Present is false when the group
// has no iomux register.
type MuxWord struct {
	Value   uint32
	Present bool
}

// MaxAlt is the highest alternate function index.
const MaxAlt = 3

const muxWriteEnableShift = 16

func groupShift(line int) uint {
	checkLine(line)
	return uint(line/8) * 8
}

func bitIndex(line int) uint {
	checkLine(line)
	return uint(line % 8)
}

// DirectionOf extracts the direction of a line from a direction register word.
func DirectionOf(word uint32, line int) Direction {
	group := (word >> groupShift(line)) & 0xff
	return Direction((group >> bitIndex(line)) & 1)
}

// WithDirection returns word with the direction bit of line changed. Only that
// bit is modified.
func WithDirection(word uint32, line int, dir Direction) (uint32, error) {
	shift := groupShift(line)
	group := (word >> shift) & 0xff

	switch dir {
	case Input:
		group &^= 1 << bitIndex(line)
	case Output:
		group |= 1 << bitIndex(line)
	default:
		return word, ErrorUnknownDirection
	}

	word &^= 0xff << shift
	word |= group << shift
	return word, nil
}

// AltFunctionOf extracts the function of a line from its iomux word. Lines
// without an iomux register always use function 0.
func AltFunctionOf(mux MuxWord, line int) int {
	index := bitIndex(line)
	if !mux.Present {
		return 0
	}
	return int((mux.Value >> (index * 2)) & 0x03)
}

// WithAltFunction returns the iomux word selecting alt for line. The write
// enable bits of the field are set, the hardware ignores the field without them.
func WithAltFunction(mux MuxWord, line int, alt int) (uint32, error) {
	index := bitIndex(line)
	if alt < 0 || alt > MaxAlt {
		return mux.Value, ErrorUnsupportedAlt
	}
	if !mux.Present {
		return mux.Value, ErrorNoMux
	}

	word := mux.Value
	word &^= 0x03 << (index * 2)
	word |= uint32(alt) << (index * 2)
	word |= 0x03 << (index*2 + muxWriteEnableShift)
	return word, nil
}

// ValueOf extracts the level of a line from a data register word.
func ValueOf(word uint32, line int) int {
	return int((word >> (groupShift(line) + bitIndex(line))) & 1)
}

// WithValue returns word with the level of line set to value (0 or non-zero).
func WithValue(word uint32, line int, value int) uint32 {
	bit := uint32(1) << (groupShift(line) + bitIndex(line))
	if value != 0 {
		return word | bit
	}
	return word &^ bit
}
