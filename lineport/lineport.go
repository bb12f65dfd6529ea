// Package lineport requests GPIO lines from the kernel to read or drive their
// level and to receive edge events.
package lineport

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrorLineOpen    = errors.New("Could not open GPIO chip or line")
	ErrorLineRequest = errors.New("Could not request GPIO line")
	ErrorEventWait   = errors.New("Waiting for GPIO event failed")
	ErrorClosed      = errors.New("Line was closed")
	ErrorUnknownEdge = errors.New("Unknown edge")
)

// DefaultConsumer is the label shown by the kernel for requested lines.
const DefaultConsumer = "vgp"

// Edge selects which transitions are reported. Received events are always
// either Rising or Falling.
type Edge int

const (
	Rising  Edge = 1
	Falling Edge = 2
	Both    Edge = Rising | Falling
)

func (e Edge) String() string {
	switch e {
	case Rising:
		return "rising"
	case Falling:
		return "falling"
	case Both:
		return "both"
	}
	return fmt.Sprintf("edge(%d)", int(e))
}

// Valid reports if e is Rising, Falling or Both.
func (e Edge) Valid() bool {
	return e == Rising || e == Falling || e == Both
}

// ParseEdge accepts rising, falling and both in any case.
func ParseEdge(s string) (Edge, error) {
	switch strings.ToLower(s) {
	case "rising":
		return Rising, nil
	case "falling":
		return Falling, nil
	case "both":
		return Both, nil
	}
	return 0, ErrorUnknownEdge
}

// Mode is the direction a line is requested with.
type Mode int

const (
	AsIs Mode = iota
	Input
	Output
)

// Event is an edge seen on a line.
type Event struct {
	Edge      Edge
	Timestamp time.Duration
}

// Port opens GPIO controllers.
type Port interface {
	OpenChip(chip int) (Chip, error)
}

// Chip is an open GPIO controller. Lines requested from it must be closed
// before the chip.
type Chip interface {
	RequestValue(line int, mode Mode, value int) (ValueLine, error)
	RequestEdges(line int, kind Edge) (EventLine, error)
	Close() error
}

// ValueLine is a line requested for reading or driving its level.
type ValueLine interface {
	Value() (int, error)
	SetValue(value int) error
	Close() error
}

// EventLine is a line requested for edge detection. WaitEvent blocks until the
// next edge and returns ctx.Err() unchanged when ctx is done. Close must only be
// called when no WaitEvent is pending.
type EventLine interface {
	WaitEvent(ctx context.Context) (Event, error)
	Close() error
}

// Error describes a failed line operation. Kind is one of ErrorLineOpen,
// ErrorLineRequest or ErrorEventWait.
type Error struct {
	Op   string
	Chip int
	Line int
	Kind error
	Err  error
}

func (e *Error) Error() string {
	target := fmt.Sprintf("gpiochip%d", e.Chip)
	if e.Line >= 0 {
		target = fmt.Sprintf("%s line %d", target, e.Line)
	}
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Op, target, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, target, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func openError(chip int, err error) error {
	return &Error{Op: "open", Chip: chip, Line: -1, Kind: ErrorLineOpen, Err: err}
}

func requestError(op string, chip int, line int, err error) error {
	return &Error{Op: op, Chip: chip, Line: line, Kind: ErrorLineRequest, Err: err}
}

func waitError(chip int, line int, err error) error {
	return &Error{Op: "wait", Chip: chip, Line: line, Kind: ErrorEventWait, Err: err}
}
