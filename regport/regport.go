// Package regport reads and writes 32-bit memory mapped SoC registers.
package regport

import (
	"errors"
	"fmt"
)

// ErrorRegisterIO is matched by every error returned from a Port.
var ErrorRegisterIO = errors.New("Register access failed")

// Port gives access to physical registers. Calls are not serialized per
// address; callers must not modify the same register from two goroutines.
type Port interface {
	Read(address uint32) (uint32, error)
	Write(address uint32, value uint32) error
}

// Error describes a failed register access.
type Error struct {
	Op      string
	Address uint32
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("register %s 0x%08x failed", e.Op, e.Address)
	}
	return fmt.Sprintf("register %s 0x%08x: %v", e.Op, e.Address, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrorRegisterIO) true for every Error.
func (e *Error) Is(target error) bool {
	return target == ErrorRegisterIO
}

func readError(address uint32, err error) error {
	return &Error{Op: "read", Address: address, Err: err}
}

func writeError(address uint32, err error) error {
	return &Error{Op: "write", Address: address, Err: err}
}
