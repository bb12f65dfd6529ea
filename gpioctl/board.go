// Package gpioctl performs one-shot operations on the GPIOs of the board:
// direction, alternate function and level of a single line, and dumps of all
// lines or of the header.
package gpioctl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/BertoldVdb/go-vgp/lineport"
	"github.com/BertoldVdb/go-vgp/logrusconfig"
	"github.com/BertoldVdb/go-vgp/pincatalog"
	"github.com/BertoldVdb/go-vgp/regfield"
	"github.com/BertoldVdb/go-vgp/regport"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	ErrorInvalidValue = errors.New("Value must be 0 or 1")
	ErrorUnknownMode  = errors.New("Unknown mode")
)

// Board combines the register and line ports. Register read-modify-write
// sequences are serialized.
type Board struct {
	sync.Mutex

	Registers regport.Port
	Lines     lineport.Port

	catalog *pincatalog.Catalog
	log     *logrus.Entry
}

// New creates a board. log may be nil.
func New(registers regport.Port, lines lineport.Port, log *logrus.Entry) *Board {
	if log == nil {
		log = logrusconfig.Discard()
	}

	return &Board{
		Registers: registers,
		Lines:     lines,
		catalog:   pincatalog.Default(),
		log:       log,
	}
}

// Catalog returns the pin catalog used by the board.
func (b *Board) Catalog() *pincatalog.Catalog {
	return b.catalog
}

// Resolve turns a header pin number or a GPIO name into a coordinate. Names of
// lines that are not on the header are accepted as well.
func (b *Board) Resolve(identifier string) (pincatalog.Coordinate, error) {
	id, err := b.catalog.Resolve(identifier)
	if err == nil {
		return b.catalog.CoordinateOfPin(id)
	}

	if errors.Is(err, pincatalog.ErrorUnknownName) {
		coord, cerr := pincatalog.CoordinateOf(identifier)
		if cerr == nil {
			b.log.WithField("name", coord.Name()).Debug("Line is not on the header")
			return coord, nil
		}
	}
	return pincatalog.Coordinate{}, err
}

func (b *Board) lineLog(c pincatalog.Coordinate) *logrus.Entry {
	return b.log.WithFields(logrus.Fields{
		"chip": c.Chip,
		"line": c.Line,
		"name": c.Name(),
	})
}

func (b *Board) readMux(c pincatalog.Coordinate) (regfield.MuxWord, uint32, error) {
	address, ok := regfield.MuxAddressOf(c)
	if !ok {
		return regfield.MuxWord{}, 0, nil
	}

	value, err := b.Registers.Read(address)
	if err != nil {
		return regfield.MuxWord{}, address, err
	}
	return regfield.MuxWord{Value: value, Present: true}, address, nil
}

// Direction returns the configured direction of a line.
func (b *Board) Direction(c pincatalog.Coordinate) (regfield.Direction, error) {
	word, err := b.Registers.Read(regfield.DirectionAddress(c.Chip))
	if err != nil {
		return regfield.Input, pkgerrors.Wrapf(err, "direction of %s", c)
	}
	return regfield.DirectionOf(word, c.Line), nil
}

// SetDirection changes the direction bit of a line, leaving the other lines of
// the controller untouched.
func (b *Board) SetDirection(c pincatalog.Coordinate, dir regfield.Direction) error {
	b.Lock()
	defer b.Unlock()

	address := regfield.DirectionAddress(c.Chip)
	word, err := b.Registers.Read(address)
	if err != nil {
		return pkgerrors.Wrapf(err, "set direction of %s", c)
	}

	word, err = regfield.WithDirection(word, c.Line, dir)
	if err != nil {
		return err
	}

	b.lineLog(c).WithField("address", fmt.Sprintf("0x%08x", address)).Debugf("Direction %s", dir)
	if err := b.Registers.Write(address, word); err != nil {
		return pkgerrors.Wrapf(err, "set direction of %s", c)
	}
	return nil
}

// AltFunction returns the function selected for a line. Lines without an iomux
// register report 0.
func (b *Board) AltFunction(c pincatalog.Coordinate) (int, error) {
	mux, _, err := b.readMux(c)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "alt function of %s", c)
	}
	return regfield.AltFunctionOf(mux, c.Line), nil
}

// SetAltFunction selects function alt (0 to 3) for a line.
func (b *Board) SetAltFunction(c pincatalog.Coordinate, alt int) error {
	if alt < 0 || alt > regfield.MaxAlt {
		return pkgerrors.Wrapf(regfield.ErrorUnsupportedAlt, "alt %d", alt)
	}

	b.Lock()
	defer b.Unlock()

	mux, address, err := b.readMux(c)
	if err != nil {
		return pkgerrors.Wrapf(err, "set alt function of %s", c)
	}

	word, err := regfield.WithAltFunction(mux, c.Line, alt)
	if err != nil {
		return pkgerrors.Wrapf(err, "set alt function of %s", c)
	}

	b.lineLog(c).WithField("address", fmt.Sprintf("0x%08x", address)).Debugf("Alt function %d", alt)
	if err := b.Registers.Write(address, word); err != nil {
		return pkgerrors.Wrapf(err, "set alt function of %s", c)
	}
	return nil
}

func modeLabel(alt int, dir regfield.Direction) string {
	if alt != 0 {
		return fmt.Sprintf("ALT%d", alt)
	}
	return dir.String()
}

// Mode returns IN or OUT for lines used as GPIO and ALTn otherwise.
func (b *Board) Mode(c pincatalog.Coordinate) (string, error) {
	alt, err := b.AltFunction(c)
	if err != nil {
		return "", err
	}
	dir, err := b.Direction(c)
	if err != nil {
		return "", err
	}
	return modeLabel(alt, dir), nil
}

// SetMode accepts in/input/out/output, which change the direction, or
// alt0..alt3, which select a function. Case is ignored.
func (b *Board) SetMode(c pincatalog.Coordinate, mode string) error {
	if dir, err := regfield.ParseDirection(mode); err == nil {
		return b.SetDirection(c, dir)
	}

	m := strings.ToLower(mode)
	if strings.HasPrefix(m, "alt") {
		alt, err := strconv.Atoi(m[3:])
		if err == nil {
			return b.SetAltFunction(c, alt)
		}
	}

	return pkgerrors.Wrapf(ErrorUnknownMode, "mode %q", mode)
}

// Value reads the level of a line through the line port without changing its
// direction.
func (b *Board) Value(c pincatalog.Coordinate) (int, error) {
	v, err := lineport.GetValue(b.Lines, c.Chip, c.Line)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "get %s", c)
	}
	return v, nil
}

// SetValue drives a line to value through the line port. The line becomes an
// output.
func (b *Board) SetValue(c pincatalog.Coordinate, value int) error {
	if value != 0 && value != 1 {
		return pkgerrors.Wrapf(ErrorInvalidValue, "value %d", value)
	}

	b.lineLog(c).Debugf("Set value %d", value)
	if err := lineport.SetValue(b.Lines, c.Chip, c.Line, value); err != nil {
		return pkgerrors.Wrapf(err, "set %s", c)
	}
	return nil
}
