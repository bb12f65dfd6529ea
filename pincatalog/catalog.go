// Package pincatalog maps the positions of the 40-pin header to GPIO names and
// chip/line coordinates.
package pincatalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// NumChips is the number of GPIO controllers on the SoC.
const NumChips = 5

// NumGroups is the number of 8-line groups (A..D) in a controller.
const NumGroups = 4

// NumAlt is the number of multiplexed functions a line can take.
const NumAlt = 4

var (
	ErrorInvalidIdentifier = errors.New("Identifier is neither a pin name nor a pin number")
	ErrorOutOfRange        = errors.New("Value out of range")
	ErrorNotAnIoPin        = errors.New("Pin is not an IO pin")
	ErrorUnknownName       = errors.New("Name is not present on the header")
)

// PinID is the physical position on the header, 1 to 40.
type PinID int

// Coordinate addresses a line of a GPIO controller.
type Coordinate struct {
	Chip int
	Line int
}

// Group returns the index of the 8-line group (A=0 .. D=3).
func (c Coordinate) Group() int {
	return c.Line / 8
}

// Bit returns the position of the line inside its group.
func (c Coordinate) Bit() int {
	return c.Line % 8
}

// Name returns the 3 character name, for example 4D1.
func (c Coordinate) Name() string {
	return fmt.Sprintf("%d%c%d", c.Chip, 'A'+c.Group(), c.Bit())
}

func (c Coordinate) String() string {
	return fmt.Sprintf("GPIO%d_%c%d", c.Chip, 'A'+c.Group(), c.Bit())
}

// Valid reports if the coordinate exists on the SoC.
func (c Coordinate) Valid() bool {
	return c.Chip >= 0 && c.Chip < NumChips && c.Line >= 0 && c.Line < NumGroups*8
}

// Pin describes one position of the header.
type Pin struct {
	ID         PinID
	Name       string
	Rail       string
	Coordinate Coordinate
	Functions  [NumAlt]string
}

// IsPower reports if the pin is wired to a supply rail.
func (p *Pin) IsPower() bool {
	return p.Rail != ""
}

// Catalog holds the description of every header position. It is read-only after
// construction and can be shared freely.
type Catalog struct {
	pins   [NumPins + 1]Pin
	byName map[string]PinID
}

var vividUnit = build()

// Default returns the catalog of the Vivid Unit header.
func Default() *Catalog {
	return vividUnit
}

func build() *Catalog {
	c := &Catalog{
		byName: make(map[string]PinID),
	}

	for i := 1; i <= NumPins; i++ {
		p := &c.pins[i]
		p.ID = PinID(i)

		if powerPins[i] {
			p.Rail = names[i]
			continue
		}

		coord, err := CoordinateOf(names[i])
		assert(err == nil, "Invalid name in pin table")

		p.Name = names[i]
		p.Coordinate = coord
		p.Functions = functions[i]
		c.byName[p.Name] = p.ID
	}

	return c
}

// Pin returns the description of a header position.
func (c *Catalog) Pin(id PinID) (*Pin, error) {
	if id < 1 || id > NumPins {
		return nil, errors.Wrapf(ErrorOutOfRange, "pin %d", id)
	}
	return &c.pins[id], nil
}

// Pins returns every header position in physical order.
func (c *Catalog) Pins() []*Pin {
	result := make([]*Pin, 0, NumPins)
	for i := 1; i <= NumPins; i++ {
		result = append(result, &c.pins[i])
	}
	return result
}

// Resolve accepts either a pin name (4D1, case-insensitive) or a physical pin
// number (7) and returns the header position.
func (c *Catalog) Resolve(identifier string) (PinID, error) {
	if coord, err := CoordinateOf(identifier); err == nil {
		id, ok := c.byName[coord.Name()]
		if !ok {
			return 0, errors.Wrapf(ErrorUnknownName, "pin %s", coord.Name())
		}
		return id, nil
	}

	n, err := strconv.Atoi(identifier)
	if err != nil {
		return 0, errors.Wrapf(ErrorInvalidIdentifier, "pin %q", identifier)
	}
	if n < 1 || n > NumPins {
		return 0, errors.Wrapf(ErrorOutOfRange, "pin %d", n)
	}

	return PinID(n), nil
}

// IsPowerPin reports if the position is a supply pin. Positions outside the
// header are not power pins.
func (c *Catalog) IsPowerPin(id PinID) bool {
	if id < 1 || id > NumPins {
		return false
	}
	return c.pins[id].IsPower()
}

// NameOf returns the GPIO name of an IO pin.
func (c *Catalog) NameOf(id PinID) (string, error) {
	p, err := c.Pin(id)
	if err != nil {
		return "", err
	}
	if p.IsPower() {
		return "", errors.Wrapf(ErrorNotAnIoPin, "pin %d (%s)", id, p.Rail)
	}
	return p.Name, nil
}

// CoordinateOfPin returns the chip/line coordinate of an IO pin.
func (c *Catalog) CoordinateOfPin(id PinID) (Coordinate, error) {
	if _, err := c.NameOf(id); err != nil {
		return Coordinate{}, err
	}
	return c.pins[id].Coordinate, nil
}

// FunctionName returns the label of an alternate function of a pin, or the rail
// label of a power pin.
func (c *Catalog) FunctionName(id PinID, alt int) (string, error) {
	p, err := c.Pin(id)
	if err != nil {
		return "", err
	}
	if p.IsPower() {
		return p.Rail, nil
	}
	if alt < 0 || alt >= NumAlt {
		return "", errors.Wrapf(ErrorOutOfRange, "alt %d", alt)
	}
	return p.Functions[alt], nil
}

// CoordinateOf decodes a pin name like 4D1 into chip 4, line 25.
func CoordinateOf(name string) (Coordinate, error) {
	if len(name) != 3 {
		return Coordinate{}, ErrorInvalidIdentifier
	}

	n := strings.ToUpper(name)
	if n[0] < '0' || n[0] >= '0'+NumChips ||
		n[1] < 'A' || n[1] >= 'A'+NumGroups ||
		n[2] < '0' || n[2] > '7' {
		return Coordinate{}, ErrorInvalidIdentifier
	}

	return Coordinate{
		Chip: int(n[0] - '0'),
		Line: int(n[1]-'A')*8 + int(n[2]-'0'),
	}, nil
}

func assert(condition bool, reason string) {
	if !condition {
		panic(reason)
	}
}
