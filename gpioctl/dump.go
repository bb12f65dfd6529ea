package gpioctl

import (
	"fmt"
	"io"
	"strings"

	"github.com/BertoldVdb/go-vgp/pincatalog"
	"github.com/BertoldVdb/go-vgp/regfield"
	pkgerrors "github.com/pkg/errors"
)

// LineState is the register view of one line.
type LineState struct {
	Coordinate pincatalog.Coordinate
	Alt        int
	Value      int
	Direction  regfield.Direction
}

func (l LineState) String() string {
	return fmt.Sprintf("%s: ALT=%d, V=%d, %s", l.Coordinate, l.Alt, l.Value, l.Direction)
}

type chipRegisters struct {
	setPort   uint32
	extPort   uint32
	direction uint32
	mux       [pincatalog.NumGroups]regfield.MuxWord
}

func (b *Board) readChip(chip int) (*chipRegisters, error) {
	r := &chipRegisters{}

	var err error
	if r.setPort, err = b.Registers.Read(regfield.SetPortAddress(chip)); err != nil {
		return nil, err
	}
	if r.extPort, err = b.Registers.Read(regfield.ExtPortAddress(chip)); err != nil {
		return nil, err
	}
	if r.direction, err = b.Registers.Read(regfield.DirectionAddress(chip)); err != nil {
		return nil, err
	}

	for group := 0; group < pincatalog.NumGroups; group++ {
		address, ok := regfield.MuxAddress(chip, group)
		if !ok {
			continue
		}
		value, err := b.Registers.Read(address)
		if err != nil {
			return nil, err
		}
		r.mux[group] = regfield.MuxWord{Value: value, Present: true}
	}

	return r, nil
}

func (r *chipRegisters) line(coord pincatalog.Coordinate) LineState {
	dir := regfield.DirectionOf(r.direction, coord.Line)
	word := r.extPort
	if dir == regfield.Output {
		word = r.setPort
	}

	return LineState{
		Coordinate: coord,
		Alt:        regfield.AltFunctionOf(r.mux[coord.Group()], coord.Line),
		Value:      regfield.ValueOf(word, coord.Line),
		Direction:  dir,
	}
}

// Dump reads the registers of every controller once and returns the state of
// all lines, chip by chip. Inputs report the external port, outputs the set
// port.
func (b *Board) Dump() ([]LineState, error) {
	result := make([]LineState, 0, pincatalog.NumChips*pincatalog.NumGroups*8)

	for chip := 0; chip < pincatalog.NumChips; chip++ {
		regs, err := b.readChip(chip)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "dump chip %d", chip)
		}

		for line := 0; line < pincatalog.NumGroups*8; line++ {
			result = append(result, regs.line(pincatalog.Coordinate{Chip: chip, Line: line}))
		}
	}

	return result, nil
}

// HeaderRow describes one header position as shown by the list command.
type HeaderRow struct {
	Pin      *pincatalog.Pin
	Function string
	Mode     string

	// Value is -1 for power pins and for lines that could not be requested
	Value int
}

// Header returns the 40 header positions in physical order with their current
// function, mode and level. A line that cannot be requested, for example
// because another consumer holds it, is reported with an unknown level.
func (b *Board) Header() ([]HeaderRow, error) {
	var rows []HeaderRow

	for _, p := range b.catalog.Pins() {
		if p.IsPower() {
			rows = append(rows, HeaderRow{Pin: p, Function: p.Rail, Value: -1})
			continue
		}

		alt, err := b.AltFunction(p.Coordinate)
		if err != nil {
			return nil, err
		}
		dir, err := b.Direction(p.Coordinate)
		if err != nil {
			return nil, err
		}
		value, err := b.Value(p.Coordinate)
		if err != nil {
			b.lineLog(p.Coordinate).WithError(err).Warn("Could not read level")
			value = -1
		}

		function, _ := b.catalog.FunctionName(p.ID, alt)
		rows = append(rows, HeaderRow{
			Pin:      p,
			Function: function,
			Mode:     modeLabel(alt, dir),
			Value:    value,
		})
	}

	return rows, nil
}

const headerBorder = "+------+----------+------+---+----++----+---+------+----------+------+"
const headerTitle = "| GPIO |   Name   | Mode | V | Physical | V | Mode |   Name   | GPIO |"

func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	left := (width - len(s)) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-len(s)-left)
}

func (r *HeaderRow) valueString() string {
	if r.Pin.IsPower() {
		return " "
	}
	if r.Value < 0 {
		return "?"
	}
	return fmt.Sprint(r.Value)
}

// WriteHeader prints rows as a two column table, odd pins left and even pins
// right, like the silkscreen of the board.
func WriteHeader(w io.Writer, rows []HeaderRow) error {
	var sb strings.Builder

	sb.WriteString(headerBorder + "\n" + headerTitle + "\n" + headerBorder + "\n")
	for i := 0; i+1 < len(rows); i += 2 {
		l, r := &rows[i], &rows[i+1]
		fmt.Fprintf(&sb, "|%5s |%9s |%s| %s |%3d || %-3d| %s |%s| %-9s| %-5s|\n",
			l.Pin.Name, l.Function, center(l.Mode, 6), l.valueString(), l.Pin.ID,
			r.Pin.ID, r.valueString(), center(r.Mode, 6), r.Function, r.Pin.Name)
	}
	sb.WriteString(headerBorder + "\n" + headerTitle + "\n" + headerBorder + "\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
