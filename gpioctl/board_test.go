package gpioctl

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/BertoldVdb/go-vgp/lineport"
	"github.com/BertoldVdb/go-vgp/pincatalog"
	"github.com/BertoldVdb/go-vgp/regfield"
	"github.com/BertoldVdb/go-vgp/regport"
)

func check(t *testing.T, condition bool, reason ...interface{}) {
	if !condition {
		t.Error(reason...)
		t.FailNow()
	}
}

/* Pin 7 */
var gpio4D1 = pincatalog.Coordinate{Chip: 4, Line: 25}

/* Pin 3 */
var gpio2A0 = pincatalog.Coordinate{Chip: 2, Line: 0}

func testBoard() (*Board, *regport.Memory, *lineport.Sim) {
	mem := &regport.Memory{}
	sim := &lineport.Sim{}
	return New(mem, sim, nil), mem, sim
}

func TestResolve(t *testing.T) {
	b, _, _ := testBoard()

	for _, id := range []string{"7", "4D1", "4d1"} {
		c, err := b.Resolve(id)
		check(t, err == nil && c == gpio4D1, "Wrong coordinate", id, c, err)
	}

	c, err := b.Resolve("0C1")
	check(t, err == nil && c == pincatalog.Coordinate{Chip: 0, Line: 17}, "Off-header line rejected", c, err)

	_, err = b.Resolve("9")
	check(t, errors.Is(err, pincatalog.ErrorNotAnIoPin), "GND accepted", err)
	_, err = b.Resolve("99")
	check(t, errors.Is(err, pincatalog.ErrorOutOfRange), "Pin 99 accepted", err)
	_, err = b.Resolve("abc")
	check(t, errors.Is(err, pincatalog.ErrorInvalidIdentifier), "Garbage accepted", err)
}

func TestDirection(t *testing.T) {
	b, mem, _ := testBoard()

	address := regfield.DirectionAddress(4)
	check(t, address == 0xff790004, "Wrong address")
	mem.Set(address, 0x1)

	check(t, b.SetDirection(gpio4D1, regfield.Output) == nil, "SetDirection failed")
	check(t, mem.Get(address) == 0x1|1<<25, "Other bits touched", mem.Get(address))

	dir, err := b.Direction(gpio4D1)
	check(t, err == nil && dir == regfield.Output, "Wrong direction", dir, err)

	check(t, b.SetDirection(gpio4D1, regfield.Input) == nil, "SetDirection failed")
	check(t, mem.Get(address) == 0x1, "Bit not cleared", mem.Get(address))

	err = b.SetDirection(gpio4D1, regfield.Direction(5))
	check(t, errors.Is(err, regfield.ErrorUnknownDirection), "Bad direction accepted", err)
}

func TestAltFunction(t *testing.T) {
	b, mem, _ := testBoard()

	check(t, b.SetAltFunction(gpio2A0, 2) == nil, "SetAltFunction failed")
	check(t, mem.Get(0xff77e000) == 0x00030002, "Wrong mux word", mem.Get(0xff77e000))

	alt, err := b.AltFunction(gpio2A0)
	check(t, err == nil && alt == 2, "Wrong alt", alt, err)

	mode, err := b.Mode(gpio2A0)
	check(t, err == nil && mode == "ALT2", "Wrong mode", mode, err)

	writes := len(mem.Writes())
	err = b.SetAltFunction(gpio2A0, 4)
	check(t, errors.Is(err, regfield.ErrorUnsupportedAlt), "Alt 4 accepted", err)
	check(t, len(mem.Writes()) == writes, "Register written")

	noMux := pincatalog.Coordinate{Chip: 0, Line: 17}
	err = b.SetAltFunction(noMux, 1)
	check(t, errors.Is(err, regfield.ErrorNoMux), "Write to missing mux", err)
	check(t, len(mem.Writes()) == writes, "Register written")

	alt, err = b.AltFunction(noMux)
	check(t, err == nil && alt == 0, "Line without mux is not IO", alt, err)
}

func TestSetMode(t *testing.T) {
	b, _, _ := testBoard()

	check(t, b.SetMode(gpio4D1, "OUT") == nil, "SetMode out failed")
	mode, err := b.Mode(gpio4D1)
	check(t, err == nil && mode == "OUT", "Wrong mode", mode, err)

	check(t, b.SetMode(gpio4D1, "input") == nil, "SetMode input failed")
	mode, _ = b.Mode(gpio4D1)
	check(t, mode == "IN", "Wrong mode", mode)

	check(t, b.SetMode(gpio4D1, "Alt1") == nil, "SetMode alt1 failed")
	mode, _ = b.Mode(gpio4D1)
	check(t, mode == "ALT1", "Wrong mode", mode)

	err = b.SetMode(gpio4D1, "sideways")
	check(t, errors.Is(err, ErrorUnknownMode), "Unknown mode accepted", err)
	err = b.SetMode(gpio4D1, "alt7")
	check(t, errors.Is(err, regfield.ErrorUnsupportedAlt), "Alt 7 accepted", err)
}

func TestValue(t *testing.T) {
	b, _, sim := testBoard()

	check(t, b.SetValue(gpio4D1, 1) == nil, "SetValue failed")
	check(t, sim.Level(4, 25) == 1, "Level not driven")

	v, err := b.Value(gpio4D1)
	check(t, err == nil && v == 1, "Wrong value", v, err)

	err = b.SetValue(gpio4D1, 2)
	check(t, errors.Is(err, ErrorInvalidValue), "Value 2 accepted", err)

	chips, lines := sim.Outstanding()
	check(t, chips == 0 && lines == 0, "Line not released", chips, lines)

	sim.FailOpen = func(int) error { return errors.New("EACCES") }
	_, err = b.Value(gpio4D1)
	check(t, errors.Is(err, lineport.ErrorLineOpen), "Open error lost", err)
}

func TestRegisterFailure(t *testing.T) {
	b, mem, _ := testBoard()
	mem.Fail = func(op string, address uint32) error {
		return errors.New("EPERM")
	}

	_, err := b.Direction(gpio4D1)
	check(t, errors.Is(err, regport.ErrorRegisterIO), "Read error lost", err)

	err = b.SetAltFunction(gpio2A0, 1)
	check(t, errors.Is(err, regport.ErrorRegisterIO), "Read error lost", err)

	_, err = b.Dump()
	check(t, errors.Is(err, regport.ErrorRegisterIO), "Read error lost", err)
}

func TestDump(t *testing.T) {
	b, mem, _ := testBoard()

	mem.Set(regfield.DirectionAddress(4), 1<<25)
	mem.Set(regfield.SetPortAddress(4), 1<<25)
	mem.Set(regfield.ExtPortAddress(4), 1<<30|1<<25)
	mem.Set(0xff77e02c, 1<<4)

	lines, err := b.Dump()
	check(t, err == nil, err)
	check(t, len(lines) == 160, "Wrong line count", len(lines))

	check(t, lines[0].String() == "GPIO0_A0: ALT=0, V=0, IN", lines[0].String())
	check(t, lines[4*32+25].String() == "GPIO4_D1: ALT=0, V=1, OUT", lines[4*32+25].String())
	check(t, lines[4*32+26].String() == "GPIO4_D2: ALT=1, V=0, IN", lines[4*32+26].String())
	check(t, lines[4*32+30].String() == "GPIO4_D6: ALT=0, V=1, IN", lines[4*32+30].String())
}

func TestHeader(t *testing.T) {
	b, mem, sim := testBoard()

	mem.Set(0xff77e000, 2)
	sim.SetLevel(4, 30, 1)

	rows, err := b.Header()
	check(t, err == nil, err)
	check(t, len(rows) == pincatalog.NumPins, "Wrong row count", len(rows))

	check(t, rows[0].Function == pincatalog.Rail3V3 && rows[0].Value == -1 && rows[0].Mode == "", "Power row", rows[0])
	check(t, rows[2].Function == "I2C2_SDA" && rows[2].Mode == "ALT2", "Alt row", rows[2])
	check(t, rows[10].Pin.Name == "4D6" && rows[10].Value == 1, "Value row", rows[10])

	var out bytes.Buffer
	check(t, WriteHeader(&out, rows) == nil, "WriteHeader failed")
	s := out.String()
	check(t, strings.Count(s, "\n") == 26, "Wrong table size", s)
	check(t, strings.Contains(s, "|  4D1 |      I/O |  IN  | 0 |  7 || 8  | 0 |  IN  | I/O      | 4C4  |"), s)
	check(t, strings.Contains(s, "|      |     3.3V |      |   |  1 || 2  |   |      | 5V       |      |"), s)
}

func TestHeaderBusyLine(t *testing.T) {
	b, _, sim := testBoard()

	/* Pin 8 is 4C4 */
	sim.FailRequest = func(chip int, line int) error {
		if chip == 4 && line == 20 {
			return errors.New("EBUSY")
		}
		return nil
	}

	rows, err := b.Header()
	check(t, err == nil, "Busy line aborted the table", err)
	check(t, len(rows) == pincatalog.NumPins, "Wrong row count", len(rows))
	check(t, rows[7].Pin.Name == "4C4" && rows[7].Value == -1 && rows[7].Mode == "IN", "Busy row", rows[7])
	check(t, rows[6].Value == 0, "Neighbour row", rows[6])

	var out bytes.Buffer
	check(t, WriteHeader(&out, rows) == nil, "WriteHeader failed")
	check(t, strings.Contains(out.String(), "|  4D1 |      I/O |  IN  | 0 |  7 || 8  | ? |  IN  | I/O      | 4C4  |"), out.String())

	chips, lines := sim.Outstanding()
	check(t, chips == 0 && lines == 0, "Line not released", chips, lines)
}

func TestHeaderRegisterFailure(t *testing.T) {
	b, mem, _ := testBoard()
	mem.Fail = func(op string, address uint32) error {
		return errors.New("EPERM")
	}

	_, err := b.Header()
	check(t, errors.Is(err, regport.ErrorRegisterIO), "Register error ignored", err)
}
