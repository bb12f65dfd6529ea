package regfield

import (
	"math/rand"
	"testing"

	"github.com/BertoldVdb/go-vgp/pincatalog"
)

func check(t *testing.T, condition bool, reason ...interface{}) {
	if !condition {
		t.Error(reason...)
		t.FailNow()
	}
}

func checkPanic(t *testing.T) {
	r := recover()
	if r == nil {
		t.Errorf("The code did not panic")
	}
}

func TestDirectionRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	for i := 0; i < 200; i++ {
		w := r.Uint32()
		for line := 0; line < 32; line++ {
			for _, d := range []Direction{Input, Output} {
				n, err := WithDirection(w, line, d)
				check(t, err == nil, err)
				check(t, DirectionOf(n, line) == d, "Direction not stored", w, line, d)

				/* Nothing except the target bit may change */
				mask := uint32(1) << uint(line)
				check(t, n&^mask == w&^mask, "Other bits changed", w, n, line)
			}
		}
	}
}

func TestDirectionScenario(t *testing.T) {
	w, err := WithDirection(0x00000000, 2, Output)
	check(t, err == nil, err)
	check(t, w == 0x00000004, "Wrong word", w)
	check(t, DirectionOf(w, 2) == Output, "Bit 2 not output")
	check(t, DirectionOf(w, 0) == Input, "Bit 0 not input")
	check(t, DirectionOf(w, 1) == Input, "Bit 1 not input")

	w, err = WithDirection(0xffffffff, 25, Input)
	check(t, err == nil, err)
	check(t, w == 0xfdffffff, "Wrong word", w)

	_, err = WithDirection(0, 3, Direction(7))
	check(t, err == ErrorUnknownDirection, "Unknown direction accepted", err)
}

func TestAltRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(2))

	for i := 0; i < 200; i++ {
		m := MuxWord{Value: r.Uint32(), Present: true}
		for line := 0; line < 32; line++ {
			for alt := 0; alt <= MaxAlt; alt++ {
				n, err := WithAltFunction(m, line, alt)
				check(t, err == nil, err)
				check(t, AltFunctionOf(MuxWord{Value: n, Present: true}, line) == alt, "Alt not stored", m, line, alt)

				index := uint(line % 8)
				enable := uint32(0x03) << (index*2 + 16)
				check(t, n&enable == enable, "Write enable not set", n, line)

				field := uint32(0x03) << (index * 2)
				check(t, n&^(field|enable) == m.Value&^(field|enable), "Other fields changed", m, n)
			}
		}
	}
}

func TestAltErrors(t *testing.T) {
	m := MuxWord{Value: 0x1234, Present: true}
	for _, alt := range []int{-1, 4, 100} {
		n, err := WithAltFunction(m, 3, alt)
		check(t, err == ErrorUnsupportedAlt, "Alt accepted", alt, err)
		check(t, n == m.Value, "Word changed on error")
	}

	_, err := WithAltFunction(MuxWord{}, 3, 1)
	check(t, err == ErrorNoMux, "Missing mux accepted", err)

	check(t, AltFunctionOf(MuxWord{Value: 0xffffffff}, 5) == 0, "Absent mux is not function 0")
}

func TestAltScenario(t *testing.T) {
	/* 2A1 to I2C2_SCL */
	n, err := WithAltFunction(MuxWord{Present: true}, 1, 2)
	check(t, err == nil, err)
	check(t, n == 0x000c0008, "Wrong iomux word", n)
}

func TestValue(t *testing.T) {
	w := WithValue(0, 30, 1)
	check(t, w == 0x40000000, "Wrong word", w)
	check(t, ValueOf(w, 30) == 1, "Value not set")
	check(t, ValueOf(w, 29) == 0, "Neighbour set")
	check(t, WithValue(w, 30, 0) == 0, "Value not cleared")
	check(t, WithValue(0, 7, 5) == 0x80, "Non-zero is not high")
}

func TestAddresses(t *testing.T) {
	check(t, DirectionAddress(4) == 0xff790004, "Direction address")
	check(t, SetPortAddress(2) == 0xff780000, "Set port address")
	check(t, ExtPortAddress(0) == 0xff720050, "Ext port address")
	check(t, ValueAddress(1, Input) == 0xff730050, "Input value address")
	check(t, ValueAddress(1, Output) == 0xff730000, "Output value address")

	a, ok := MuxAddress(0, 1)
	check(t, ok && a == 0xff320004, "PMUGRF mux address", a)
	a, ok = MuxAddress(4, 3)
	check(t, ok && a == 0xff77e02c, "GRF mux address", a)
	_, ok = MuxAddress(0, 2)
	check(t, !ok, "GPIO0 C has a mux")
	_, ok = MuxAddress(0, 3)
	check(t, !ok, "GPIO0 D has a mux")

	a, ok = MuxAddressOf(pincatalog.Coordinate{Chip: 2, Line: 9})
	check(t, ok && a == 0xff77e004, "Mux address of 2B1", a)
}

func TestOutOfTable(t *testing.T) {
	func() {
		defer checkPanic(t)
		Base(5)
	}()
	func() {
		defer checkPanic(t)
		DirectionOf(0, 32)
	}()
	func() {
		defer checkPanic(t)
		WithValue(0, -1, 1)
	}()
	func() {
		defer checkPanic(t)
		MuxAddress(1, 4)
	}()
}

func TestParseDirection(t *testing.T) {
	for _, s := range []string{"in", "IN", "Input"} {
		d, err := ParseDirection(s)
		check(t, err == nil && d == Input, s)
	}
	for _, s := range []string{"out", "OUTPUT"} {
		d, err := ParseDirection(s)
		check(t, err == nil && d == Output, s)
	}
	_, err := ParseDirection("sideways")
	check(t, err == ErrorUnknownDirection, err)
	check(t, Input.String() == "IN" && Output.String() == "OUT", "Direction names")
}
