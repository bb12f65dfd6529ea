package regfield

import "github.com/BertoldVdb/go-vgp/pincatalog"

// Register offsets inside a GPIO controller
const (
	OffsetSetPort   uint32 = 0x0000 // GPIO_SWPORTA_DR
	OffsetDirection uint32 = 0x0004 // GPIO_SWPORTA_DDR
	OffsetExtPort   uint32 = 0x0050 // GPIO_EXT_PORTA
)

// Base addresses of the general register files holding the iomux words
const (
	BasePMUGRF uint32 = 0xff320000
	BaseGRF    uint32 = 0xff770000
)

const noMux = 0xffffffff

var gpioBase = [pincatalog.NumChips]uint32{0xff720000, 0xff730000, 0xff780000, 0xff788000, 0xff790000}

var iomuxOffset = [pincatalog.NumChips][pincatalog.NumGroups]uint32{
	{0x00000, 0x00004, noMux, noMux},     // PMUGRF_GPIO0
	{0x00010, 0x00014, 0x00018, 0x0001c}, // PMUGRF_GPIO1
	{0x0e000, 0x0e004, 0x0e008, 0x0e00c}, // GRF_GPIO2
	{0x0e010, 0x0e014, 0x0e018, 0x0e01c}, // GRF_GPIO3
	{0x0e020, 0x0e024, 0x0e028, 0x0e02c}, // GRF_GPIO4
}

func checkChip(chip int) {
	assert(chip >= 0 && chip < pincatalog.NumChips, "Chip out of range")
}

func checkLine(line int) {
	assert(line >= 0 && line < pincatalog.NumGroups*8, "Line out of range")
}

// Base returns the base address of a GPIO controller.
func Base(chip int) uint32 {
	checkChip(chip)
	return gpioBase[chip]
}

// DirectionAddress returns the address of the direction register of a controller.
func DirectionAddress(chip int) uint32 {
	return Base(chip) + OffsetDirection
}

// SetPortAddress returns the address of the output data register.
func SetPortAddress(chip int) uint32 {
	return Base(chip) + OffsetSetPort
}

// ExtPortAddress returns the address of the input data register.
func ExtPortAddress(chip int) uint32 {
	return Base(chip) + OffsetExtPort
}

// ValueAddress returns the register that holds the level of a line: the
// external port for inputs, the set port for outputs.
func ValueAddress(chip int, dir Direction) uint32 {
	if dir == Output {
		return SetPortAddress(chip)
	}
	return ExtPortAddress(chip)
}

// MuxAddress returns the address of the iomux word controlling a group. ok is
// false for groups that have no multiplexer; their lines are always direct IO.
func MuxAddress(chip int, group int) (address uint32, ok bool) {
	checkChip(chip)
	assert(group >= 0 && group < pincatalog.NumGroups, "Group out of range")

	off := iomuxOffset[chip][group]
	if off == noMux {
		return 0, false
	}

	base := BaseGRF
	if chip < 2 {
		base = BasePMUGRF
	}
	return base + off, true
}

// MuxAddressOf returns the iomux word address of the group containing a line.
func MuxAddressOf(c pincatalog.Coordinate) (uint32, bool) {
	checkLine(c.Line)
	return MuxAddress(c.Chip, c.Group())
}

func assert(condition bool, reason string) {
	if !condition {
		panic(reason)
	}
}
