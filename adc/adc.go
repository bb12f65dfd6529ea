// Package adc samples the analog inputs of the header through the IIO sysfs
// interface. Channels implement periph's analog.PinADC.
package adc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/pin"
)

var (
	ErrorNotAnalog = errors.New("Not an analog pin, must be 0, 3 or 4")
	ErrorBadSample = errors.New("Invalid ADC sample")
)

// DefaultDir is the IIO device of the SoC's SAR ADC.
const DefaultDir = "/sys/bus/iio/devices/iio:device0"

// Resolution of the converter
const (
	MaxRaw    = 1023
	Reference = 5 * physic.Volt
)

// Analog channels routed to the header
var Channels = []int{0, 3, 4}

// Voltage converts a raw sample to the voltage at the pin.
func Voltage(raw int32) physic.ElectricPotential {
	return Reference * physic.ElectricPotential(raw) / (MaxRaw + 1)
}

// Volts returns v as a floating point number of volts.
func Volts(v physic.ElectricPotential) float64 {
	return float64(v) / float64(physic.Volt)
}

// Channel is one analog input.
type Channel struct {
	dir    string
	number int
}

var _ analog.PinADC = (*Channel)(nil)

// Open returns analog input number of the IIO device in dir. An empty dir
// selects DefaultDir.
func Open(dir string, number int) (*Channel, error) {
	if dir == "" {
		dir = DefaultDir
	}

	for _, n := range Channels {
		if n == number {
			return &Channel{dir: dir, number: number}, nil
		}
	}
	return nil, pkgerrors.Wrapf(ErrorNotAnalog, "analog pin %d", number)
}

func (c *Channel) path() string {
	return filepath.Join(c.dir, fmt.Sprintf("in_voltage%d_raw", c.number))
}

// ReadRaw returns the raw converter value, 0 to MaxRaw.
func (c *Channel) ReadRaw() (int32, error) {
	data, err := os.ReadFile(c.path())
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "read A%d", c.number)
	}

	raw, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 32)
	if err != nil || raw < 0 || raw > MaxRaw {
		return 0, pkgerrors.Wrapf(ErrorBadSample, "A%d: %q", c.number, strings.TrimSpace(string(data)))
	}
	return int32(raw), nil
}

func (c *Channel) Read() (analog.Sample, error) {
	raw, err := c.ReadRaw()
	if err != nil {
		return analog.Sample{}, err
	}
	return analog.Sample{V: Voltage(raw), Raw: raw}, nil
}

func (c *Channel) Range() (analog.Sample, analog.Sample) {
	return analog.Sample{V: 0, Raw: 0}, analog.Sample{V: Voltage(MaxRaw), Raw: MaxRaw}
}

func (c *Channel) String() string {
	return c.Name()
}

func (c *Channel) Name() string {
	return fmt.Sprintf("A%d", c.number)
}

func (c *Channel) Number() int {
	return c.number
}

func (c *Channel) Function() string {
	return string(c.Func())
}

func (c *Channel) Func() pin.Func {
	return analog.ADC
}

func (c *Channel) Halt() error {
	return nil
}

// Summary samples every channel of the IIO device in dir and formats them on
// one line.
func Summary(dir string) (string, error) {
	var parts []string

	for _, n := range Channels {
		c, err := Open(dir, n)
		if err != nil {
			return "", err
		}
		s, err := c.Read()
		if err != nil {
			return "", err
		}
		parts = append(parts, fmt.Sprintf("%s = %d (%.3fV)", c.Name(), s.Raw, Volts(s.V)))
	}

	return strings.Join(parts, ",  "), nil
}
