package lineport

import "go.uber.org/multierr"

func withValueLine(port Port, chip int, line int, mode Mode, value int, fn func(ValueLine) error) (err error) {
	c, err := port.OpenChip(chip)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, c.Close())
	}()

	l, err := c.RequestValue(line, mode, value)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, l.Close())
	}()

	return fn(l)
}

// GetValue reads the level of a line without changing its direction. The chip
// and line are released before returning.
func GetValue(port Port, chip int, line int) (int, error) {
	var value int
	err := withValueLine(port, chip, line, AsIs, 0, func(l ValueLine) error {
		var err error
		value, err = l.Value()
		return err
	})
	if err != nil {
		return 0, err
	}
	return value, nil
}

// SetValue requests a line as output, drives it to value and releases it.
func SetValue(port Port, chip int, line int, value int) error {
	if value != 0 {
		value = 1
	}
	return withValueLine(port, chip, line, Output, value, func(l ValueLine) error {
		return l.SetValue(value)
	})
}
