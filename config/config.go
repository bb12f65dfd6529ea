// Package config holds the settings selecting the hardware backends.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/BertoldVdb/go-vgp/adc"
	"github.com/BertoldVdb/go-vgp/lineport"
	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/pflag"
)

var ErrorUnknownBackend = errors.New("Unknown backend")

// Register backends
const (
	RegistersDevMem = "devmem"
	RegistersIO     = "io"
	RegistersSim    = "sim"
)

// Line backends
const (
	LinesCdev = "cdev"
	LinesUAPI = "uapi"
	LinesSim  = "sim"
)

// EnvPrefix is prepended to the upper case flag name to form the environment
// variable providing its default.
const EnvPrefix = "VGP_"

type Config struct {
	Registers string
	DevMem    string
	IOCommand string
	Sudo      bool

	Lines    string
	Consumer string

	ADCDir string
}

// Default returns the built-in settings overridden by the environment.
func Default() *Config {
	return &Config{
		Registers: env("registers", RegistersDevMem),
		DevMem:    env("devmem", "/dev/mem"),
		IOCommand: env("io-command", "io"),
		Sudo:      envBool("sudo", false),
		Lines:     env("lines", LinesCdev),
		Consumer:  env("consumer", lineport.DefaultConsumer),
		ADCDir:    env("adc-dir", adc.DefaultDir),
	}
}

func envName(flag string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

func env(flag string, def string) string {
	if v, ok := os.LookupEnv(envName(flag)); ok && v != "" {
		return v
	}
	return def
}

func envBool(flag string, def bool) bool {
	v, ok := os.LookupEnv(envName(flag))
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// BindFlags registers the settings as flags, using the current values as
// defaults.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.Registers, "registers", c.Registers, "Register access backend: devmem, io or sim")
	fs.StringVar(&c.DevMem, "devmem", c.DevMem, "Physical memory device used by the devmem backend")
	fs.StringVar(&c.IOCommand, "io-command", c.IOCommand, "Register access helper used by the io backend")
	fs.BoolVar(&c.Sudo, "sudo", c.Sudo, "Run the io helper through sudo")
	fs.StringVar(&c.Lines, "lines", c.Lines, "Line access backend: cdev, uapi or sim")
	fs.StringVar(&c.Consumer, "consumer", c.Consumer, "Consumer label of requested lines")
	fs.StringVar(&c.ADCDir, "adc-dir", c.ADCDir, "IIO device directory of the ADC")
}

// Validate checks the backend names.
func (c *Config) Validate() error {
	switch c.Registers {
	case RegistersDevMem, RegistersIO, RegistersSim:
	default:
		return pkgerrors.Wrapf(ErrorUnknownBackend, "registers %q", c.Registers)
	}

	switch c.Lines {
	case LinesCdev, LinesUAPI, LinesSim:
	default:
		return pkgerrors.Wrapf(ErrorUnknownBackend, "lines %q", c.Lines)
	}

	return nil
}
