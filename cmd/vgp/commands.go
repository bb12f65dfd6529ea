package main

import (
	"fmt"
	"strconv"

	"github.com/BertoldVdb/go-vgp/adc"
	"github.com/BertoldVdb/go-vgp/gpioctl"
	"github.com/BertoldVdb/go-vgp/regfield"
	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Display the 40-pin header",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.openBoard()
			if err != nil {
				return err
			}

			rows, err := b.Header()
			if err != nil {
				return err
			}
			if err := gpioctl.WriteHeader(a.out, rows); err != nil {
				return err
			}

			summary, err := adc.Summary(a.cfg.ADCDir)
			if err != nil {
				a.log.WithError(err).Warn("Could not sample the analog inputs")
				return nil
			}
			fmt.Fprintf(a.out, "\n%s\n\n", summary)
			return nil
		},
	}
}

func newAllCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Print the state of every GPIO line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.openBoard()
			if err != nil {
				return err
			}

			lines, err := b.Dump()
			if err != nil {
				return err
			}
			for _, l := range lines {
				fmt.Fprintln(a.out, l)
			}
			return nil
		},
	}
}

func newModeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "mode <pin> [in|out|alt0..alt3]",
		Short:   "Get or set the mode of a pin",
		Example: "  vgp mode 4D1\n  vgp mode 7 out",
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.openBoard()
			if err != nil {
				return err
			}
			c, err := b.Resolve(args[0])
			if err != nil {
				return err
			}

			if len(args) == 2 {
				return b.SetMode(c, args[1])
			}

			mode, err := b.Mode(c)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, mode)
			return nil
		},
	}
}

func newAltCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "alt <pin> [0|1|2|3]",
		Short:   "Get or set the alternate function of a pin",
		Example: "  vgp alt 2A0\n  vgp alt 3 0",
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.openBoard()
			if err != nil {
				return err
			}
			c, err := b.Resolve(args[0])
			if err != nil {
				return err
			}

			if len(args) == 2 {
				alt, err := strconv.Atoi(args[1])
				if err != nil {
					return pkgerrors.Wrapf(regfield.ErrorUnsupportedAlt, "alt %q", args[1])
				}
				return b.SetAltFunction(c, alt)
			}

			alt, err := b.AltFunction(c)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, alt)
			return nil
		},
	}
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "get <pin>",
		Short:   "Get the level of a pin",
		Example: "  vgp get 4D6",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.openBoard()
			if err != nil {
				return err
			}
			c, err := b.Resolve(args[0])
			if err != nil {
				return err
			}

			v, err := b.Value(c)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, v)
			return nil
		},
	}
}

func newSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "set <pin> 0|1",
		Short:   "Drive a pin as output",
		Example: "  vgp set 11 1",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.openBoard()
			if err != nil {
				return err
			}
			c, err := b.Resolve(args[0])
			if err != nil {
				return err
			}

			v, err := strconv.Atoi(args[1])
			if err != nil {
				return pkgerrors.Wrapf(gpioctl.ErrorInvalidValue, "value %q", args[1])
			}
			return b.SetValue(c, v)
		},
	}
}

func newAdcCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "adc 0|3|4 [v|V]",
		Short:   "Read an analog input",
		Long:    "Print the raw value (0 to 1023) of A0, A3 or A4, the voltage with v or the voltage and unit with V.",
		Example: "  vgp adc 0\n  vgp adc 3 v\n  vgp adc 4 V",
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return pkgerrors.Wrapf(adc.ErrorNotAnalog, "analog pin %q", args[0])
			}

			format := ""
			if len(args) == 2 {
				format = args[1]
				if format != "v" && format != "V" {
					return fmt.Errorf("Incorrect option: %s (must be v or V)", format)
				}
			}

			c, err := adc.Open(a.cfg.ADCDir, n)
			if err != nil {
				return err
			}
			s, err := c.Read()
			if err != nil {
				return err
			}

			switch format {
			case "v":
				fmt.Fprintf(a.out, "%.3f\n", adc.Volts(s.V))
			case "V":
				fmt.Fprintf(a.out, "%.3fV\n", adc.Volts(s.V))
			default:
				fmt.Fprintln(a.out, s.Raw)
			}
			return nil
		},
	}
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(a.out, "Vivid GPIO utility version: %s\n", version)
			return nil
		},
	}
}
