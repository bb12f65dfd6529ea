package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BertoldVdb/go-vgp/edgemonitor"
	"github.com/BertoldVdb/go-vgp/lineport"
	"github.com/BertoldVdb/go-vgp/pincatalog"
	"github.com/BertoldVdb/go-vgp/pinstate"
	"github.com/spf13/cobra"
)

func (a *app) newMonitor() (*edgemonitor.Monitor, error) {
	lines, err := a.linePort()
	if err != nil {
		return nil, err
	}
	return edgemonitor.New(lines, a.log.WithField("prefix", "edgemonitor")), nil
}

func newWfiCmd(a *app) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:     "wfi <pin> rising|falling|both",
		Short:   "Wait until the level of a pin changes",
		Example: "  vgp wfi 2D3 falling\n  vgp wfi 13 both --timeout 10s",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pin, err := pincatalog.Default().Resolve(args[0])
			if err != nil {
				return err
			}
			kind, err := lineport.ParseEdge(args[1])
			if err != nil {
				return fmt.Errorf("Unknown edge: %s (should be rising/falling/both)", args[1])
			}

			m, err := a.newMonitor()
			if err != nil {
				return err
			}
			defer m.Close()

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			edge, err := m.WaitEdge(ctx, pin, kind)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, edge)
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Give up after this long, 0 waits forever")
	return cmd
}

// inputPins returns the header pins currently configured as GPIO input.
func (a *app) inputPins() ([]pincatalog.PinID, error) {
	b, err := a.openBoard()
	if err != nil {
		return nil, err
	}

	var pins []pincatalog.PinID
	for _, p := range b.Catalog().Pins() {
		if p.IsPower() {
			continue
		}
		mode, err := b.Mode(p.Coordinate)
		if err != nil {
			return nil, err
		}
		if mode == "IN" {
			pins = append(pins, p.ID)
		}
	}
	return pins, nil
}

func newMonitorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "monitor [pin...]",
		Short: "Print level changes of pins until interrupted",
		Long:  "Watch the given pins, or every header pin configured as input, for both edges and print each change.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var pins []pincatalog.PinID
			for _, arg := range args {
				pin, err := pincatalog.Default().Resolve(arg)
				if err != nil {
					return err
				}
				pins = append(pins, pin)
			}
			if len(pins) == 0 {
				var err error
				if pins, err = a.inputPins(); err != nil {
					return err
				}
			}

			m, err := a.newMonitor()
			if err != nil {
				return err
			}

			levels := &pinstate.Levels{}
			for _, pin := range pins {
				if _, err := m.Watch(pin, lineport.Both, levels.Set); err != nil {
					m.Close()
					return err
				}
			}
			a.log.WithField("pins", len(pins)).Info("Monitoring, press ^C to stop")

			err = printChanges(cmd.Context(), a, levels)
			levels.Close()
			if cerr := m.Close(); cerr != nil {
				return cerr
			}
			return err
		},
	}
}

func printChanges(ctx context.Context, a *app, levels *pinstate.Levels) error {
	var last pinstate.Snapshot
	catalog := pincatalog.Default()

	for {
		s, err := levels.GetNewer(ctx, last.Count)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, pinstate.ErrorClosed) {
				return nil
			}
			return err
		}

		for pin := pincatalog.PinID(1); pin <= pincatalog.NumPins; pin++ {
			if s.Events[pin] == last.Events[pin] {
				continue
			}
			name, _ := catalog.NameOf(pin)
			fmt.Fprintf(a.out, "%3d %-4s %-8s %d\n", pin, name, s.Edges[pin], s.Level(pin))
		}
		last = s
	}
}
