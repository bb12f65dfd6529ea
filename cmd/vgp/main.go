package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/BertoldVdb/go-vgp/config"
	"github.com/BertoldVdb/go-vgp/gpioctl"
	"github.com/BertoldVdb/go-vgp/lineport"
	"github.com/BertoldVdb/go-vgp/logrusconfig"
	"github.com/BertoldVdb/go-vgp/regport"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

const version = "1.01"

type app struct {
	cfg *config.Config
	log *logrus.Entry
	out io.Writer

	registers regport.Port
	lines     lineport.Port
	closers   []io.Closer
	board     *gpioctl.Board
}

func (a *app) openBoard() (*gpioctl.Board, error) {
	if a.board != nil {
		return a.board, nil
	}

	lines, err := a.linePort()
	if err != nil {
		return nil, err
	}
	if a.registers == nil {
		a.registers = &lazyRegisters{open: a.openRegisters}
	}

	a.board = gpioctl.New(a.registers, lines, a.log.WithField("prefix", "gpioctl"))
	return a.board, nil
}

func (a *app) linePort() (lineport.Port, error) {
	if a.lines == nil {
		l, err := a.openLines()
		if err != nil {
			return nil, err
		}
		a.lines = l
	}
	return a.lines, nil
}

// lazyRegisters opens the register backend on first access, so commands that
// only use lines work without access to it.
type lazyRegisters struct {
	sync.Mutex
	open func() (regport.Port, error)
	port regport.Port
}

func (l *lazyRegisters) get() (regport.Port, error) {
	l.Lock()
	defer l.Unlock()

	if l.port == nil {
		p, err := l.open()
		if err != nil {
			return nil, err
		}
		l.port = p
	}
	return l.port, nil
}

func (l *lazyRegisters) Read(address uint32) (uint32, error) {
	p, err := l.get()
	if err != nil {
		return 0, err
	}
	return p.Read(address)
}

func (l *lazyRegisters) Write(address uint32, value uint32) error {
	p, err := l.get()
	if err != nil {
		return err
	}
	return p.Write(address, value)
}

func (a *app) openRegisters() (regport.Port, error) {
	switch a.cfg.Registers {
	case config.RegistersIO:
		return &regport.IOCommand{Path: a.cfg.IOCommand, Sudo: a.cfg.Sudo}, nil
	case config.RegistersSim:
		return &regport.Memory{}, nil
	}
	return a.openPlatformRegisters()
}

func (a *app) openLines() (lineport.Port, error) {
	if a.cfg.Lines == config.LinesSim {
		return &lineport.Sim{}, nil
	}
	return platformLines(a.cfg)
}

func (a *app) close() error {
	var result error
	for _, c := range a.closers {
		result = multierr.Append(result, c.Close())
	}
	a.closers = nil
	return result
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vgp",
		Short: "Vivid GPIO utility",
		Long: `Manage the GPIOs of the Vivid Unit 40-pin header.

Pins are given as physical pin number or GPIO name, for example 4D2 means
GPIO4_D2 (physical pin 12).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.log == nil {
				a.log = logrusconfig.GetLogger(logrus.InfoLevel)
			}
			a.out = cmd.OutOrStdout()
			return a.cfg.Validate()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	a.cfg.BindFlags(rootCmd.PersistentFlags())
	logrusconfig.InitParam(rootCmd.PersistentFlags(), logrus.InfoLevel)

	rootCmd.AddCommand(
		newListCmd(a),
		newAllCmd(a),
		newModeCmd(a),
		newAltCmd(a),
		newGetCmd(a),
		newSetCmd(a),
		newWfiCmd(a),
		newMonitorCmd(a),
		newAdcCmd(a),
		newVersionCmd(a),
	)

	return rootCmd
}

// handleSignals cancels the context on SIGINT or SIGTERM. A second signal, or
// a shutdown that takes too long, exits right away.
func handleSignals(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		go func() {
			select {
			case <-c:
				fmt.Fprintln(os.Stderr, "Pressed ^C a second time, quitting right away.")
			case <-time.After(5 * time.Second):
				fmt.Fprintln(os.Stderr, "Timeout during shutdown, quitting with dirty state.")
			}
			os.Exit(1)
		}()
		cancel()
	}()
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	handleSignals(cancel)

	a := &app{cfg: config.Default()}
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		a.close()
		os.Exit(1)
	}
}
