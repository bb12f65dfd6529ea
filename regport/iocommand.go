package regport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// ErrorBadOutput is returned when the io helper prints something unexpected.
var ErrorBadOutput = errors.New("Unexpected output from io command")

// IOCommand accesses registers by running the board's io helper
// ("io -4 -r ADDRESS", "io -4 -w ADDRESS VALUE").
type IOCommand struct {
	// Path of the helper, "io" if empty
	Path string
	// Sudo runs the helper through sudo
	Sudo bool
	// Timeout of a single invocation, 5 seconds if zero
	Timeout time.Duration

	run func(ctx context.Context, name string, args ...string) ([]byte, error)
}

func (c *IOCommand) exec(args ...string) ([]byte, error) {
	name := c.Path
	if name == "" {
		name = "io"
	}
	if c.Sudo {
		args = append([]string{name}, args...)
		name = "sudo"
	}

	timeout := c.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if c.run != nil {
		return c.run(ctx, name, args...)
	}
	return exec.CommandContext(ctx, name, args...).Output()
}

func (c *IOCommand) Read(address uint32) (uint32, error) {
	out, err := c.exec("-4", "-r", fmt.Sprintf("0x%x", address))
	if err != nil {
		return 0, readError(address, err)
	}

	value, err := parseReadOutput(out)
	if err != nil {
		return 0, readError(address, err)
	}
	return value, nil
}

func (c *IOCommand) Write(address uint32, value uint32) error {
	_, err := c.exec("-4", "-w", fmt.Sprintf("0x%x", address), fmt.Sprintf("0x%x", value))
	if err != nil {
		return writeError(address, err)
	}
	return nil
}

/* The helper prints "ff720004:  0000001f" */
func parseReadOutput(out []byte) (uint32, error) {
	line := out
	if i := bytes.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}

	i := bytes.IndexByte(line, ':')
	if i < 0 {
		return 0, ErrorBadOutput
	}

	fields := strings.Fields(string(line[i+1:]))
	if len(fields) == 0 {
		return 0, ErrorBadOutput
	}

	value, err := strconv.ParseUint(fields[0], 16, 32)
	if err != nil {
		return 0, ErrorBadOutput
	}
	return uint32(value), nil
}
