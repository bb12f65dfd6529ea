//go:build linux

// Package gpio talks to the Linux GPIO character device (uAPI v1) directly.
package gpio

import (
	"errors"
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

var (
	ErrorLineRange     = errors.New("Line out of range")
	ErrorNameNotFound  = errors.New("Name not found")
	ErrorInvalidFd     = errors.New("Invalid file descriptor returned")
	ErrorNumberOfLines = errors.New("Invalid number of lines")
)

func (g *Chip) readChipInfo() error {
	type chipInfoRaw struct {
		Name  [32]byte
		Label [32]byte
		Lines uint32
	}
	var ci chipInfoRaw

	err := ioctlPtr(g.file, gpioGetChipinfoIoctl, unsafe.Pointer(&ci))
	if err != nil {
		return err
	}

	g.chipInfo.Name = bytesToString(ci.Name[:])
	g.chipInfo.Label = bytesToString(ci.Label[:])
	g.chipInfo.Lines = ci.Lines

	return nil
}

func (g *Chip) readLineNames() error {
	names := make(map[string](uint32))

	for i := uint32(0); i < g.chipInfo.Lines; i++ {
		line, err := g.GetLineInfo(i)
		if err != nil {
			return err
		}

		if line.Name != "" {
			names[line.Name] = i
		}
	}

	g.lineNames = names

	return nil
}

// OpenChip opens /dev/gpiochipN.
func OpenChip(chip int) (*Chip, error) {
	return OpenChipPath(fmt.Sprintf("/dev/gpiochip%d", chip))
}

// OpenChipPath opens a GPIO character device by path.
func OpenChipPath(path string) (*Chip, error) {
	g := &Chip{}

	var err error
	g.file, err = os.OpenFile(path, unix.O_RDWR|unix.O_NOCTTY|unix.O_CLOEXEC, 0600)
	if err != nil {
		return nil, err
	}

	err = g.readChipInfo()
	if err == nil {
		err = g.readLineNames()
	}
	if err != nil {
		g.file.Close()
		return nil, err
	}

	return g, nil
}

func (g *Chip) Close() error {
	return g.file.Close()
}

func (g *Chip) GetChipInfo() ChipInfo {
	return g.chipInfo
}

func (g *Chip) GetLineInfo(line uint32) (LineInfo, error) {
	result := LineInfo{
		LineOffset: line,
	}

	if result.LineOffset >= g.chipInfo.Lines {
		return result, ErrorLineRange
	}

	type lineInfoRaw struct {
		LineOffset uint32
		Flags      uint32
		Name       [32]byte
		Consumer   [32]byte
	}

	li := lineInfoRaw{
		LineOffset: result.LineOffset,
	}

	err := ioctlPtr(g.file, gpioGetLineinfoIoctl, unsafe.Pointer(&li))
	if err != nil {
		return result, err
	}

	result.Flags = LineFlag(li.Flags)
	result.Name = bytesToString(li.Name[:])
	result.Consumer = bytesToString(li.Consumer[:])

	return result, nil
}

func (g *Chip) resolveLine(line Line) (uint32, error) {
	offset := line.Offset
	if len(line.Name) != 0 {
		index, found := g.lineNames[line.Name]
		if !found {
			return 0, ErrorNameNotFound
		}
		offset = index
	}

	if offset >= g.chipInfo.Lines {
		return 0, ErrorLineRange
	}
	return offset, nil
}

func (g *Chip) OpenLine(label string, flags RequestFlag, line LineRequest) (*Lines, error) {
	return g.OpenLines(label, flags, []LineRequest{line})
}

func (g *Chip) OpenLines(label string, flags RequestFlag, lines []LineRequest) (*Lines, error) {
	if len(lines) > 64 || len(lines) == 0 {
		return nil, ErrorNumberOfLines
	}

	/* The kernel writes a 32-bit fd at the end of the structure */
	type handleRequestRaw struct {
		LineOffsets   [64]uint32
		Flags         uint32
		DefaultValues [64]uint8
		ConsumerLabel [32]byte
		Lines         uint32
		Fd            int32
	}

	req := handleRequestRaw{
		Flags: uint32(flags),
		Lines: uint32(len(lines)),
	}
	stringToBytes(label, req.ConsumerLabel[:])

	for i, l := range lines {
		off, err := g.resolveLine(l.Line)
		if err != nil {
			return nil, err
		}

		req.LineOffsets[i] = off
		req.DefaultValues[i] = l.DefaultValue
	}

	err := ioctlPtr(g.file, gpioGetLinehandleIoctl, unsafe.Pointer(&req))
	if err != nil {
		return nil, err
	}

	if req.Fd <= 0 {
		return nil, ErrorInvalidFd
	}

	gl := &Lines{
		file:     os.NewFile(uintptr(req.Fd), label),
		numLines: req.Lines,
	}

	return gl, nil
}

// WatchLine requests edge events for a line. The returned EventLine owns the
// event file descriptor and must be closed.
func (g *Chip) WatchLine(label string, requestFlags RequestFlag, eventFlags EventFlag, line Line) (*EventLine, error) {
	type eventRequestRaw struct {
		LineOffset    uint32
		HandleFlags   uint32
		EventFlags    uint32
		ConsumerLabel [32]byte
		Fd            int32
	}

	off, err := g.resolveLine(line)
	if err != nil {
		return nil, err
	}

	req := eventRequestRaw{
		HandleFlags: uint32(requestFlags),
		EventFlags:  uint32(eventFlags),
		LineOffset:  off,
	}
	stringToBytes(label, req.ConsumerLabel[:])

	err = ioctlPtr(g.file, gpioGetLineeventIoctl, unsafe.Pointer(&req))
	if err != nil {
		return nil, err
	}

	if req.Fd <= 0 {
		return nil, ErrorInvalidFd
	}

	return newEventLine(int(req.Fd), off)
}
