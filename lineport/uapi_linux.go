package lineport

import (
	"context"
	"errors"
	"time"

	"github.com/BertoldVdb/go-vgp/linux-pio/gpio"
)

// UAPI is a Port issuing the v1 character device ioctls itself through
// linux-pio/gpio.
type UAPI struct {
	Consumer string
}

func (p *UAPI) consumer() string {
	if p.Consumer == "" {
		return DefaultConsumer
	}
	return p.Consumer
}

func (p *UAPI) OpenChip(chip int) (Chip, error) {
	c, err := gpio.OpenChip(chip)
	if err != nil {
		return nil, openError(chip, err)
	}
	return &uapiChip{chip: c, num: chip, consumer: p.consumer()}, nil
}

type uapiChip struct {
	chip     *gpio.Chip
	num      int
	consumer string
}

func (c *uapiChip) RequestValue(line int, mode Mode, value int) (ValueLine, error) {
	flags := gpio.RequestAsIs
	switch mode {
	case Input:
		flags = gpio.RequestInput
	case Output:
		flags = gpio.RequestOutput
	}

	req := gpio.LineRequest{Line: gpio.Line{Offset: uint32(line)}}
	if value != 0 {
		req.DefaultValue = 1
	}

	l, err := c.chip.OpenLine(c.consumer, flags, req)
	if err != nil {
		return nil, requestError("request", c.num, line, err)
	}
	return &uapiValueLine{lines: l, chip: c.num, offset: line}, nil
}

func (c *uapiChip) RequestEdges(line int, kind Edge) (EventLine, error) {
	if !kind.Valid() {
		return nil, requestError("watch", c.num, line, ErrorUnknownEdge)
	}

	flags := gpio.EventFlag(0)
	if kind&Rising != 0 {
		flags |= gpio.EventRisingEdge
	}
	if kind&Falling != 0 {
		flags |= gpio.EventFallingEdge
	}

	e, err := c.chip.WatchLine(c.consumer, gpio.RequestInput, flags, gpio.Line{Offset: uint32(line)})
	if err != nil {
		return nil, requestError("watch", c.num, line, err)
	}
	return &uapiEventLine{line: e, chip: c.num, offset: line}, nil
}

func (c *uapiChip) Close() error {
	return c.chip.Close()
}

type uapiValueLine struct {
	lines  *gpio.Lines
	chip   int
	offset int
}

func (l *uapiValueLine) Value() (int, error) {
	v, err := l.lines.GetValue()
	if err != nil {
		return 0, requestError("get", l.chip, l.offset, err)
	}
	if v {
		return 1, nil
	}
	return 0, nil
}

func (l *uapiValueLine) SetValue(value int) error {
	if err := l.lines.SetValue(value != 0); err != nil {
		return requestError("set", l.chip, l.offset, err)
	}
	return nil
}

func (l *uapiValueLine) Close() error {
	return l.lines.Close()
}

type uapiEventLine struct {
	line   *gpio.EventLine
	chip   int
	offset int
}

func (e *uapiEventLine) WaitEvent(ctx context.Context) (Event, error) {
	ev, err := e.line.ReadEvent(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return Event{}, ctxErr
		}
		return Event{}, waitError(e.chip, e.offset, err)
	}

	edge := Falling
	if ev.Type == gpio.EventTypeRisingEdge {
		edge = Rising
	}
	return Event{Edge: edge, Timestamp: time.Duration(ev.Timestamp)}, nil
}

func (e *uapiEventLine) Close() error {
	return e.line.Close()
}
