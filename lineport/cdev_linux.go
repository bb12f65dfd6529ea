package lineport

import (
	"context"
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"
)

const cdevEventQueue = 64

// Cdev is a Port using the GPIO character device through go-gpiocdev.
type Cdev struct {
	Consumer string
}

func (p *Cdev) consumer() string {
	if p.Consumer == "" {
		return DefaultConsumer
	}
	return p.Consumer
}

func (p *Cdev) OpenChip(chip int) (Chip, error) {
	c, err := gpiocdev.NewChip(fmt.Sprintf("gpiochip%d", chip), gpiocdev.WithConsumer(p.consumer()))
	if err != nil {
		return nil, openError(chip, err)
	}
	return &cdevChip{chip: c, num: chip, consumer: p.consumer()}, nil
}

type cdevChip struct {
	chip     *gpiocdev.Chip
	num      int
	consumer string
}

func (c *cdevChip) RequestValue(line int, mode Mode, value int) (ValueLine, error) {
	opts := []gpiocdev.LineReqOption{gpiocdev.WithConsumer(c.consumer)}
	switch mode {
	case Input:
		opts = append(opts, gpiocdev.AsInput)
	case Output:
		opts = append(opts, gpiocdev.AsOutput(value))
	default:
		opts = append(opts, gpiocdev.AsIs)
	}

	l, err := c.chip.RequestLine(line, opts...)
	if err != nil {
		return nil, requestError("request", c.num, line, err)
	}
	return &cdevValueLine{line: l, chip: c.num, offset: line}, nil
}

func (c *cdevChip) RequestEdges(line int, kind Edge) (EventLine, error) {
	w := &cdevEventLine{
		chip:   c.num,
		offset: line,
		events: make(chan gpiocdev.LineEvent, cdevEventQueue),
		done:   make(chan struct{}),
	}

	opts := []gpiocdev.LineReqOption{
		gpiocdev.WithConsumer(c.consumer),
		gpiocdev.AsInput,
		gpiocdev.WithEventHandler(w.handle),
	}
	switch kind {
	case Rising:
		opts = append(opts, gpiocdev.WithRisingEdge)
	case Falling:
		opts = append(opts, gpiocdev.WithFallingEdge)
	case Both:
		opts = append(opts, gpiocdev.WithBothEdges)
	default:
		return nil, requestError("watch", c.num, line, ErrorUnknownEdge)
	}

	l, err := c.chip.RequestLine(line, opts...)
	if err != nil {
		return nil, requestError("watch", c.num, line, err)
	}
	w.line = l
	return w, nil
}

func (c *cdevChip) Close() error {
	return c.chip.Close()
}

type cdevValueLine struct {
	line   *gpiocdev.Line
	chip   int
	offset int
}

func (l *cdevValueLine) Value() (int, error) {
	v, err := l.line.Value()
	if err != nil {
		return 0, requestError("get", l.chip, l.offset, err)
	}
	return v, nil
}

func (l *cdevValueLine) SetValue(value int) error {
	if err := l.line.SetValue(value); err != nil {
		return requestError("set", l.chip, l.offset, err)
	}
	return nil
}

func (l *cdevValueLine) Close() error {
	return l.line.Close()
}

/* go-gpiocdev calls the handler from its own watcher goroutine; the events are
 * handed over to WaitEvent through a queue. */
type cdevEventLine struct {
	line      *gpiocdev.Line
	chip      int
	offset    int
	events    chan gpiocdev.LineEvent
	done      chan struct{}
	closeOnce sync.Once
}

func (w *cdevEventLine) handle(ev gpiocdev.LineEvent) {
	select {
	case w.events <- ev:
	case <-w.done:
	}
}

func (w *cdevEventLine) WaitEvent(ctx context.Context) (Event, error) {
	if err := ctx.Err(); err != nil {
		return Event{}, err
	}

	select {
	case ev := <-w.events:
		edge := Falling
		if ev.Type == gpiocdev.LineEventRisingEdge {
			edge = Rising
		}
		return Event{Edge: edge, Timestamp: ev.Timestamp}, nil
	case <-w.done:
		return Event{}, waitError(w.chip, w.offset, ErrorClosed)
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}

func (w *cdevEventLine) Close() error {
	err := ErrorClosed
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.line.Close()
	})
	return err
}
