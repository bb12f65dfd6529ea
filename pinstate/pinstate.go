// Package pinstate keeps the last known level of every header pin and lets
// readers block until it changes.
package pinstate

import (
	"context"
	"errors"
	"sync"

	"github.com/BertoldVdb/go-vgp/lineport"
	"github.com/BertoldVdb/go-vgp/pincatalog"
)

var ErrorClosed = errors.New("Pin state is closed")

// Snapshot is a copy of the levels at one update. Index 0 is unused.
type Snapshot struct {
	Count  uint64
	Pin    pincatalog.PinID
	Edges  [pincatalog.NumPins + 1]lineport.Edge
	Events [pincatalog.NumPins + 1]uint64
}

// Level returns 1 after a rising edge, 0 after a falling edge and -1 when no
// edge was seen yet.
func (s *Snapshot) Level(pin pincatalog.PinID) int {
	if pin < 1 || pin > pincatalog.NumPins {
		return -1
	}

	switch s.Edges[pin] {
	case lineport.Rising:
		return 1
	case lineport.Falling:
		return 0
	}
	return -1
}

// Levels is updated from edge callbacks and read by anyone waiting for news.
type Levels struct {
	sync.Mutex
	current Snapshot

	updateChan chan (struct{})
	closed     bool
}

func (l *Levels) closeChan() {
	if l.updateChan != nil {
		close(l.updateChan)
		l.updateChan = nil
	}
}

// Set records edge on pin. It has the signature of an edge callback.
func (l *Levels) Set(pin pincatalog.PinID, edge lineport.Edge) {
	if pin < 1 || pin > pincatalog.NumPins {
		return
	}

	l.Lock()
	defer l.Unlock()

	if l.closed {
		return
	}

	l.current.Edges[pin] = edge
	l.current.Events[pin]++
	l.current.Pin = pin
	l.current.Count++
	l.closeChan()
}

func (l *Levels) Close() {
	l.Lock()
	defer l.Unlock()
	l.closed = true
	l.closeChan()
}

// Get returns the first snapshot accepted by checkFunc, waiting for updates
// until then. A nil checkFunc accepts the current one.
func (l *Levels) Get(ctx context.Context, checkFunc func(s *Snapshot) bool) (Snapshot, error) {
	for {
		l.Lock()

		if l.closed {
			l.Unlock()
			return Snapshot{}, ErrorClosed
		}

		tmp := l.current

		if checkFunc == nil || checkFunc(&tmp) {
			l.Unlock()
			return tmp, nil
		}

		if l.updateChan == nil {
			l.updateChan = make(chan (struct{}))
		}
		c := l.updateChan
		l.Unlock()

		select {
		case <-ctx.Done():
			return tmp, ctx.Err()
		case <-c:
		}
	}
}

// GetNewer waits for a snapshot newer than lastCount.
func (l *Levels) GetNewer(ctx context.Context, lastCount uint64) (Snapshot, error) {
	return l.Get(ctx, func(s *Snapshot) bool {
		return s.Count > lastCount
	})
}
