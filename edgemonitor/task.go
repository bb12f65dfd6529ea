package edgemonitor

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/BertoldVdb/go-vgp/lineport"
	"github.com/BertoldVdb/go-vgp/pincatalog"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// State of a monitor task
type State int32

const (
	StateIdle State = iota
	StateRequesting
	StateArmed
	StateDelivering
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateArmed:
		return "armed"
	case StateDelivering:
		return "delivering"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Task waits for edges on one pin and calls its callback for each of them,
// one call at a time, from its own goroutine.
type Task struct {
	ID         uuid.UUID
	Pin        pincatalog.PinID
	Name       string
	Coordinate pincatalog.Coordinate
	Edge       lineport.Edge

	callback Callback
	log      *logrus.Entry

	ctx    context.Context
	cancel context.CancelFunc
	done   chan (struct{})

	chip lineport.Chip
	line lineport.EventLine

	state  atomic.Int32
	latest atomic.Int32
	count  atomic.Uint64

	/* Written before done is closed */
	err        error
	releaseErr error
}

func newTask(pin pincatalog.PinID, name string, coord pincatalog.Coordinate, edge lineport.Edge, cb Callback) *Task {
	t := &Task{
		ID:         uuid.New(),
		Pin:        pin,
		Name:       name,
		Coordinate: coord,
		Edge:       edge,
		callback:   cb,
		done:       make(chan (struct{})),
	}
	t.ctx, t.cancel = context.WithCancel(context.Background())
	return t
}

// State returns the current state of the task.
func (t *Task) State() State {
	return State(t.state.Load())
}

// LatestEvent returns the last edge received, 0 before the first one.
func (t *Task) LatestEvent() lineport.Edge {
	return lineport.Edge(t.latest.Load())
}

// Events returns the number of edges delivered so far.
func (t *Task) Events() uint64 {
	return t.count.Load()
}

// Done is closed once the line is released and the task left the registry.
func (t *Task) Done() <-chan (struct{}) {
	return t.done
}

// Err returns why the task stopped on its own. It is nil for cancelled tasks
// and only meaningful after Done is closed.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Stop asks the task to end without waiting for it. It is safe to call from
// the task's own callback.
func (t *Task) Stop() {
	t.cancel()
}

// Cancel stops the task and waits until its line is released. A running
// callback is allowed to finish first. Calling Cancel from the callback of the
// same task deadlocks, use Stop there.
func (t *Task) Cancel() {
	t.cancel()
	<-t.done
}

func (t *Task) deliver(edge lineport.Edge) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("callback panicked: %v", r)
		}
	}()

	t.callback(t.Pin, edge)
	return nil
}

func (t *Task) run(m *Monitor) {
	defer m.finish(t)

	t.log.Debug("Armed")

	for {
		/* Cancellation is only honoured between waits, never during a callback */
		if t.ctx.Err() != nil {
			return
		}

		ev, err := t.line.WaitEvent(t.ctx)
		if t.ctx.Err() != nil {
			return
		}
		if err != nil {
			t.err = err
			t.log.WithError(err).Error("Waiting for edge failed, monitor stopped")
			return
		}

		t.latest.Store(int32(ev.Edge))
		t.count.Add(1)

		t.state.Store(int32(StateDelivering))
		err = t.deliver(ev.Edge)
		t.state.Store(int32(StateArmed))

		if err != nil {
			t.err = err
			t.log.WithError(err).Error("Callback failed, monitor stopped")
			return
		}
	}
}
