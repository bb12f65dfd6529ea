// Package edgemonitor watches header pins for level transitions. Every watched
// pin gets its own goroutine which blocks on the line's edge events and hands
// them to a callback.
package edgemonitor

import (
	"errors"

	"github.com/BertoldVdb/go-vgp/lineport"
	"github.com/BertoldVdb/go-vgp/logrusconfig"
	"github.com/BertoldVdb/go-vgp/pincatalog"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

var (
	ErrorAlreadyWatching = errors.New("Pin is already watched")
	ErrorNotWatching     = errors.New("Pin is not watched")
	ErrorClosed          = errors.New("Monitor closed")
)

// Callback receives the edges of a pin. Calls for one pin never overlap;
// calls for different pins may run concurrently.
type Callback func(pin pincatalog.PinID, edge lineport.Edge)

// Monitor owns the watch tasks of all pins.
type Monitor struct {
	lines    lineport.Port
	catalog  *pincatalog.Catalog
	log      *logrus.Entry
	registry registry
}

// New creates a monitor requesting lines from port. log may be nil.
func New(port lineport.Port, log *logrus.Entry) *Monitor {
	if log == nil {
		log = logrusconfig.Discard()
	}

	return &Monitor{
		lines:   port,
		catalog: pincatalog.Default(),
		log:     log,
	}
}

// Watch starts calling cb for every edge of kind on pin. It fails with
// ErrorAlreadyWatching while another task watches the pin. Opening the line
// happens before Watch returns; on failure nothing stays registered.
func (m *Monitor) Watch(pin pincatalog.PinID, kind lineport.Edge, cb Callback) (*Task, error) {
	if !kind.Valid() {
		return nil, lineport.ErrorUnknownEdge
	}
	if cb == nil {
		cb = func(pincatalog.PinID, lineport.Edge) {}
	}

	coord, err := m.catalog.CoordinateOfPin(pin)
	if err != nil {
		return nil, err
	}
	name, _ := m.catalog.NameOf(pin)

	t := newTask(pin, name, coord, kind, cb)
	t.log = m.log.WithFields(logrus.Fields{
		"pin":  int(pin),
		"name": name,
		"edge": kind.String(),
		"task": t.ID.String(),
	})
	t.state.Store(int32(StateRequesting))

	if err := m.registry.reserve(t); err != nil {
		return nil, pkgerrors.Wrapf(err, "watch pin %d", pin)
	}

	err = m.request(t)
	if err != nil {
		m.registry.remove(t)
		t.err = err
		t.state.Store(int32(StateFailed))
		close(t.done)

		t.log.WithError(err).Warn("Could not start monitor")
		return nil, pkgerrors.Wrapf(err, "watch pin %d", pin)
	}

	t.state.Store(int32(StateArmed))
	go t.run(m)

	return t, nil
}

func (m *Monitor) request(t *Task) error {
	chip, err := m.lines.OpenChip(t.Coordinate.Chip)
	if err != nil {
		return err
	}

	line, err := chip.RequestEdges(t.Coordinate.Line, t.Edge)
	if err != nil {
		return multierr.Append(err, chip.Close())
	}

	t.chip = chip
	t.line = line
	return nil
}

func (m *Monitor) finish(t *Task) {
	err := multierr.Append(t.line.Close(), t.chip.Close())
	if err != nil {
		t.releaseErr = err
		t.log.WithError(err).Warn("Releasing line failed")
	}

	m.registry.remove(t)

	if t.err != nil {
		t.state.Store(int32(StateFailed))
	} else {
		t.state.Store(int32(StateCancelled))
		t.log.Debug("Cancelled")
	}
	close(t.done)
}

// Task returns the task watching pin, or nil.
func (m *Monitor) Task(pin pincatalog.PinID) *Task {
	if pin < 1 || pin > pincatalog.NumPins {
		return nil
	}
	return m.registry.lookup(pin)
}

// Active returns all registered tasks in pin order.
func (m *Monitor) Active() []*Task {
	return m.registry.active()
}

// Cancel stops the task watching pin and returns once its line is released.
// It must not be called from that task's callback.
func (m *Monitor) Cancel(pin pincatalog.PinID) error {
	t := m.Task(pin)
	if t == nil {
		return pkgerrors.Wrapf(ErrorNotWatching, "cancel pin %d", pin)
	}

	t.Cancel()
	return nil
}

// Close cancels every task and refuses new watches. It returns the errors of
// releasing the lines.
func (m *Monitor) Close() error {
	tasks := m.registry.close()

	for _, t := range tasks {
		t.Stop()
	}

	var result error
	for _, t := range tasks {
		<-t.Done()
		result = multierr.Append(result, t.releaseErr)
	}
	return result
}
