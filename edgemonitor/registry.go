package edgemonitor

import (
	"sync"

	"github.com/BertoldVdb/go-vgp/pincatalog"
)

/* registry holds at most one task per header position. Slot 0 is unused. */
type registry struct {
	sync.Mutex

	slots  [pincatalog.NumPins + 1]*Task
	closed bool
}

func checkPin(pin pincatalog.PinID) {
	assert(pin >= 1 && pin <= pincatalog.NumPins, "Pin out of range")
}

func (r *registry) reserve(t *Task) error {
	checkPin(t.Pin)

	r.Lock()
	defer r.Unlock()

	if r.closed {
		return ErrorClosed
	}
	if r.slots[t.Pin] != nil {
		return ErrorAlreadyWatching
	}
	r.slots[t.Pin] = t
	return nil
}

func (r *registry) lookup(pin pincatalog.PinID) *Task {
	checkPin(pin)

	r.Lock()
	defer r.Unlock()

	return r.slots[pin]
}

func (r *registry) remove(t *Task) {
	checkPin(t.Pin)

	r.Lock()
	defer r.Unlock()

	assert(r.slots[t.Pin] == t, "Task was not registered")
	r.slots[t.Pin] = nil
}

func (r *registry) active() []*Task {
	r.Lock()
	defer r.Unlock()

	var result []*Task
	for _, t := range r.slots {
		if t != nil {
			result = append(result, t)
		}
	}
	return result
}

/* close refuses further reservations and returns the tasks still registered */
func (r *registry) close() []*Task {
	r.Lock()
	r.closed = true
	r.Unlock()

	return r.active()
}

func assert(condition bool, reason string) {
	if !condition {
		panic(reason)
	}
}
