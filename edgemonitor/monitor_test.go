package edgemonitor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/BertoldVdb/go-vgp/lineport"
	"github.com/BertoldVdb/go-vgp/pincatalog"
)

/* Pin 7 is 4D1: chip 4, line 25. Pin 11 is 4D6: chip 4, line 30. */
const (
	testPin  = pincatalog.PinID(7)
	testChip = 4
	testLine = 25
)

func check(t *testing.T, condition bool, reason ...interface{}) {
	if !condition {
		t.Error(reason...)
		t.FailNow()
	}
}

func checkReleased(t *testing.T, s *lineport.Sim) {
	chips, lines := s.Outstanding()
	check(t, chips == 0 && lines == 0, "Resources leaked", chips, lines)
}

func waitDone(t *testing.T, task *Task) {
	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatal("Task did not stop")
	}
}

func nop(pincatalog.PinID, lineport.Edge) {}

func TestWatchTwice(t *testing.T) {
	s := &lineport.Sim{}
	m := New(s, nil)

	task, err := m.Watch(testPin, lineport.Both, nop)
	check(t, err == nil, err)
	check(t, task.State() == StateArmed || task.State() == StateDelivering, "Not armed", task.State())
	check(t, task.Name == "4D1" && task.Coordinate == pincatalog.Coordinate{Chip: testChip, Line: testLine}, "Wrong target", task.Name)
	check(t, s.Watching(testChip, testLine), "Line not requested")

	_, err = m.Watch(testPin, lineport.Rising, nop)
	check(t, errors.Is(err, ErrorAlreadyWatching), "Second watch accepted", err)
	check(t, m.Task(testPin) == task, "Registry changed by failed watch")

	check(t, m.Cancel(testPin) == nil, "Cancel failed")
	check(t, task.State() == StateCancelled, "Wrong state", task.State())
	check(t, task.Err() == nil, "Cancelled task has error", task.Err())
	check(t, m.Task(testPin) == nil, "Registry not cleared")
	checkReleased(t, s)

	task, err = m.Watch(testPin, lineport.Rising, nop)
	check(t, err == nil, "Watch after cancel failed", err)
	check(t, m.Cancel(testPin) == nil, "Cancel failed")
	checkReleased(t, s)
}

func TestCancelNotWatching(t *testing.T) {
	m := New(&lineport.Sim{}, nil)

	err := m.Cancel(testPin)
	check(t, errors.Is(err, ErrorNotWatching), "Cancel of idle pin accepted", err)

	err = m.Cancel(99)
	check(t, errors.Is(err, ErrorNotWatching), "Cancel of invalid pin accepted", err)
}

func TestWatchInvalid(t *testing.T) {
	s := &lineport.Sim{}
	m := New(s, nil)

	_, err := m.Watch(9, lineport.Both, nop)
	check(t, errors.Is(err, pincatalog.ErrorNotAnIoPin), "GND accepted", err)

	_, err = m.Watch(41, lineport.Both, nop)
	check(t, errors.Is(err, pincatalog.ErrorOutOfRange), "Pin 41 accepted", err)

	_, err = m.Watch(testPin, lineport.Edge(0), nop)
	check(t, errors.Is(err, lineport.ErrorUnknownEdge), "Edge 0 accepted", err)

	check(t, len(m.Active()) == 0, "Something registered")
	checkReleased(t, s)
}

func TestOrdering(t *testing.T) {
	s := &lineport.Sim{}
	m := New(s, nil)

	var mutex sync.Mutex
	var got []lineport.Edge
	var running, overlap int32
	var wrongPin atomic.Int32
	delivered := make(chan (struct{}), 8)

	task, err := m.Watch(testPin, lineport.Both, func(pin pincatalog.PinID, edge lineport.Edge) {
		if atomic.AddInt32(&running, 1) > 1 {
			atomic.StoreInt32(&overlap, 1)
		}
		if pin != testPin {
			wrongPin.Store(int32(pin))
		}

		time.Sleep(20 * time.Millisecond)

		mutex.Lock()
		got = append(got, edge)
		mutex.Unlock()

		atomic.AddInt32(&running, -1)
		delivered <- struct{}{}
	})
	check(t, err == nil, err)

	s.SetLevel(testChip, testLine, 1)
	s.SetLevel(testChip, testLine, 0)

	for i := 0; i < 2; i++ {
		select {
		case <-delivered:
		case <-time.After(time.Second):
			t.Fatal("Callback not called")
		}
	}

	check(t, m.Cancel(testPin) == nil, "Cancel failed")

	mutex.Lock()
	defer mutex.Unlock()
	check(t, len(got) == 2 && got[0] == lineport.Rising && got[1] == lineport.Falling, "Wrong events", got)
	check(t, atomic.LoadInt32(&overlap) == 0, "Callbacks overlapped")
	check(t, wrongPin.Load() == 0, "Callback got wrong pin", wrongPin.Load())
	check(t, task.Events() == 2, "Wrong event count", task.Events())
	check(t, task.LatestEvent() == lineport.Falling, "Wrong latest event", task.LatestEvent())
}

func TestPinsRunConcurrently(t *testing.T) {
	s := &lineport.Sim{}
	m := New(s, nil)
	defer m.Close()

	release := make(chan (struct{}))
	entered := make(chan (pincatalog.PinID), 2)
	cb := func(pin pincatalog.PinID, edge lineport.Edge) {
		entered <- pin
		<-release
	}

	_, err := m.Watch(7, lineport.Rising, cb)
	check(t, err == nil, err)
	_, err = m.Watch(11, lineport.Rising, cb)
	check(t, err == nil, err)

	s.SetLevel(4, 25, 1)
	s.SetLevel(4, 30, 1)

	/* Both callbacks are inside at the same time */
	for i := 0; i < 2; i++ {
		select {
		case <-entered:
		case <-time.After(time.Second):
			t.Fatal("Callbacks did not run concurrently")
		}
	}
	close(release)
}

func TestCancelBlockedWait(t *testing.T) {
	s := &lineport.Sim{}
	m := New(s, nil)

	task, err := m.Watch(testPin, lineport.Falling, nop)
	check(t, err == nil, err)

	/* Give the task time to block in the wait */
	time.Sleep(20 * time.Millisecond)

	cancelled := make(chan (error), 1)
	go func() {
		cancelled <- m.Cancel(testPin)
	}()

	select {
	case err := <-cancelled:
		check(t, err == nil, err)
	case <-time.After(time.Second):
		t.Fatal("Cancel deadlocked")
	}

	check(t, task.State() == StateCancelled, "Wrong state", task.State())
	check(t, !s.Watching(testChip, testLine), "Line still requested")
	checkReleased(t, s)
}

func TestCancelWaitsForCallback(t *testing.T) {
	s := &lineport.Sim{}
	m := New(s, nil)

	entered := make(chan (struct{}))
	release := make(chan (struct{}))
	task, err := m.Watch(testPin, lineport.Both, func(pincatalog.PinID, lineport.Edge) {
		close(entered)
		<-release
	})
	check(t, err == nil, err)

	s.SetLevel(testChip, testLine, 1)
	<-entered
	check(t, task.State() == StateDelivering, "Not delivering", task.State())

	cancelled := make(chan (struct{}))
	go func() {
		m.Cancel(testPin)
		close(cancelled)
	}()

	select {
	case <-cancelled:
		t.Fatal("Cancel interrupted the callback")
	case <-time.After(30 * time.Millisecond):
	}
	check(t, s.Watching(testChip, testLine), "Line released during callback")

	/* Edges arriving now are not delivered anymore */
	s.SetLevel(testChip, testLine, 0)
	close(release)

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("Cancel did not return")
	}
	check(t, task.Events() == 1, "Edge delivered after cancel", task.Events())
	checkReleased(t, s)
}

func TestOpenFailure(t *testing.T) {
	fail := errors.New("ENOENT")
	s := &lineport.Sim{
		FailOpen: func(chip int) error {
			return fail
		},
	}
	m := New(s, nil)

	_, err := m.Watch(testPin, lineport.Both, nop)
	check(t, errors.Is(err, lineport.ErrorLineOpen), "Open error lost", err)
	check(t, errors.Is(err, fail), "Cause lost", err)
	check(t, m.Task(testPin) == nil, "Failed watch registered")
	checkReleased(t, s)

	s.Lock()
	s.FailOpen = nil
	s.Unlock()

	_, err = m.Watch(testPin, lineport.Both, nop)
	check(t, err == nil, "Watch after failure", err)
	check(t, m.Close() == nil, "Close failed")
}

func TestRequestFailure(t *testing.T) {
	s := &lineport.Sim{
		FailRequest: func(chip int, line int) error {
			return errors.New("EBUSY")
		},
	}
	m := New(s, nil)

	_, err := m.Watch(testPin, lineport.Rising, nop)
	check(t, errors.Is(err, lineport.ErrorLineRequest), "Request error lost", err)
	check(t, m.Task(testPin) == nil, "Failed watch registered")
	checkReleased(t, s)
}

func TestWaitFailure(t *testing.T) {
	s := &lineport.Sim{}
	m := New(s, nil)

	task, err := m.Watch(testPin, lineport.Both, nop)
	check(t, err == nil, err)

	check(t, s.FailWait(testChip, testLine, errors.New("EIO")), "Could not inject failure")
	waitDone(t, task)

	check(t, errors.Is(task.Err(), lineport.ErrorEventWait), "Wrong error", task.Err())
	check(t, task.State() == StateFailed, "Wrong state", task.State())
	check(t, m.Task(testPin) == nil, "Slot not cleared")
	checkReleased(t, s)

	err = m.Cancel(testPin)
	check(t, errors.Is(err, ErrorNotWatching), "Cancel of failed task", err)

	_, err = m.Watch(testPin, lineport.Both, nop)
	check(t, err == nil, "Rewatch failed", err)
	m.Close()
}

func TestCallbackPanic(t *testing.T) {
	s := &lineport.Sim{}
	m := New(s, nil)

	task, err := m.Watch(testPin, lineport.Rising, func(pincatalog.PinID, lineport.Edge) {
		panic("broken consumer")
	})
	check(t, err == nil, err)

	s.SetLevel(testChip, testLine, 1)
	waitDone(t, task)

	check(t, task.Err() != nil, "Panic not reported")
	check(t, m.Task(testPin) == nil, "Slot not cleared")
	checkReleased(t, s)
}

func TestStopFromCallback(t *testing.T) {
	s := &lineport.Sim{}
	m := New(s, nil)

	var task *Task
	ready := make(chan (struct{}))
	task, err := m.Watch(testPin, lineport.Rising, func(pincatalog.PinID, lineport.Edge) {
		<-ready
		task.Stop()
	})
	check(t, err == nil, err)
	close(ready)

	s.SetLevel(testChip, testLine, 1)
	waitDone(t, task)
	check(t, task.Err() == nil && task.State() == StateCancelled, "Stop from callback failed", task.Err())
	checkReleased(t, s)
}

func TestWaitEdge(t *testing.T) {
	s := &lineport.Sim{}
	m := New(s, nil)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if s.WaitWatching(ctx, testChip, testLine) == nil {
			s.SetLevel(testChip, testLine, 1)
		}
	}()

	edge, err := m.WaitEdge(context.Background(), testPin, lineport.Both)
	check(t, err == nil && edge == lineport.Rising, "Wrong edge", edge, err)
	check(t, m.Task(testPin) == nil, "Watch not cancelled")
	checkReleased(t, s)
}

func TestWaitEdgeTimeout(t *testing.T) {
	s := &lineport.Sim{}
	m := New(s, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := m.WaitEdge(ctx, testPin, lineport.Falling)
	check(t, err == context.DeadlineExceeded, "No timeout", err)
	check(t, m.Task(testPin) == nil, "Watch not cancelled")
	checkReleased(t, s)

	_, err = m.WaitEdge(context.Background(), 1, lineport.Falling)
	check(t, errors.Is(err, pincatalog.ErrorNotAnIoPin), "3.3V accepted", err)
}

func TestWaitEdgeFailure(t *testing.T) {
	s := &lineport.Sim{}
	m := New(s, nil)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if s.WaitWatching(ctx, testChip, testLine) == nil {
			s.FailWait(testChip, testLine, errors.New("EIO"))
		}
	}()

	_, err := m.WaitEdge(context.Background(), testPin, lineport.Both)
	check(t, errors.Is(err, lineport.ErrorEventWait), "Wait error lost", err)
	checkReleased(t, s)
}

func TestClose(t *testing.T) {
	s := &lineport.Sim{}
	m := New(s, nil)

	var tasks []*Task
	for _, pin := range []pincatalog.PinID{3, 5, 7, 40} {
		task, err := m.Watch(pin, lineport.Both, nop)
		check(t, err == nil, pin, err)
		tasks = append(tasks, task)
	}
	check(t, len(m.Active()) == 4, "Wrong active count")

	check(t, m.Close() == nil, "Close failed")
	for _, task := range tasks {
		check(t, task.State() == StateCancelled, "Task still running", task.Pin)
	}
	check(t, len(m.Active()) == 0, "Tasks left")
	checkReleased(t, s)

	_, err := m.Watch(testPin, lineport.Both, nop)
	check(t, errors.Is(err, ErrorClosed), "Watch after close", err)
}
