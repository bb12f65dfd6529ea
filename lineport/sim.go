package lineport

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrorBusy      = errors.New("Line busy")
	ErrorNoChip    = errors.New("No such chip")
	ErrorLineRange = errors.New("Line out of range")
)

type simKey struct {
	chip int
	line int
}

// Sim is a Port simulating GPIO controllers. Level changes made with SetLevel
// are reported to edge watchers like the kernel would. It is safe for
// concurrent use.
type Sim struct {
	sync.Mutex

	// NumChips and NumLines default to 5 and 32
	NumChips int
	NumLines int

	// FailOpen and FailRequest inject errors when they return non-nil
	FailOpen    func(chip int) error
	FailRequest func(chip int, line int) error

	levels    map[simKey]int
	requested map[simKey]bool
	watchers  map[simKey]*simEventLine
	openChips int
	started   chan struct{}
	clock     time.Duration
}

func (s *Sim) init() {
	if s.levels == nil {
		s.levels = make(map[simKey]int)
		s.requested = make(map[simKey]bool)
		s.watchers = make(map[simKey]*simEventLine)
		s.started = make(chan struct{})
	}
}

func (s *Sim) limits() (int, int) {
	chips, lines := s.NumChips, s.NumLines
	if chips == 0 {
		chips = 5
	}
	if lines == 0 {
		lines = 32
	}
	return chips, lines
}

func (s *Sim) OpenChip(chip int) (Chip, error) {
	s.Lock()
	defer s.Unlock()
	s.init()

	chips, _ := s.limits()
	if chip < 0 || chip >= chips {
		return nil, openError(chip, ErrorNoChip)
	}
	if s.FailOpen != nil {
		if err := s.FailOpen(chip); err != nil {
			return nil, openError(chip, err)
		}
	}

	s.openChips++
	return &simChip{sim: s, chip: chip}, nil
}

// Level returns the current level of a line.
func (s *Sim) Level(chip int, line int) int {
	s.Lock()
	defer s.Unlock()
	s.init()

	return s.levels[simKey{chip, line}]
}

// SetLevel changes the level of a line as if driven externally. A watcher of
// the line receives an edge if the level changed and the edge matches.
func (s *Sim) SetLevel(chip int, line int, level int) {
	if level != 0 {
		level = 1
	}

	s.Lock()
	defer s.Unlock()
	s.init()

	key := simKey{chip, line}
	old := s.levels[key]
	s.levels[key] = level
	if old == level {
		return
	}

	edge := Falling
	if level == 1 {
		edge = Rising
	}
	s.deliverWithoutLock(key, edge)
}

// Inject delivers an edge event to the watcher of a line without changing its
// level. It returns false if nobody watches that edge.
func (s *Sim) Inject(chip int, line int, edge Edge) bool {
	s.Lock()
	defer s.Unlock()
	s.init()

	return s.deliverWithoutLock(simKey{chip, line}, edge)
}

func (s *Sim) deliverWithoutLock(key simKey, edge Edge) bool {
	w := s.watchers[key]
	if w == nil || w.kind&edge == 0 {
		return false
	}

	s.clock += time.Microsecond
	select {
	case w.events <- Event{Edge: edge, Timestamp: s.clock}:
		return true
	default:
		return false
	}
}

// FailWait makes the pending or next WaitEvent of a watched line return err.
func (s *Sim) FailWait(chip int, line int, err error) bool {
	s.Lock()
	defer s.Unlock()
	s.init()

	w := s.watchers[simKey{chip, line}]
	if w == nil {
		return false
	}
	select {
	case w.fail <- err:
		return true
	default:
		return false
	}
}

// Watching reports if a line is currently requested for edge events.
func (s *Sim) Watching(chip int, line int) bool {
	s.Lock()
	defer s.Unlock()
	s.init()

	return s.watchers[simKey{chip, line}] != nil
}

// WaitWatching blocks until a line is requested for edge events or ctx is done.
func (s *Sim) WaitWatching(ctx context.Context, chip int, line int) error {
	for {
		s.Lock()
		s.init()
		watching := s.watchers[simKey{chip, line}] != nil
		started := s.started
		s.Unlock()

		if watching {
			return nil
		}

		select {
		case <-started:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Outstanding returns the number of open chips and requested lines. Both are
// zero when every resource was released.
func (s *Sim) Outstanding() (chips int, lines int) {
	s.Lock()
	defer s.Unlock()

	return s.openChips, len(s.requested)
}

type simChip struct {
	sim    *Sim
	chip   int
	closed bool
}

func (c *simChip) request(op string, line int) (simKey, error) {
	s := c.sim
	_, lines := s.limits()

	key := simKey{c.chip, line}
	if c.closed {
		return key, requestError(op, c.chip, line, ErrorClosed)
	}
	if line < 0 || line >= lines {
		return key, requestError(op, c.chip, line, ErrorLineRange)
	}
	if s.requested[key] {
		return key, requestError(op, c.chip, line, ErrorBusy)
	}
	if s.FailRequest != nil {
		if err := s.FailRequest(c.chip, line); err != nil {
			return key, requestError(op, c.chip, line, err)
		}
	}

	s.requested[key] = true
	return key, nil
}

func (c *simChip) RequestValue(line int, mode Mode, value int) (ValueLine, error) {
	s := c.sim
	s.Lock()
	defer s.Unlock()

	key, err := c.request("request", line)
	if err != nil {
		return nil, err
	}

	if mode == Output {
		if value != 0 {
			value = 1
		}
		s.levels[key] = value
	}
	return &simValueLine{sim: s, key: key, output: mode == Output}, nil
}

func (c *simChip) RequestEdges(line int, kind Edge) (EventLine, error) {
	s := c.sim
	s.Lock()
	defer s.Unlock()

	if !kind.Valid() {
		return nil, requestError("watch", c.chip, line, ErrorUnknownEdge)
	}

	key, err := c.request("watch", line)
	if err != nil {
		return nil, err
	}

	w := &simEventLine{
		sim:    s,
		key:    key,
		kind:   kind,
		events: make(chan Event, 64),
		fail:   make(chan error, 1),
		closed: make(chan struct{}),
	}
	s.watchers[key] = w

	close(s.started)
	s.started = make(chan struct{})

	return w, nil
}

func (c *simChip) Close() error {
	s := c.sim
	s.Lock()
	defer s.Unlock()

	if c.closed {
		return ErrorClosed
	}
	c.closed = true
	s.openChips--
	return nil
}

type simValueLine struct {
	sim    *Sim
	key    simKey
	output bool
	closed bool
}

func (l *simValueLine) Value() (int, error) {
	l.sim.Lock()
	defer l.sim.Unlock()

	if l.closed {
		return 0, ErrorClosed
	}
	return l.sim.levels[l.key], nil
}

func (l *simValueLine) SetValue(value int) error {
	l.sim.Lock()
	defer l.sim.Unlock()

	if l.closed {
		return ErrorClosed
	}
	if !l.output {
		return requestError("set", l.key.chip, l.key.line, ErrorBusy)
	}
	if value != 0 {
		value = 1
	}
	l.sim.levels[l.key] = value
	return nil
}

func (l *simValueLine) Close() error {
	l.sim.Lock()
	defer l.sim.Unlock()

	if l.closed {
		return ErrorClosed
	}
	l.closed = true
	delete(l.sim.requested, l.key)
	return nil
}

type simEventLine struct {
	sim    *Sim
	key    simKey
	kind   Edge
	events chan Event
	fail   chan error
	closed chan struct{}
}

func (w *simEventLine) WaitEvent(ctx context.Context) (Event, error) {
	/* Prefer an already queued stop over queued events */
	if err := ctx.Err(); err != nil {
		return Event{}, err
	}

	select {
	case ev := <-w.events:
		return ev, nil
	case err := <-w.fail:
		return Event{}, waitError(w.key.chip, w.key.line, err)
	case <-w.closed:
		return Event{}, waitError(w.key.chip, w.key.line, ErrorClosed)
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}

func (w *simEventLine) Close() error {
	s := w.sim
	s.Lock()
	defer s.Unlock()

	select {
	case <-w.closed:
		return ErrorClosed
	default:
	}
	close(w.closed)

	delete(s.requested, w.key)
	if s.watchers[w.key] == w {
		delete(s.watchers, w.key)
	}
	return nil
}
