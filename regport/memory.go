package regport

import (
	"errors"
	"sync"
)

// ErrorUnmapped is returned by a strict Memory for addresses that were never set.
var ErrorUnmapped = errors.New("Address not mapped")

// Memory is a Port backed by a map. It is used for dry runs and tests.
type Memory struct {
	sync.Mutex

	// Strict makes reads of unknown addresses fail instead of returning 0
	Strict bool

	// Fail, if set, is consulted before each access. A non-nil result fails the access.
	Fail func(op string, address uint32) error

	words  map[uint32]uint32
	writes []Access
}

// Access records a write to a Memory.
type Access struct {
	Address uint32
	Value   uint32
}

// Set stores a value without recording it as a write.
func (m *Memory) Set(address uint32, value uint32) {
	m.Lock()
	defer m.Unlock()

	if m.words == nil {
		m.words = make(map[uint32]uint32)
	}
	m.words[address] = value
}

// Get returns the stored value of an address.
func (m *Memory) Get(address uint32) uint32 {
	m.Lock()
	defer m.Unlock()

	return m.words[address]
}

// Writes returns all writes in order.
func (m *Memory) Writes() []Access {
	m.Lock()
	defer m.Unlock()

	return append([]Access(nil), m.writes...)
}

func (m *Memory) Read(address uint32) (uint32, error) {
	m.Lock()
	defer m.Unlock()

	if m.Fail != nil {
		if err := m.Fail("read", address); err != nil {
			return 0, readError(address, err)
		}
	}

	value, ok := m.words[address]
	if !ok && m.Strict {
		return 0, readError(address, ErrorUnmapped)
	}
	return value, nil
}

func (m *Memory) Write(address uint32, value uint32) error {
	m.Lock()
	defer m.Unlock()

	if m.Fail != nil {
		if err := m.Fail("write", address); err != nil {
			return writeError(address, err)
		}
	}

	if m.words == nil {
		m.words = make(map[uint32]uint32)
	}
	m.words[address] = value
	m.writes = append(m.writes, Access{Address: address, Value: value})
	return nil
}
