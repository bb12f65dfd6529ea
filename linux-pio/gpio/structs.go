package gpio

import (
	"os"
	"sync"
)

type Chip struct {
	file      *os.File
	chipInfo  ChipInfo
	lineNames map[string](uint32)
}

type ChipInfo struct {
	Name  string
	Label string
	Lines uint32
}

type Lines struct {
	file     *os.File
	numLines uint32
}

// EventLine is a line requested for edge events.
type EventLine struct {
	mutex  sync.Mutex
	fd     int
	wakeFd int
	offset uint32
	closed bool
}

// Event is one edge seen on an EventLine. Timestamp is in nanoseconds.
type Event struct {
	Timestamp uint64
	Type      EventType
}

type LineInfo struct {
	LineOffset uint32
	Flags      LineFlag
	Name       string
	Consumer   string
}

type Line struct {
	Offset uint32
	Name   string
}

type LineRequest struct {
	Line         Line
	DefaultValue uint8
}
