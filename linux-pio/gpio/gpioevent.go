//go:build linux

package gpio

import (
	"context"
	"encoding/binary"
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

var (
	ErrorEventClosed = errors.New("EventLine closed")
	ErrorShortEvent  = errors.New("Short event read")
	ErrorHangup      = errors.New("Event file descriptor hung up")
)

func newEventLine(fd int, offset uint32) (*EventLine, error) {
	wakeFd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}

	return &EventLine{
		fd:     fd,
		wakeFd: wakeFd,
		offset: offset,
	}, nil
}

// Offset returns the line offset inside the chip.
func (e *EventLine) Offset() uint32 {
	return e.offset
}

func (e *EventLine) interrupt() {
	var one [8]byte
	binary.NativeEndian.PutUint64(one[:], 1)

	e.mutex.Lock()
	defer e.mutex.Unlock()

	if !e.closed {
		unix.Write(e.wakeFd, one[:])
	}
}

func (e *EventLine) drainWake() {
	var buf [8]byte
	unix.Read(e.wakeFd, buf[:])
}

func (e *EventLine) fds() (int, int, bool) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	return e.fd, e.wakeFd, e.closed
}

// ReadEvent blocks until the next edge. It returns ctx.Err() as soon as ctx is
// done, even if no edge ever arrives.
func (e *EventLine) ReadEvent(ctx context.Context) (Event, error) {
	stop := context.AfterFunc(ctx, e.interrupt)
	defer stop()

	for {
		if err := ctx.Err(); err != nil {
			return Event{}, err
		}

		fd, wakeFd, closed := e.fds()
		if closed {
			return Event{}, ErrorEventClosed
		}

		pfd := []unix.PollFd{
			{Fd: int32(fd), Events: unix.POLLIN},
			{Fd: int32(wakeFd), Events: unix.POLLIN},
		}
		_, err := unix.Poll(pfd, -1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return Event{}, os.NewSyscallError("poll", err)
		}

		if pfd[1].Revents != 0 {
			e.drainWake()
			continue
		}

		if pfd[0].Revents&unix.POLLIN != 0 {
			var buf [eventDataSize]byte
			n, err := unix.Read(fd, buf[:])
			if err == unix.EINTR || err == unix.EAGAIN {
				continue
			}
			if err != nil {
				return Event{}, os.NewSyscallError("read", err)
			}
			return decodeEvent(buf[:n])
		}

		if pfd[0].Revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
			return Event{}, ErrorHangup
		}
	}
}

// Close releases the line. It must not race a pending ReadEvent: cancel the
// context of the reader and wait for it to return first.
func (e *EventLine) Close() error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.closed {
		return ErrorEventClosed
	}
	e.closed = true

	err := unix.Close(e.fd)
	if err2 := unix.Close(e.wakeFd); err == nil {
		err = err2
	}
	return err
}

func decodeEvent(buf []byte) (Event, error) {
	if len(buf) < 12 {
		return Event{}, ErrorShortEvent
	}

	return Event{
		Timestamp: binary.NativeEndian.Uint64(buf[0:8]),
		Type:      EventType(binary.NativeEndian.Uint32(buf[8:12])),
	}, nil
}
