//go:build unix

package iomux

import (
	"errors"
	"time"

	"golang.org/x/sys/unix"
)

// pollMap is the readiness-set implementation, portable to every unix
// iomux runs on via poll(2). It mirrors the Python source's base IOMap
// class (built on select.select); Go's runtime-level fd limits make
// poll(2) the more idiomatic portable choice here than raw select(2).
type pollMap struct {
	readers map[int]Handler
	writers map[int]Handler
}

func newPollMap() *pollMap {
	return &pollMap{
		readers: make(map[int]Handler),
		writers: make(map[int]Handler),
	}
}

func (m *pollMap) RegisterRead(fd int, h Handler)  { m.readers[fd] = h }
func (m *pollMap) RegisterWrite(fd int, h Handler) { m.writers[fd] = h }

func (m *pollMap) Unregister(fd int) {
	delete(m.readers, fd)
	delete(m.writers, fd)
}

func (m *pollMap) Empty() bool {
	return len(m.readers) == 0 && len(m.writers) == 0
}

func (m *pollMap) Poll(timeout time.Duration) error {
	if m.Empty() {
		return nil
	}

	fds := make([]unix.PollFd, 0, len(m.readers)+len(m.writers))
	index := make(map[int]int, cap(fds))
	entry := func(fd int) *unix.PollFd {
		if i, ok := index[fd]; ok {
			return &fds[i]
		}
		fds = append(fds, unix.PollFd{Fd: int32(fd)})
		index[fd] = len(fds) - 1
		return &fds[len(fds)-1]
	}
	for fd := range m.readers {
		entry(fd).Events |= unix.POLLIN
	}
	for fd := range m.writers {
		entry(fd).Events |= unix.POLLOUT
	}

	_, err := unix.Poll(fds, int(timeout.Milliseconds()))
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return nil
		}
		return err
	}

	// Hang-up is delivered as read-readiness so the handler observes EOF on
	// its next read syscall; error conditions on the write side are
	// delivered to the write handler for the same reason.
	for fd, pfd := range fds {
		_ = fd
		if pfd.Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0 {
			if h, ok := m.readers[int(pfd.Fd)]; ok {
				h(int(pfd.Fd))
			}
		}
		if pfd.Revents&(unix.POLLOUT|unix.POLLERR) != 0 {
			if h, ok := m.writers[int(pfd.Fd)]; ok {
				h(int(pfd.Fd))
			}
		}
	}
	return nil
}
