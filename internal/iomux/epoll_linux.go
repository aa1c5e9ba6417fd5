//go:build linux

package iomux

import (
	"errors"
	"time"

	"golang.org/x/sys/unix"
)

// epollMap is the Linux-preferred level-triggered implementation. It keeps
// the same registration semantics as pollMap but avoids rebuilding the
// interest list on every Poll call.
type epollMap struct {
	fd      int
	readers map[int]Handler
	writers map[int]Handler
	events  map[int]uint32
}

func newEpollMap() (*epollMap, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &epollMap{
		fd:      fd,
		readers: make(map[int]Handler),
		writers: make(map[int]Handler),
		events:  make(map[int]uint32),
	}, nil
}

func (m *epollMap) ctl(fd int, add uint32) error {
	prev, exists := m.events[fd]
	m.events[fd] = prev | add
	ev := unix.EpollEvent{Fd: int32(fd), Events: m.events[fd]}
	op := unix.EPOLL_CTL_MOD
	if !exists {
		op = unix.EPOLL_CTL_ADD
	}
	return unix.EpollCtl(m.fd, op, fd, &ev)
}

func (m *epollMap) RegisterRead(fd int, h Handler) {
	m.readers[fd] = h
	_ = m.ctl(fd, unix.EPOLLIN)
}

func (m *epollMap) RegisterWrite(fd int, h Handler) {
	m.writers[fd] = h
	_ = m.ctl(fd, unix.EPOLLOUT)
}

func (m *epollMap) Unregister(fd int) {
	if _, ok := m.events[fd]; ok {
		unix.EpollCtl(m.fd, unix.EPOLL_CTL_DEL, fd, nil)
		delete(m.events, fd)
	}
	delete(m.readers, fd)
	delete(m.writers, fd)
}

func (m *epollMap) Empty() bool {
	return len(m.readers) == 0 && len(m.writers) == 0
}

func (m *epollMap) Poll(timeout time.Duration) error {
	if m.Empty() {
		return nil
	}

	events := make([]unix.EpollEvent, len(m.events))
	n, err := unix.EpollWait(m.fd, events, int(timeout.Milliseconds()))
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return nil
		}
		return err
	}

	for i := 0; i < n; i++ {
		fd := int(events[i].Fd)
		flags := events[i].Events
		if flags&(unix.EPOLLIN|unix.EPOLLHUP|unix.EPOLLERR) != 0 {
			if h, ok := m.readers[fd]; ok {
				h(fd)
			}
		}
		if flags&(unix.EPOLLOUT|unix.EPOLLERR) != 0 {
			if h, ok := m.writers[fd]; ok {
				h(fd)
			}
		}
	}
	return nil
}

func (m *epollMap) Close() error {
	return unix.Close(m.fd)
}
