// Package iomux implements the readiness-driven I/O multiplexer the
// scheduler polls between fill and reap phases. It registers child-process
// pipe descriptors for read or write readiness and dispatches to per-task
// handlers, blocking up to a caller-supplied deadline.
package iomux

import "time"

// Handler is invoked when fd becomes ready. It returns nothing: a handler
// deals with its own I/O errors (unregistering and closing its pipe where
// needed), and iomux only reports readiness.
type Handler func(fd int)

// IOMap registers read/write interest on file descriptors and dispatches
// readiness events to their handlers. Two implementations satisfy this
// contract - an epoll-backed one on Linux, and a poll(2)-based one
// everywhere else - chosen by New at construction time.
//
// Dispatch order within one Poll call is unspecified, but every ready fd's
// handler is invoked at most once per call. Poll returns early the moment
// at least one event has been dispatched, when the timeout elapses, or
// when the wait is interrupted by a signal (in which case it returns
// having dispatched nothing, never propagating the interruption). When both
// the read and write sets are empty, Poll returns immediately.
type IOMap interface {
	RegisterRead(fd int, h Handler)
	RegisterWrite(fd int, h Handler)
	Unregister(fd int)
	Poll(timeout time.Duration) error
	// Empty reports whether no descriptors are currently registered.
	Empty() bool
}
