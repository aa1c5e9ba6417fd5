//go:build linux

package iomux

// New returns the Linux-preferred epoll-backed IOMap, falling back to the
// portable poll(2) implementation if epoll_create1 is unavailable (e.g. a
// restrictive seccomp profile).
func New() IOMap {
	if m, err := newEpollMap(); err == nil {
		return m
	}
	return newPollMap()
}
