//go:build unix && !linux

package iomux

// New returns the portable poll(2)-backed IOMap used on every unix other
// than Linux.
func New() IOMap {
	return newPollMap()
}
