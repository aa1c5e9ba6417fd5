// Package askpass implements the local-only password side-channel used to
// answer SSH password prompts out-of-band: a unix-domain socket server
// that hands back an in-memory password once per connection, and the
// client-side helper logic a small SSH_ASKPASS executable runs to fetch
// it.
package askpass

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
)

// Server is a process-local endpoint bound to one Manager run. On each
// accepted connection it writes the in-memory password and closes.
type Server struct {
	listener net.Listener
	path     string
	password []byte
	log      *slog.Logger
	done     chan struct{}
}

// Start binds a private unix-domain socket under a temp directory and
// begins accepting connections in a background goroutine. The socket path
// is exported to children as PARALLAX_ASKPASS_SOCKET.
func Start(password []byte, log *slog.Logger) (*Server, error) {
	if log == nil {
		log = slog.Default()
	}
	dir, err := os.MkdirTemp("", "parallax-askpass-")
	if err != nil {
		return nil, fmt.Errorf("askpass: create socket dir: %w", err)
	}
	path := filepath.Join(dir, "askpass.sock")

	ln, err := net.Listen("unix", path)
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("askpass: bind socket: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		ln.Close()
		os.RemoveAll(dir)
		return nil, fmt.Errorf("askpass: chmod socket: %w", err)
	}

	s := &Server{
		listener: ln,
		path:     path,
		password: password,
		log:      log,
		done:     make(chan struct{}),
	}
	go s.acceptLoop()
	return s, nil
}

// SocketPath is the unix-domain socket address to export as
// PARALLAX_ASKPASS_SOCKET.
func (s *Server) SocketPath() string { return s.path }

func (s *Server) acceptLoop() {
	defer close(s.done)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		conn.Write(s.password)
		conn.Close()
	}
}

// Stop closes the listener and removes the socket's temp directory.
func (s *Server) Stop() {
	s.listener.Close()
	<-s.done
	os.RemoveAll(filepath.Dir(s.path))
}
