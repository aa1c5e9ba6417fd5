// Package scheduler implements the Manager: it owns the queue of pending
// tasks, enforces a parallelism cap, drives the I/O multiplexer with
// timeouts derived from the soonest task deadline, reaps completed tasks,
// handles interruption, and aggregates results via a pluggable callback.
package scheduler

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/kgronlund/parallax/internal/askpass"
	"github.com/kgronlund/parallax/internal/iomux"
	"github.com/kgronlund/parallax/internal/task"
)

// DefaultParallelism and DefaultTimeout mirror parallax.py's module-level
// defaults.
const (
	DefaultParallelism = 32
	DefaultTimeout     = 0 // disabled
)

// FatalError is raised only for infrastructure failures distinct from
// per-host faults, e.g. the askpass socket failing to bind.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return "parallax: fatal error: " + e.Err.Error() }
func (e *FatalError) Unwrap() error { return e.Err }

// Interrupted is returned by Run when it unwinds in response to Interrupt
// being called mid-run, after every task has been cleaned up.
var Interrupted = errors.New("parallax: interrupted")

// Callbacks is the aggregation contract the Manager drives. Finished is
// called exactly once per task in completion order (n is 1-based); Result
// is called once at the end of Run and becomes Run's return value.
// Callbacks may read any task field but must not mutate Manager state.
type Callbacks interface {
	Finished(t *task.Task, n int)
	Result(m *Manager) any
}

// Manager schedules a fixed batch of tasks with bounded concurrency.
type Manager struct {
	Limit     int
	Timeout   time.Duration
	Askpass   bool
	OutDir    string
	ErrDir    string
	StatusDir string // optional: per-task {host}.json pid/start-time files for `parallax status`

	Password []byte

	Callbacks Callbacks

	log *slog.Logger

	iomap iomux.IOMap

	pending   []*task.Task
	running   []*task.Task
	done      []*task.Task
	saveTasks []*task.Task

	taskCount int

	writer        *task.FileWriter
	askpassServer *askpass.Server
	askpassSocket string

	interruptCh chan struct{}
}

// New builds a Manager. limit<=0 falls back to DefaultParallelism.
func New(limit int, timeout time.Duration, askpassEnabled bool, outdir, errdir string, password []byte, cb Callbacks, log *slog.Logger) *Manager {
	if limit <= 0 {
		limit = DefaultParallelism
	}
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		Limit:       limit,
		Timeout:     timeout,
		Askpass:     askpassEnabled,
		OutDir:      outdir,
		ErrDir:      errdir,
		Password:    password,
		Callbacks:   cb,
		log:         log,
		iomap:       iomux.New(),
		interruptCh: make(chan struct{}, 1),
	}
}

// AddTask appends a Task to the pending queue.
func (m *Manager) AddTask(t *task.Task) {
	m.pending = append(m.pending, t)
}

// Interrupt requests that Run unwind: every running task is killed via
// Interrupted(), every still-pending task is Cancel()ed, finished is
// delivered for all of them, and Run returns Interrupted after cleanup.
// Safe to call from a signal handler goroutine.
func (m *Manager) Interrupt() {
	select {
	case m.interruptCh <- struct{}{}:
	default:
	}
}

// Run processes every task added with AddTask, respecting Limit and
// Timeout, and returns whatever Callbacks.Result produces.
func (m *Manager) Run() (any, error) {
	m.saveTasks = append([]*task.Task(nil), m.pending...)

	if m.StatusDir != "" {
		if err := os.MkdirAll(m.StatusDir, 0o755); err != nil {
			return nil, &FatalError{Err: err}
		}
		defer os.RemoveAll(m.StatusDir)
	}

	if m.OutDir != "" || m.ErrDir != "" {
		m.writer = task.NewFileWriter(m.OutDir, m.ErrDir)
	}
	defer func() {
		if m.writer != nil {
			m.writer.SignalQuit()
			m.writer.Join()
		}
	}()

	if m.Askpass {
		server, err := askpass.Start(m.Password, m.log)
		if err != nil {
			return nil, &FatalError{Err: err}
		}
		m.askpassServer = server
		m.askpassSocket = server.SocketPath()
		defer m.askpassServer.Stop()
	}

	wait := time.Second
	for len(m.running) > 0 || len(m.pending) > 0 {
		select {
		case <-m.interruptCh:
			m.handleInterrupt()
			return nil, Interrupted
		default:
		}

		// Fill phase: start as many pending tasks as the limit allows.
		if err := m.fill(); err != nil {
			return nil, err
		}

		// Wait phase: block until an event or the soonest deadline.
		if err := m.iomap.Poll(wait); err != nil {
			return nil, err
		}

		// Reap phase: move finished tasks to done.
		m.reap()

		// Timeout phase: kill anything past its deadline, and derive the
		// next wait from the soonest remaining one.
		wait = m.checkTimeout()
	}

	return m.Callbacks.Result(m), nil
}

func (m *Manager) fill() error {
	// Pass a nil interface, not a typed-nil *FileWriter, when no spill
	// directory is configured.
	var writer task.Writer
	if m.writer != nil {
		writer = m.writer
	}
	for len(m.pending) > 0 && len(m.running) < m.Limit {
		t := m.pending[0]
		m.pending = m.pending[1:]
		if err := t.Start(m.taskCount, m.iomap, writer, m.askpassSocket); err != nil {
			t.Failures = append(t.Failures, "I/O exception: "+err.Error())
			m.finished(t)
			continue
		}
		m.running = append(m.running, t)
		m.taskCount++
		m.writeStatusFile(t)
	}
	return nil
}

func (m *Manager) reap() {
	still := m.running[:0]
	for _, t := range m.running {
		if t.Running() {
			still = append(still, t)
		} else {
			m.finished(t)
		}
	}
	m.running = still
}

// checkTimeout kills any task past its deadline and returns the wait to
// use for the next Poll: the minimum remaining deadline, clamped to at
// least one second (subsecond accuracy is intentionally traded for
// simplicity), or one second flat if Timeout is disabled or no task is
// running.
func (m *Manager) checkTimeout() time.Duration {
	if m.Timeout <= 0 {
		return time.Second
	}

	var minLeft time.Duration = -1
	for _, t := range m.running {
		left := m.Timeout - t.Elapsed()
		if left <= 0 {
			t.TimedOut()
			continue
		}
		if minLeft < 0 || left < minLeft {
			minLeft = left
		}
	}
	if minLeft < time.Second {
		return time.Second
	}
	return minLeft
}

func (m *Manager) handleInterrupt() {
	for _, t := range m.running {
		t.Interrupted()
		m.finished(t)
	}
	m.running = nil
	for _, t := range m.pending {
		t.Cancel()
		m.finished(t)
	}
	m.pending = nil
}

func (m *Manager) finished(t *task.Task) {
	m.removeStatusFile(t)
	m.done = append(m.done, t)
	m.Callbacks.Finished(t, len(m.done))
}

// SaveTasks returns every task submitted to this run, including ones
// cancelled before they ever started, so callbacks can enumerate the full
// batch rather than only the tasks that finished.
func (m *Manager) SaveTasks() []*task.Task { return m.saveTasks }

// Done returns every task that has completed (successfully, with error, or
// cancelled) in completion order.
func (m *Manager) Done() []*task.Task { return m.done }
