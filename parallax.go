// Package parallax fans a shell command, or an SCP upload/download, out to
// many remote hosts in parallel over SSH, bounding concurrency, enforcing
// per-task timeouts, and returning a per-host result.
//
// Three operations are exposed: Call runs a command line, Copy uploads a
// local path to every host, and Slurp downloads a remote path from every
// host into a per-host local directory. Captured stdout/stderr are left as
// opaque []byte; decoding is left to the caller.
package parallax

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kgronlund/parallax/internal/hostspec"
	"github.com/kgronlund/parallax/internal/scheduler"
	"github.com/kgronlund/parallax/internal/task"
)

// Default option values, matching the original's DEFAULT_PARALLELISM /
// DEFAULT_TIMEOUT.
const (
	DefaultLimit   = scheduler.DefaultParallelism
	DefaultTimeout = scheduler.DefaultTimeout
)

// Host identifies one remote target: host, with optional port and user.
// Unlike the original's tuple-arity union, Host is a fixed three-field
// struct, so there is no ambiguous ">3-tuple" case to reject at runtime -
// it is simply unrepresentable.
type Host = hostspec.Host

// H, HP and HPU build Host values of increasing specificity.
func H(host string) Host                  { return hostspec.H(host) }
func HP(host, port string) Host           { return hostspec.HP(host, port) }
func HPU(host, port, user string) Host    { return hostspec.HPU(host, port, user) }

// ErrAbsoluteDestination is returned synchronously by Slurp when dst is an
// absolute path.
var ErrAbsoluteDestination = errors.New("parallax: slurp destination must be a relative path")

// Error is returned instead of a Result for a host in case of a failure
// processing that host: a non-empty Failures list, a non-zero exit, or a
// signal death. Message is the comma-joined failure tags; Stderr is
// attached when the task captured any.
type Error struct {
	Host     string
	Message  string
	Failures []string
	Stderr   []byte
}

func (e *Error) Error() string {
	if len(e.Stderr) > 0 {
		return fmt.Sprintf("%s, Error output: %s", e.Message, e.Stderr)
	}
	return e.Message
}

// Result is the success outcome for one host. LocalPath is only populated
// by Slurp.
type Result struct {
	ExitStatus int
	Stdout     []byte
	Stderr     []byte
	LocalPath  string
}

// Options are the common knobs shared by Call, Copy and Slurp.
type Options struct {
	Limit   int           // Max number of parallel tasks. Zero means DefaultLimit.
	Timeout time.Duration // Per-task timeout. Zero disables it.

	Askpass     bool   // Enable the password side-channel.
	Password    string // In-memory password handed to Askpass's helper.
	VaultLookup bool   // When Password is unset, ask vaultLookup for the first host's password; the built-in lookup returns none and reads no keyring.

	OutDir, ErrDir string // Per-host spill directories. Empty disables spilling.
	StatusDir      string // Per-task {host}.json pid/start-time files, read by `parallax status`.

	SSHOptions []string // Extra "-o" pairs passed to ssh/scp.
	SSHExtra   []string // Extra trailing argv passed to ssh/scp.

	Verbose  bool // Richer failure records; sets PARALLAX_ASKPASS_VERBOSE.
	Quiet    bool // Suppress progress lines; prefixes the stdout buffer with "host: ".
	PrintOut bool // Stream remote stdout to this process's stdout, "host: "-prefixed.

	Inline       bool // Retain stdout and stderr in memory.
	InlineStdout bool // Retain stdout in memory (implied by Inline).

	InputStream []byte // Bytes fed to each task's stdin.
	DefaultUser string // Default login user.

	Recursive bool   // (Copy, Slurp) pass -r.
	LocalDir  string // (Slurp) base directory for downloaded files.

	Log *slog.Logger
}

func (o Options) limit() int {
	if o.Limit <= 0 {
		return DefaultLimit
	}
	return o.Limit
}

func (o Options) taskOptions() task.Options {
	return task.Options{
		Verbose:      o.Verbose,
		Quiet:        o.Quiet,
		PrintOut:     o.PrintOut,
		Inline:       o.Inline,
		InlineStdout: o.InlineStdout || o.Inline,
	}
}

func (o Options) password(hosts []Host) ([]byte, error) {
	if o.Password != "" {
		return []byte(o.Password), nil
	}
	if !o.VaultLookup || len(hosts) == 0 {
		return nil, nil
	}
	pw, err := vaultLookup(hosts[0].Host)
	if err != nil {
		return nil, err
	}
	return []byte(pw), nil
}

// vaultLookup backs Options.VaultLookup. It always returns an empty
// password: this package does not import internal/vault, so library
// consumers who never touch Askpass don't need a working keyring backend
// on their platform. The CLI looks up stored passwords itself (see
// cmd's resolvePassword) and passes the result as Options.Password.
var vaultLookup = func(alias string) (string, error) { return "", nil }

func ensureDir(path string) error {
	if path == "" {
		return nil
	}
	return os.MkdirAll(path, 0o755)
}

func resolveHosts(hosts []Host, defaultUser string) []Host {
	out := make([]Host, len(hosts))
	for i, h := range hosts {
		out[i] = h.Resolve(defaultUser)
	}
	return out
}

// resultBuilder is the shared aggregator behind Call/Copy/Slurp: it
// accumulates finished tasks and, at Result time, splits them into a
// success map and an error map keyed by host.
type resultBuilder struct {
	quiet     bool
	finished  []*task.Task
	localPath map[string]string // only populated for slurp
}

func (b *resultBuilder) Finished(t *task.Task, n int) {
	b.finished = append(b.finished, t)
	scheduler.DefaultCallbacks{Quiet: b.quiet}.Finished(t, n)
}

func (b *resultBuilder) Result(m *scheduler.Manager) any {
	results := make(map[string]Result, len(b.finished))
	errs := make(map[string]*Error, len(b.finished))
	for _, t := range b.finished {
		if len(t.Failures) > 0 {
			errs[t.Host.Host] = &Error{
				Host:     t.Host.Host,
				Message:  strings.Join(t.Failures, ", "),
				Failures: append([]string(nil), t.Failures...),
				Stderr:   t.ErrorBuffer,
			}
			continue
		}
		results[t.Host.Host] = Result{
			ExitStatus: t.ExitStatus,
			Stdout:     t.OutputBuffer,
			Stderr:     t.ErrorBuffer,
			LocalPath:  b.localPath[t.Host.Host],
		}
	}
	return [2]any{results, errs}
}

func split(v any) (map[string]Result, map[string]*Error) {
	pair := v.([2]any)
	return pair[0].(map[string]Result), pair[1].(map[string]*Error)
}

func newManager(opts Options, cb scheduler.Callbacks, password []byte) *scheduler.Manager {
	mgr := scheduler.New(opts.limit(), opts.Timeout, opts.Askpass, opts.OutDir, opts.ErrDir, password, cb, opts.Log)
	mgr.StatusDir = opts.StatusDir
	return mgr
}

// Call executes cmdline on every host, collecting output.
func Call(hosts []Host, cmdline string, opts Options) (map[string]Result, map[string]*Error, error) {
	if err := ensureDir(opts.OutDir); err != nil {
		return nil, nil, err
	}
	if err := ensureDir(opts.ErrDir); err != nil {
		return nil, nil, err
	}
	password, err := opts.password(hosts)
	if err != nil {
		return nil, nil, err
	}

	builder := &resultBuilder{quiet: opts.Quiet}
	mgr := newManager(opts, builder, password)

	for _, h := range resolveHosts(hosts, opts.DefaultUser) {
		argv := hostspec.BuildCallArgv(h, cmdline, opts.SSHOptions, opts.SSHExtra)
		t := task.New(h, h.PrettyHost(opts.DefaultUser), argv, opts.InputStream, opts.taskOptions(), opts.Log)
		mgr.AddTask(t)
	}

	res, err := mgr.Run()
	if err != nil {
		return nil, nil, err
	}
	results, errs := split(res)
	return results, errs, nil
}

// Copy uploads src (local path) to dst (remote path) on every host.
func Copy(hosts []Host, src, dst string, opts Options) (map[string]Result, map[string]*Error, error) {
	if err := ensureDir(opts.OutDir); err != nil {
		return nil, nil, err
	}
	if err := ensureDir(opts.ErrDir); err != nil {
		return nil, nil, err
	}
	password, err := opts.password(hosts)
	if err != nil {
		return nil, nil, err
	}

	builder := &resultBuilder{quiet: opts.Quiet}
	mgr := newManager(opts, builder, password)

	for _, h := range resolveHosts(hosts, opts.DefaultUser) {
		argv := hostspec.BuildCopyArgv(h, src, dst, opts.Recursive, opts.SSHOptions, opts.SSHExtra)
		t := task.New(h, h.PrettyHost(opts.DefaultUser), argv, opts.InputStream, opts.taskOptions(), opts.Log)
		mgr.AddTask(t)
	}

	res, err := mgr.Run()
	if err != nil {
		return nil, nil, err
	}
	results, errs := split(res)
	return results, errs, nil
}

// Slurp downloads src (remote path) from every host into
// localdir/<host>/dst. dst must be a relative path.
func Slurp(hosts []Host, src, dst string, opts Options) (map[string]Result, map[string]*Error, error) {
	if filepath.IsAbs(dst) {
		return nil, nil, ErrAbsoluteDestination
	}

	resolved := resolveHosts(hosts, opts.DefaultUser)
	localPaths, err := makeLocalDirs(resolved, dst, opts.LocalDir)
	if err != nil {
		return nil, nil, err
	}

	if err := ensureDir(opts.OutDir); err != nil {
		return nil, nil, err
	}
	if err := ensureDir(opts.ErrDir); err != nil {
		return nil, nil, err
	}
	password, err := opts.password(hosts)
	if err != nil {
		return nil, nil, err
	}

	builder := &resultBuilder{quiet: opts.Quiet, localPath: localPaths}
	mgr := newManager(opts, builder, password)

	for _, h := range resolved {
		localPath := localPaths[h.Host]
		argv := hostspec.BuildSlurpArgv(h, src, localPath, opts.Recursive, opts.SSHOptions, opts.SSHExtra)
		t := task.New(h, h.PrettyHost(opts.DefaultUser), argv, opts.InputStream, opts.taskOptions(), opts.Log)
		mgr.AddTask(t)
	}

	res, err := mgr.Run()
	if err != nil {
		return nil, nil, err
	}
	results, errs := split(res)
	return results, errs, nil
}

// Scheduler and Callbacks re-export the types a caller needs to assemble a
// fully custom run via RunCustom: a dictionary-aggregating default (the
// resultBuilder behind Call/Copy/Slurp) plus user-supplied variants is the
// library's extension contract, per scheduler.Callbacks' own doc comment.
type Scheduler = scheduler.Manager
type Callbacks = scheduler.Callbacks

// RunCustom builds and drives a Manager using a caller-supplied Callbacks
// implementation instead of the built-in map-returning aggregator, for
// callers that need custom result shapes or streaming side effects beyond
// what Call/Copy/Slurp's Result/Error maps provide. argvFor builds the
// argv for one resolved host (e.g. hostspec.BuildCallArgv).
func RunCustom(hosts []Host, opts Options, cb Callbacks, argvFor func(Host) []string) (any, error) {
	password, err := opts.password(hosts)
	if err != nil {
		return nil, err
	}
	mgr := newManager(opts, cb, password)
	for _, h := range resolveHosts(hosts, opts.DefaultUser) {
		argv := argvFor(h)
		t := task.New(h, h.PrettyHost(opts.DefaultUser), argv, opts.InputStream, opts.taskOptions(), opts.Log)
		mgr.AddTask(t)
	}
	return mgr.Run()
}

func makeLocalDirs(hosts []Host, dst, localdir string) (map[string]string, error) {
	if localdir != "" {
		if err := os.MkdirAll(localdir, 0o755); err != nil {
			return nil, fmt.Errorf("parallax: create localdir: %w", err)
		}
	}
	paths := make(map[string]string, len(hosts))
	for _, h := range hosts {
		dir := h.Host
		if localdir != "" {
			dir = filepath.Join(localdir, h.Host)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("parallax: create host download dir: %w", err)
		}
		paths[h.Host] = filepath.Join(dir, dst)
	}
	return paths, nil
}
