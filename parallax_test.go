package parallax_test

import (
	"os/exec"
	"testing"
	"time"

	"github.com/kgronlund/parallax"
	"github.com/kgronlund/parallax/internal/testutil/sshserver"
)

func requireSSHClient(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ssh"); err != nil {
		t.Skip("ssh binary not available")
	}
}

func newTestServer(t *testing.T) *sshserver.Server {
	t.Helper()
	requireSSHClient(t)

	srv := sshserver.New(t, sshserver.Options{
		Username: "testuser",
		Password: "testpass",
	})
	srv.Start()
	t.Cleanup(srv.Stop)
	return srv
}

// callOpts returns Options pointed at the given test server's generated ssh
// config, so the real ssh binary dials the in-process server instead of a
// real host.
func callOpts(srv *sshserver.Server) parallax.Options {
	return parallax.Options{
		Inline:      true,
		DefaultUser: "testuser",
		SSHExtra:    []string{"-F", srv.SSHConfigPath()},
	}
}

func callHost(srv *sshserver.Server) parallax.Host {
	return parallax.H(srv.Alias())
}

// S1: trivial success.
func TestCallTrivialSuccess(t *testing.T) {
	srv := newTestServer(t)

	results, failures, err := parallax.Call([]parallax.Host{callHost(srv)}, "echo hi", callOpts(srv))
	if err != nil {
		t.Fatalf("Call() error: %v", err)
	}
	if len(failures) != 0 {
		t.Fatalf("expected no failures, got %v", failures)
	}
	res, ok := results[srv.Alias()]
	if !ok {
		t.Fatalf("missing result for %s", srv.Alias())
	}
	if res.ExitStatus != 0 {
		t.Errorf("ExitStatus = %d, want 0", res.ExitStatus)
	}
	if string(res.Stdout) != "hi\n" {
		t.Errorf("Stdout = %q, want %q", res.Stdout, "hi\n")
	}
}

// S2: nonzero exit.
func TestCallNonzeroExit(t *testing.T) {
	srv := newTestServer(t)

	_, failures, err := parallax.Call([]parallax.Host{callHost(srv)}, "false", callOpts(srv))
	if err != nil {
		t.Fatalf("Call() error: %v", err)
	}
	fail, ok := failures[srv.Alias()]
	if !ok {
		t.Fatal("expected a failure entry for a nonzero exit")
	}
	if fail.Failures[0] == "" {
		t.Fatal("expected a failure tag")
	}
}

// S3: timeout.
func TestCallTimeout(t *testing.T) {
	srv := newTestServer(t)

	opts := callOpts(srv)
	opts.Timeout = time.Second

	start := time.Now()
	_, failures, err := parallax.Call([]parallax.Host{callHost(srv)}, "sleep 30", opts)
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("Call() error: %v", err)
	}
	if elapsed > 5*time.Second {
		t.Fatalf("expected timeout within a few seconds, took %v", elapsed)
	}
	fail, ok := failures[srv.Alias()]
	if !ok {
		t.Fatal("expected a timeout failure")
	}
	found := false
	for _, f := range fail.Failures {
		if f == "Timed out" {
			found = true
		}
	}
	if !found {
		t.Errorf("Failures = %v, want a \"Timed out\" entry", fail.Failures)
	}
}

// S4: bounded concurrency. Runs enough short sleeps at a low limit that the
// wall-clock time proves the scheduler isn't running them all at once.
func TestCallBoundedConcurrency(t *testing.T) {
	srv := newTestServer(t)

	const hostCount = 10
	const limit = 2
	hosts := make([]parallax.Host, hostCount)
	for i := range hosts {
		hosts[i] = callHost(srv)
	}

	opts := callOpts(srv)
	opts.Limit = limit
	opts.Quiet = true

	start := time.Now()
	_, _, err := parallax.Call(hosts, "sleep 1", opts)
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("Call() error: %v", err)
	}

	minExpected := time.Duration(hostCount/limit) * time.Second
	if elapsed < minExpected {
		t.Errorf("elapsed = %v, want at least %v given limit=%d over %d hosts", elapsed, minExpected, limit, hostCount)
	}
}

// S5: stdin piping.
func TestCallStdinPiping(t *testing.T) {
	srv := newTestServer(t)

	opts := callOpts(srv)
	opts.InputStream = []byte("payload")

	results, _, err := parallax.Call([]parallax.Host{callHost(srv)}, "cat", opts)
	if err != nil {
		t.Fatalf("Call() error: %v", err)
	}
	res := results[srv.Alias()]
	if string(res.Stdout) != "payload" {
		t.Errorf("Stdout = %q, want %q", res.Stdout, "payload")
	}
	if res.ExitStatus != 0 {
		t.Errorf("ExitStatus = %d, want 0", res.ExitStatus)
	}
}

// S6: slurp rejects an absolute destination synchronously, before starting
// any task.
func TestSlurpRejectsAbsoluteDestination(t *testing.T) {
	_, _, err := parallax.Slurp([]parallax.Host{parallax.H("unreachable-host")}, "/etc/hosts", "/abs/path", parallax.Options{})
	if err != parallax.ErrAbsoluteDestination {
		t.Fatalf("err = %v, want %v", err, parallax.ErrAbsoluteDestination)
	}
}
