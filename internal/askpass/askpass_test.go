package askpass

import (
	"bytes"
	"os"
	"testing"
)

func TestRunHelperRejectsNonPasswordPrompt(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := RunHelper([]string{"Are you sure you want to continue connecting (yes/no)?"}, &stdout, &stderr)
	if code == 0 {
		t.Fatal("expected a non-zero exit for a non-password prompt")
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout = %q, want empty", stdout.String())
	}
	if stderr.Len() == 0 {
		t.Error("expected the rejected prompt to be echoed to stderr")
	}
}

func TestRunHelperRequiresArgs(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := RunHelper(nil, &stdout, &stderr); code == 0 {
		t.Fatal("expected a non-zero exit with no args")
	}
}

func TestRunHelperFailsWithoutSocketEnv(t *testing.T) {
	os.Unsetenv("PARALLAX_ASKPASS_SOCKET")
	var stdout, stderr bytes.Buffer
	code := RunHelper([]string{"user@host's password:"}, &stdout, &stderr)
	if code == 0 {
		t.Fatal("expected a non-zero exit with no askpass socket configured")
	}
}

func TestServerRoundTripsPassword(t *testing.T) {
	srv, err := Start([]byte("s3cret"), nil)
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer srv.Stop()

	t.Setenv("PARALLAX_ASKPASS_SOCKET", srv.SocketPath())

	var stdout, stderr bytes.Buffer
	code := RunHelper([]string{"user@host's password:"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("RunHelper() = %d, stderr = %q", code, stderr.String())
	}
	if got := stdout.String(); got != "s3cret\n" {
		t.Errorf("stdout = %q, want %q", got, "s3cret\n")
	}
}

func TestServerServesEachConnectionOnce(t *testing.T) {
	srv, err := Start([]byte("pw"), nil)
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer srv.Stop()

	t.Setenv("PARALLAX_ASKPASS_SOCKET", srv.SocketPath())

	for i := 0; i < 3; i++ {
		var stdout, stderr bytes.Buffer
		if code := RunHelper([]string{"password:"}, &stdout, &stderr); code != 0 {
			t.Fatalf("round %d: RunHelper() = %d, stderr = %q", i, code, stderr.String())
		}
		if got := stdout.String(); got != "pw\n" {
			t.Errorf("round %d: stdout = %q, want %q", i, got, "pw\n")
		}
	}
}
