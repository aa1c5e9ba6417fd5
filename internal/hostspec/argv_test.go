package hostspec

import "testing"

func TestBuildCallArgv(t *testing.T) {
	h := Host{Host: "h1", Port: "2222", User: "deploy"}
	argv := BuildCallArgv(h, "echo hi", []string{"StrictHostKeyChecking=no"}, []string{"-F", "cfg"})

	want := []string{
		"ssh", "h1",
		"-o", "NumberOfPasswordPrompts=1",
		"-o", "SendEnv=PARALLAX_NODENUM PARALLAX_HOST",
		"-o", "StrictHostKeyChecking=no",
		"-l", "deploy",
		"-p", "2222",
		"-F", "cfg",
		"echo hi",
	}
	if len(argv) != len(want) {
		t.Fatalf("argv = %v, want %v", argv, want)
	}
	for i := range want {
		if argv[i] != want[i] {
			t.Errorf("argv[%d] = %q, want %q", i, argv[i], want[i])
		}
	}
}

func TestBuildCopyArgv(t *testing.T) {
	h := Host{Host: "h1", Port: "2222", User: "deploy"}
	argv := BuildCopyArgv(h, "local.txt", "/remote/path", true, nil, nil)

	want := []string{"scp", "-qC", "-P", "2222", "-r", "local.txt", "deploy@h1:/remote/path"}
	if len(argv) != len(want) {
		t.Fatalf("argv = %v, want %v", argv, want)
	}
	for i := range want {
		if argv[i] != want[i] {
			t.Errorf("argv[%d] = %q, want %q", i, argv[i], want[i])
		}
	}
}

func TestBuildSlurpArgv(t *testing.T) {
	h := Host{Host: "h1"}
	argv := BuildSlurpArgv(h, "/remote/path", "local/h1/path", false, nil, nil)

	want := []string{"scp", "-qC", "h1:/remote/path", "local/h1/path"}
	if len(argv) != len(want) {
		t.Fatalf("argv = %v, want %v", argv, want)
	}
	for i := range want {
		if argv[i] != want[i] {
			t.Errorf("argv[%d] = %q, want %q", i, argv[i], want[i])
		}
	}
}

func TestRemoteDestNoUser(t *testing.T) {
	if got, want := remoteDest(Host{Host: "h1"}, "/p"), "h1:/p"; got != want {
		t.Errorf("remoteDest() = %q, want %q", got, want)
	}
}
