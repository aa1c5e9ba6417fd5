package hostspec

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseHostString(t *testing.T) {
	got := ParseHostString("h1 user@h2:2222 h3:22")
	want := []Host{
		{Host: "h1"},
		{Host: "h2", Port: "2222", User: "user"},
		{Host: "h3", Port: "22"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseHostString() = %+v, want %+v", got, want)
	}
}

func TestResolve(t *testing.T) {
	h := Host{Host: "h1"}.Resolve("deploy")
	if h.User != "deploy" {
		t.Errorf("User = %q, want deploy", h.User)
	}

	h2 := Host{Host: "h1", User: "root"}.Resolve("deploy")
	if h2.User != "root" {
		t.Errorf("User = %q, want root (explicit user must win)", h2.User)
	}
}

func TestPrettyHost(t *testing.T) {
	cases := []struct {
		h    Host
		def  string
		want string
	}{
		{Host{Host: "h1"}, "deploy", "h1"},
		{Host{Host: "h1", User: "root"}, "deploy", "root@h1"},
		{Host{Host: "h1", User: "deploy"}, "deploy", "h1"},
		{Host{Host: "h1", Port: "2222"}, "deploy", "h1:2222"},
		{Host{Host: "h1", User: "root", Port: "2222"}, "deploy", "root@h1:2222"},
	}
	for _, c := range cases {
		if got := c.h.PrettyHost(c.def); got != c.want {
			t.Errorf("PrettyHost(%+v, %q) = %q, want %q", c.h, c.def, got, c.want)
		}
	}
}

func TestParseHostFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hosts")
	contents := "# comment\n\nh1\nuser@h2:22\nh3 otheruser\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	hosts, err := ParseHostFile(path)
	if err != nil {
		t.Fatalf("ParseHostFile() error: %v", err)
	}
	want := []Host{
		{Host: "h1"},
		{Host: "h2", Port: "22", User: "user"},
		{Host: "h3", User: "otheruser"},
	}
	if !reflect.DeepEqual(hosts, want) {
		t.Errorf("ParseHostFile() = %+v, want %+v", hosts, want)
	}
}

func TestParseHostFileRejectsTooManyFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hosts")
	if err := os.WriteFile(path, []byte("h1 user extra\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := ParseHostFile(path); err == nil {
		t.Fatal("expected an error for a line with more than two fields")
	}
}

func TestParseHostFileRejectsDoubleUser(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hosts")
	if err := os.WriteFile(path, []byte("user@h1 otheruser\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := ParseHostFile(path); err == nil {
		t.Fatal("expected an error when user is specified both in the entry and the trailing column")
	}
}
