package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadProfilesMissingFile(t *testing.T) {
	profiles, err := LoadProfiles(filepath.Join(t.TempDir(), "nope.hcl"))
	if err != nil {
		t.Fatalf("LoadProfiles() error: %v", err)
	}
	if len(profiles) != 0 {
		t.Errorf("expected no profiles, got %d", len(profiles))
	}
}

func TestLoadProfiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.hcl")
	contents := `
profile "prod-rolling" {
  limit        = 4
  timeout      = "30s"
  askpass      = true
  default_user = "deploy"
}

profile "fast-check" {
  limit   = 64
  quiet   = true
}
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	profiles, err := LoadProfiles(path)
	if err != nil {
		t.Fatalf("LoadProfiles() error: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(profiles))
	}

	rolling, ok := profiles["prod-rolling"]
	if !ok {
		t.Fatal("missing prod-rolling profile")
	}
	if rolling.Limit != 4 {
		t.Errorf("Limit = %d, want 4", rolling.Limit)
	}
	if rolling.ParsedTimeout() != 30*time.Second {
		t.Errorf("ParsedTimeout() = %v, want 30s", rolling.ParsedTimeout())
	}
	if !rolling.Askpass {
		t.Error("expected Askpass = true")
	}
	if rolling.DefaultUser != "deploy" {
		t.Errorf("DefaultUser = %q, want deploy", rolling.DefaultUser)
	}

	fast := profiles["fast-check"]
	if fast.Limit != 64 || !fast.Quiet {
		t.Errorf("fast-check profile = %+v, unexpected values", fast)
	}
}
