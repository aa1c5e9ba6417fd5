package core

import (
	"testing"

	"github.com/spf13/viper"
)

func TestConstants(t *testing.T) {
	if BaseDirName != ".config/parallax" {
		t.Errorf("BaseDirName = %q, want %q", BaseDirName, ".config/parallax")
	}
	if ProfilesFile != "profiles.hcl" {
		t.Errorf("ProfilesFile = %q, want %q", ProfilesFile, "profiles.hcl")
	}
}

func TestGetters(t *testing.T) {
	original := Config
	defer func() { Config = original }()

	Config = viper.New()
	Config.SetDefault("limit", 32)
	Config.SetDefault("timeout", "0s")
	Config.SetDefault("default_user", "deploy")
	Config.SetDefault("askpass", true)
	Config.Set("config_path", "/tmp/test-parallax")

	if got := GetLimit(); got != 32 {
		t.Errorf("GetLimit() = %d, want 32", got)
	}
	if got := GetTimeout(); got != "0s" {
		t.Errorf("GetTimeout() = %q, want %q", got, "0s")
	}
	if got := GetDefaultUser(); got != "deploy" {
		t.Errorf("GetDefaultUser() = %q, want %q", got, "deploy")
	}
	if got := GetAskpass(); !got {
		t.Errorf("GetAskpass() = %v, want true", got)
	}
	if got, want := GetProfilesPath(), "/tmp/test-parallax/profiles.hcl"; got != want {
		t.Errorf("GetProfilesPath() = %q, want %q", got, want)
	}
}
