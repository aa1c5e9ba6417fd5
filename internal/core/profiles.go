package core

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/hclsimple"
)

// Profile is a named, reusable bundle of Call/Copy/Slurp option values,
// loaded from an HCL file so operators can keep a handful of option
// presets (e.g. "prod-rolling", "fast-check") around instead of retyping
// the same flag combination. This is purely an option preset: a profile
// never names hosts or carries a host-file dialect of its own.
type Profile struct {
	Name        string `hcl:"name,label"`
	Limit       int    `hcl:"limit,optional"`
	Timeout     string `hcl:"timeout,optional"`
	Askpass     bool   `hcl:"askpass,optional"`
	DefaultUser string `hcl:"default_user,optional"`
	Recursive   bool   `hcl:"recursive,optional"`
	Verbose     bool   `hcl:"verbose,optional"`
	Quiet       bool   `hcl:"quiet,optional"`
	OutDir      string `hcl:"outdir,optional"`
	ErrDir      string `hcl:"errdir,optional"`
}

// ProfilesFileBody is the root of a profiles.hcl document: a flat list of
// labeled "profile" blocks.
type ProfilesFileBody struct {
	Profiles []Profile `hcl:"profile,block"`
}

// LoadProfiles parses an HCL profiles file. A missing file yields an empty
// set rather than an error, since profiles are optional.
func LoadProfiles(path string) (map[string]Profile, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return map[string]Profile{}, nil
	}

	var body ProfilesFileBody
	if err := hclsimple.DecodeFile(path, nil, &body); err != nil {
		return nil, fmt.Errorf("core: parse profiles file %s: %w", path, err)
	}

	out := make(map[string]Profile, len(body.Profiles))
	for _, p := range body.Profiles {
		out[p.Name] = p
	}
	return out, nil
}

// ParsedTimeout parses the profile's Timeout string, defaulting to zero (no
// timeout) on an empty or unparseable value.
func (p Profile) ParsedTimeout() time.Duration {
	if p.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(p.Timeout)
	if err != nil {
		return 0
	}
	return d
}
