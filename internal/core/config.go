// Package core holds viper-backed CLI configuration and HCL-backed option
// profiles: a single place that binds persistent flags, environment
// variables and a config file together before any command runs.
package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	BaseDirName    = ".config/parallax"
	ProfilesFile   = "profiles.hcl"
	ConfigFileName = "config"
)

// Config is the process-wide viper instance populated by InitializeConfig.
var Config *viper.Viper

var globalFlagsToConfigKey = map[string]string{
	"config-path": "config_path",
	"verbose":     "verbose",
}

// GetLimit returns the configured default parallelism.
func GetLimit() int { return Config.GetInt("limit") }

// GetTimeout returns the configured default per-task timeout, e.g. "0s".
func GetTimeout() string { return Config.GetString("timeout") }

// GetDefaultUser returns the configured default login user.
func GetDefaultUser() string { return Config.GetString("default_user") }

// GetAskpass returns whether the password side-channel is on by default.
func GetAskpass() bool { return Config.GetBool("askpass") }

// GetProfilesPath returns the path to the HCL profiles file.
func GetProfilesPath() string {
	return filepath.Join(Config.GetString("config_path"), ProfilesFile)
}

// InitializeConfig loads config.toml from configPath (creating it with
// defaults on first run), binds PARALLAX_*-prefixed environment variables,
// and reconciles the result with any global persistent flags the command
// was invoked with.
func InitializeConfig(cmd *cobra.Command) ([]string, error) {
	Config = viper.New()

	configPath, err := cmd.Flags().GetString("config-path")
	if err != nil {
		return nil, fmt.Errorf("core: determine config path: %w", err)
	}
	Config.AddConfigPath(configPath)
	Config.SetConfigName(ConfigFileName)
	Config.SetConfigType("toml")

	Config.SetDefault("verbose", 0)
	Config.SetDefault("limit", 32)
	Config.SetDefault("timeout", "0s")
	Config.SetDefault("default_user", "")
	Config.SetDefault("askpass", false)

	Config.SetEnvPrefix("parallax")
	Config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	Config.AutomaticEnv()

	var messages []string
	if err := Config.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if err := os.MkdirAll(configPath, 0o755); err != nil {
				return nil, fmt.Errorf("core: create config path: %w", err)
			}
			if err := Config.SafeWriteConfig(); err != nil {
				messages = append(messages, fmt.Sprintf("core: could not write default config: %s", err))
			}
		} else {
			return nil, fmt.Errorf("core: read config: %w", err)
		}
	}

	if cmd != nil {
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			configKey, ok := globalFlagsToConfigKey[f.Name]
			if !ok {
				return
			}
			if !f.Changed && Config.IsSet(configKey) {
				cmd.Flags().Set(f.Name, fmt.Sprintf("%v", Config.Get(configKey)))
			} else {
				Config.Set(configKey, fmt.Sprintf("%v", f.Value))
			}
		})
	}

	return messages, nil
}
