// Package cmd wires the cobra CLI surface onto the parallax library and
// internal/core configuration.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/goforj/godump"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/kgronlund/parallax/internal/core"
)

// NewRootCommand builds the "parallax" cobra command tree.
func NewRootCommand() *cobra.Command {
	var configPath string
	var verbose int

	homeDir, _ := os.UserHomeDir()

	rootCmd := &cobra.Command{
		Use:   "parallax",
		Short: "Run commands and copy files across many SSH hosts in parallel",
		Long:  `parallax fans a command, or an scp upload/download, out to many remote hosts concurrently.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			messages, err := core.InitializeConfig(cmd)
			for _, message := range messages {
				fmt.Fprintln(os.Stderr, message)
			}
			if err != nil {
				return err
			}

			level := slog.LevelInfo
			if verbose > 0 {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(
				tint.NewHandler(os.Stderr, &tint.Options{
					Level:      level,
					TimeFormat: time.DateTime,
				}),
			))

			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(
		&configPath, "config-path", fmt.Sprintf("%s/%s", homeDir, core.BaseDirName),
		"config path",
	)
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "more output, repeat for even more")

	debugCmd := &cobra.Command{
		Use:    "debug",
		Short:  "Dump the effective configuration and profiles",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			godump.Dump(core.Config.AllSettings())
			profiles, err := core.LoadProfiles(core.GetProfilesPath())
			if err != nil {
				return err
			}
			godump.Dump(profiles)
			return nil
		},
	}

	rootCmd.AddCommand(
		debugCmd,
		NewCallCommand(),
		NewCopyCommand(),
		NewSlurpCommand(),
		NewPasswordCommand(),
		NewStatusCommand(),
		NewVersionCommand(),
	)

	return rootCmd
}
