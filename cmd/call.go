package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kgronlund/parallax"
	"github.com/kgronlund/parallax/internal/hostspec"
)

// NewCallCommand builds "parallax call".
func NewCallCommand() *cobra.Command {
	var f hostFlags
	var inline bool
	var printOut bool
	var sshOptions []string

	callCmd := &cobra.Command{
		Use:   "call <command...>",
		Short: "Run a command on every target host in parallel",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := f.applyProfile(cmd); err != nil {
				return err
			}
			hosts, err := f.resolveHosts()
			if err != nil {
				return err
			}

			password, err := resolvePassword(f.askpass, hosts)
			if err != nil {
				return err
			}

			cmdline := joinArgs(args)
			run := func(hosts []hostspec.Host) error {
				opts := parallax.Options{
					Limit:        f.limit,
					Timeout:      parseTimeout(f.timeout),
					Askpass:      f.askpass,
					Password:     password,
					OutDir:       f.outdir,
					StatusDir:    f.statusdir,
					ErrDir:       f.errdir,
					SSHOptions:   sshOptions,
					Verbose:      f.verbose,
					Quiet:        f.quiet,
					PrintOut:     printOut,
					Inline:       inline,
					InlineStdout: inline || printOut,
					DefaultUser:  f.defaultUser,
					Log:          slog.Default(),
				}

				_, failures, err := parallax.Call(hosts, cmdline, opts)
				if err != nil {
					return err
				}
				return exitOnFailures(failures)
			}

			return f.runWatching(hosts, slog.Default(), run)
		},
	}

	addHostFlags(callCmd, &f)
	callCmd.Flags().BoolVarP(&inline, "inline", "i", false, "retain stdout/stderr in memory for programmatic use")
	callCmd.Flags().BoolVarP(&printOut, "print-out", "P", false, "stream remote stdout to this process's stdout")
	callCmd.Flags().StringArrayVarP(&sshOptions, "ssh-option", "O", nil, "extra -o option passed to ssh (repeatable)")

	return callCmd
}

func joinArgs(args []string) string {
	out := args[0]
	for _, a := range args[1:] {
		out += " " + a
	}
	return out
}

func parseTimeout(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

// resolvePassword looks up a stored password for the first target host
// when askpass is requested, falling back to an interactive prompt when
// none is stored. It returns "" when askpass is off.
func resolvePassword(askpass bool, hosts []hostspec.Host) (string, error) {
	if !askpass || len(hosts) == 0 {
		return "", nil
	}
	alias := hosts[0].Host
	if pw, err := vaultGet(alias); err == nil && pw != "" {
		return pw, nil
	}
	return vaultPrompt(alias)
}

func exitOnFailures(failures map[string]*parallax.Error) error {
	if len(failures) == 0 {
		return nil
	}
	for host, e := range failures {
		fmt.Fprintf(os.Stderr, "%s: %s\n", host, e)
	}
	return fmt.Errorf("%d host(s) failed", len(failures))
}
