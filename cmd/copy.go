package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kgronlund/parallax"
)

// NewCopyCommand builds "parallax copy".
func NewCopyCommand() *cobra.Command {
	var f hostFlags
	var recursive bool
	var sshOptions []string

	copyCmd := &cobra.Command{
		Use:   "copy <local-src> <remote-dst>",
		Short: "Upload a local file or directory to every target host",
		Args:  cobra.ExactArgs(2),
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

			opts := parallax.Options{
				Limit:       f.limit,
				Timeout:     parseTimeout(f.timeout),
				Askpass:     f.askpass,
				Password:    password,
				OutDir:      f.outdir,
				StatusDir:   f.statusdir,
				ErrDir:      f.errdir,
				SSHOptions:  sshOptions,
				Verbose:     f.verbose,
				Quiet:       f.quiet,
				Recursive:   recursive,
				DefaultUser: f.defaultUser,
				Log:         slog.Default(),
			}

			_, failures, err := parallax.Copy(hosts, args[0], args[1], opts)
			if err != nil {
				return err
			}
			return exitOnFailures(failures)
		},
	}

	addHostFlags(copyCmd, &f)
	copyCmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "copy directories recursively")
	copyCmd.Flags().StringArrayVarP(&sshOptions, "ssh-option", "O", nil, "extra -o option passed to scp (repeatable)")

	return copyCmd
}
