package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kgronlund/parallax"
)

// NewSlurpCommand builds "parallax slurp".
func NewSlurpCommand() *cobra.Command {
	var f hostFlags
	var recursive bool
	var localDir string
	var sshOptions []string

	slurpCmd := &cobra.Command{
		Use:   "slurp <remote-src> <local-dst>",
		Short: "Download a remote file or directory from every target host",
		Long:  `Downloads <remote-src> from every host into <local-dir>/<host>/<local-dst>. <local-dst> must be a relative path.`,
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
				LocalDir:    localDir,
				DefaultUser: f.defaultUser,
				Log:         slog.Default(),
			}

			_, failures, err := parallax.Slurp(hosts, args[0], args[1], opts)
			if err != nil {
				return err
			}
			return exitOnFailures(failures)
		},
	}

	addHostFlags(slurpCmd, &f)
	slurpCmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "copy directories recursively")
	slurpCmd.Flags().StringVarP(&localDir, "local-dir", "L", "", "base directory for downloaded files (default: current directory)")
	slurpCmd.Flags().StringArrayVarP(&sshOptions, "ssh-option", "O", nil, "extra -o option passed to scp (repeatable)")

	return slurpCmd
}
