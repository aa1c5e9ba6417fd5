package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/kgronlund/parallax/internal/core"
	"github.com/kgronlund/parallax/internal/hostspec"
	"github.com/kgronlund/parallax/internal/hostwatch"
)

// hostFlags are the flags shared by call, copy and slurp for selecting
// which hosts to target and how to run against them.
type hostFlags struct {
	hostFile    string
	hosts       string
	limit       int
	timeout     string
	askpass     bool
	defaultUser string
	verbose     bool
	quiet       bool
	outdir      string
	errdir      string
	statusdir   string
	profile     string
	watch       bool
}

func addHostFlags(cmd *cobra.Command, f *hostFlags) {
	cmd.Flags().StringVarP(&f.hostFile, "host-file", "h", "", "file listing target hosts, one per line")
	cmd.Flags().StringVarP(&f.hosts, "hosts", "H", "", "whitespace-separated list of target hosts")
	cmd.Flags().IntVarP(&f.limit, "limit", "p", 0, "max number of parallel tasks (0 = built-in default of 32; the config file's limit is not read)")
	cmd.Flags().StringVarP(&f.timeout, "timeout", "t", "", "per-task timeout, e.g. 30s (0 disables)")
	cmd.Flags().BoolVarP(&f.askpass, "askpass", "A", false, "prompt once and forward the password to ssh/scp via SSH_ASKPASS")
	cmd.Flags().StringVarP(&f.defaultUser, "user", "l", "", "default login user")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "richer failure records and askpass helper diagnostics")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "suppress per-host progress lines")
	cmd.Flags().StringVarP(&f.outdir, "outdir", "o", "", "write each host's stdout to outdir/<host>")
	cmd.Flags().StringVarP(&f.errdir, "errdir", "e", "", "write each host's stderr to errdir/<host>")
	cmd.Flags().StringVar(&f.statusdir, "statusdir", "", "maintain per-host pid/start-time files here for `parallax status`")
	cmd.Flags().StringVar(&f.profile, "profile", "", "apply a named option profile from profiles.hcl first")
	cmd.Flags().BoolVarP(&f.watch, "watch", "w", false, "re-run whenever --host-file changes, until interrupted")
}

func (f *hostFlags) resolveHosts() ([]hostspec.Host, error) {
	switch {
	case f.hostFile != "" && f.hosts != "":
		return nil, fmt.Errorf("--host-file and --hosts are mutually exclusive")
	case f.hostFile != "":
		return hostspec.ParseHostFile(f.hostFile)
	case f.hosts != "":
		return hostspec.ParseHostString(f.hosts), nil
	default:
		return nil, fmt.Errorf("one of --host-file or --hosts is required")
	}
}

// applyProfile layers the named profile's values under whatever flags were
// explicitly set, command-line flags always win.
func (f *hostFlags) applyProfile(cmd *cobra.Command) error {
	if f.profile == "" {
		return nil
	}
	profiles, err := core.LoadProfiles(core.GetProfilesPath())
	if err != nil {
		return err
	}
	p, ok := profiles[f.profile]
	if !ok {
		return fmt.Errorf("unknown profile %q", f.profile)
	}

	if !cmd.Flags().Changed("limit") && p.Limit > 0 {
		f.limit = p.Limit
	}
	if !cmd.Flags().Changed("timeout") && p.Timeout != "" {
		f.timeout = p.Timeout
	}
	if !cmd.Flags().Changed("askpass") && p.Askpass {
		f.askpass = true
	}
	if !cmd.Flags().Changed("user") && p.DefaultUser != "" {
		f.defaultUser = p.DefaultUser
	}
	if !cmd.Flags().Changed("verbose") && p.Verbose {
		f.verbose = true
	}
	if !cmd.Flags().Changed("quiet") && p.Quiet {
		f.quiet = true
	}
	if !cmd.Flags().Changed("outdir") && p.OutDir != "" {
		f.outdir = p.OutDir
	}
	if !cmd.Flags().Changed("errdir") && p.ErrDir != "" {
		f.errdir = p.ErrDir
	}
	return nil
}

// runWatching runs fn once against hosts, then, if --watch was given on a
// --host-file target, re-resolves the file and runs fn again each time
// internal/hostwatch reports an edit, until SIGINT or the watch itself
// fails to start. A failing fn doesn't stop the loop - it's reported and
// watching continues, since one bad edit shouldn't end the session.
func (f *hostFlags) runWatching(hosts []hostspec.Host, log *slog.Logger, fn func([]hostspec.Host) error) error {
	firstErr := fn(hosts)
	if !f.watch {
		return firstErr
	}
	if firstErr != nil {
		fmt.Fprintln(os.Stderr, firstErr)
	}
	if f.hostFile == "" {
		return fmt.Errorf("--watch requires --host-file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	w, err := hostwatch.New(ctx, f.hostFile, log)
	if err != nil {
		return fmt.Errorf("watch %s: %w", f.hostFile, err)
	}
	defer w.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-w.Changed:
			if !ok {
				return nil
			}
			reloaded, err := hostspec.ParseHostFile(f.hostFile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "parallax: reload %s: %v\n", f.hostFile, err)
				continue
			}
			log.Info("host file changed, re-running", "file", f.hostFile, "hosts", len(reloaded))
			if err := fn(reloaded); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		}
	}
}
