package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/kgronlund/parallax/internal/procwatch"
)

type statusRecord struct {
	Host      string    `json:"host"`
	PID       int32     `json:"pid"`
	StartedAt time.Time `json:"started_at"`
}

// NewStatusCommand builds "parallax status": it reads the pid/start-time
// files a live run maintains under --statusdir and reports current
// resource usage per in-flight host, so an operator in a second terminal
// can watch a large fan-out without waiting for it to finish.
func NewStatusCommand() *cobra.Command {
	var statusDir string

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show resource usage for an in-flight call/copy/slurp run",
		Long:  `Reads the per-host pid/start-time files maintained under --statusdir by a concurrently running call/copy/slurp invocation.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if statusDir == "" {
				return fmt.Errorf("--statusdir is required")
			}
			entries, err := os.ReadDir(statusDir)
			if err != nil {
				return fmt.Errorf("read statusdir: %w", err)
			}

			var hosts []string
			records := map[string]statusRecord{}
			for _, e := range entries {
				if e.IsDir() {
					continue
				}
				data, err := os.ReadFile(filepath.Join(statusDir, e.Name()))
				if err != nil {
					continue
				}
				var rec statusRecord
				if json.Unmarshal(data, &rec) != nil {
					continue
				}
				records[rec.Host] = rec
				hosts = append(hosts, rec.Host)
			}
			sort.Strings(hosts)

			if len(hosts) == 0 {
				fmt.Println("no tasks currently running")
				return nil
			}

			ctx := context.Background()
			for _, host := range hosts {
				rec := records[host]
				snap := procwatch.Inspect(ctx, rec.Host, rec.PID, rec.StartedAt)
				fmt.Println(snap.Line())
			}
			return nil
		},
	}

	statusCmd.Flags().StringVar(&statusDir, "statusdir", "", "statusdir passed to the in-flight call/copy/slurp invocation")
	return statusCmd
}
