// Package procwatch reports liveness and resource usage for running task
// child processes, backing the CLI's "status" view with real process
// accounting instead of re-deriving it from /proc by hand.
package procwatch

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// Snapshot is a point-in-time resource reading for one task's child
// process.
type Snapshot struct {
	PID       int32
	Host      string
	Running   bool
	Status    []string
	CPUPct    float64
	RSSBytes  uint64
	Elapsed   time.Duration
	StartTime time.Time
}

// Inspect reads current status for the process group leader at pid. It
// never returns an error for a process that has already exited; Running
// is simply false.
func Inspect(ctx context.Context, host string, pid int32, startedAt time.Time) Snapshot {
	snap := Snapshot{PID: pid, Host: host, Elapsed: time.Since(startedAt), StartTime: startedAt}

	proc, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return snap
	}

	running, err := proc.IsRunningWithContext(ctx)
	if err != nil || !running {
		return snap
	}
	snap.Running = true

	if status, err := proc.StatusWithContext(ctx); err == nil {
		snap.Status = status
	}
	if cpu, err := proc.CPUPercentWithContext(ctx); err == nil {
		snap.CPUPct = cpu
	}
	if mem, err := proc.MemoryInfoWithContext(ctx); err == nil && mem != nil {
		snap.RSSBytes = mem.RSS
	}
	return snap
}

// Line renders a Snapshot as a single human-readable status line, the
// shape the CLI's "status" subcommand prints per in-flight task.
func (s Snapshot) Line() string {
	if !s.Running {
		return fmt.Sprintf("%-24s (exited)", s.Host)
	}
	return fmt.Sprintf("%-24s pid=%-8d rss=%-10s cpu=%5.1f%% elapsed=%s",
		s.Host, s.PID, formatBytes(s.RSSBytes), s.CPUPct, s.Elapsed.Round(time.Second))
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := uint64(unit), 0
	for n/div >= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
