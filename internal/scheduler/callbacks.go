package scheduler

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kgronlund/parallax/internal/display"
	"github.com/kgronlund/parallax/internal/task"
)

// DefaultCallbacks pretty-prints a status line per finished task and
// returns the list of exit statuses in submission order, mirroring
// callbacks.py's DefaultCallbacks.
type DefaultCallbacks struct {
	Quiet bool
}

func (DefaultCallbacks) finishedLine(t *task.Task, n int) string {
	tstamp := time.Now().Format("15:04:05")
	var parts []string
	parts = append(parts, display.Progress(n), tstamp)
	if len(t.Failures) > 0 {
		parts = append(parts, display.Failure(), t.PrettyHost, display.Error(strings.Join(t.Failures, ", ")))
	} else {
		parts = append(parts, display.Success(), t.PrettyHost)
	}
	return strings.Join(parts, " ")
}

// Finished implements Callbacks.
func (c DefaultCallbacks) Finished(t *task.Task, n int) {
	if !c.Quiet {
		fmt.Println(c.finishedLine(t, n))
	}
	if len(t.OutputBuffer) > 0 {
		os.Stdout.Write(t.OutputBuffer)
	}
	if len(t.ErrorBuffer) > 0 {
		fmt.Print(display.StderrLabel())
		os.Stdout.Write(t.ErrorBuffer)
	}
}

// Result implements Callbacks: it returns the exit statuses of every
// completed task, in the order they were saved.
func (c DefaultCallbacks) Result(m *Manager) any {
	doneSet := make(map[*task.Task]bool, len(m.done))
	for _, t := range m.done {
		doneSet[t] = true
	}
	var statuses []int
	for _, t := range m.saveTasks {
		if doneSet[t] {
			statuses = append(statuses, t.ExitStatus)
		}
	}
	return statuses
}
