package scheduler

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/kgronlund/parallax/internal/task"
)

// statusRecord is the JSON shape written to StatusDir per running task, so
// a concurrently invoked "parallax status" can read process identity and
// start time without talking to the Manager directly.
type statusRecord struct {
	Host      string    `json:"host"`
	PID       int32     `json:"pid"`
	StartedAt time.Time `json:"started_at"`
}

func (m *Manager) writeStatusFile(t *task.Task) {
	if m.StatusDir == "" {
		return
	}
	rec := statusRecord{Host: t.Host.Host, PID: t.PID(), StartedAt: t.StartedAt()}
	data, err := json.Marshal(rec)
	if err != nil {
		return
	}
	path := filepath.Join(m.StatusDir, t.Host.Host+".json")
	_ = os.WriteFile(path, data, 0o644)
}

func (m *Manager) removeStatusFile(t *task.Task) {
	if m.StatusDir == "" {
		return
	}
	_ = os.Remove(filepath.Join(m.StatusDir, t.Host.Host+".json"))
}
