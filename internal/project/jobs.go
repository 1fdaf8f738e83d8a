package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/piwi3910/RollCut/internal/model"
)

// Job ties a request and its result together for save/load, so a solve
// can be reopened, re-exported, or re-run later.
type Job struct {
	ID      string              `json:"id"`
	Name    string              `json:"name"`
	SavedAt time.Time           `json:"saved_at"`
	Request *model.Request      `json:"request,omitempty"`
	Range   *model.RangeRequest `json:"range,omitempty"`
	Result  *model.Result       `json:"result,omitempty"`
	Sweep   *model.RangeResult  `json:"sweep,omitempty"`
}

// NewJob creates a named job with a fresh id.
func NewJob(name string) Job {
	return Job{
		ID:   uuid.New().String()[:8],
		Name: name,
	}
}

// SaveJob persists a job to the given path as indented JSON, stamping
// the save time. It creates any missing parent directories.
func SaveJob(path string, job Job) error {
	job.SavedAt = time.Now().UTC()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadJob reads a job from the given path.
func LoadJob(path string) (Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Job{}, err
	}
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return Job{}, fmt.Errorf("invalid job file %s: %w", path, err)
	}
	if job.ID == "" {
		job.ID = uuid.New().String()[:8]
	}
	return job, nil
}
