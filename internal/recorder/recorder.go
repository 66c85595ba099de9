package recorder

import (
	"context"
	"time"
)

// Job statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// JobRecord is one finished render request, successful or not.
type JobRecord struct {
	JobID           string    `json:"jobId"`
	Title           string    `json:"title"`
	TargetDate      string    `json:"targetDate"`
	Category        string    `json:"category"`
	Status          string    `json:"status"`
	Kind            string    `json:"kind,omitempty"`  // error kind on failure
	Stage           string    `json:"stage,omitempty"` // failing stage
	Message         string    `json:"message,omitempty"`
	OutputPath      string    `json:"outputPath,omitempty"`
	RecordCount     int       `json:"recordCount"`
	DurationSeconds float64   `json:"durationSeconds"`
	StartedAt       time.Time `json:"startedAt"`
	FinishedAt      time.Time `json:"finishedAt"`
}

// Recorder keeps the render history.
type Recorder interface {
	RecordJob(ctx context.Context, rec *JobRecord) error
	Recent(ctx context.Context, limit int) ([]JobRecord, error)
	Close() error
}
