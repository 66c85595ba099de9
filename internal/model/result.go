package model

import "time"

// RenderResult describes a finished video.
type RenderResult struct {
	JobID           string    `json:"jobId,omitempty"`
	OutputPath      string    `json:"outputPath"`
	RecordCount     int       `json:"recordCount"`
	DurationSeconds float64   `json:"durationSeconds"`
	Timestamp       time.Time `json:"timestamp"`
}
