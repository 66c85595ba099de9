package api

import (
	"context"

	"github.com/ivlev/price2video/internal/engine"
	"github.com/ivlev/price2video/internal/model"
	"github.com/ivlev/price2video/internal/recorder"
)

type RenderRequest struct {
	Title      string `json:"title,optional"`
	TargetDate string `json:"targetDate,optional"`
	Category   string `json:"category,optional"`
}

type RenderResponse struct {
	JobID           string  `json:"jobId"`
	OutputPath      string  `json:"outputPath"`
	RecordCount     int     `json:"recordCount"`
	DurationSeconds float64 `json:"durationSeconds"`
	Timestamp       string  `json:"timestamp"`
}

type ErrorResponse struct {
	Kind    string `json:"kind"`
	Stage   string `json:"stage,omitempty"`
	Message string `json:"message"`
}

type JobsRequest struct {
	Limit int `form:"limit,optional"`
}

type JobsResponse struct {
	Jobs []recorder.JobRecord `json:"jobs"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// Renderer runs one render request to completion.
type Renderer interface {
	Run(ctx context.Context, req engine.Request, onProgress engine.ProgressFunc) (*model.RenderResult, error)
}

type ServiceContext struct {
	Renderer Renderer
	Recorder recorder.Recorder
}

func NewServiceContext(r Renderer, rec recorder.Recorder) *ServiceContext {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &ServiceContext{Renderer: r, Recorder: rec}
}
