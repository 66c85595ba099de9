package recorder

import "context"

// NoopRecorder is used when no database is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordJob(context.Context, *JobRecord) error { return nil }

func (n *NoopRecorder) Recent(context.Context, int) ([]JobRecord, error) { return nil, nil }

func (n *NoopRecorder) Close() error { return nil }
