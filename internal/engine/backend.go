package engine

import (
	"context"

	"github.com/ivlev/price2video/internal/composition"
	"github.com/ivlev/price2video/internal/model"
)

// BundleHandle identifies a built bundle.
type BundleHandle struct {
	EntryPoint string
	Location   string
	// Assets are resolved inputs of the bundle, e.g. "audio" -> loop file.
	Assets map[string]string
}

// CompositionMeta is what the bundle declares for a composition.
type CompositionMeta struct {
	ID             string
	DurationFrames int
	FPS            int
	Width          int
	Height         int
}

// JobSpec is the immutable input of one render job. Duration, FPS and size
// override whatever the bundle declares for the composition.
type JobSpec struct {
	JobID         string
	CompositionID string
	Title         string
	Date          string // YYYY-MM-DD folder date
	Records       []model.PriceRecord
	TotalFrames   int
	FPS           int
	Width         int
	Height        int
	OutputPath    string
	Composition   *composition.Composition
}

// ProgressFunc receives render progress in [0,1].
type ProgressFunc func(fraction float64)

// Backend is the external bundler/renderer toolchain.
type Backend interface {
	Bundle(ctx context.Context, entryPoint string) (*BundleHandle, error)
	SelectComposition(ctx context.Context, h *BundleHandle, id string, props *composition.Composition) (*CompositionMeta, error)
	Render(ctx context.Context, h *BundleHandle, spec JobSpec, onProgress ProgressFunc) error
}

// Finalizer runs after the video file is written, e.g. to add a thumbnail.
type Finalizer interface {
	Finalize(ctx context.Context, spec JobSpec, result *model.RenderResult) error
}
