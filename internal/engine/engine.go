package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"
	"golang.org/x/sync/singleflight"

	"github.com/ivlev/price2video/internal/composition"
	"github.com/ivlev/price2video/internal/model"
	"github.com/ivlev/price2video/internal/recorder"
	"github.com/ivlev/price2video/internal/source"
	"github.com/ivlev/price2video/internal/system"
)

// Options configure an Orchestrator.
type Options struct {
	EntryPoint    string
	CompositionID string
	OutputDir     string
	Settings      composition.Settings
	ShowStats     bool
}

// Orchestrator runs fetch -> compose -> bundle -> select -> render -> finalize
// for each request. Requests are independent; the bundle is built once and shared.
type Orchestrator struct {
	opts       Options
	fetcher    source.Fetcher
	backend    Backend
	recorder   recorder.Recorder
	finalizers []Finalizer
	now        func() time.Time
	newID      func() string

	bundleMu sync.Mutex
	bundle   *BundleHandle
	group    singleflight.Group
}

type Option func(*Orchestrator)

func WithRecorder(r recorder.Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

func WithFinalizers(f ...Finalizer) Option {
	return func(o *Orchestrator) { o.finalizers = append(o.finalizers, f...) }
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(o *Orchestrator) { o.newID = newID }
}

func New(opts Options, fetcher source.Fetcher, backend Backend, options ...Option) *Orchestrator {
	if opts.CompositionID == "" {
		opts.CompositionID = composition.DefaultID
	}
	o := &Orchestrator{
		opts:     opts,
		fetcher:  fetcher,
		backend:  backend,
		recorder: recorder.NewNoopRecorder(),
		now:      time.Now,
		newID:    newJobID,
	}
	for _, opt := range options {
		opt(o)
	}
	return o
}

// Run renders one video. Any stage failure stops the pipeline and is returned
// as *Error carrying the stage; nothing is retried here.
func (o *Orchestrator) Run(ctx context.Context, req Request, onProgress ProgressFunc) (*model.RenderResult, error) {
	jobID := o.newID()
	started := o.now()
	ctx = logx.ContextWithFields(ctx, logx.Field("job", jobID))

	result, recordCount, err := o.run(ctx, jobID, req, onProgress)
	o.record(ctx, jobID, req, started, result, recordCount, err)

	if err != nil {
		logx.WithContext(ctx).Errorf("render: failed kind=%s stage=%s: %v", KindOf(err), StageOf(err), err)
		return nil, err
	}

	elapsed := o.now().Sub(started)
	logx.WithContext(ctx).Infof("render: done output=%s records=%d duration=%.1fs elapsed=%s",
		result.OutputPath, result.RecordCount, result.DurationSeconds, elapsed.Round(time.Millisecond))
	if o.opts.ShowStats {
		o.report(ctx, result, elapsed)
	}
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, jobID string, req Request, onProgress ProgressFunc) (*model.RenderResult, int, error) {
	log := logx.WithContext(ctx)

	if err := req.Validate(); err != nil {
		return nil, 0, stageError(KindValidation, StageValidate, err)
	}

	log.Infof("render: stage=%s date=%q category=%q", StageFetch, req.TargetDate, req.Category)
	records, err := o.fetcher.Fetch(ctx, source.Query{Date: req.TargetDate, Category: req.Category})
	if errors.Is(err, source.ErrNoData) || (err == nil && len(records) == 0) {
		if err == nil {
			err = source.ErrNoData
		}
		return nil, 0, stageError(KindNoData, StageFetch, err)
	}
	if err != nil {
		return nil, 0, stageError(KindFetch, StageFetch, err)
	}

	log.Infof("render: stage=%s records=%d", StageCompose, len(records))
	comp, err := composition.Build(o.opts.CompositionID, req.Title, records, o.opts.Settings)
	if err != nil {
		return nil, len(records), stageError(KindCompose, StageCompose, err)
	}

	log.Infof("render: stage=%s entry=%s", StageBundle, o.opts.EntryPoint)
	bundle, err := o.ensureBundle(ctx)
	if err != nil {
		return nil, len(records), stageError(KindBundle, StageBundle, err)
	}

	log.Infof("render: stage=%s composition=%s", StageSelect, comp.ID)
	meta, err := o.backend.SelectComposition(ctx, bundle, comp.ID, comp)
	if err != nil {
		if errors.Is(err, ErrCompositionNotFound) {
			return nil, len(records), stageError(KindCompositionNotFound, StageSelect, err)
		}
		return nil, len(records), stageError(KindBundle, StageSelect, err)
	}
	if meta == nil {
		return nil, len(records), stageError(KindCompositionNotFound, StageSelect,
			fmt.Errorf("%w: %s", ErrCompositionNotFound, comp.ID))
	}
	if meta.DurationFrames != comp.TotalFrames || meta.FPS != comp.FPS {
		log.Infof("render: overriding bundle defaults frames=%d->%d fps=%d->%d",
			meta.DurationFrames, comp.TotalFrames, meta.FPS, comp.FPS)
	}

	now := o.now()
	date := req.Date(now)
	outputPath := OutputPath(o.opts.OutputDir, date, req.Category, now)
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return nil, len(records), stageError(KindIO, StageFinalize, fmt.Errorf("create output dir: %w", err))
	}

	spec := JobSpec{
		JobID:         jobID,
		CompositionID: comp.ID,
		Title:         comp.Title,
		Date:          date,
		Records:       comp.Records,
		TotalFrames:   comp.TotalFrames,
		FPS:           comp.FPS,
		Width:         comp.Width,
		Height:        comp.Height,
		OutputPath:    outputPath,
		Composition:   comp,
	}

	log.Infof("render: stage=%s frames=%d output=%s", StageRender, spec.TotalFrames, outputPath)
	tracker := newProgressTracker(ctx, onProgress)
	if err := o.backend.Render(ctx, bundle, spec, tracker.update); err != nil {
		return nil, len(records), stageError(KindRenderJob, StageRender, err)
	}
	tracker.update(1)

	result := &model.RenderResult{
		JobID:           jobID,
		OutputPath:      outputPath,
		RecordCount:     len(records),
		DurationSeconds: comp.DurationSeconds(),
		Timestamp:       now,
	}

	for _, f := range o.finalizers {
		if err := f.Finalize(ctx, spec, result); err != nil {
			log.Errorf("render: finalizer %T: %v", f, err)
		}
	}
	return result, len(records), nil
}

// ensureBundle builds the bundle on first use. Concurrent first callers share
// one build that no single caller can cancel; each caller stops waiting when
// its own ctx is done. A failed build is not remembered.
func (o *Orchestrator) ensureBundle(ctx context.Context) (*BundleHandle, error) {
	o.bundleMu.Lock()
	h := o.bundle
	o.bundleMu.Unlock()
	if h != nil {
		return h, nil
	}

	buildCtx := context.WithoutCancel(ctx)
	ch := o.group.DoChan(o.opts.EntryPoint, func() (interface{}, error) {
		o.bundleMu.Lock()
		cached := o.bundle
		o.bundleMu.Unlock()
		if cached != nil {
			return cached, nil
		}

		h, err := o.backend.Bundle(buildCtx, o.opts.EntryPoint)
		if err != nil {
			return nil, err
		}
		o.bundleMu.Lock()
		o.bundle = h
		o.bundleMu.Unlock()
		return h, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*BundleHandle), nil
	}
}

func (o *Orchestrator) record(ctx context.Context, jobID string, req Request, started time.Time, result *model.RenderResult, recordCount int, runErr error) {
	rec := &recorder.JobRecord{
		JobID:       jobID,
		Title:       req.Title,
		TargetDate:  req.TargetDate,
		Category:    req.Category,
		Status:      recorder.StatusSuccess,
		RecordCount: recordCount,
		StartedAt:   started,
		FinishedAt:  o.now(),
	}
	if runErr != nil {
		rec.Status = recorder.StatusFailed
		rec.Kind = string(KindOf(runErr))
		rec.Stage = string(StageOf(runErr))
		rec.Message = runErr.Error()
	} else {
		rec.OutputPath = result.OutputPath
		rec.DurationSeconds = result.DurationSeconds
	}

	if err := o.recorder.RecordJob(context.WithoutCancel(ctx), rec); err != nil {
		logx.WithContext(ctx).Errorf("render: record job: %v", err)
	}
}

func (o *Orchestrator) report(ctx context.Context, result *model.RenderResult, elapsed time.Duration) {
	stats, err := system.HostStats(ctx)
	if err != nil {
		logx.WithContext(ctx).Errorf("render: host stats: %v", err)
		return
	}
	fps := 0.0
	if elapsed > 0 {
		fps = result.DurationSeconds * float64(o.opts.Settings.FPS) / elapsed.Seconds()
	}
	logx.WithContext(ctx).Infof("render: report total=%.2fs effective_fps=%.2f cpus=%d cpu=%.1f%% mem=%.1f%%",
		elapsed.Seconds(), fps, stats.CPUs, stats.CPUPercent, stats.MemoryPercent)
}

// OutputPath builds {dir}/{date}/price-video-{date}-{HH-MM-SS}-{category}.mp4.
func OutputPath(dir, date, category string, now time.Time) string {
	name := fmt.Sprintf("price-video-%s-%s-%s.mp4", date, now.Format("15-04-05"), cleanCategory(category))
	return filepath.Join(dir, date, name)
}

var categoryReplacer = strings.NewReplacer("/", "_", "\\", "_", " ", "_", ":", "_")

func cleanCategory(category string) string {
	c := strings.TrimSpace(category)
	if c == "" {
		return "all"
	}
	return categoryReplacer.Replace(c)
}

func newJobID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf("job-%d", time.Now().UnixNano())
	}
	return id.String()
}
