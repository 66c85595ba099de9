package remotion

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/ivlev/price2video/internal/composition"
	"github.com/ivlev/price2video/internal/engine"
	"github.com/ivlev/price2video/internal/system"
)

type Options struct {
	ProjectDir  string // node project with remotion installed
	Npx         string
	BundleDir   string
	TempDir     string
	Concurrency int
	Codec       string
}

// Backend drives the Remotion CLI: bundle once, then compositions and render per job.
// The composition reads its duration, fps and size from the input props.
type Backend struct {
	opts   Options
	runner system.Runner
}

func NewBackend(opts Options, runner system.Runner) *Backend {
	if runner == nil {
		runner = system.ExecRunner{}
	}
	if opts.Npx == "" {
		opts.Npx = "npx"
	}
	if opts.Codec == "" {
		opts.Codec = "h264"
	}
	if opts.BundleDir == "" {
		opts.BundleDir = filepath.Join(os.TempDir(), "price2video-bundle")
	}
	return &Backend{opts: opts, runner: runner}
}

func (b *Backend) Bundle(ctx context.Context, entryPoint string) (*engine.BundleHandle, error) {
	if entryPoint == "" {
		return nil, fmt.Errorf("empty entry point")
	}
	args := []string{"remotion", "bundle", entryPoint, "--out-dir=" + b.opts.BundleDir}
	log := logx.WithContext(ctx)
	log.Infof("[*] remotion bundle %s", entryPoint)

	if err := b.runner.Run(ctx, b.opts.ProjectDir, b.opts.Npx, args, func(line string) {
		log.Debugf("remotion: %s", line)
	}); err != nil {
		return nil, fmt.Errorf("remotion bundle: %w", err)
	}
	return &engine.BundleHandle{EntryPoint: entryPoint, Location: b.opts.BundleDir}, nil
}

func (b *Backend) SelectComposition(ctx context.Context, h *engine.BundleHandle, id string, props *composition.Composition) (*engine.CompositionMeta, error) {
	propsPath, cleanup, err := b.writeProps(props)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	var (
		mu   sync.Mutex
		meta *engine.CompositionMeta
	)
	args := []string{"remotion", "compositions", h.Location, "--props=" + propsPath}
	if err := b.runner.Run(ctx, b.opts.ProjectDir, b.opts.Npx, args, func(line string) {
		if m, ok := parseComposition(line, id); ok {
			mu.Lock()
			meta = m
			mu.Unlock()
		}
	}); err != nil {
		return nil, fmt.Errorf("remotion compositions: %w", err)
	}
	if meta == nil {
		return nil, fmt.Errorf("%w: %s", engine.ErrCompositionNotFound, id)
	}
	return meta, nil
}

func (b *Backend) Render(ctx context.Context, h *engine.BundleHandle, spec engine.JobSpec, onProgress engine.ProgressFunc) error {
	if spec.Composition == nil {
		return fmt.Errorf("job has no composition")
	}
	propsPath, cleanup, err := b.writeProps(spec.Composition)
	if err != nil {
		return err
	}
	defer cleanup()

	args := []string{
		"remotion", "render", h.Location, spec.CompositionID, spec.OutputPath,
		"--props=" + propsPath,
		fmt.Sprintf("--frames=0-%d", spec.TotalFrames-1),
		"--codec=" + b.opts.Codec,
	}
	if b.opts.Concurrency > 0 {
		args = append(args, fmt.Sprintf("--concurrency=%d", b.opts.Concurrency))
	}

	err = b.runner.Run(ctx, b.opts.ProjectDir, b.opts.Npx, args, func(line string) {
		if f, ok := parseProgress(line); ok && onProgress != nil {
			onProgress(f)
		}
	})
	if err != nil {
		return fmt.Errorf("remotion render: %w", err)
	}
	return nil
}

func (b *Backend) writeProps(c *composition.Composition) (string, func(), error) {
	if c == nil {
		return "", nil, fmt.Errorf("missing composition props")
	}
	f, err := os.CreateTemp(b.opts.TempDir, "props-*.json")
	if err != nil {
		return "", nil, fmt.Errorf("props file: %w", err)
	}
	path := f.Name()
	f.Close()

	if err := composition.WriteProps(c, path); err != nil {
		os.Remove(path)
		return "", nil, err
	}
	return path, func() { os.Remove(path) }, nil
}

// `PriceVideo   30   1080x1920   600 (20.00 sec)`
var compositionLine = regexp.MustCompile(`^(\S+)\s+(\d+)\s+(\d+)x(\d+)\s+(\d+)`)

func parseComposition(line, id string) (*engine.CompositionMeta, bool) {
	m := compositionLine.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil || m[1] != id {
		return nil, false
	}
	fps, _ := strconv.Atoi(m[2])
	w, _ := strconv.Atoi(m[3])
	h, _ := strconv.Atoi(m[4])
	frames, _ := strconv.Atoi(m[5])
	return &engine.CompositionMeta{ID: id, FPS: fps, Width: w, Height: h, DurationFrames: frames}, true
}

var progressLine = regexp.MustCompile(`(Rendered|Encoded)[^\d]*(\d+)/(\d+)`)

// renderShare is the part of the job spent rendering frames; encoding takes the rest.
const renderShare = 0.9

func parseProgress(line string) (float64, bool) {
	m := progressLine.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	done, _ := strconv.Atoi(m[2])
	total, _ := strconv.Atoi(m[3])
	if total <= 0 {
		return 0, false
	}
	f := float64(done) / float64(total)
	if m[1] == "Encoded" {
		return renderShare + (1-renderShare)*f, true
	}
	return renderShare * f, true
}
