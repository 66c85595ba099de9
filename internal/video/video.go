package video

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/ivlev/price2video/internal/composition"
	"github.com/ivlev/price2video/internal/effects"
	"github.com/ivlev/price2video/internal/engine"
	"github.com/ivlev/price2video/internal/renderer"
	"github.com/ivlev/price2video/internal/system"
)

// Bundle asset keys.
const (
	AssetAudio   = "audio"
	AssetEncoder = "encoder"
)

type Options struct {
	AssetsDir string // searched for the newest audio file when AudioPath is empty
	AudioPath string
	Encoder   string // "auto" or empty picks the best available H.264 encoder
	Quality   int // 0 picks a default for the encoder
	TempDir   string
	Theme     effects.Theme
	Motion    renderer.Motion
}

// FFmpegBackend renders compositions with a single ffmpeg process: a colour
// source, drawtext layers per section and the tiled audio loop.
type FFmpegBackend struct {
	opts         Options
	runner       system.Runner
	compositions map[string]bool
}

func NewFFmpegBackend(opts Options, runner system.Runner) *FFmpegBackend {
	if runner == nil {
		runner = system.ExecRunner{}
	}
	return &FFmpegBackend{
		opts:         opts,
		runner:       runner,
		compositions: map[string]bool{composition.DefaultID: true},
	}
}

// Bundle resolves the assets directory, the audio loop and the encoder.
func (b *FFmpegBackend) Bundle(ctx context.Context, entryPoint string) (*engine.BundleHandle, error) {
	dir := entryPoint
	if dir == "" {
		dir = b.opts.AssetsDir
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("assets dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("assets dir %s is not a directory", dir)
	}

	audio := b.opts.AudioPath
	if audio == "" {
		if audio, err = system.FindLatestAudio(dir); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat(audio); err != nil {
		return nil, fmt.Errorf("audio loop: %w", err)
	}

	encoder := b.opts.Encoder
	if encoder == "" || encoder == "auto" {
		encoder = system.GetBestH264Encoder(ctx)
	}
	logx.WithContext(ctx).Infof("[*] ffmpeg bundle: assets=%s audio=%s encoder=%s", dir, audio, encoder)

	return &engine.BundleHandle{
		EntryPoint: entryPoint,
		Location:   dir,
		Assets:     map[string]string{AssetAudio: audio, AssetEncoder: encoder},
	}, nil
}

func (b *FFmpegBackend) SelectComposition(_ context.Context, _ *engine.BundleHandle, id string, props *composition.Composition) (*engine.CompositionMeta, error) {
	if !b.compositions[id] {
		return nil, fmt.Errorf("%w: %s", engine.ErrCompositionNotFound, id)
	}
	if props == nil {
		return nil, errors.New("missing composition props")
	}
	return &engine.CompositionMeta{
		ID:             id,
		DurationFrames: props.TotalFrames,
		FPS:            props.FPS,
		Width:          props.Width,
		Height:         props.Height,
	}, nil
}

func (b *FFmpegBackend) Render(ctx context.Context, h *engine.BundleHandle, spec engine.JobSpec, onProgress engine.ProgressFunc) error {
	if spec.Composition == nil {
		return errors.New("job has no composition")
	}
	if h == nil {
		return errors.New("job has no bundle")
	}

	tmpDir, err := os.MkdirTemp(b.opts.TempDir, "price2video-")
	if err != nil {
		return fmt.Errorf("temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	graph, err := effects.BuildVideoFilter(spec.Composition, b.opts.Theme, b.opts.Motion, "[0:v]", "[vout]", textFilesIn(tmpDir))
	if err != nil {
		return err
	}

	encoder := h.Assets[AssetEncoder]
	quality := b.opts.Quality
	if quality <= 0 {
		quality = defaultQuality(encoder)
	}
	args := BuildArgs(spec, graph, h.Assets[AssetAudio], encoder, b.opts.Theme.Background, quality)
	progress := newProgressParser(spec.TotalFrames, spec.FPS, onProgress)
	if err := b.runner.Run(ctx, "", "ffmpeg", args, progress.line); err != nil {
		return fmt.Errorf("ffmpeg render: %w", err)
	}
	return nil
}

func textFilesIn(dir string) effects.TextFiles {
	return func(key, text string) (string, error) {
		path := filepath.Join(dir, key+".txt")
		if err := os.WriteFile(path, []byte(text), 0644); err != nil {
			return "", err
		}
		return path, nil
	}
}

// BuildArgs assembles the ffmpeg command line for one job. Duration, frame
// rate and size come from the job spec, not from the composition defaults.
func BuildArgs(spec engine.JobSpec, videoGraph, audioPath, encoder, background string, quality int) []string {
	if background == "" {
		background = "black"
	}
	seconds := float64(spec.TotalFrames) / float64(spec.FPS)

	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-nostats", "-progress", "pipe:2",
		"-f", "lavfi",
		"-i", fmt.Sprintf("color=c=%s:s=%dx%d:r=%d:d=%s", background, spec.Width, spec.Height, spec.FPS, secs(seconds)),
	}

	graph := videoGraph
	if audioPath != "" {
		args = append(args, "-i", audioPath)
		graph += ";" + AudioGraph(spec.Composition, "[1:a]", "[aout]")
	}
	args = append(args, "-filter_complex", graph, "-map", "[vout]")
	if audioPath != "" {
		args = append(args, "-map", "[aout]", "-c:a", "aac", "-b:a", "192k")
	}

	args = append(args,
		"-frames:v", fmt.Sprintf("%d", spec.TotalFrames),
		"-r", fmt.Sprintf("%d", spec.FPS),
		"-c:v", encoder, "-pix_fmt", "yuv420p",
	)
	args = append(args, qualityArgs(encoder, quality)...)
	args = append(args, "-movflags", "+faststart", spec.OutputPath)
	return args
}

// AudioGraph cuts the loop once per audio segment and joins the cuts back to
// back, so the soundtrack follows the timeline's tiling exactly.
func AudioGraph(c *composition.Composition, in, out string) string {
	segs := c.AudioSegments
	if len(segs) == 0 {
		return in + "anull" + out
	}

	trim := func(seconds float64) string {
		return fmt.Sprintf("apad,atrim=duration=%s,asetpts=PTS-STARTPTS", secs(seconds))
	}
	if len(segs) == 1 {
		return in + trim(c.Seconds(segs[0].DurationFrames)) + out
	}

	var sb strings.Builder
	sb.WriteString(in)
	fmt.Fprintf(&sb, "asplit=%d", len(segs))
	for i := range segs {
		fmt.Fprintf(&sb, "[loop%d]", i)
	}
	for i, s := range segs {
		fmt.Fprintf(&sb, ";[loop%d]%s[seg%d]", i, trim(c.Seconds(s.DurationFrames)), i)
	}
	sb.WriteString(";")
	for i := range segs {
		fmt.Fprintf(&sb, "[seg%d]", i)
	}
	fmt.Fprintf(&sb, "concat=n=%d:v=0:a=1%s", len(segs), out)
	return sb.String()
}

func defaultQuality(encoder string) int {
	switch encoder {
	case "h264_videotoolbox":
		return 75
	case "h264_nvenc":
		return 28
	default:
		return 23
	}
}

func qualityArgs(encoder string, quality int) []string {
	switch encoder {
	case "h264_videotoolbox":
		// no -q:v on every build, use bitrate
		return []string{"-b:v", fmt.Sprintf("%dk", quality*100)}
	case "h264_nvenc":
		return []string{"-cq", fmt.Sprintf("%d", quality)}
	default: // libx264
		return []string{"-crf", fmt.Sprintf("%d", quality), "-preset", "medium"}
	}
}

func secs(v float64) string {
	return fmt.Sprintf("%.6f", v)
}
