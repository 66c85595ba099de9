package main

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/zeromicro/go-zero/core/logx"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/price2video/internal/api"
	"github.com/ivlev/price2video/internal/config"
	"github.com/ivlev/price2video/internal/engine"
	"github.com/ivlev/price2video/internal/poster"
	"github.com/ivlev/price2video/internal/recorder"
	"github.com/ivlev/price2video/internal/remotion"
	"github.com/ivlev/price2video/internal/renderer"
	"github.com/ivlev/price2video/internal/scheduler"
	"github.com/ivlev/price2video/internal/source"
	"github.com/ivlev/price2video/internal/system"
	"github.com/ivlev/price2video/internal/video"
)

const cachePrefix = "price2video:"

// app holds the long-lived dependencies shared by CLI and serve mode.
type app struct {
	Orchestrator *engine.Orchestrator
	Recorder     recorder.Recorder
	redis        *redis.Client
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}

	fetcher := a.buildFetcher(ctx, cfg)

	rec, err := buildRecorder(cfg)
	if err != nil {
		return nil, err
	}
	a.Recorder = rec

	opts := []engine.Option{engine.WithRecorder(rec)}
	if cfg.Poster.Enabled {
		url := cfg.Poster.URL
		if url == "" {
			url = cfg.Source.BaseURL
		}
		opts = append(opts, engine.WithFinalizers(poster.New(url, cfg.Video.Width, cfg.Video.Height)))
	}

	a.Orchestrator = engine.New(engine.Options{
		EntryPoint:    cfg.Render.EntryPoint,
		CompositionID: cfg.Render.CompositionID,
		OutputDir:     cfg.Render.OutputDir,
		Settings:      cfg.Video.Settings(probeLoop(ctx, cfg)),
		ShowStats:     cfg.Render.ShowStats,
	}, fetcher, buildBackend(cfg), opts...)
	return a, nil
}

func (a *app) buildFetcher(ctx context.Context, cfg *config.Config) source.Fetcher {
	var f source.Fetcher
	if cfg.Source.File != "" {
		f = source.NewFileFetcher(cfg.Source.File)
	} else {
		f = source.NewHTTPFetcher(cfg.Source.BaseURL)
	}

	if cfg.Redis.Addr == "" {
		return f
	}
	client, err := source.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logx.Errorf("[!] record cache disabled: %v", err)
		return f
	}
	a.redis = client
	ttl := time.Duration(cfg.Redis.TTLSeconds) * time.Second
	return source.NewCachedFetcher(f, source.NewRedisCache(client, cachePrefix), ttl)
}

func buildRecorder(cfg *config.Config) (recorder.Recorder, error) {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder(), nil
	}
	return recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
}

func buildBackend(cfg *config.Config) engine.Backend {
	if cfg.Render.Backend == config.BackendRemotion {
		return remotion.NewBackend(remotion.Options{
			ProjectDir:  cfg.Render.ProjectDir,
			TempDir:     cfg.Render.TempDir,
			Concurrency: cfg.Render.Concurrency,
		}, system.ExecRunner{})
	}
	return video.NewFFmpegBackend(video.Options{
		AssetsDir: cfg.Audio.AssetsDir,
		AudioPath: cfg.Audio.Path,
		Encoder:   cfg.Render.Encoder,
		Quality:   cfg.Render.Quality,
		TempDir:   cfg.Render.TempDir,
		Theme:     cfg.Theme,
		Motion:    renderer.DefaultMotion,
	}, system.ExecRunner{})
}

// probeLoop measures the audio loop when configured to; zero keeps the
// configured length.
func probeLoop(ctx context.Context, cfg *config.Config) float64 {
	if !cfg.Audio.Probe {
		return 0
	}
	path := cfg.Audio.Path
	if path == "" {
		latest, err := system.FindLatestAudio(cfg.Audio.AssetsDir)
		if err != nil {
			logx.Errorf("[!] audio probe: %v", err)
			return 0
		}
		path = latest
	}
	seconds, err := system.GetAudioDuration(ctx, path)
	if err != nil {
		logx.Errorf("[!] audio probe: %v", err)
		return 0
	}
	if cfg.Video.Frames(seconds) < 1 {
		logx.Errorf("[!] audio probe: %s is shorter than one frame (%.4fs), using %.2fs", path, seconds, cfg.Video.AudioLoopSeconds)
		return 0
	}
	logx.Infof("[*] audio loop %s measured at %.2fs", path, seconds)
	return seconds
}

func (a *app) Close() {
	if err := a.Recorder.Close(); err != nil {
		logx.Errorf("close recorder: %v", err)
	}
	if a.redis != nil {
		a.redis.Close()
	}
}

// serve runs the HTTP API and the scheduler until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, a *app) error {
	server, err := api.NewServer(cfg.Server.Host, cfg.Server.Port)
	if err != nil {
		return err
	}
	api.RegisterHandlers(server, api.NewServiceContext(a.Orchestrator, a.Recorder))

	sched := scheduler.NewScheduler(ctx, a.Orchestrator, cfg.Schedule.Title, cfg.Categories())
	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logx.Infof("[*] listening on %s:%d", cfg.Server.Host, cfg.Server.Port)
		server.Start()
		return nil
	})
	g.Go(func() error {
		sched.Start()
		<-gctx.Done()
		sched.Stop()
		server.Stop()
		return nil
	})
	return g.Wait()
}
