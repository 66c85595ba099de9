package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ivlev/price2video/internal/composition"
	"github.com/ivlev/price2video/internal/effects"
	"github.com/ivlev/price2video/internal/timeline"
)

// Backends.
const (
	BackendFFmpeg   = "ffmpeg"
	BackendRemotion = "remotion"
)

// Video holds the timing and frame constants of the price video.
type Video struct {
	FPS              int     `yaml:"fps"`
	Width            int     `yaml:"width"`
	Height           int     `yaml:"height"`
	TitleSeconds     float64 `yaml:"title_seconds"`
	PageSeconds      float64 `yaml:"page_seconds"`
	EndingSeconds    float64 `yaml:"ending_seconds"`
	PageCapacity     int     `yaml:"page_capacity"`
	AudioLoopSeconds float64 `yaml:"audio_loop_seconds"`
}

// Config holds all application configuration.
type Config struct {
	Video  Video `yaml:"video"`
	Render struct {
		Backend       string `yaml:"backend"`
		EntryPoint    string `yaml:"entry_point"`
		CompositionID string `yaml:"composition_id"`
		OutputDir     string `yaml:"output_dir"`
		TempDir       string `yaml:"temp_dir"`
		Encoder       string `yaml:"encoder"`
		Quality       int    `yaml:"quality"`
		ProjectDir    string `yaml:"project_dir"`
		Concurrency   int    `yaml:"concurrency"`
		ShowStats     bool   `yaml:"show_stats"`
	} `yaml:"render"`
	Audio struct {
		Path      string `yaml:"path"`
		AssetsDir string `yaml:"assets_dir"`
		Probe     bool   `yaml:"probe"`
	} `yaml:"audio"`
	Theme  effects.Theme `yaml:"theme"`
	Source struct {
		BaseURL string `yaml:"base_url"`
		File    string `yaml:"file"`
	} `yaml:"source"`
	Redis struct {
		Addr       string `yaml:"addr"`
		Password   string `yaml:"password"`
		DB         int    `yaml:"db"`
		TTLSeconds int    `yaml:"ttl_seconds"`
	} `yaml:"redis"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"server"`
	Schedule struct {
		Cron       string   `yaml:"cron"`
		Title      string   `yaml:"title"`
		Categories []string `yaml:"categories"`
	} `yaml:"schedule"`
	Poster struct {
		Enabled bool   `yaml:"enabled"`
		URL     string `yaml:"url"`
	} `yaml:"poster"`
}

// Load reads .env, then the YAML file, then environment overrides, then defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PRICE_API_URL"); v != "" {
		c.Source.BaseURL = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		c.Render.OutputDir = v
	}
	if v := os.Getenv("AUDIO_LOOP_PATH"); v != "" {
		c.Audio.Path = v
	}
	if v := os.Getenv("RENDER_BACKEND"); v != "" {
		c.Render.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("RENDER_CRON"); v != "" {
		c.Schedule.Cron = v
	}
}

func (c *Config) applyDefaults() {
	v := &c.Video
	if v.FPS == 0 {
		v.FPS = 30
	}
	if v.Width == 0 {
		v.Width = 1080
	}
	if v.Height == 0 {
		v.Height = 1920
	}
	if v.TitleSeconds == 0 {
		v.TitleSeconds = 2
	}
	if v.PageSeconds == 0 {
		v.PageSeconds = 5
	}
	if v.EndingSeconds == 0 {
		v.EndingSeconds = 3
	}
	if v.PageCapacity == 0 {
		v.PageCapacity = 15
	}
	if v.AudioLoopSeconds == 0 {
		v.AudioLoopSeconds = 14
	}

	r := &c.Render
	if r.Backend == "" {
		r.Backend = BackendFFmpeg
	}
	if r.CompositionID == "" {
		r.CompositionID = composition.DefaultID
	}
	if r.OutputDir == "" {
		r.OutputDir = "output"
	}
	if r.Encoder == "" {
		r.Encoder = "auto"
	}
	if r.EntryPoint == "" {
		if r.Backend == BackendRemotion {
			r.EntryPoint = "src/index.ts"
		} else {
			r.EntryPoint = "assets"
		}
	}

	if c.Audio.AssetsDir == "" {
		c.Audio.AssetsDir = "assets"
	}
	c.Theme = withThemeDefaults(c.Theme)

	if c.Redis.TTLSeconds == 0 {
		c.Redis.TTLSeconds = 600
	}
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8088
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = "0 0 7 * * *"
	}
	if c.Schedule.Title == "" {
		c.Schedule.Title = "Daily price report"
	}
}

func withThemeDefaults(t effects.Theme) effects.Theme {
	d := effects.DefaultTheme
	if t.FontFile == "" {
		t.FontFile = d.FontFile
	}
	if t.Background == "" {
		t.Background = d.Background
	}
	if t.TextColor == "" {
		t.TextColor = d.TextColor
	}
	if t.MutedColor == "" {
		t.MutedColor = d.MutedColor
	}
	if t.UpColor == "" {
		t.UpColor = d.UpColor
	}
	if t.DownColor == "" {
		t.DownColor = d.DownColor
	}
	if t.TitleSize == 0 {
		t.TitleSize = d.TitleSize
	}
	if t.RowSize == 0 {
		t.RowSize = d.RowSize
	}
	if t.Margin == 0 {
		t.Margin = d.Margin
	}
	return t
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if err := c.Video.Validate(); err != nil {
		return err
	}
	switch c.Render.Backend {
	case BackendFFmpeg, BackendRemotion:
	default:
		return fmt.Errorf("render.backend must be %q or %q, got %q", BackendFFmpeg, BackendRemotion, c.Render.Backend)
	}
	if c.Source.BaseURL == "" && c.Source.File == "" {
		return fmt.Errorf("source.base_url or source.file is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}

func (v Video) Validate() error {
	if v.FPS <= 0 {
		return fmt.Errorf("video.fps must be positive")
	}
	if v.Width <= 0 || v.Height <= 0 {
		return fmt.Errorf("video.width and video.height must be positive")
	}
	if v.TitleSeconds < 0 || v.PageSeconds < 0 || v.EndingSeconds < 0 {
		return fmt.Errorf("section durations must not be negative")
	}
	if v.PageCapacity <= 0 {
		return fmt.Errorf("video.page_capacity must be positive")
	}
	if v.AudioLoopSeconds <= 0 {
		return fmt.Errorf("video.audio_loop_seconds must be positive")
	}
	return nil
}

// Frames converts seconds to whole frames at the video frame rate.
func (v Video) Frames(seconds float64) int {
	return int(math.Round(seconds * float64(v.FPS)))
}

// Settings builds composition settings. loopSeconds overrides the configured
// audio loop length when it spans at least one frame, e.g. after probing the file.
func (v Video) Settings(loopSeconds float64) composition.Settings {
	if v.Frames(loopSeconds) < 1 {
		loopSeconds = v.AudioLoopSeconds
	}
	return composition.Settings{
		FPS:    v.FPS,
		Width:  v.Width,
		Height: v.Height,
		Timing: timeline.Params{
			PageCapacity:    v.PageCapacity,
			TitleFrames:     v.Frames(v.TitleSeconds),
			PageFrames:      v.Frames(v.PageSeconds),
			EndingFrames:    v.Frames(v.EndingSeconds),
			AudioLoopFrames: v.Frames(loopSeconds),
		},
	}
}

// Categories returns the scheduled categories; an empty list means one run over all.
func (c *Config) Categories() []string {
	var out []string
	for _, cat := range c.Schedule.Categories {
		if cat = strings.TrimSpace(cat); cat != "" {
			out = append(out, cat)
		}
	}
	if len(out) == 0 {
		return []string{""}
	}
	return out
}
