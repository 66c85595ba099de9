package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/price2video/internal/timeline"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"PRICE_API_URL", "OUTPUT_DIR", "AUDIO_LOOP_PATH", "RENDER_BACKEND",
		"REDIS_ADDR", "SQLITE_PATH", "API_PORT", "RENDER_CRON"} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Video.FPS)
	assert.Equal(t, 1080, cfg.Video.Width)
	assert.Equal(t, 1920, cfg.Video.Height)
	assert.Equal(t, 15, cfg.Video.PageCapacity)
	assert.Equal(t, BackendFFmpeg, cfg.Render.Backend)
	assert.Equal(t, "PriceVideo", cfg.Render.CompositionID)
	assert.Equal(t, 8088, cfg.Server.Port)
	assert.Equal(t, "0 0 7 * * *", cfg.Schedule.Cron)
	assert.Equal(t, "0x101820", cfg.Theme.Background)

	assert.Equal(t, timeline.Params{
		PageCapacity:    15,
		TitleFrames:     60,
		PageFrames:      150,
		EndingFrames:    90,
		AudioLoopFrames: 420,
	}, cfg.Video.Settings(0).Timing)
}

func TestLoadFileAndEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
video:
  fps: 25
  page_capacity: 10
render:
  backend: remotion
source:
  base_url: http://file.example
schedule:
  categories: ["Vegetables", " ", "Fruit"]
theme:
  row_size: 40
`), 0644))

	t.Setenv("PRICE_API_URL", "http://env.example")
	t.Setenv("API_PORT", "9000")
	t.Setenv("RENDER_CRON", "0 30 6 * * *")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 25, cfg.Video.FPS)
	assert.Equal(t, 10, cfg.Video.PageCapacity)
	assert.Equal(t, BackendRemotion, cfg.Render.Backend)
	assert.Equal(t, "src/index.ts", cfg.Render.EntryPoint)
	assert.Equal(t, "http://env.example", cfg.Source.BaseURL)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "0 30 6 * * *", cfg.Schedule.Cron)
	assert.Equal(t, []string{"Vegetables", "Fruit"}, cfg.Categories())
	assert.Equal(t, 40, cfg.Theme.RowSize)
	assert.Equal(t, 96, cfg.Theme.TitleSize)
	assert.Equal(t, 50, cfg.Video.Settings(0).Timing.TitleFrames)
}

func TestLoadBadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("video: [oops"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Error(t, cfg.Validate(), "source required")

	cfg.Source.File = "prices.json"
	require.NoError(t, cfg.Validate())

	cfg.Render.Backend = "blender"
	assert.Error(t, cfg.Validate())
	cfg.Render.Backend = BackendFFmpeg

	cfg.Video.AudioLoopSeconds = -1
	assert.Error(t, cfg.Validate())
}

func TestSettingsUsesProbedLoop(t *testing.T) {
	v := Video{FPS: 30, Width: 1080, Height: 1920, TitleSeconds: 2, PageSeconds: 5, EndingSeconds: 3, PageCapacity: 15, AudioLoopSeconds: 14}
	assert.Equal(t, 377, v.Settings(12.56).Timing.AudioLoopFrames)
	assert.Equal(t, 420, v.Settings(0).Timing.AudioLoopFrames)
}

func TestSettingsIgnoresSubFrameLoop(t *testing.T) {
	v := Video{FPS: 30, Width: 1080, Height: 1920, TitleSeconds: 2, PageSeconds: 5, EndingSeconds: 3, PageCapacity: 15, AudioLoopSeconds: 14}
	assert.Equal(t, 420, v.Settings(0.01).Timing.AudioLoopFrames)
	assert.Equal(t, 1, v.Settings(0.02).Timing.AudioLoopFrames)
	assert.NoError(t, v.Settings(0.01).Timing.Validate())
}

func TestCategoriesDefault(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, []string{""}, cfg.Categories())
}
