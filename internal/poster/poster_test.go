package poster

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/price2video/internal/engine"
	"github.com/ivlev/price2video/internal/model"
)

func TestPathFor(t *testing.T) {
	assert.Equal(t, "/out/2024-05-01/price-video-2024-05-01-09-00-00-all.png",
		PathFor("/out/2024-05-01/price-video-2024-05-01-09-00-00-all.mp4"))
}

func TestFinalizeWritesPNG(t *testing.T) {
	dir := t.TempDir()
	result := &model.RenderResult{
		OutputPath:  filepath.Join(dir, "video.mp4"),
		RecordCount: 37,
		Timestamp:   time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}
	p := New("https://prices.example.com", 1080, 1920)

	require.NoError(t, p.Finalize(context.Background(), engine.JobSpec{Title: "Daily vegetable prices"}, result))

	f, err := os.Open(filepath.Join(dir, "video.png"))
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 270, img.Bounds().Dx())
	assert.Equal(t, 480, img.Bounds().Dy())
}

func TestRenderDrawsQRCode(t *testing.T) {
	result := &model.RenderResult{RecordCount: 1, Timestamp: time.Now()}

	without, err := New("", 1080, 1920).Render("Prices", "2024-05-01", result)
	require.NoError(t, err)
	with, err := New("https://prices.example.com", 1080, 1920).Render("Prices", "2024-05-01", result)
	require.NoError(t, err)

	// the QR code is centred at the bottom on a white quiet zone
	x, y := with.Bounds().Dx()/2, with.Bounds().Dy()-margin-2
	assert.Equal(t, background, without.RGBAAt(x, y))
	assert.NotEqual(t, background, with.RGBAAt(x, y))
}

func TestFinalizeUsesFolderDate(t *testing.T) {
	dir := t.TempDir()
	p := New("", 1080, 1920)
	result := &model.RenderResult{RecordCount: 3, Timestamp: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}

	backfill, err := p.Render("Prices", "2024-04-20", result)
	require.NoError(t, err)
	today, err := p.Render("Prices", "2024-05-01", result)
	require.NoError(t, err)
	require.NotEqual(t, today.Pix, backfill.Pix)

	result.OutputPath = filepath.Join(dir, "video.mp4")
	require.NoError(t, p.Finalize(context.Background(), engine.JobSpec{Title: "Prices", Date: "2024-04-20"}, result))
	f, err := os.Open(filepath.Join(dir, "video.png"))
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assertSameImage(t, backfill, img)
}

func assertSameImage(t *testing.T, want *image.RGBA, got image.Image) {
	t.Helper()
	require.Equal(t, want.Bounds(), got.Bounds())
	for y := want.Bounds().Min.Y; y < want.Bounds().Max.Y; y++ {
		for x := want.Bounds().Min.X; x < want.Bounds().Max.X; x++ {
			if !assert.Equal(t, want.RGBAAt(x, y), color.RGBAModel.Convert(got.At(x, y)), "pixel %d,%d", x, y) {
				return
			}
		}
	}
}

func TestRenderRejectsBadSize(t *testing.T) {
	_, err := (&Poster{}).Render("x", "2024-05-01", &model.RenderResult{})
	assert.Error(t, err)
}

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{"Daily", "prices"}, wrap("Daily prices", 8))
	assert.Equal(t, []string{"abc."}, wrap("abcdefgh", 4))
	assert.Empty(t, wrap("  ", 4))
}
