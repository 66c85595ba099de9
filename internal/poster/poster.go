package poster

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/skip2/go-qrcode"
	"github.com/zeromicro/go-zero/core/logx"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ivlev/price2video/internal/engine"
	"github.com/ivlev/price2video/internal/model"
)

const (
	titleScale = 3
	infoScale  = 2
	margin     = 16
)

var (
	background = color.RGBA{0x10, 0x18, 0x20, 0xff}
	foreground = color.RGBA{0xff, 0xff, 0xff, 0xff}
	muted      = color.RGBA{0xa0, 0xa8, 0xb0, 0xff}
)

// Poster writes a cover image next to each rendered video: the title,
// the record count and date, and a QR code linking to the data source.
type Poster struct {
	URL    string
	Width  int
	Height int
}

// New sizes the cover at a quarter of the video frame.
func New(url string, videoWidth, videoHeight int) *Poster {
	return &Poster{URL: url, Width: videoWidth / 4, Height: videoHeight / 4}
}

// PathFor returns the cover path for a video file.
func PathFor(videoPath string) string {
	return strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".png"
}

func (p *Poster) Finalize(ctx context.Context, spec engine.JobSpec, result *model.RenderResult) (err error) {
	date := spec.Date
	if date == "" {
		date = result.Timestamp.Format("2006-01-02")
	}
	img, err := p.Render(spec.Title, date, result)
	if err != nil {
		return err
	}

	path := PathFor(result.OutputPath)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create poster: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close poster: %w", cerr)
		}
	}()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode poster: %w", err)
	}
	logx.WithContext(ctx).Infof("[*] poster saved: %s", path)
	return nil
}

// Render draws the cover for a video of the given date.
func (p *Poster) Render(title, date string, result *model.RenderResult) (*image.RGBA, error) {
	if p.Width <= 0 || p.Height <= 0 {
		return nil, fmt.Errorf("invalid poster size %dx%d", p.Width, p.Height)
	}
	img := image.NewRGBA(image.Rect(0, 0, p.Width, p.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	lineH := face.Metrics().Height.Ceil()

	y := margin * 2
	maxChars := (p.Width - 2*margin) / (face.Advance * titleScale)
	for _, line := range wrap(title, maxChars) {
		drawText(img, line, margin, y, titleScale, foreground)
		y += (lineH + 2) * titleScale
	}

	y += margin
	info := fmt.Sprintf("%d items", result.RecordCount)
	drawText(img, info, margin, y, infoScale, muted)
	y += (lineH + 2) * infoScale
	drawText(img, date, margin, y, infoScale, muted)

	if p.URL != "" {
		size := p.Width - 4*margin
		if room := p.Height - y - lineH*infoScale - 2*margin; room < size {
			size = room
		}
		if size > 0 {
			qr, err := qrcode.New(p.URL, qrcode.Medium)
			if err != nil {
				return nil, fmt.Errorf("qr code: %w", err)
			}
			code := qr.Image(size)
			at := image.Pt((p.Width-size)/2, p.Height-size-margin)
			draw.Draw(img, image.Rectangle{Min: at, Max: at.Add(image.Pt(size, size))}, code, image.Point{}, draw.Src)
		}
	}
	return img, nil
}

// drawText renders with the fixed 7x13 face and scales it up with nearest
// neighbour so the pixels stay sharp.
func drawText(dst *image.RGBA, text string, x, y, scale int, c color.Color) {
	face := basicfont.Face7x13
	w := font.MeasureString(face, text).Ceil()
	h := face.Metrics().Height.Ceil()
	if w == 0 {
		return
	}

	small := image.NewRGBA(image.Rect(0, 0, w, h))
	d := &font.Drawer{
		Dst:  small,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(0, face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)

	target := image.Rect(x, y, x+w*scale, y+h*scale)
	draw.NearestNeighbor.Scale(dst, target, small, small.Bounds(), draw.Over, nil)
}

func wrap(text string, max int) []string {
	if max < 1 {
		max = 1
	}
	var lines []string
	current := ""
	for _, w := range strings.Fields(text) {
		r := []rune(w)
		if len(r) > max {
			w = string(r[:max-1]) + "."
		}
		switch {
		case current == "":
			current = w
		case len([]rune(current))+1+len([]rune(w)) <= max:
			current += " " + w
		default:
			lines = append(lines, current)
			current = w
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
