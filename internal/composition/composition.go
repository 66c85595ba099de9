package composition

import (
	"errors"
	"fmt"

	"github.com/ivlev/price2video/internal/model"
	"github.com/ivlev/price2video/internal/timeline"
)

// DefaultID is the composition the bundle registers for the price video.
const DefaultID = "PriceVideo"

var (
	ErrNoSections    = errors.New("composition has no sections")
	ErrNoFrames      = errors.New("composition has no frames")
	ErrNoDataSection = errors.New("records present but no data page sections")
)

// Settings are the video-wide values a composition is built with.
type Settings struct {
	FPS    int             `json:"fps"`
	Width  int             `json:"width"`
	Height int             `json:"height"`
	Timing timeline.Params `json:"timing"`
}

func (s Settings) Validate() error {
	if s.FPS <= 0 {
		return fmt.Errorf("fps must be > 0, got %d", s.FPS)
	}
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("frame size must be positive, got %dx%d", s.Width, s.Height)
	}
	return s.Timing.Validate()
}

// Composition is the frozen schedule handed to the section renderers and the render job.
// Values returned by New own their slices; callers must not modify them.
type Composition struct {
	ID            string               `json:"id"`
	Title         string               `json:"title"`
	TotalFrames   int                  `json:"totalFrames"`
	FPS           int                  `json:"fps"`
	Width         int                  `json:"width"`
	Height        int                  `json:"height"`
	PageCapacity  int                  `json:"pageCapacity"`
	Sections      []model.Section      `json:"sections"`
	AudioSegments []model.AudioSegment `json:"audioSegments"`
	Pages         []model.Page         `json:"pages"`
	Records       []model.PriceRecord  `json:"records"`
}

// Build paginates records, lays out the timeline and freezes the result.
func Build(id, title string, records []model.PriceRecord, s Settings) (*Composition, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	pages, tl, err := timeline.BuildFor(records, s.Timing)
	if err != nil {
		return nil, err
	}
	return New(id, title, records, pages, tl, s)
}

// New validates and snapshots an already built timeline.
func New(id, title string, records []model.PriceRecord, pages []model.Page, tl *model.Timeline, s Settings) (*Composition, error) {
	if tl == nil || len(tl.Sections) == 0 {
		return nil, ErrNoSections
	}
	if tl.TotalFrames <= 0 {
		return nil, ErrNoFrames
	}
	if len(records) > 0 && tl.DataPages() == 0 {
		return nil, ErrNoDataSection
	}
	if id == "" {
		id = DefaultID
	}

	recs := append([]model.PriceRecord(nil), records...)
	// re-slice pages onto the private copy of records
	frozen := make([]model.Page, len(pages))
	offset := 0
	for i, p := range pages {
		end := offset + len(p.Records)
		if end > len(recs) {
			return nil, fmt.Errorf("page %d overruns records (%d > %d)", i, end, len(recs))
		}
		frozen[i] = model.Page{Index: p.Index, Records: recs[offset:end:end]}
		offset = end
	}

	return &Composition{
		ID:            id,
		Title:         title,
		TotalFrames:   tl.TotalFrames,
		FPS:           s.FPS,
		Width:         s.Width,
		Height:        s.Height,
		PageCapacity:  s.Timing.PageCapacity,
		Sections:      append([]model.Section(nil), tl.Sections...),
		AudioSegments: append([]model.AudioSegment(nil), tl.AudioSegments...),
		Pages:         frozen,
		Records:       recs,
	}, nil
}

// DurationSeconds is the running time at the composition frame rate.
func (c *Composition) DurationSeconds() float64 {
	return float64(c.TotalFrames) / float64(c.FPS)
}

// SectionAt returns the section that shows frame.
func (c *Composition) SectionAt(frame int) (model.Section, bool) {
	for _, s := range c.Sections {
		if s.Contains(frame) {
			return s, true
		}
	}
	return model.Section{}, false
}

// Page returns the records of a page section.
func (c *Composition) Page(s model.Section) (model.Page, bool) {
	if s.Kind != model.SectionPage || s.PageIndex < 0 || s.PageIndex >= len(c.Pages) {
		return model.Page{}, false
	}
	return c.Pages[s.PageIndex], true
}

// Seconds converts a frame offset to seconds.
func (c *Composition) Seconds(frames int) float64 {
	return float64(frames) / float64(c.FPS)
}
