package timeline

import (
	"fmt"

	"github.com/ivlev/price2video/internal/model"
)

// Build lays out title, one section per page and ending back to back starting at
// frame 0, then tiles the audio loop over the result.
func Build(pages []model.Page, titleFrames, pageFrames, endingFrames, audioLoopFrames int) (*model.Timeline, error) {
	if titleFrames < 0 || pageFrames < 0 || endingFrames < 0 {
		return nil, fmt.Errorf("section durations must be >= 0 (title=%d page=%d ending=%d)",
			titleFrames, pageFrames, endingFrames)
	}

	sections := make([]model.Section, 0, len(pages)+2)
	sections = append(sections, model.Section{
		Kind:           model.SectionTitle,
		PageIndex:      -1,
		StartFrame:     0,
		DurationFrames: titleFrames,
	})
	for i := range pages {
		sections = append(sections, model.Section{
			Kind:           model.SectionPage,
			PageIndex:      i,
			StartFrame:     titleFrames + i*pageFrames,
			DurationFrames: pageFrames,
		})
	}
	sections = append(sections, model.Section{
		Kind:           model.SectionEnding,
		PageIndex:      -1,
		StartFrame:     titleFrames + len(pages)*pageFrames,
		DurationFrames: endingFrames,
	})

	// One record per page at capacity 1 yields the same page count, so the
	// calculator must agree with the layout above.
	expected, err := TotalFrames(len(pages), 1, titleFrames, pageFrames, endingFrames)
	if err != nil {
		return nil, err
	}
	total := checkContiguous(sections)
	if total != expected {
		panic(fmt.Sprintf("timeline: sections sum to %d frames, calculator says %d", total, expected))
	}

	segments, err := AudioSegments(total, audioLoopFrames)
	if err != nil {
		return nil, err
	}

	return &model.Timeline{
		Sections:      sections,
		TotalFrames:   total,
		AudioSegments: segments,
	}, nil
}

// BuildFor paginates records and builds their timeline with p.
func BuildFor(records []model.PriceRecord, p Params) ([]model.Page, *model.Timeline, error) {
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}
	pages, err := Paginate(records, p.PageCapacity)
	if err != nil {
		return nil, nil, err
	}
	tl, err := Build(pages, p.TitleFrames, p.PageFrames, p.EndingFrames, p.AudioLoopFrames)
	if err != nil {
		return nil, nil, err
	}
	return pages, tl, nil
}

// AudioSegments tiles [0, totalFrames) with loops of loopFrames frames.
// Only the last segment may be shorter, and it is never empty.
func AudioSegments(totalFrames, loopFrames int) ([]model.AudioSegment, error) {
	if loopFrames <= 0 {
		return nil, fmt.Errorf("audio loop must be > 0 frames, got %d", loopFrames)
	}
	if totalFrames < 0 {
		return nil, fmt.Errorf("total frames must be >= 0, got %d", totalFrames)
	}

	loopCount := (totalFrames + loopFrames - 1) / loopFrames
	segments := make([]model.AudioSegment, 0, loopCount)
	for k := 0; k < loopCount; k++ {
		start := k * loopFrames
		end := start + loopFrames
		if end > totalFrames {
			end = totalFrames
		}
		segments = append(segments, model.AudioSegment{
			StartFrame:     start,
			DurationFrames: end - start,
		})
	}
	return segments, nil
}

// checkContiguous panics if sections leave a gap or overlap and returns the end frame.
func checkContiguous(sections []model.Section) int {
	next := 0
	for i, s := range sections {
		if s.StartFrame != next {
			panic(fmt.Sprintf("timeline: section %d (%s) starts at %d, want %d", i, s.Kind, s.StartFrame, next))
		}
		next = s.EndFrame()
	}
	return next
}
