package model

// SectionKind names a region of the final video.
type SectionKind string

const (
	SectionTitle  SectionKind = "title"
	SectionPage   SectionKind = "page"
	SectionEnding SectionKind = "ending"
)

// Section is a contiguous frame interval [StartFrame, StartFrame+DurationFrames).
// PageIndex is only meaningful for SectionPage and is -1 otherwise.
type Section struct {
	Kind           SectionKind `json:"kind"`
	PageIndex      int         `json:"pageIndex"`
	StartFrame     int         `json:"startFrame"`
	DurationFrames int         `json:"durationFrames"`
}

// EndFrame returns the first frame after the section.
func (s Section) EndFrame() int {
	return s.StartFrame + s.DurationFrames
}

// Contains reports whether frame falls inside the section.
func (s Section) Contains(frame int) bool {
	return frame >= s.StartFrame && frame < s.EndFrame()
}

// AudioSegment is one placement of the background loop.
type AudioSegment struct {
	StartFrame     int `json:"startFrame"`
	DurationFrames int `json:"durationFrames"`
}

// EndFrame returns the first frame after the segment.
func (a AudioSegment) EndFrame() int {
	return a.StartFrame + a.DurationFrames
}

// Timeline is the full frame schedule of one video.
type Timeline struct {
	Sections      []Section      `json:"sections"`
	TotalFrames   int            `json:"totalFrames"`
	AudioSegments []AudioSegment `json:"audioSegments"`
}

// DataPages returns the number of page sections.
func (t *Timeline) DataPages() int {
	n := 0
	for _, s := range t.Sections {
		if s.Kind == SectionPage {
			n++
		}
	}
	return n
}
