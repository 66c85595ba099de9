package renderer

import (
	"github.com/ivlev/price2video/internal/model"
)

// Style is the visual state of a section at one frame.
type Style struct {
	Opacity    float64 `json:"opacity"`
	Scale      float64 `json:"scale"`
	TranslateY float64 `json:"translateY"` // pixels, positive moves down
}

// Keyframe pins a style to a section-local frame.
type Keyframe struct {
	Frame int
	Style Style
}

// Motion describes the entry/exit animation shared by all sections.
type Motion struct {
	MaxTransitionFrames int     // upper bound for entry and exit
	EntryScale          float64 // scale at the first frame
	EntryOffset         float64 // translateY at the first frame
}

// DefaultMotion is half a second at 30 FPS, rising 40px from 90%.
var DefaultMotion = Motion{
	MaxTransitionFrames: 15,
	EntryScale:          0.9,
	EntryOffset:         40,
}

var rest = Style{Opacity: 1, Scale: 1}

// StyleAt returns the style of section s at the absolute frame.
// Frames outside the section are fully transparent.
func StyleAt(s model.Section, frame int, m Motion) Style {
	if !s.Contains(frame) {
		return Style{Opacity: 0, Scale: 1}
	}
	return InterpolateKeyframes(SectionKeyframes(s, m), frame-s.StartFrame)
}

// SectionKeyframes builds fade-in / hold / fade-out keyframes in section-local frames.
func SectionKeyframes(s model.Section, m Motion) []Keyframe {
	d := s.DurationFrames
	if d <= 1 {
		return []Keyframe{{Frame: 0, Style: rest}}
	}

	// entry and exit together never take more than two thirds of the section
	tr := m.MaxTransitionFrames
	if tr > d/3 {
		tr = d / 3
	}
	if tr < 1 {
		return []Keyframe{{Frame: 0, Style: rest}}
	}

	start := Style{Opacity: 0, Scale: m.EntryScale, TranslateY: m.EntryOffset}
	end := Style{Opacity: 0, Scale: 1, TranslateY: -m.EntryOffset / 2}
	return []Keyframe{
		{Frame: 0, Style: start},
		{Frame: tr, Style: rest},
		{Frame: d - 1 - tr, Style: rest},
		{Frame: d - 1, Style: end},
	}
}

// InterpolateKeyframes calculates the style at a local frame by easing between keyframes.
func InterpolateKeyframes(keyframes []Keyframe, frame int) Style {
	if len(keyframes) == 0 {
		return rest
	}

	if frame <= keyframes[0].Frame {
		return keyframes[0].Style
	}

	last := keyframes[len(keyframes)-1]
	if frame >= last.Frame {
		return last.Style
	}

	var prev, next Keyframe
	for i := 0; i < len(keyframes)-1; i++ {
		if frame >= keyframes[i].Frame && frame < keyframes[i+1].Frame {
			prev = keyframes[i]
			next = keyframes[i+1]
			break
		}
	}

	span := next.Frame - prev.Frame
	if span == 0 {
		return next.Style
	}
	t := easeInOutCubic(float64(frame-prev.Frame) / float64(span))

	return Style{
		Opacity:    lerp(prev.Style.Opacity, next.Style.Opacity, t),
		Scale:      lerp(prev.Style.Scale, next.Style.Scale, t),
		TranslateY: lerp(prev.Style.TranslateY, next.Style.TranslateY, t),
	}
}

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// easeInOutCubic applies smooth easing function
func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - pow(-2*t+2, 3)/2
}

// pow calculates x^n
func pow(x float64, n int) float64 {
	result := 1.0
	for i := 0; i < n; i++ {
		result *= x
	}
	return result
}
