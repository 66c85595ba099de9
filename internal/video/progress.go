package video

import (
	"strconv"
	"strings"

	"github.com/ivlev/price2video/internal/engine"
)

// progressParser turns `-progress` key=value lines into a completed fraction.
type progressParser struct {
	totalFrames int
	fps         int
	onProgress  engine.ProgressFunc
}

func newProgressParser(totalFrames, fps int, onProgress engine.ProgressFunc) *progressParser {
	return &progressParser{totalFrames: totalFrames, fps: fps, onProgress: onProgress}
}

func (p *progressParser) line(line string) {
	if p.onProgress == nil || p.totalFrames <= 0 {
		return
	}
	if fraction, ok := p.parse(line); ok {
		p.onProgress(fraction)
	}
}

func (p *progressParser) parse(line string) (float64, bool) {
	key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
	if !ok {
		return 0, false
	}
	value = strings.TrimSpace(value)

	switch key {
	case "frame":
		frame, err := strconv.Atoi(value)
		if err != nil {
			return 0, false
		}
		return float64(frame) / float64(p.totalFrames), true
	case "out_time_us":
		us, err := strconv.ParseInt(value, 10, 64)
		if err != nil || p.fps <= 0 {
			return 0, false
		}
		total := float64(p.totalFrames) / float64(p.fps) * 1e6
		return float64(us) / total, true
	case "progress":
		if value == "end" {
			return 1, true
		}
	}
	return 0, false
}
