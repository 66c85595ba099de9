package timeline

import "fmt"

// Params are the frame-level inputs of the schedule. They come from configuration
// and are passed explicitly so every function here stays pure.
type Params struct {
	PageCapacity    int `json:"pageCapacity"`
	TitleFrames     int `json:"titleFrames"`
	PageFrames      int `json:"pageFrames"`
	EndingFrames    int `json:"endingFrames"`
	AudioLoopFrames int `json:"audioLoopFrames"`
}

// Validate checks that the parameters can produce a schedule.
func (p Params) Validate() error {
	if p.PageCapacity < 1 {
		return fmt.Errorf("page capacity must be >= 1, got %d", p.PageCapacity)
	}
	if p.TitleFrames < 0 || p.PageFrames < 0 || p.EndingFrames < 0 {
		return fmt.Errorf("section durations must be >= 0 (title=%d page=%d ending=%d)",
			p.TitleFrames, p.PageFrames, p.EndingFrames)
	}
	if p.AudioLoopFrames <= 0 {
		return fmt.Errorf("audio loop must be > 0 frames, got %d", p.AudioLoopFrames)
	}
	return nil
}

// PageCount returns ceil(recordCount / pageCapacity); zero records give zero pages.
func PageCount(recordCount, pageCapacity int) int {
	if recordCount <= 0 || pageCapacity <= 0 {
		return 0
	}
	return (recordCount + pageCapacity - 1) / pageCapacity
}

// TotalFrames returns the length of a video with recordCount records:
// title + ceil(recordCount/pageCapacity)*page + ending.
func TotalFrames(recordCount, pageCapacity, titleFrames, pageFrames, endingFrames int) (int, error) {
	if recordCount < 0 {
		return 0, fmt.Errorf("record count must be >= 0, got %d", recordCount)
	}
	if pageCapacity < 1 {
		return 0, fmt.Errorf("page capacity must be >= 1, got %d", pageCapacity)
	}
	if titleFrames < 0 || pageFrames < 0 || endingFrames < 0 {
		return 0, fmt.Errorf("section durations must be >= 0 (title=%d page=%d ending=%d)",
			titleFrames, pageFrames, endingFrames)
	}
	return titleFrames + PageCount(recordCount, pageCapacity)*pageFrames + endingFrames, nil
}

// TotalFramesFor is TotalFrames with the durations taken from p.
func TotalFramesFor(recordCount int, p Params) (int, error) {
	return TotalFrames(recordCount, p.PageCapacity, p.TitleFrames, p.PageFrames, p.EndingFrames)
}
