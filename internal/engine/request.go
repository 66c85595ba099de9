package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the format of TargetDate and of the per-day output folder.
const DateLayout = "2006-01-02"

// Request asks for one video.
type Request struct {
	Title      string `json:"title"`
	TargetDate string `json:"targetDate,omitempty"`
	Category   string `json:"category,omitempty"`
}

// Validate rejects requests that can never render.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("title is required")
	}
	if r.TargetDate != "" {
		if _, err := time.Parse(DateLayout, r.TargetDate); err != nil {
			return fmt.Errorf("targetDate must be YYYY-MM-DD: %q", r.TargetDate)
		}
	}
	return nil
}

// Date returns TargetDate or today's date in now's location.
func (r Request) Date(now time.Time) string {
	if r.TargetDate != "" {
		return r.TargetDate
	}
	return now.Format(DateLayout)
}
