package engine

import (
	"context"
	"sync"

	"github.com/zeromicro/go-zero/core/logx"
)

// progressTracker forwards backend progress clamped to [0,1] and never
// decreasing, even when updates arrive from several goroutines.
type progressTracker struct {
	ctx      context.Context
	forward  ProgressFunc
	mu       sync.Mutex
	last     float64
	lastStep int
}

func newProgressTracker(ctx context.Context, forward ProgressFunc) *progressTracker {
	return &progressTracker{ctx: ctx, forward: forward, last: -1, lastStep: -1}
}

func (p *progressTracker) update(fraction float64) {
	if fraction != fraction { // NaN
		return
	}
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if fraction <= p.last {
		return
	}
	p.last = fraction
	if step := int(fraction * 10); step > p.lastStep {
		p.lastStep = step
		logx.WithContext(p.ctx).Infof("render: progress=%d%%", step*10)
	}
	if p.forward != nil {
		p.forward(fraction)
	}
}
