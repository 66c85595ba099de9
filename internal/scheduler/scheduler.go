package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/ivlev/price2video/internal/engine"
	"github.com/ivlev/price2video/internal/model"
)

// Renderer is the part of the orchestrator the scheduler needs.
type Renderer interface {
	Run(ctx context.Context, req engine.Request, onProgress engine.ProgressFunc) (*model.RenderResult, error)
}

// Scheduler renders the daily videos on a cron schedule.
type Scheduler struct {
	Cron       *cron.Cron
	Renderer   Renderer
	Title      string
	Categories []string
	Ctx        context.Context
}

// NewScheduler creates a Scheduler. Runs that are still going when the next
// tick fires are not started twice, and a panicking run is logged.
func NewScheduler(ctx context.Context, r Renderer, title string, categories []string) *Scheduler {
	logger := cronLogger{}
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
			cron.WithLogger(logger),
		),
		Renderer:   r,
		Title:      title,
		Categories: categories,
		Ctx:        ctx,
	}
}

// Register adds the daily render task.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.dailyTask); err != nil {
		return fmt.Errorf("register daily render: %w", err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.Cron.Start()
	logx.Info("[*] scheduler started")
}

// Stop stops the scheduler and waits for a running render to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	logx.Info("[*] scheduler stopped")
}

// RunNow executes the daily task immediately.
func (s *Scheduler) RunNow() []*model.RenderResult {
	return s.renderAll()
}

func (s *Scheduler) dailyTask() {
	s.renderAll()
}

// renderAll renders one video per category; a failed category does not stop the rest.
func (s *Scheduler) renderAll() []*model.RenderResult {
	var done []*model.RenderResult
	for _, cat := range s.Categories {
		if s.Ctx.Err() != nil {
			return done
		}
		req := engine.Request{Title: titleFor(s.Title, cat), Category: cat}
		logx.Infof("[*] scheduled render category=%q", cat)

		res, err := s.Renderer.Run(s.Ctx, req, nil)
		if err != nil {
			logx.Errorf("[!] scheduled render category=%q: %v", cat, err)
			continue
		}
		done = append(done, res)
	}
	logx.Infof("[*] scheduled run finished: %d/%d rendered", len(done), len(s.Categories))
	return done
}

func titleFor(title, category string) string {
	if category == "" {
		return title
	}
	return title + ": " + category
}

type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logx.Debugf("cron: %s %v", msg, keysAndValues)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logx.Errorf("cron: %s: %v %v", msg, err, keysAndValues)
}
