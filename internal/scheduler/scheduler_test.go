package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/price2video/internal/engine"
	"github.com/ivlev/price2video/internal/model"
)

type fakeRenderer struct {
	mu   sync.Mutex
	reqs []engine.Request
	fail map[string]bool
}

func (f *fakeRenderer) Run(_ context.Context, req engine.Request, _ engine.ProgressFunc) (*model.RenderResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	if f.fail[req.Category] {
		return nil, errors.New("no data")
	}
	return &model.RenderResult{OutputPath: "/out/" + req.Category + ".mp4"}, nil
}

func TestRunNowRendersEveryCategory(t *testing.T) {
	r := &fakeRenderer{fail: map[string]bool{"Fruit": true}}
	s := NewScheduler(context.Background(), r, "Daily prices", []string{"Vegetables", "Fruit", "Meat"})

	done := s.RunNow()
	require.Len(t, done, 2)
	assert.Equal(t, "/out/Vegetables.mp4", done[0].OutputPath)
	assert.Equal(t, "/out/Meat.mp4", done[1].OutputPath)

	require.Len(t, r.reqs, 3)
	assert.Equal(t, "Daily prices: Fruit", r.reqs[1].Title)
	assert.Empty(t, r.reqs[1].TargetDate)
}

func TestRunNowReturnsOnlyItsOwnRenders(t *testing.T) {
	r := &fakeRenderer{}
	s := NewScheduler(context.Background(), r, "t", []string{"a", "b"})
	require.Len(t, s.RunNow(), 2)
	require.Len(t, s.RunNow(), 2)
	assert.Len(t, r.reqs, 4)
}

func TestRunNowAllCategories(t *testing.T) {
	r := &fakeRenderer{}
	s := NewScheduler(context.Background(), r, "Daily prices", []string{""})
	s.RunNow()
	require.Len(t, r.reqs, 1)
	assert.Equal(t, engine.Request{Title: "Daily prices"}, r.reqs[0])
}

func TestRunNowStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &fakeRenderer{}
	s := NewScheduler(ctx, r, "t", []string{"a", "b"})
	assert.Empty(t, s.RunNow())
	assert.Empty(t, r.reqs)
}

func TestRegister(t *testing.T) {
	s := NewScheduler(context.Background(), &fakeRenderer{}, "t", []string{""})
	require.NoError(t, s.Register("0 0 7 * * *"))
	assert.Len(t, s.Cron.Entries(), 1)
	assert.Error(t, s.Register("every morning"))

	s.Start()
	s.Stop()
}
