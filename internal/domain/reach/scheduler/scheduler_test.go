package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingProcessor struct {
	calls atomic.Int32
}

func (p *countingProcessor) ProcessActiveCampaigns(context.Context) error {
	p.calls.Add(1)
	return nil
}

func TestSchedulerRunsImmediatelyAndPeriodically(t *testing.T) {
	proc := &countingProcessor{}
	s := New(proc, 10*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))

	s.Start(context.Background())
	s.Start(context.Background()) // second start is a no-op

	assert.Eventually(t, func() bool { return proc.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)

	s.Stop()
	s.Stop()

	stopped := proc.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, proc.calls.Load(), "no runs after stop")
}

func TestSchedulerStopsOnContextCancel(t *testing.T) {
	proc := &countingProcessor{}
	s := New(proc, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	assert.Eventually(t, func() bool { return proc.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	s.Stop()
}
