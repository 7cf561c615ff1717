package common

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/ternarybob/arbor"
	"golang.org/x/sync/errgroup"
)

// TaskPool runs batches of independent tasks with bounded concurrency.
// One pool is created at startup and shared by every rollup run.
type TaskPool struct {
	size   int
	logger arbor.ILogger
}

// NewTaskPool creates a pool running at most size tasks at once
func NewTaskPool(size int, logger arbor.ILogger) *TaskPool {
	if size < 1 {
		size = 1
	}
	return &TaskPool{size: size, logger: logger}
}

// Size returns the concurrency limit
func (p *TaskPool) Size() int {
	return p.size
}

// Run executes tasks and blocks until all have returned. A panicking task is
// recovered and logged; the remaining tasks still run.
func (p *TaskPool) Run(ctx context.Context, tasks ...func(ctx context.Context)) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.size)

	for i, task := range tasks {
		name := fmt.Sprintf("task-%d", i)
		atomic.AddInt64(&goroutineCounter, 1)
		g.Go(func() error {
			defer recoverPanic(p.logger, name)
			task(gctx)
			return nil
		})
	}
	_ = g.Wait()
}
