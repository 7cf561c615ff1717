package common

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"
)

func TestTaskPool_RunsAllTasks(t *testing.T) {
	pool := NewTaskPool(3, arbor.NewLogger())

	var mu sync.Mutex
	results := make([]int, 16)
	tasks := make([]func(context.Context), len(results))
	for i := range tasks {
		i := i
		tasks[i] = func(context.Context) {
			mu.Lock()
			results[i] = i * i
			mu.Unlock()
		}
	}
	pool.Run(context.Background(), tasks...)

	for i, v := range results {
		assert.Equal(t, i*i, v)
	}
}

func TestTaskPool_RespectsLimit(t *testing.T) {
	pool := NewTaskPool(2, arbor.NewLogger())

	var running, peak int32
	task := func(context.Context) {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&running, -1)
	}
	pool.Run(context.Background(), task, task, task, task, task, task)

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
	assert.Equal(t, 2, pool.Size())
}

func TestTaskPool_RecoversPanics(t *testing.T) {
	pool := NewTaskPool(2, arbor.NewLogger())

	var done int32
	pool.Run(context.Background(),
		func(context.Context) { panic("boom") },
		func(context.Context) { atomic.AddInt32(&done, 1) },
		func(context.Context) { atomic.AddInt32(&done, 1) },
	)
	assert.Equal(t, int32(2), atomic.LoadInt32(&done))
}

func TestNewTaskPool_MinimumSize(t *testing.T) {
	assert.Equal(t, 1, NewTaskPool(0, nil).Size())
}
