package workers

import (
	"context"
	"fmt"
	"sync"

	"github.com/ternarybob/arbor"
)

// Task processes one work item identified by its index.
type Task func(ctx context.Context, index int) error

// Pool dispatches indexed tasks with a fixed concurrency cap. Dispatch
// follows index order; completion order is unspecified. Each task owns one
// error slot written exactly once, so results are combined only after all
// workers join and a failing task never affects its siblings.
type Pool struct {
	maxWorkers int
	logger     arbor.ILogger
}

// NewPool creates a new worker pool
func NewPool(maxWorkers int, logger arbor.ILogger) *Pool {
	if maxWorkers <= 0 {
		maxWorkers = 3
	}
	return &Pool{
		maxWorkers: maxWorkers,
		logger:     logger,
	}
}

// Run dispatches count tasks and blocks until all complete. The returned
// slice has one entry per index: nil on success, the task's error (or the
// recovered panic) on failure.
func (p *Pool) Run(ctx context.Context, count int, task Task) []error {
	if count <= 0 {
		return nil
	}

	p.logger.Debug().
		Int("tasks", count).
		Int("max_workers", p.maxWorkers).
		Msg("Dispatching worker pool tasks")

	errs := make([]error, count)
	sem := make(chan struct{}, p.maxWorkers)
	var wg sync.WaitGroup

	for i := 0; i < count; i++ {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			for j := i; j < count; j++ {
				errs[j] = ctx.Err()
			}
			wg.Wait()
			return errs
		}

		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			defer func() { <-sem }()
			defer func() {
				if r := recover(); r != nil {
					errs[index] = fmt.Errorf("task %d panicked: %v", index, r)
					p.logger.Error().
						Int("index", index).
						Str("panic", fmt.Sprintf("%v", r)).
						Msg("Worker task panicked")
				}
			}()

			if err := task(ctx, index); err != nil {
				errs[index] = err
				p.logger.Warn().
					Err(err).
					Int("index", index).
					Msg("Worker task failed")
			}
		}(i)
	}

	wg.Wait()
	return errs
}
