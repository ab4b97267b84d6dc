package jobs

import (
	"context"
	"sync"
)

// Task is a unit of fan-out work.
type Task func(ctx context.Context) error

// Run executes the tasks with bounded concurrency and waits for all of
// them. The first error wins; remaining tasks are cancelled through the
// derived context. Tasks must write only to their own slots so callers can
// combine results deterministically afterwards.
func Run(ctx context.Context, concurrency int, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}
	if concurrency <= 0 || concurrency > len(tasks) {
		concurrency = len(tasks)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	queue := make(chan Task)
	var wg sync.WaitGroup
	var once sync.Once
	var firstErr error

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range queue {
				if ctx.Err() != nil {
					continue
				}
				if err := task(ctx); err != nil {
					once.Do(func() {
						firstErr = err
						cancel()
					})
				}
			}
		}()
	}

	for _, task := range tasks {
		queue <- task
	}
	close(queue)
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}
