package concurrency

import (
	"context"
	"sync"
)

// WorkerFn handles task index i. Tasks must not depend on each other's order.
type WorkerFn func(ctx context.Context, i int)

// ForEach fans tasks 0..n-1 out to at most workers goroutines and waits for
// all of them. Tasks not yet started when ctx is done are skipped.
func ForEach(ctx context.Context, workers, n int, fn WorkerFn) {
	if n <= 0 {
		return
	}
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				fn(ctx, i)
			}
		}()
	}

	defer func() {
		close(jobs)
		wg.Wait()
	}()
	for i := 0; i < n; i++ {
		select {
		case jobs <- i:
		case <-ctx.Done():
			return
		}
	}
}
