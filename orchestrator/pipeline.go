package orchestrator

import (
	"context"
	"sync"
)

// Result wraps one concurrent task's output with its error.
type Result[Out any] struct {
	Value Out
	Err   error
	Index int // Original index in the input slice
}

// ForEach runs process over all inputs with bounded concurrency and joins
// once every task has resolved. A failing task never aborts its siblings;
// its error is carried in the corresponding Result.
func ForEach[In, Out any](ctx context.Context, concurrency int, inputs []In, process func(ctx context.Context, input In) (Out, error)) []Result[Out] {
	if len(inputs) == 0 {
		return nil
	}

	if concurrency <= 0 || concurrency > len(inputs) {
		concurrency = len(inputs)
	}

	results := make([]Result[Out], len(inputs))
	sem := make(chan struct{}, concurrency)

	var wg sync.WaitGroup
	for i, input := range inputs {
		wg.Add(1)
		go func(idx int, in In) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[idx] = Result[Out]{Err: ctx.Err(), Index: idx}
				return
			}

			if ctx.Err() != nil {
				results[idx] = Result[Out]{Err: ctx.Err(), Index: idx}
				return
			}

			out, err := process(ctx, in)
			results[idx] = Result[Out]{Value: out, Err: err, Index: idx}
		}(i, input)
	}

	wg.Wait()
	return results
}
