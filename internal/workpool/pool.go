package workpool

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
)

// Progress counts finished items. Safe to read from any goroutine.
type Progress struct {
	completed atomic.Int64
	total     atomic.Int64
}

// Completed returns how many items have finished (success or failure)
func (p *Progress) Completed() int {
	return int(p.completed.Load())
}

// Total returns how many items were submitted
func (p *Progress) Total() int {
	return int(p.total.Load())
}

// Failure is an item whose task returned an error
type Failure[In any] struct {
	Item In
	Err  error
}

// Result is what a run produced. Values and Failures keep input order.
type Result[In, Out any] struct {
	Values    []Out
	Failures  []Failure[In]
	Completed int
	Total     int
	Truncated bool // the context ended before every item finished
}

// Options tunes a run
type Options struct {
	Workers int
	// OnProgress is called after each item, one call at a time, with
	// completed increasing by one per call.
	OnProgress func(completed, total int)
	// Progress, when set, is updated as items finish
	Progress *Progress
}

type outcome[In, Out any] struct {
	index int
	item  In
	value Out
	err   error
}

// Run executes task for every item with at most opts.Workers in flight.
// When ctx ends, workers stop taking new items and Run returns whatever has
// finished so far with Truncated set.
// ⭐ SSOT: 동시성 제한 실행은 이 함수에서만
func Run[In, Out any](ctx context.Context, items []In, opts Options, task func(ctx context.Context, item In) (Out, error)) Result[In, Out] {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(items) && len(items) > 0 {
		workers = len(items)
	}

	progress := opts.Progress
	if progress == nil {
		progress = &Progress{}
	}
	progress.completed.Store(0)
	progress.total.Store(int64(len(items)))

	type job struct {
		index int
		item  In
	}

	jobCh := make(chan job, len(items))
	for i, item := range items {
		jobCh <- job{index: i, item: item}
	}
	close(jobCh)

	// buffered so workers never block once the collector has returned
	resultCh := make(chan outcome[In, Out], len(items))

	// count and callback move together so callers never see completed go back
	var progressMu sync.Mutex

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobCh {
				if ctx.Err() != nil {
					return
				}

				value, err := task(ctx, j.item)
				resultCh <- outcome[In, Out]{index: j.index, item: j.item, value: value, err: err}

				progressMu.Lock()
				done := progress.completed.Add(1)
				if opts.OnProgress != nil {
					opts.OnProgress(int(done), len(items))
				}
				progressMu.Unlock()
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	var collected []outcome[In, Out]

collect:
	for {
		select {
		case r, ok := <-resultCh:
			if !ok {
				break collect
			}
			collected = append(collected, r)
		case <-ctx.Done():
			// keep what already arrived
			for {
				select {
				case r, ok := <-resultCh:
					if !ok {
						break collect
					}
					collected = append(collected, r)
				default:
					break collect
				}
			}
		}
	}

	sort.Slice(collected, func(i, j int) bool { return collected[i].index < collected[j].index })

	res := Result[In, Out]{
		Completed: len(collected),
		Total:     len(items),
		Truncated: len(collected) < len(items),
	}
	for _, r := range collected {
		if r.err != nil {
			res.Failures = append(res.Failures, Failure[In]{Item: r.item, Err: r.err})
			continue
		}
		res.Values = append(res.Values, r.value)
	}
	return res
}
