package worker

import (
	"context"
	"runtime"
	"strconv"
	"sync"

	"github.com/gofhir/datamodel/pkg/value"
)

// ValidateAll validates records in parallel and returns results in input
// order. Records not started before ctx is done have no result.
// If workers <= 0, it defaults to runtime.NumCPU().
func ValidateAll(ctx context.Context, v Validator, records []*value.Record, workers int) *BatchResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if len(records) == 0 {
		return &BatchResult{Results: make([]*JobResult, 0)}
	}
	// small batches are not worth the goroutines
	if len(records) <= 2 || workers == 1 {
		return validateSequential(ctx, v, records)
	}
	return validateParallel(ctx, v, records, min(workers, len(records)))
}

func validateSequential(ctx context.Context, v Validator, records []*value.Record) *BatchResult {
	batch := &BatchResult{
		Results:   make([]*JobResult, len(records)),
		TotalJobs: len(records),
	}
	for i, rec := range records {
		if ctx.Err() != nil {
			break
		}
		batch.add(validateJob(v, Job{ID: strconv.Itoa(i), Record: rec}, i))
	}
	return batch
}

func validateParallel(ctx context.Context, v Validator, records []*value.Record, workers int) *BatchResult {
	jobs := make(chan int, len(records))
	results := make(chan *JobResult, len(records))

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					return
				}
				results <- validateJob(v, Job{ID: strconv.Itoa(idx), Record: records[idx]}, idx)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range records {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	batch := &BatchResult{
		Results:   make([]*JobResult, len(records)),
		TotalJobs: len(records),
	}
	for r := range results {
		batch.add(r)
	}
	return batch
}

func (br *BatchResult) add(r *JobResult) {
	br.Results[r.Index] = r
	br.CompletedJobs++
	br.TotalDuration += r.Duration
	if r.Error != nil {
		br.FailedJobs++
	}
}
