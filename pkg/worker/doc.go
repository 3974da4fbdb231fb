// Package worker validates many independent records in parallel.
//
// Validation itself is synchronous and single-threaded per record; this
// package is the caller-side orchestration for feeds of records. A Pool
// runs a fixed number of goroutines over a job queue and publishes results
// on a channel:
//
//	pool := worker.NewPool(v, 4)
//	go func() {
//		for _, rec := range records {
//			pool.Submit(worker.Job{Record: rec})
//		}
//	}()
//	batch := pool.CloseAndWait()
//
// ValidateAll is the one-call form that keeps input order.
package worker
