package worker

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/gofhir/datamodel/pkg/issue"
	"github.com/gofhir/datamodel/pkg/logger"
	"github.com/gofhir/datamodel/pkg/value"
)

// Validator validates one record. *validator.Validator satisfies it.
type Validator interface {
	ValidateRecord(rec *value.Record) (*issue.Result, error)
}

// ErrNoValidator is returned when the pool has no validator configured.
var ErrNoValidator = errors.New("no validator configured")

// Pool manages a pool of worker goroutines for parallel validation.
type Pool struct {
	workers    int
	jobsChan   chan sequenced
	resultChan chan *JobResult
	validator  Validator
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	closed     atomic.Bool
	metrics    *Metrics

	// Metrics
	jobsSubmitted atomic.Uint64
	jobsCompleted atomic.Uint64
	jobsFailed    atomic.Uint64
	totalDuration atomic.Uint64
}

// sequenced is a job with its submission number.
type sequenced struct {
	Job
	index int
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithMetrics records every completed job into m.
func WithMetrics(m *Metrics) PoolOption {
	return func(p *Pool) {
		p.metrics = m
	}
}

// NewPool creates a new worker pool with the specified number of workers.
// If workers <= 0, it defaults to runtime.NumCPU().
func NewPool(validator Validator, workers int, opts ...PoolOption) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(context.Background())

	p := &Pool{
		workers:    workers,
		jobsChan:   make(chan sequenced, workers*2),
		resultChan: make(chan *JobResult, workers*2),
		validator:  validator,
		ctx:        ctx,
		cancel:     cancel,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}

	logger.Debug("Worker pool started with %d workers", workers)
	return p
}

// Submit submits a job to the pool for processing.
// This method blocks if the job queue is full.
func (p *Pool) Submit(job Job) bool {
	if p.closed.Load() {
		return false
	}

	s := p.sequence(job)
	select {
	case <-p.ctx.Done():
		p.jobsSubmitted.Add(^uint64(0))
		return false
	case p.jobsChan <- s:
		return true
	}
}

// SubmitAsync submits a job without blocking.
// Returns false if the job queue is full or the pool is closed.
func (p *Pool) SubmitAsync(job Job) bool {
	if p.closed.Load() {
		return false
	}

	s := p.sequence(job)
	select {
	case <-p.ctx.Done():
		p.jobsSubmitted.Add(^uint64(0))
		return false
	case p.jobsChan <- s:
		return true
	default:
		p.jobsSubmitted.Add(^uint64(0))
		return false
	}
}

// sequence assigns the job's ID and submission number.
func (p *Pool) sequence(job Job) sequenced {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	n := p.jobsSubmitted.Add(1)
	return sequenced{Job: job, index: int(n - 1)}
}

// Results returns the channel for receiving job results.
func (p *Pool) Results() <-chan *JobResult {
	return p.resultChan
}

// Close shuts down the pool, discarding results nobody has received yet.
func (p *Pool) Close() {
	if p.closed.Swap(true) {
		return
	}

	p.cancel()
	close(p.jobsChan)

	done := make(chan struct{})
	go func() {
		for range p.resultChan {
			// discard
		}
		close(done)
	}()

	p.wg.Wait()
	close(p.resultChan)
	<-done
	logger.Debug("Worker pool closed: %d jobs completed", p.jobsCompleted.Load())
}

// CloseAndWait stops accepting jobs, lets queued jobs finish and returns
// every result not yet received from Results.
func (p *Pool) CloseAndWait() *BatchResult {
	if p.closed.Swap(true) {
		return &BatchResult{}
	}

	close(p.jobsChan)

	results := make([]*JobResult, 0)
	done := make(chan struct{})

	go func() {
		p.wg.Wait()
		close(p.resultChan)
		close(done)
	}()

	for result := range p.resultChan {
		results = append(results, result)
	}

	<-done
	p.cancel()

	logger.Debug("Worker pool drained: %d jobs completed", p.jobsCompleted.Load())
	return &BatchResult{
		Results:       results,
		TotalJobs:     int(p.jobsSubmitted.Load()),
		CompletedJobs: int(p.jobsCompleted.Load()),
		FailedJobs:    int(p.jobsFailed.Load()),
		TotalDuration: int64(p.totalDuration.Load()),
	}
}

// Stats returns current pool statistics.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Workers:       p.workers,
		JobsSubmitted: p.jobsSubmitted.Load(),
		JobsCompleted: p.jobsCompleted.Load(),
		JobsFailed:    p.jobsFailed.Load(),
		AvgDuration:   p.averageDuration(),
	}
}

// PoolStats contains pool statistics.
type PoolStats struct {
	Workers       int
	JobsSubmitted uint64
	JobsCompleted uint64
	JobsFailed    uint64
	AvgDuration   time.Duration
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for job := range p.jobsChan {
		select {
		case <-p.ctx.Done():
			return
		default:
		}

		result := validateJob(p.validator, job.Job, job.index)
		p.jobsCompleted.Add(1)
		if result.Error != nil {
			p.jobsFailed.Add(1)
		}
		p.totalDuration.Add(uint64(result.Duration))
		if p.metrics != nil {
			p.metrics.RecordResult(job.Record.TypeName(), result)
		}

		select {
		case <-p.ctx.Done():
			return
		case p.resultChan <- result:
		}
	}
}

func validateJob(v Validator, job Job, index int) *JobResult {
	start := time.Now()

	result := &JobResult{
		ID:    job.ID,
		Index: index,
	}

	if v == nil {
		result.Error = ErrNoValidator
	} else {
		result.Result, result.Error = v.ValidateRecord(job.Record)
	}

	result.Duration = time.Since(start).Nanoseconds()
	return result
}

func (p *Pool) averageDuration() time.Duration {
	completed := p.jobsCompleted.Load()
	if completed == 0 {
		return 0
	}
	return time.Duration(p.totalDuration.Load() / completed)
}
