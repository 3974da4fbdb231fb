package worker

import (
	"github.com/gofhir/datamodel/pkg/issue"
	"github.com/gofhir/datamodel/pkg/value"
)

// Job is one record to validate.
type Job struct {
	// ID identifies the job in results. Empty IDs are replaced by a UUID.
	ID string

	// Record is the record to validate.
	Record *value.Record
}

// JobResult is the outcome of one job.
type JobResult struct {
	// ID matches the Job.ID that produced this result.
	ID string

	// Index is the input position for ValidateAll, or the submission
	// sequence number for a Pool.
	Index int

	// Result contains the validation result.
	Result *issue.Result

	// Error is set when the record could not be validated at all,
	// for example because its type is not registered.
	Error error

	// Duration is the time taken to validate (in nanoseconds).
	Duration int64
}

// Valid reports whether the job validated without errors.
func (r *JobResult) Valid(strict bool) bool {
	return r.Error == nil && r.Result != nil && r.Result.Valid(strict)
}

// BatchResult aggregates results from multiple jobs.
type BatchResult struct {
	// Results contains all job results.
	Results []*JobResult

	// TotalJobs is the number of jobs submitted.
	TotalJobs int

	// CompletedJobs is the number of jobs completed (including errors).
	CompletedJobs int

	// FailedJobs is the number of jobs that failed with an error.
	FailedJobs int

	// TotalDuration is the total time for all validations (in nanoseconds).
	TotalDuration int64
}

// HasErrors returns true if any job failed or reported validation errors.
func (br *BatchResult) HasErrors() bool {
	for _, r := range br.Results {
		if r == nil {
			continue
		}
		if r.Error != nil {
			return true
		}
		if r.Result != nil && r.Result.HasErrors() {
			return true
		}
	}
	return false
}

// ErrorCount returns the total number of validation errors across all results.
func (br *BatchResult) ErrorCount() int {
	count := 0
	for _, r := range br.Results {
		if r != nil && r.Result != nil {
			count += r.Result.ErrorCount()
		}
	}
	return count
}

// WarningCount returns the total number of warnings across all results.
func (br *BatchResult) WarningCount() int {
	count := 0
	for _, r := range br.Results {
		if r != nil && r.Result != nil {
			count += r.Result.WarningCount()
		}
	}
	return count
}
