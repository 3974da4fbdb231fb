package worker

import (
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics tracks validation outcomes using lock-free atomic operations.
// All methods are safe for concurrent use.
type Metrics struct {
	// Validation counts
	validationsTotal  atomic.Uint64
	validationsValid  atomic.Uint64
	validationsFailed atomic.Uint64

	// Timing (stored as nanoseconds)
	validationTimeTotal atomic.Uint64
	validationTimeMin   atomic.Uint64
	validationTimeMax   atomic.Uint64

	// Issue counts by severity
	errorsTotal   atomic.Uint64
	warningsTotal atomic.Uint64

	// Per record type
	types sync.Map // map[string]*typeMetrics
}

// typeMetrics tracks metrics for a single record type.
type typeMetrics struct {
	validations atomic.Uint64
	totalTime   atomic.Uint64 // nanoseconds
	issuesFound atomic.Uint64
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	m := &Metrics{}
	// first value becomes the minimum
	m.validationTimeMin.Store(^uint64(0))
	return m
}

// RecordResult records one job outcome for a record of typeName. A job is
// valid when it ran and found no error-level issues.
func (m *Metrics) RecordResult(typeName string, r *JobResult) {
	if r == nil {
		return
	}
	m.validationsTotal.Add(1)
	ns := uint64(max(r.Duration, 0)) //nolint:gosec // clamped above
	m.recordTime(ns)

	if r.Error != nil {
		m.validationsFailed.Add(1)
		return
	}
	issues := 0
	if r.Result != nil {
		errs, warns := r.Result.ErrorCount(), r.Result.WarningCount()
		m.errorsTotal.Add(uint64(errs))    //nolint:gosec // counts are non-negative
		m.warningsTotal.Add(uint64(warns)) //nolint:gosec // counts are non-negative
		issues = len(r.Result.Issues)
		if errs == 0 {
			m.validationsValid.Add(1)
		}
	}

	tm := m.typeMetrics(typeName)
	tm.validations.Add(1)
	tm.totalTime.Add(ns)
	tm.issuesFound.Add(uint64(issues)) //nolint:gosec // counts are non-negative
}

func (m *Metrics) recordTime(ns uint64) {
	m.validationTimeTotal.Add(ns)

	// Update min (CAS loop)
	for {
		old := m.validationTimeMin.Load()
		if ns >= old || m.validationTimeMin.CompareAndSwap(old, ns) {
			break
		}
	}

	// Update max (CAS loop)
	for {
		old := m.validationTimeMax.Load()
		if ns <= old || m.validationTimeMax.CompareAndSwap(old, ns) {
			break
		}
	}
}

func (m *Metrics) typeMetrics(name string) *typeMetrics {
	if v, ok := m.types.Load(name); ok {
		return v.(*typeMetrics)
	}
	tm := &typeMetrics{}
	actual, _ := m.types.LoadOrStore(name, tm)
	return actual.(*typeMetrics)
}

// ValidationsTotal returns the number of recorded jobs.
func (m *Metrics) ValidationsTotal() uint64 {
	return m.validationsTotal.Load()
}

// ValidationsValid returns the number of jobs without error-level issues.
func (m *Metrics) ValidationsValid() uint64 {
	return m.validationsValid.Load()
}

// ValidationRate returns the share of valid jobs (0.0 to 1.0).
func (m *Metrics) ValidationRate() float64 {
	total := m.validationsTotal.Load()
	if total == 0 {
		return 0
	}
	return float64(m.validationsValid.Load()) / float64(total)
}

// AverageValidationTime returns the average job duration.
func (m *Metrics) AverageValidationTime() time.Duration {
	total := m.validationsTotal.Load()
	if total == 0 {
		return 0
	}
	return time.Duration(m.validationTimeTotal.Load() / total) //nolint:gosec // nanoseconds within int64 range
}

// MinValidationTime returns the shortest job duration.
func (m *Metrics) MinValidationTime() time.Duration {
	minVal := m.validationTimeMin.Load()
	if minVal == ^uint64(0) {
		return 0
	}
	return time.Duration(minVal) //nolint:gosec // nanoseconds within int64 range
}

// MaxValidationTime returns the longest job duration.
func (m *Metrics) MaxValidationTime() time.Duration {
	return time.Duration(m.validationTimeMax.Load()) //nolint:gosec // nanoseconds within int64 range
}

// TypeStats summarises validations of one record type.
type TypeStats struct {
	Type        string        `json:"type"`
	Validations uint64        `json:"validations"`
	TotalTime   time.Duration `json:"total_time_ns"`
	AvgTime     time.Duration `json:"avg_time_ns"`
	IssuesFound uint64        `json:"issues_found"`
}

// TypeStats returns statistics for one record type.
func (m *Metrics) TypeStats(typeName string) (TypeStats, bool) {
	v, ok := m.types.Load(typeName)
	if !ok {
		return TypeStats{Type: typeName}, false
	}
	return v.(*typeMetrics).stats(typeName), true
}

func (tm *typeMetrics) stats(name string) TypeStats {
	n := tm.validations.Load()
	total := tm.totalTime.Load()
	var avg time.Duration
	if n > 0 {
		avg = time.Duration(total / n) //nolint:gosec // nanoseconds within int64 range
	}
	return TypeStats{
		Type:        name,
		Validations: n,
		TotalTime:   time.Duration(total), //nolint:gosec // nanoseconds within int64 range
		AvgTime:     avg,
		IssuesFound: tm.issuesFound.Load(),
	}
}

// AllTypeStats returns statistics for every type seen, sorted by name.
func (m *Metrics) AllTypeStats() []TypeStats {
	var stats []TypeStats
	m.types.Range(func(key, value any) bool {
		stats = append(stats, value.(*typeMetrics).stats(key.(string)))
		return true
	})
	slices.SortFunc(stats, func(a, b TypeStats) int {
		return strings.Compare(a.Type, b.Type)
	})
	return stats
}

// Snapshot represents a point-in-time snapshot of all metrics.
type Snapshot struct {
	Timestamp time.Time `json:"timestamp"`

	ValidationsTotal  uint64  `json:"validations_total"`
	ValidationsValid  uint64  `json:"validations_valid"`
	ValidationsFailed uint64  `json:"validations_failed"`
	ValidationRate    float64 `json:"validation_rate"`

	AvgValidationTimeNs uint64 `json:"avg_validation_time_ns"`
	MinValidationTimeNs uint64 `json:"min_validation_time_ns"`
	MaxValidationTimeNs uint64 `json:"max_validation_time_ns"`

	ErrorsTotal   uint64 `json:"errors_total"`
	WarningsTotal uint64 `json:"warnings_total"`

	Types []TypeStats `json:"types,omitempty"`
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (m *Metrics) Snapshot() Snapshot {
	total := m.validationsTotal.Load()
	var avg uint64
	if total > 0 {
		avg = m.validationTimeTotal.Load() / total
	}
	minTime := m.validationTimeMin.Load()
	if minTime == ^uint64(0) {
		minTime = 0
	}

	return Snapshot{
		Timestamp:           time.Now(),
		ValidationsTotal:    total,
		ValidationsValid:    m.validationsValid.Load(),
		ValidationsFailed:   m.validationsFailed.Load(),
		ValidationRate:      m.ValidationRate(),
		AvgValidationTimeNs: avg,
		MinValidationTimeNs: minTime,
		MaxValidationTimeNs: m.validationTimeMax.Load(),
		ErrorsTotal:         m.errorsTotal.Load(),
		WarningsTotal:       m.warningsTotal.Load(),
		Types:               m.AllTypeStats(),
	}
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.validationsTotal.Store(0)
	m.validationsValid.Store(0)
	m.validationsFailed.Store(0)
	m.validationTimeTotal.Store(0)
	m.validationTimeMin.Store(^uint64(0))
	m.validationTimeMax.Store(0)
	m.errorsTotal.Store(0)
	m.warningsTotal.Store(0)

	m.types.Range(func(key, _ any) bool {
		m.types.Delete(key)
		return true
	})
}
