// Package issue defines validation issues aligned with FHIR OperationOutcome.
//
// Validation never stops at the first defect: checks append Issues to a
// Result and callers inspect the complete list afterwards.
package issue

import (
	"strings"

	"github.com/gofhir/datamodel/pkg/path"
)

// Severity represents the severity of a validation issue.
type Severity string

// Severity constants aligned with FHIR IssueSeverity.
const (
	SeverityFatal       Severity = "fatal"
	SeverityError       Severity = "error"
	SeverityWarning     Severity = "warning"
	SeverityInformation Severity = "information"
)

// Code represents the type of validation issue (IssueType).
type Code string

// Code constants aligned with FHIR IssueType.
const (
	CodeInvalid       Code = "invalid"
	CodeStructure     Code = "structure"
	CodeRequired      Code = "required"
	CodeValue         Code = "value"
	CodeInvariant     Code = "invariant"
	CodeProcessing    Code = "processing"
	CodeNotSupported  Code = "not-supported"
	CodeNotFound      Code = "not-found"
	CodeTooCostly     Code = "too-costly"
	CodeBusinessRule  Code = "business-rule"
	CodeInformational Code = "informational"
)

// Issue represents a single validation issue.
type Issue struct {
	// Severity indicates the severity level (error, warning, etc.)
	Severity Severity

	// Code indicates the type of issue
	Code Code

	// ID identifies the diagnostic template that produced the issue
	ID DiagnosticID

	// Diagnostics is the human-readable description of the issue
	Diagnostics string

	// Path locates the offending field from the validated root record
	Path path.Path

	// Field is the name of the field the issue is about, if any
	Field string

	// Actual is the offending kind, type or value
	Actual string

	// Allowed lists the permitted kinds or reference targets
	Allowed []string

	// Constraint is the id of the violated cross-field constraint
	Constraint string

	// Cause is the underlying defect of a list element issue
	Cause *Issue
}

// Expression returns the rendered path, e.g. "participant[2].actor".
func (i Issue) Expression() string {
	return i.Path.String()
}

// IsError reports whether the issue is error or fatal level.
func (i Issue) IsError() bool {
	return i.Severity == SeverityError || i.Severity == SeverityFatal
}

// Error implements error so an Issue can travel as a cause.
func (i Issue) Error() string {
	if len(i.Path) == 0 {
		return i.Diagnostics
	}
	return i.Path.String() + ": " + i.Diagnostics
}

// Stats contains validation statistics.
type Stats struct {
	// RecordType is the type of the root record validated
	RecordType string
	// RecordsChecked counts the root and every nested record visited
	RecordsChecked int
	// FieldsChecked counts populated field values inspected
	FieldsChecked int
	// ConstraintsEvaluated counts cross-field constraints run
	ConstraintsEvaluated int
	// Duration is the total validation time
	Duration int64 // nanoseconds
}

// DurationMs returns the duration in milliseconds.
func (s *Stats) DurationMs() float64 {
	return float64(s.Duration) / 1e6
}

// Result holds the collection of issues from validation.
type Result struct {
	Issues []Issue
	Stats  *Stats
}

// defaultIssueCapacity is the pre-allocated capacity for Issues slice.
const defaultIssueCapacity = 8

// NewResult creates a new empty Result with pre-allocated capacity.
func NewResult() *Result {
	return &Result{
		Issues: make([]Issue, 0, defaultIssueCapacity),
	}
}

// AddIssue adds an issue to the result.
func (r *Result) AddIssue(issue Issue) {
	r.Issues = append(r.Issues, issue)
}

// HasErrors returns true if there are any error-level issues.
func (r *Result) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.IsError() {
			return true
		}
	}
	return false
}

// ErrorCount returns the number of error-level issues.
func (r *Result) ErrorCount() int {
	count := 0
	for _, issue := range r.Issues {
		if issue.IsError() {
			count++
		}
	}
	return count
}

// WarningCount returns the number of warning-level issues.
func (r *Result) WarningCount() int {
	count := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityWarning {
			count++
		}
	}
	return count
}

// Valid reports whether the result is free of errors.
// In strict mode warnings count as failures too.
func (r *Result) Valid(strict bool) bool {
	if r.HasErrors() {
		return false
	}
	return !strict || r.WarningCount() == 0
}

// Err returns the failing issues as an Issues error, or nil when Valid(strict).
func (r *Result) Err(strict bool) error {
	if r.Valid(strict) {
		return nil
	}
	failing := make(Issues, 0, len(r.Issues))
	for _, iss := range r.Issues {
		if iss.IsError() || (strict && iss.Severity == SeverityWarning) {
			failing = append(failing, iss)
		}
	}
	return failing
}

// Merge combines another result into this one.
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}
	r.Issues = append(r.Issues, other.Issues...)
}

// Filter returns a new Result with only issues matching the given severity.
func (r *Result) Filter(severity Severity) *Result {
	filtered := NewResult()
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			filtered.Issues = append(filtered.Issues, issue)
		}
	}
	return filtered
}

// ByID returns the issues produced by one diagnostic template, in order.
func (r *Result) ByID(id DiagnosticID) []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.ID == id {
			out = append(out, issue)
		}
	}
	return out
}

// Under returns the issues whose path lies at or below prefix.
func (r *Result) Under(prefix path.Path) []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Path.HasPrefix(prefix) {
			out = append(out, issue)
		}
	}
	return out
}

// String renders one issue per line.
func (r *Result) String() string {
	var b strings.Builder
	for i, iss := range r.Issues {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("[")
		b.WriteString(string(iss.Severity))
		b.WriteString("] ")
		b.WriteString(iss.Error())
	}
	return b.String()
}
