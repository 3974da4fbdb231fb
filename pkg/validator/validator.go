// Package validator checks records against their schema entries.
//
// Checks run in a fixed order so the reported issue list is deterministic:
// undeclared fields and shape mismatches, missing required scalars, empty
// required lists, list element conformity, choice membership, reference
// targets, scalar value conformity, nested records (recursively, with the
// field path as prefix) and finally the entry's cross-field constraints.
// All issues are collected; validation never stops at the first one.
package validator

import (
	"fmt"
	"time"

	"github.com/gofhir/datamodel/pkg/constraint"
	"github.com/gofhir/datamodel/pkg/issue"
	"github.com/gofhir/datamodel/pkg/logger"
	"github.com/gofhir/datamodel/pkg/path"
	"github.com/gofhir/datamodel/pkg/schema"
	"github.com/gofhir/datamodel/pkg/value"
)

// DefaultMaxDepth bounds record nesting.
const DefaultMaxDepth = 64

// Validator validates records. It holds no per-call state and is safe for
// concurrent use once its registry is no longer being written.
type Validator struct {
	registry    *schema.Registry
	constraints *constraint.Evaluator
	config      *Config
}

// Config holds the validator configuration.
type Config struct {
	StrictMode          bool // Treat warnings as failures
	Constraints         bool // Evaluate cross-field constraints
	MaxDepth            int  // Maximum record nesting
	ConstraintCacheSize int  // Compiled FHIRPath expressions kept
}

// Option is a functional option for configuring the validator.
type Option func(*Config)

// WithStrictMode enables strict mode (warnings become failures).
func WithStrictMode(strict bool) Option {
	return func(c *Config) {
		c.StrictMode = strict
	}
}

// WithConstraints enables or disables cross-field constraint evaluation.
func WithConstraints(enabled bool) Option {
	return func(c *Config) {
		c.Constraints = enabled
	}
}

// WithMaxDepth limits how deeply nested records are followed.
func WithMaxDepth(depth int) Option {
	return func(c *Config) {
		c.MaxDepth = depth
	}
}

// WithConstraintCacheSize sets how many compiled expressions are cached.
func WithConstraintCacheSize(n int) Option {
	return func(c *Config) {
		c.ConstraintCacheSize = n
	}
}

// New creates a Validator resolving nested types through reg.
func New(reg *schema.Registry, opts ...Option) *Validator {
	config := &Config{
		Constraints:         true,
		MaxDepth:            DefaultMaxDepth,
		ConstraintCacheSize: constraint.DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(config)
	}
	if config.MaxDepth <= 0 {
		config.MaxDepth = DefaultMaxDepth
	}

	logger.Info("Validator ready: %d types, strict=%v, constraints=%v", reg.Len(), config.StrictMode, config.Constraints)

	return &Validator{
		registry:    reg,
		constraints: constraint.New(config.ConstraintCacheSize),
		config:      config,
	}
}

// Registry returns the registry used for nested lookups.
func (v *Validator) Registry() *schema.Registry {
	return v.registry
}

// Strict reports whether warnings fail validation.
func (v *Validator) Strict() bool {
	return v.config.StrictMode
}

// Validate checks rec against entry and returns every issue found.
// The record is never modified.
func (v *Validator) Validate(rec *value.Record, entry *schema.Entry) *issue.Result {
	startTime := time.Now()

	result := issue.NewResult()
	result.Stats = &issue.Stats{RecordType: entry.TypeName}

	r := &run{v: v, result: result}
	r.record(rec, entry, path.Root, 0)

	result.Stats.Duration = time.Since(startTime).Nanoseconds()
	logger.Debug("Validated %s: %d errors, %d warnings, %d records in %.3fms",
		entry.TypeName, result.ErrorCount(), result.WarningCount(),
		result.Stats.RecordsChecked, result.Stats.DurationMs())
	return result
}

// ValidateRecord looks up the schema entry for rec's type and validates.
// An unregistered root type is a configuration error, not an issue.
func (v *Validator) ValidateRecord(rec *value.Record) (*issue.Result, error) {
	if rec == nil {
		return nil, fmt.Errorf("validate: nil record")
	}
	entry, err := v.registry.Lookup(rec.TypeName())
	if err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	return v.Validate(rec, entry), nil
}

// Valid reports whether result passes under the validator's strictness.
func (v *Validator) Valid(result *issue.Result) bool {
	return result.Valid(v.config.StrictMode)
}

// run carries the state of one Validate call.
type run struct {
	v      *Validator
	result *issue.Result
}

func (r *run) add(iss issue.Issue) {
	r.result.AddIssue(iss)
}

// record runs every check for one record at path at.
func (r *run) record(rec *value.Record, entry *schema.Entry, at path.Path, depth int) {
	if depth > r.v.config.MaxDepth {
		r.add(issue.MaxDepthExceeded(at, r.v.config.MaxDepth))
		return
	}
	r.result.Stats.RecordsChecked++
	start := len(r.result.Issues)

	r.checkStructure(rec, entry, at)
	r.checkRequired(rec, entry, at)
	r.checkNonEmpty(rec, entry, at)
	r.checkListElements(rec, entry, at)
	r.checkChoices(rec, entry, at)
	r.checkReferences(rec, entry, at)
	r.checkScalars(rec, entry, at)
	r.checkNested(rec, entry, at, depth)

	if r.v.config.Constraints && !r.errorsSince(start) {
		r.result.Stats.ConstraintsEvaluated += r.v.constraints.Check(entry, rec, at, r.result)
	}
}

// errorsSince reports whether an error-level structural issue was added
// after index start. Constraint violations in nested records do not count.
func (r *run) errorsSince(start int) bool {
	for _, iss := range r.result.Issues[start:] {
		if iss.ID == issue.DiagConstraintViolated || iss.ID == issue.DiagConstraintEval {
			continue
		}
		if iss.IsError() {
			return true
		}
	}
	return false
}

// populated returns the record's field for decl when it is present and
// shaped as declared. Shape mismatches are reported by checkStructure.
func populated(rec *value.Record, decl schema.Field) (value.Field, bool) {
	f, ok := rec.Field(decl.Name)
	if !ok || f.Len() == 0 {
		return f, false
	}
	return f, f.IsList() == decl.Cardinality.IsList()
}
