// Package constraint evaluates record-level cross-field constraints.
//
// A constraint is either a Go predicate or a FHIRPath expression. FHIRPath
// expressions are compiled once and kept in an LRU cache; they run against a
// FHIR-style JSON view of the record (see Document).
package constraint

import (
	"fmt"

	"github.com/gofhir/fhirpath"
	"github.com/gofhir/fhirpath/funcs"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gofhir/datamodel/pkg/issue"
	"github.com/gofhir/datamodel/pkg/path"
	"github.com/gofhir/datamodel/pkg/schema"
	"github.com/gofhir/datamodel/pkg/value"
)

func init() {
	// trace() output would otherwise go to stderr during validation
	funcs.SetTraceLogger(funcs.NullTraceLogger{})
}

// DefaultCacheSize is the number of compiled expressions kept.
const DefaultCacheSize = 512

// Evaluator runs the constraints of a schema entry against a record.
// It is safe for concurrent use.
type Evaluator struct {
	exprCache *lru.Cache[string, *fhirpath.Expression]
}

// New creates an Evaluator caching up to cacheSize compiled expressions.
// Non-positive sizes use DefaultCacheSize.
func New(cacheSize int) *Evaluator {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, *fhirpath.Expression](cacheSize)
	if err != nil {
		// only returned for non-positive sizes
		panic(err)
	}
	return &Evaluator{exprCache: cache}
}

// Check evaluates every constraint of entry on rec and appends violations
// and evaluation failures to result. at is the record's path. It returns
// the number of constraints evaluated.
func (e *Evaluator) Check(entry *schema.Entry, rec *value.Record, at path.Path, result *issue.Result) int {
	if len(entry.Constraints) == 0 {
		return 0
	}

	doc := &lazyDocument{rec: rec, resource: entry.Kind == schema.KindResource}
	for _, c := range entry.Constraints {
		passed, err := e.Evaluate(c, rec, doc.bytes)
		if err != nil {
			result.AddIssue(issue.ConstraintEvalError(at, c.ID, err))
			continue
		}
		if !passed {
			result.AddIssue(issue.ConstraintViolated(at, c.ID, c.Description, severityOf(c)))
		}
	}
	return len(entry.Constraints)
}

// Evaluate runs one constraint. doc supplies the JSON view for FHIRPath
// constraints and is not called for predicates.
func (e *Evaluator) Evaluate(c schema.Constraint, rec *value.Record, doc func() ([]byte, error)) (passed bool, err error) {
	if c.Check != nil {
		return runPredicate(c, rec)
	}

	expr, err := e.compiled(c.Expression)
	if err != nil {
		return false, fmt.Errorf("compile %q: %w", c.Expression, err)
	}

	data, err := doc()
	if err != nil {
		return false, fmt.Errorf("encode %s: %w", rec.TypeName(), err)
	}

	res, err := expr.Evaluate(data)
	if err != nil {
		return false, err
	}
	return constraintPassed(res), nil
}

func runPredicate(c schema.Constraint, rec *value.Record) (passed bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			passed = false
			err = fmt.Errorf("predicate panicked: %v", r)
		}
	}()
	return c.Check(rec), nil
}

// compiled returns a cached compiled expression or compiles a new one.
func (e *Evaluator) compiled(expr string) (*fhirpath.Expression, error) {
	if compiled, ok := e.exprCache.Get(expr); ok {
		return compiled, nil
	}

	compiled, err := fhirpath.Compile(expr)
	if err != nil {
		return nil, err
	}
	e.exprCache.Add(expr, compiled)
	return compiled, nil
}

// CacheLen returns the number of cached compiled expressions.
func (e *Evaluator) CacheLen() int {
	return e.exprCache.Len()
}

// constraintPassed checks if a FHIRPath result indicates the constraint passed.
func constraintPassed(result fhirpath.Collection) bool {
	// Empty collection = constraint not applicable = passes.
	if result.Empty() {
		return true
	}

	b, err := result.ToBoolean()
	if err != nil {
		// Non-boolean, non-empty results count as truthy.
		return true
	}
	return b
}

func severityOf(c schema.Constraint) issue.Severity {
	if c.Severity == schema.SeverityWarning {
		return issue.SeverityWarning
	}
	return issue.SeverityError
}

// lazyDocument encodes the record at most once, on first use.
type lazyDocument struct {
	rec      *value.Record
	resource bool
	data     []byte
	err      error
	done     bool
}

func (d *lazyDocument) bytes() ([]byte, error) {
	if !d.done {
		d.data, d.err = Document(d.rec, d.resource)
		d.done = true
	}
	return d.data, d.err
}
