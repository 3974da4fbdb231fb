// Package builder stages field values and turns them into validated,
// immutable records.
//
// A Builder moves from Empty to Staging as values are staged and ends in
// Built or Rejected when Build is called. Both outcomes are terminal: any
// further call fails with ErrReusedAfterTerminal. Builders are not safe for
// concurrent use.
package builder

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gofhir/datamodel/pkg/issue"
	"github.com/gofhir/datamodel/pkg/logger"
	"github.com/gofhir/datamodel/pkg/schema"
	"github.com/gofhir/datamodel/pkg/validator"
	"github.com/gofhir/datamodel/pkg/value"
)

// ErrReusedAfterTerminal is returned by every call on a builder that has
// already built or rejected its record. It signals a caller defect, not
// bad data.
var ErrReusedAfterTerminal = errors.New("builder reused after build")

// State is the builder lifecycle state.
type State uint8

const (
	Empty State = iota
	Staging
	Built
	Rejected
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Staging:
		return "staging"
	case Built:
		return "built"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further calls are allowed.
func (s State) Terminal() bool {
	return s == Built || s == Rejected
}

// Option configures a Builder.
type Option func(*Builder)

// WithValidator sets the validator run by Build. By default a shared
// non-strict validator per registry is used.
func WithValidator(v *validator.Validator) Option {
	return func(b *Builder) {
		b.validator = v
	}
}

// WithGeneratedID assigns a random id at Build time when none was staged.
func WithGeneratedID() Option {
	return func(b *Builder) {
		b.generateID = true
	}
}

// staged holds the values of one field.
type staged struct {
	list   bool
	values []value.Value
}

// Builder accumulates field values for one record.
type Builder struct {
	entry      *schema.Entry
	validator  *validator.Validator
	generateID bool

	state  State
	fields map[string]*staged
	order  []string // first staging order, used for undeclared fields
	report *issue.Result
}

var defaultValidators sync.Map // *schema.Registry -> *validator.Validator

func defaultValidator(reg *schema.Registry) *validator.Validator {
	if v, ok := defaultValidators.Load(reg); ok {
		return v.(*validator.Validator)
	}
	v, _ := defaultValidators.LoadOrStore(reg, validator.New(reg))
	return v.(*validator.Validator)
}

// New returns an empty builder for typeName.
func New(reg *schema.Registry, typeName string, opts ...Option) (*Builder, error) {
	entry, err := reg.Lookup(typeName)
	if err != nil {
		return nil, fmt.Errorf("builder: %w", err)
	}

	b := &Builder{
		entry:  entry,
		fields: make(map[string]*staged),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.validator == nil {
		b.validator = defaultValidator(reg)
	}
	return b, nil
}

// FromExisting returns a builder pre-populated with rec's fields, for
// copy-and-modify workflows. rec itself is never changed.
func FromExisting(reg *schema.Registry, rec *value.Record, opts ...Option) (*Builder, error) {
	if rec == nil {
		return nil, errors.New("builder: nil record")
	}
	b, err := New(reg, rec.TypeName(), opts...)
	if err != nil {
		return nil, err
	}
	for f := range rec.Fields() {
		b.put(f.Name(), &staged{list: f.IsList(), values: f.List().Values()})
	}
	if len(b.order) > 0 {
		b.state = Staging
	}
	return b, nil
}

// TypeName returns the type being built.
func (b *Builder) TypeName() string {
	return b.entry.TypeName
}

// State returns the lifecycle state.
func (b *Builder) State() State {
	return b.state
}

// Report returns every issue found by Build, warnings included.
// It is nil before Build.
func (b *Builder) Report() *issue.Result {
	return b.report
}

func (b *Builder) usable() error {
	if b.state.Terminal() {
		return fmt.Errorf("%w: %s builder is %s", ErrReusedAfterTerminal, b.entry.TypeName, b.state)
	}
	return nil
}

func (b *Builder) put(name string, s *staged) {
	if _, ok := b.fields[name]; !ok {
		b.order = append(b.order, name)
	}
	b.fields[name] = s
	b.state = Staging
}

// Stage sets a scalar field, replacing any previous value. Staging an
// absent value clears the field.
func (b *Builder) Stage(name string, v value.Value) error {
	if err := b.usable(); err != nil {
		return err
	}
	if v.IsAbsent() {
		return b.Clear(name)
	}
	b.put(name, &staged{values: []value.Value{v}})
	return nil
}

// Append adds values to the end of a list field. Appending nothing is a no-op.
func (b *Builder) Append(name string, vs ...value.Value) error {
	if err := b.usable(); err != nil {
		return err
	}
	if len(vs) == 0 {
		return nil
	}

	s, ok := b.fields[name]
	if !ok {
		s = &staged{}
	}
	s.list = true
	s.values = append(s.values, vs...)
	b.put(name, s)
	return nil
}

// Set replaces a list field with vs. An empty vs clears the field.
func (b *Builder) Set(name string, vs ...value.Value) error {
	if err := b.usable(); err != nil {
		return err
	}
	if len(vs) == 0 {
		return b.Clear(name)
	}
	b.put(name, &staged{list: true, values: append([]value.Value(nil), vs...)})
	return nil
}

// Clear removes a staged field.
func (b *Builder) Clear(name string) error {
	if err := b.usable(); err != nil {
		return err
	}
	if _, ok := b.fields[name]; ok {
		delete(b.fields, name)
		for i, n := range b.order {
			if n == name {
				b.order = append(b.order[:i], b.order[i+1:]...)
				break
			}
		}
	}
	return nil
}

// SetID stages the record id.
func (b *Builder) SetID(id string) error {
	return b.Stage(value.FieldID, value.ID(id))
}

// AddExtension appends an extension carrying v under url.
func (b *Builder) AddExtension(url string, v value.Value) error {
	ext := value.Assemble(schema.ExtensionType,
		value.Scalar("url", value.URI(url)),
		value.Scalar("value", v),
	)
	return b.Append(value.FieldExtension, value.Nested(ext))
}

// Build assembles the staged values into a record and validates it.
// On rejection the returned error is an issue.Issues holding the failing
// issues and no record is returned.
func (b *Builder) Build() (*value.Record, error) {
	if err := b.usable(); err != nil {
		return nil, err
	}
	if _, declared := b.entry.Field(value.FieldID); b.generateID && declared {
		if _, ok := b.fields[value.FieldID]; !ok {
			b.put(value.FieldID, &staged{values: []value.Value{value.ID(value.NewID())}})
		}
	}

	rec := value.Assemble(b.entry.TypeName, b.assemble()...)
	result := b.validator.Validate(rec, b.entry)
	b.report = result
	b.fields, b.order = nil, nil

	strict := b.validator.Strict()
	if !result.Valid(strict) {
		b.state = Rejected
		logger.Debug("Rejected %s: %d errors, %d warnings", b.entry.TypeName, result.ErrorCount(), result.WarningCount())
		return nil, result.Err(strict)
	}
	b.state = Built
	return rec, nil
}

// assemble orders staged fields by declaration, undeclared ones last in
// staging order.
func (b *Builder) assemble() []value.Field {
	out := make([]value.Field, 0, len(b.fields))
	taken := make(map[string]bool, len(b.fields))

	for _, decl := range b.entry.Fields {
		if s, ok := b.fields[decl.Name]; ok {
			out = append(out, s.field(decl.Name))
			taken[decl.Name] = true
		}
	}
	for _, name := range b.order {
		if !taken[name] {
			out = append(out, b.fields[name].field(name))
		}
	}
	return out
}

func (s *staged) field(name string) value.Field {
	if s.list {
		return value.ListOf(name, s.values...)
	}
	return value.Scalar(name, s.values[0])
}
