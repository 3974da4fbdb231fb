package loader

import (
	"fmt"

	"github.com/gofhir/datamodel/pkg/schema"
	"github.com/gofhir/datamodel/pkg/value"
)

// Document is the serialized form of one schema entry.
type Document struct {
	Type        string          `yaml:"type" json:"type"`
	Kind        string          `yaml:"kind,omitempty" json:"kind,omitempty"`
	Description string          `yaml:"description,omitempty" json:"description,omitempty"`
	Common      bool            `yaml:"common,omitempty" json:"common,omitempty"`
	Fields      []FieldDoc      `yaml:"fields,omitempty" json:"fields,omitempty"`
	Constraints []ConstraintDoc `yaml:"constraints,omitempty" json:"constraints,omitempty"`
}

// FieldDoc describes one field. Exactly one of Type, References or
// Choices selects the value type; References may also accompany Choices to
// restrict the Reference alternative.
type FieldDoc struct {
	Name        string   `yaml:"name" json:"name"`
	Cardinality string   `yaml:"cardinality,omitempty" json:"cardinality,omitempty"`
	Type        string   `yaml:"type,omitempty" json:"type,omitempty"`
	References  []string `yaml:"references,omitempty" json:"references,omitempty"`
	Choices     []string `yaml:"choices,omitempty" json:"choices,omitempty"`
	Short       string   `yaml:"short,omitempty" json:"short,omitempty"`
}

// ConstraintDoc describes a FHIRPath constraint.
type ConstraintDoc struct {
	ID          string `yaml:"id" json:"id"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Severity    string `yaml:"severity,omitempty" json:"severity,omitempty"`
	Expression  string `yaml:"expression" json:"expression"`
}

func (d *Document) empty() bool {
	return d.Type == "" && len(d.Fields) == 0 && len(d.Constraints) == 0
}

// Entry converts the document into a schema entry.
func (d *Document) Entry() (*schema.Entry, error) {
	kind, err := schema.ParseEntryKind(d.Kind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.Type, err)
	}
	e := &schema.Entry{
		TypeName:    d.Type,
		Kind:        kind,
		Description: d.Description,
		Common:      d.Common,
	}

	for _, fd := range d.Fields {
		f, err := fd.field()
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", d.Type, fd.Name, err)
		}
		e.Fields = append(e.Fields, f)
	}
	for _, cd := range d.Constraints {
		sev, err := parseSeverity(cd.Severity)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", d.Type, cd.ID, err)
		}
		e.Constraints = append(e.Constraints, schema.Constraint{
			ID:          cd.ID,
			Description: cd.Description,
			Severity:    sev,
			Expression:  cd.Expression,
		})
	}
	return e, nil
}

func (fd FieldDoc) field() (schema.Field, error) {
	card, err := schema.ParseCardinality(fd.Cardinality)
	if err != nil {
		return schema.Field{}, err
	}
	f := schema.Field{Name: fd.Name, Cardinality: card, Short: fd.Short}

	set := 0
	refs := len(fd.References) > 0 && len(fd.Choices) == 0
	for _, present := range []bool{fd.Type != "", refs, len(fd.Choices) > 0} {
		if present {
			set++
		}
	}
	if set != 1 {
		return f, fmt.Errorf("%w: exactly one of type, references or choices is required", schema.ErrInvalidEntry)
	}

	switch {
	case len(fd.Choices) > 0:
		f.Type = schema.ChoiceOf(fd.Choices...).WithTargets(fd.References...)
	case len(fd.References) > 0:
		f.Type = schema.ReferenceTo(fd.References...)
	case value.IsPrimitive(fd.Type):
		f.Type = schema.Primitive(value.PrimitiveType(fd.Type))
	default:
		f.Type = schema.RecordOf(fd.Type)
	}
	return f, nil
}

func parseSeverity(s string) (schema.Severity, error) {
	switch s {
	case "", "rule", "error":
		return schema.SeverityRule, nil
	case "warning":
		return schema.SeverityWarning, nil
	default:
		return schema.SeverityRule, fmt.Errorf("%w: unknown severity %q", schema.ErrInvalidEntry, s)
	}
}

// entries converts documents in order, skipping empty ones.
func entries(docs []Document) ([]*schema.Entry, error) {
	out := make([]*schema.Entry, 0, len(docs))
	for i := range docs {
		if docs[i].empty() {
			continue
		}
		e, err := docs[i].Entry()
		if err != nil {
			return nil, fmt.Errorf("loader: document %d: %w", i+1, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// RegisterAll registers entries in order and stops at the first error.
func RegisterAll(reg *schema.Registry, list []*schema.Entry) error {
	for _, e := range list {
		if err := reg.Register(e); err != nil {
			return err
		}
	}
	return nil
}
