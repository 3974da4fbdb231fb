package schema

import (
	"fmt"

	"github.com/gofhir/datamodel/pkg/value"
)

// ExtensionType is the record type of extension elements.
const ExtensionType = "Extension"

// Entry is the registered structural description of one record type.
type Entry struct {
	TypeName    string
	Kind        EntryKind
	Description string

	// Common declares the id and extension fields ahead of Fields.
	Common bool

	Fields      []Field
	Constraints []Constraint

	index map[string]int
}

// CommonFields returns the declarations implied by Entry.Common.
func CommonFields() []Field {
	return []Field{
		{Name: value.FieldID, Cardinality: OptionalScalar, Type: Primitive(value.TypeID), Short: "Logical id"},
		{Name: value.FieldExtension, Cardinality: OptionalList, Type: RecordOf(ExtensionType), Short: "Additional content defined by implementations"},
	}
}

// Field returns the declaration of name.
func (e *Entry) Field(name string) (Field, bool) {
	if e.index != nil {
		i, ok := e.index[name]
		if !ok {
			return Field{}, false
		}
		return e.Fields[i], true
	}
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldIndex returns the declaration position of name, or -1.
func (e *Entry) FieldIndex(name string) int {
	if e.index != nil {
		if i, ok := e.index[name]; ok {
			return i
		}
		return -1
	}
	for i, f := range e.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Constraint returns the constraint with the given id.
func (e *Entry) Constraint(id string) (Constraint, bool) {
	for _, c := range e.Constraints {
		if c.ID == id {
			return c, true
		}
	}
	return Constraint{}, false
}

// Equal reports whether two entries describe the same type identically.
func (e *Entry) Equal(o *Entry) bool {
	if e == o {
		return true
	}
	if e == nil || o == nil {
		return false
	}
	if e.TypeName != o.TypeName || e.Kind != o.Kind || e.Common != o.Common ||
		e.Description != o.Description ||
		len(e.Fields) != len(o.Fields) || len(e.Constraints) != len(o.Constraints) {
		return false
	}
	for i := range e.Fields {
		if !e.Fields[i].Equal(o.Fields[i]) {
			return false
		}
	}
	for i := range e.Constraints {
		if !e.Constraints[i].Equal(o.Constraints[i]) {
			return false
		}
	}
	return true
}

// normalize returns the copy the registry stores: common fields prepended
// when declared and a name index built.
func (e *Entry) normalize() *Entry {
	out := &Entry{
		TypeName:    e.TypeName,
		Kind:        e.Kind,
		Description: e.Description,
		Common:      e.Common,
		Constraints: append([]Constraint(nil), e.Constraints...),
	}

	fields := make([]Field, 0, len(e.Fields)+2)
	if e.Common {
		for _, cf := range CommonFields() {
			if e.hasField(cf.Name) {
				continue
			}
			fields = append(fields, cf)
		}
	}
	for _, f := range e.Fields {
		f.Type.Targets = append([]string(nil), f.Type.Targets...)
		f.Type.Choices = append([]string(nil), f.Type.Choices...)
		fields = append(fields, f)
	}
	out.Fields = fields

	out.index = make(map[string]int, len(fields))
	for i, f := range fields {
		out.index[f.Name] = i
	}
	return out
}

func (e *Entry) hasField(name string) bool {
	for _, f := range e.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// check reports the first structural defect in the declaration.
func (e *Entry) check() error {
	if e.TypeName == "" {
		return fmt.Errorf("%w: empty type name", ErrInvalidEntry)
	}

	seen := make(map[string]bool, len(e.Fields))
	for _, f := range e.Fields {
		if f.Name == "" {
			return fmt.Errorf("%w: %s has a field without a name", ErrInvalidEntry, e.TypeName)
		}
		if seen[f.Name] {
			return fmt.Errorf("%w: %s declares field %q twice", ErrInvalidEntry, e.TypeName, f.Name)
		}
		seen[f.Name] = true

		if err := checkType(e.TypeName, f); err != nil {
			return err
		}
	}

	ids := make(map[string]bool, len(e.Constraints))
	for _, c := range e.Constraints {
		if c.ID == "" {
			return fmt.Errorf("%w: %s has a constraint without an id", ErrInvalidEntry, e.TypeName)
		}
		if ids[c.ID] {
			return fmt.Errorf("%w: %s declares constraint %q twice", ErrInvalidEntry, e.TypeName, c.ID)
		}
		ids[c.ID] = true
		if (c.Expression == "") == (c.Check == nil) {
			return fmt.Errorf("%w: %s constraint %q needs exactly one of expression or check", ErrInvalidEntry, e.TypeName, c.ID)
		}
	}
	return nil
}

func checkType(typeName string, f Field) error {
	switch f.Type.Kind {
	case KindPrimitive:
		if !f.Type.Primitive.Known() {
			return fmt.Errorf("%w: %s.%s has unknown primitive type %q", ErrInvalidEntry, typeName, f.Name, f.Type.Primitive)
		}
	case KindRecord:
		if f.Type.Record == "" {
			return fmt.Errorf("%w: %s.%s has no record type", ErrInvalidEntry, typeName, f.Name)
		}
	case KindReference:
		if len(f.Type.Targets) == 0 {
			return fmt.Errorf("%w: %s.%s permits no reference targets", ErrInvalidEntry, typeName, f.Name)
		}
	case KindChoice:
		if len(f.Type.Choices) == 0 {
			return fmt.Errorf("%w: %s.%s declares no choice alternatives", ErrInvalidEntry, typeName, f.Name)
		}
		for i, a := range f.Type.Choices {
			for _, b := range f.Type.Choices[:i] {
				if SameKind(a, b) {
					return fmt.Errorf("%w: %s.%s repeats choice %q", ErrInvalidEntry, typeName, f.Name, a)
				}
			}
		}
	default:
		return fmt.Errorf("%w: %s.%s has unknown type kind %d", ErrInvalidEntry, typeName, f.Name, f.Type.Kind)
	}
	return nil
}
