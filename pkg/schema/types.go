package schema

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gofhir/datamodel/pkg/value"
)

// Cardinality says whether a field is required and whether it repeats.
type Cardinality uint8

// Cardinalities.
const (
	OptionalScalar Cardinality = iota // 0..1
	RequiredScalar                    // 1..1
	OptionalList                      // 0..*
	RequiredList                      // 1..*
)

// IsList reports whether the field repeats.
func (c Cardinality) IsList() bool {
	return c == OptionalList || c == RequiredList
}

// IsRequired reports whether the field must hold at least one value.
func (c Cardinality) IsRequired() bool {
	return c == RequiredScalar || c == RequiredList
}

// String returns the cardinality name.
func (c Cardinality) String() string {
	switch c {
	case OptionalScalar:
		return "optional-scalar"
	case RequiredScalar:
		return "required-scalar"
	case OptionalList:
		return "optional-list"
	case RequiredList:
		return "required-nonempty-list"
	default:
		return fmt.Sprintf("cardinality(%d)", c)
	}
}

// Range returns the FHIR min..max notation.
func (c Cardinality) Range() string {
	switch c {
	case RequiredScalar:
		return "1..1"
	case OptionalList:
		return "0..*"
	case RequiredList:
		return "1..*"
	default:
		return "0..1"
	}
}

// ParseCardinality accepts names ("required-scalar") and ranges ("1..1").
func ParseCardinality(s string) (Cardinality, error) {
	switch strings.TrimSpace(s) {
	case "optional-scalar", "optional", "0..1", "":
		return OptionalScalar, nil
	case "required-scalar", "required", "1..1":
		return RequiredScalar, nil
	case "optional-list", "list", "0..*":
		return OptionalList, nil
	case "required-nonempty-list", "required-list", "nonempty-list", "1..*":
		return RequiredList, nil
	default:
		return OptionalScalar, fmt.Errorf("%w: unknown cardinality %q", ErrInvalidEntry, s)
	}
}

// CardinalityOf maps FHIR min and max onto a Cardinality.
func CardinalityOf(minCount uint32, maxCount string) Cardinality {
	list := maxCount == "*" || (maxCount != "" && maxCount != "0" && maxCount != "1")
	switch {
	case list && minCount > 0:
		return RequiredList
	case list:
		return OptionalList
	case minCount > 0:
		return RequiredScalar
	default:
		return OptionalScalar
	}
}

// TypeKind selects the shape of a field's value.
type TypeKind uint8

// Type kinds.
const (
	KindPrimitive TypeKind = iota
	KindRecord
	KindReference
	KindChoice
)

// String returns the kind name.
func (k TypeKind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindRecord:
		return "record"
	case KindReference:
		return "reference"
	case KindChoice:
		return "choice"
	default:
		return "unknown"
	}
}

// Type describes the value kind a field accepts.
type Type struct {
	Kind      TypeKind
	Primitive value.PrimitiveType // KindPrimitive
	Record    string              // KindRecord: nested record type name
	Targets   []string            // KindReference, or the Reference alternative of a KindChoice
	Choices   []string            // KindChoice: permitted alternatives
}

// Primitive declares a primitive field type.
func Primitive(t value.PrimitiveType) Type {
	return Type{Kind: KindPrimitive, Primitive: t}
}

// RecordOf declares a nested record field type.
func RecordOf(typeName string) Type {
	return Type{Kind: KindRecord, Record: typeName}
}

// ReferenceTo declares a reference field permitting the given target types.
// "Resource" or "Any" permits every target.
func ReferenceTo(targets ...string) Type {
	return Type{Kind: KindReference, Targets: slices.Clone(targets)}
}

// ChoiceOf declares a choice field. Alternatives are type names: primitive
// names select primitives, anything else a nested record of that type.
func ChoiceOf(alternatives ...string) Type {
	return Type{Kind: KindChoice, Choices: slices.Clone(alternatives)}
}

// WithTargets restricts the targets of a choice's Reference alternative.
func (t Type) WithTargets(targets ...string) Type {
	t.Targets = slices.Clone(targets)
	return t
}

// String renders the type, e.g. "Reference(Patient|Group)".
func (t Type) String() string {
	switch t.Kind {
	case KindPrimitive:
		return string(t.Primitive)
	case KindRecord:
		return t.Record
	case KindReference:
		return "Reference(" + strings.Join(t.Targets, "|") + ")"
	case KindChoice:
		alts := slices.Clone(t.Choices)
		if len(t.Targets) > 0 {
			for i, c := range alts {
				if c == value.ReferenceKind {
					alts[i] = "Reference(" + strings.Join(t.Targets, "|") + ")"
				}
			}
		}
		return "choice(" + strings.Join(alts, "|") + ")"
	default:
		return "unknown"
	}
}

// Allows reports whether kind is one of the choice alternatives.
func (t Type) Allows(kind string) bool {
	_, ok := t.Alternative(kind)
	return ok
}

// Alternative returns the declared spelling of kind among the choices.
func (t Type) Alternative(kind string) (string, bool) {
	for _, c := range t.Choices {
		if SameKind(c, kind) {
			return c, true
		}
	}
	return "", false
}

// AllowsTarget reports whether a reference may point at targetType.
// A choice without targets permits every target.
func (t Type) AllowsTarget(targetType string) bool {
	if t.Kind == KindChoice && len(t.Targets) == 0 {
		return true
	}
	for _, tt := range t.Targets {
		if tt == targetType || tt == "Resource" || tt == "Any" {
			return true
		}
	}
	return false
}

// Equal reports whether two descriptors are identical.
func (t Type) Equal(o Type) bool {
	return t.Kind == o.Kind &&
		t.Primitive == o.Primitive &&
		t.Record == o.Record &&
		slices.Equal(t.Targets, o.Targets) &&
		slices.Equal(t.Choices, o.Choices)
}

// SameKind compares kind names ignoring the case of the first letter, so
// the FHIR choice suffix "DateTime" matches the primitive "dateTime".
func SameKind(a, b string) bool {
	if a == b {
		return true
	}
	ra, na := utf8.DecodeRuneInString(a)
	rb, nb := utf8.DecodeRuneInString(b)
	if na == 0 || nb == 0 {
		return false
	}
	return unicode.ToUpper(ra) == unicode.ToUpper(rb) && a[na:] == b[nb:]
}

// Field declares one field of a record type.
type Field struct {
	Name        string
	Cardinality Cardinality
	Type        Type
	Short       string
}

// Equal reports whether two field declarations are identical.
func (f Field) Equal(o Field) bool {
	return f.Name == o.Name && f.Cardinality == o.Cardinality && f.Type.Equal(o.Type) && f.Short == o.Short
}

// Severity ranks a cross-field constraint.
type Severity uint8

// Constraint severities.
const (
	// SeverityRule violations reject the record.
	SeverityRule Severity = iota
	// SeverityWarning violations are reported but advisory.
	SeverityWarning
)

// String returns "rule" or "warning".
func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "rule"
}

// Constraint is a record-level invariant spanning several fields.
// Exactly one of Expression (FHIRPath) or Check (Go predicate) is set.
type Constraint struct {
	ID          string
	Description string
	Severity    Severity
	Expression  string
	Check       func(*value.Record) bool
}

// Equal compares constraints. Predicates compare by presence only.
func (c Constraint) Equal(o Constraint) bool {
	return c.ID == o.ID &&
		c.Description == o.Description &&
		c.Severity == o.Severity &&
		c.Expression == o.Expression &&
		(c.Check == nil) == (o.Check == nil)
}

// EntryKind classifies record types.
type EntryKind uint8

// Entry kinds.
const (
	KindResource EntryKind = iota
	KindElement
	KindDatatype
)

// String returns the kind name.
func (k EntryKind) String() string {
	switch k {
	case KindResource:
		return "resource"
	case KindElement:
		return "element"
	case KindDatatype:
		return "datatype"
	default:
		return "unknown"
	}
}

// ParseEntryKind parses "resource", "element" or "datatype".
func ParseEntryKind(s string) (EntryKind, error) {
	switch s {
	case "resource", "":
		return KindResource, nil
	case "element", "backbone":
		return KindElement, nil
	case "datatype", "complex-type":
		return KindDatatype, nil
	default:
		return KindResource, fmt.Errorf("%w: unknown entry kind %q", ErrInvalidEntry, s)
	}
}
