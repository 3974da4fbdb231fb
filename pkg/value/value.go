package value

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Reference points at another record by type and id. It is never resolved here.
type Reference struct {
	TargetType string
	TargetID   string
	Display    string
}

// String renders the reference as "Type/id".
func (r Reference) String() string {
	if r.TargetType == "" {
		return r.TargetID
	}
	return r.TargetType + "/" + r.TargetID
}

// Value is a field value. The zero Value is absent.
type Value struct {
	kind   Kind
	prim   PrimitiveType
	raw    any
	rec    *Record
	ref    Reference
	choice string
	inner  *Value
}

// ReferenceKind is the choice alternative that selects a reference.
const ReferenceKind = "Reference"

// Absent returns the absent value.
func Absent() Value {
	return Value{}
}

// Primitive returns a primitive value of type t. The raw value is checked
// against t during validation, not here.
func Primitive(t PrimitiveType, raw any) Value {
	return Value{kind: KindPrimitive, prim: t, raw: raw}
}

// String returns a string primitive.
func String(s string) Value { return Primitive(TypeString, s) }

// Code returns a code primitive.
func Code(s string) Value { return Primitive(TypeCode, s) }

// ID returns an id primitive.
func ID(s string) Value { return Primitive(TypeID, s) }

// URI returns a uri primitive.
func URI(s string) Value { return Primitive(TypeURI, s) }

// Canonical returns a canonical primitive.
func Canonical(s string) Value { return Primitive(TypeCanonical, s) }

// Markdown returns a markdown primitive.
func Markdown(s string) Value { return Primitive(TypeMarkdown, s) }

// Boolean returns a boolean primitive.
func Boolean(b bool) Value { return Primitive(TypeBoolean, b) }

// Integer returns an integer primitive.
func Integer(i int64) Value { return Primitive(TypeInteger, i) }

// PositiveInt returns a positiveInt primitive.
func PositiveInt(i int64) Value { return Primitive(TypePositiveInt, i) }

// UnsignedInt returns an unsignedInt primitive.
func UnsignedInt(i int64) Value { return Primitive(TypeUnsignedInt, i) }

// Decimal returns a decimal primitive.
func Decimal(d decimal.Decimal) Value { return Primitive(TypeDecimal, d) }

// DecimalString parses s as a decimal primitive.
func DecimalString(s string) (Value, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Value{}, fmt.Errorf("decimal %q: %w", s, err)
	}
	return Decimal(d), nil
}

// Date returns a date primitive (YYYY, YYYY-MM or YYYY-MM-DD).
func Date(s string) Value { return Primitive(TypeDate, s) }

// DateTime returns a dateTime primitive.
func DateTime(s string) Value { return Primitive(TypeDateTime, s) }

// Instant returns an instant primitive.
func Instant(s string) Value { return Primitive(TypeInstant, s) }

// Time returns a time primitive.
func Time(s string) Value { return Primitive(TypeTime, s) }

// Nested wraps a record. A nil record yields the absent value.
func Nested(r *Record) Value {
	if r == nil {
		return Value{}
	}
	return Value{kind: KindRecord, rec: r}
}

// Ref returns a reference to the record of the given type and id.
func Ref(targetType, targetID string) Value {
	return Value{kind: KindReference, ref: Reference{TargetType: targetType, TargetID: targetID}}
}

// RefWithDisplay returns a reference carrying a display text.
func RefWithDisplay(targetType, targetID, display string) Value {
	v := Ref(targetType, targetID)
	v.ref.Display = display
	return v
}

// Choice selects kind as the alternative held by a choice field.
func Choice(kind string, v Value) Value {
	inner := v
	return Value{kind: KindChoice, choice: kind, inner: &inner}
}

// Kind returns the populated variant.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether v carries nothing.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// PrimitiveType returns the primitive type, or "" for non-primitives.
func (v Value) PrimitiveType() PrimitiveType { return v.prim }

// Raw returns the raw primitive value, or nil.
func (v Value) Raw() any { return v.raw }

// Str returns the raw string of a string-like primitive.
func (v Value) Str() (string, bool) {
	s, ok := v.raw.(string)
	return s, ok && v.kind == KindPrimitive
}

// Bool returns the raw boolean.
func (v Value) Bool() (bool, bool) {
	b, ok := v.raw.(bool)
	return b, ok && v.kind == KindPrimitive
}

// Int returns the raw integer.
func (v Value) Int() (int64, bool) {
	i, ok := v.raw.(int64)
	return i, ok && v.kind == KindPrimitive
}

// Decimal returns the raw decimal.
func (v Value) Decimal() (decimal.Decimal, bool) {
	d, ok := v.raw.(decimal.Decimal)
	return d, ok && v.kind == KindPrimitive
}

// Record returns the nested record, or nil.
func (v Value) Record() *Record { return v.rec }

// Reference returns the reference. ok is false for other kinds.
func (v Value) Reference() (Reference, bool) {
	return v.ref, v.kind == KindReference
}

// ChoiceKind returns the selected alternative of a choice value.
func (v Value) ChoiceKind() string { return v.choice }

// Unwrap returns the value held by a choice, or v itself for other kinds.
func (v Value) Unwrap() Value {
	if v.kind == KindChoice && v.inner != nil {
		return *v.inner
	}
	return v
}

// NestedRecord returns the record held directly or through a choice, or nil.
func (v Value) NestedRecord() *Record {
	return v.Unwrap().Record()
}

// KindName returns the type name v presents to type checks: the primitive
// type, the record type, "Reference", or the selected choice alternative.
func (v Value) KindName() string {
	switch v.kind {
	case KindPrimitive:
		return string(v.prim)
	case KindRecord:
		return v.rec.TypeName()
	case KindReference:
		return ReferenceKind
	case KindChoice:
		return v.choice
	default:
		return ""
	}
}

// String renders v for diagnostics.
func (v Value) String() string {
	switch v.kind {
	case KindPrimitive:
		if d, ok := v.raw.(decimal.Decimal); ok {
			return d.String()
		}
		return fmt.Sprint(v.raw)
	case KindRecord:
		return v.rec.TypeName() + "{...}"
	case KindReference:
		return v.ref.String()
	case KindChoice:
		return v.choice + ":" + v.Unwrap().String()
	default:
		return "<absent>"
	}
}
