package value

import (
	"iter"
	"strings"
)

// Names of the fields carried by CommonFields.
const (
	FieldID        = "id"
	FieldExtension = "extension"
)

// CommonFields holds the fields every resource-like record shares.
type CommonFields struct {
	id         string
	extensions []Value
}

// ID returns the logical id, or "".
func (c CommonFields) ID() string { return c.id }

// Extensions returns the extension records.
func (c CommonFields) Extensions() List { return List{items: c.extensions} }

// Field is one named field of a Record: a scalar slot or a list.
type Field struct {
	name   string
	list   bool
	values []Value
}

// Scalar returns a scalar field holding v.
func Scalar(name string, v Value) Field {
	if v.IsAbsent() {
		return Field{name: name}
	}
	return Field{name: name, values: []Value{v}}
}

// ListOf returns a list field holding a copy of vs.
func ListOf(name string, vs ...Value) Field {
	return Field{name: name, list: true, values: copyValues(vs)}
}

// Name returns the field name.
func (f Field) Name() string { return f.name }

// IsList reports whether the field holds a list.
func (f Field) IsList() bool { return f.list }

// Len returns the number of values held.
func (f Field) Len() int { return len(f.values) }

// At returns the i-th value.
func (f Field) At(i int) Value { return f.values[i] }

// Value returns the scalar value, or absent for lists and empty fields.
func (f Field) Value() Value {
	if f.list || len(f.values) == 0 {
		return Value{}
	}
	return f.values[0]
}

// List returns a read-only view over the values.
func (f Field) List() List { return List{items: f.values} }

// Record is an immutable, typed collection of fields in declaration order.
type Record struct {
	CommonFields
	typeName string
	fields   []Field
}

// Assemble builds a Record of the given type from fields, in the order given.
// Value slices are copied, so later changes by the caller are not observed.
// The id and extension fields, when present, also populate CommonFields.
func Assemble(typeName string, fields ...Field) *Record {
	r := &Record{
		typeName: typeName,
		fields:   make([]Field, 0, len(fields)),
	}
	for _, f := range fields {
		if len(f.values) == 0 {
			continue
		}
		f.values = copyValues(f.values)
		r.fields = append(r.fields, f)

		switch f.name {
		case FieldID:
			if s, ok := f.Value().Str(); ok {
				r.id = s
			}
		case FieldExtension:
			r.extensions = f.values
		}
	}
	return r
}

// TypeName returns the record type.
func (r *Record) TypeName() string {
	if r == nil {
		return ""
	}
	return r.typeName
}

// NumFields returns the number of populated fields.
func (r *Record) NumFields() int { return len(r.fields) }

// FieldAt returns the i-th populated field.
func (r *Record) FieldAt(i int) Field { return r.fields[i] }

// Fields iterates populated fields in declaration order.
func (r *Record) Fields() iter.Seq[Field] {
	return func(yield func(Field) bool) {
		for _, f := range r.fields {
			if !yield(f) {
				return
			}
		}
	}
}

// Field looks up a populated field by name.
func (r *Record) Field(name string) (Field, bool) {
	for _, f := range r.fields {
		if f.name == name {
			return f, true
		}
	}
	return Field{name: name}, false
}

// Has reports whether the field holds at least one value.
func (r *Record) Has(name string) bool {
	f, ok := r.Field(name)
	return ok && len(f.values) > 0
}

// Get returns the scalar value of a field, or absent.
func (r *Record) Get(name string) Value {
	f, _ := r.Field(name)
	return f.Value()
}

// List returns a read-only view of a list field. Missing fields yield an empty view.
func (r *Record) List(name string) List {
	f, _ := r.Field(name)
	return f.List()
}

// String renders a compact single-line form, mainly for test failures.
func (r *Record) String() string {
	if r == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString(r.typeName)
	b.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.name)
		b.WriteByte('=')
		if f.list {
			b.WriteByte('[')
			for j, v := range f.values {
				if j > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(v.String())
			}
			b.WriteByte(']')
		} else {
			b.WriteString(f.Value().String())
		}
	}
	b.WriteByte('}')
	return b.String()
}

func copyValues(vs []Value) []Value {
	if len(vs) == 0 {
		return nil
	}
	out := make([]Value, len(vs))
	copy(out, vs)
	return out
}
