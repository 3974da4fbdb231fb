// Package r5 provides runtime schema entries for a slice of FHIR R5:
// Appointment, MeasureReport and Composition with their backbone elements,
// plus the datatypes they use.
package r5

import "github.com/gofhir/datamodel/pkg/schema"

// Entries returns fresh copies of every entry in the slice.
func Entries() []*schema.Entry {
	var out []*schema.Entry
	out = append(out, Datatypes()...)
	out = append(out, Appointment()...)
	out = append(out, MeasureReport()...)
	out = append(out, Composition()...)
	return out
}

// Register adds the slice to reg.
func Register(reg *schema.Registry) error {
	for _, e := range Entries() {
		if err := reg.Register(e); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a sealed registry holding the slice.
func NewRegistry() (*schema.Registry, error) {
	reg := schema.New()
	if err := Register(reg); err != nil {
		return nil, err
	}
	if err := reg.Verify(); err != nil {
		return nil, err
	}
	reg.Seal()
	return reg, nil
}

// shorthand for declarations

func opt(name string, t schema.Type) schema.Field {
	return schema.Field{Name: name, Cardinality: schema.OptionalScalar, Type: t}
}

func req(name string, t schema.Type) schema.Field {
	return schema.Field{Name: name, Cardinality: schema.RequiredScalar, Type: t}
}

func list(name string, t schema.Type) schema.Field {
	return schema.Field{Name: name, Cardinality: schema.OptionalList, Type: t}
}

func nonEmpty(name string, t schema.Type) schema.Field {
	return schema.Field{Name: name, Cardinality: schema.RequiredList, Type: t}
}
