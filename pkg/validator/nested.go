package validator

import (
	"github.com/gofhir/datamodel/pkg/issue"
	"github.com/gofhir/datamodel/pkg/path"
	"github.com/gofhir/datamodel/pkg/schema"
	"github.com/gofhir/datamodel/pkg/value"
)

// checkNested validates every nested record held by a conforming field
// value, scalar or list element, against the nested type's own entry.
// Values that failed an earlier check are not descended into.
func (r *run) checkNested(rec *value.Record, entry *schema.Entry, at path.Path, depth int) {
	for _, decl := range entry.Fields {
		if decl.Type.Kind != schema.KindRecord && decl.Type.Kind != schema.KindChoice {
			continue
		}
		f, ok := populated(rec, decl)
		if !ok {
			continue
		}

		if !f.IsList() {
			r.nested(f.Value(), decl.Type, at.Child(decl.Name), depth)
			continue
		}
		for i, elem := range f.List().All() {
			r.nested(elem, decl.Type, at.Element(decl.Name, i), depth)
		}
	}
}

func (r *run) nested(v value.Value, typ schema.Type, at path.Path, depth int) {
	child := v.NestedRecord()
	if child == nil || conform(v, typ, at) != nil {
		return
	}

	childEntry, err := r.v.registry.Lookup(child.TypeName())
	if err != nil {
		r.add(issue.UnknownType(at, child.TypeName()))
		return
	}
	r.record(child, childEntry, at, depth+1)
}
