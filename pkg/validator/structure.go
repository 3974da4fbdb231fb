package validator

import (
	"github.com/gofhir/datamodel/pkg/issue"
	"github.com/gofhir/datamodel/pkg/path"
	"github.com/gofhir/datamodel/pkg/schema"
	"github.com/gofhir/datamodel/pkg/value"
)

// checkStructure reports populated fields the entry does not declare and
// fields whose list/scalar shape contradicts the declaration.
func (r *run) checkStructure(rec *value.Record, entry *schema.Entry, at path.Path) {
	for f := range rec.Fields() {
		r.result.Stats.FieldsChecked += f.Len()

		decl, ok := entry.Field(f.Name())
		if !ok {
			r.add(issue.UnknownField(at.Child(f.Name()), entry.TypeName))
			continue
		}
		if f.IsList() != decl.Cardinality.IsList() {
			r.add(issue.CardinalityMismatch(at.Child(f.Name()), decl.Cardinality.String(), shapeName(f)))
		}
	}
}

func shapeName(f value.Field) string {
	if f.IsList() {
		return "a list"
	}
	return "a single value"
}
