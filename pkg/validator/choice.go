package validator

import (
	"github.com/gofhir/datamodel/pkg/issue"
	"github.com/gofhir/datamodel/pkg/path"
	"github.com/gofhir/datamodel/pkg/schema"
	"github.com/gofhir/datamodel/pkg/value"
)

// checkChoices reports scalar choice fields whose selected kind is not one
// of the declared alternatives.
func (r *run) checkChoices(rec *value.Record, entry *schema.Entry, at path.Path) {
	for _, decl := range entry.Fields {
		if decl.Type.Kind != schema.KindChoice || decl.Cardinality.IsList() {
			continue
		}
		f, ok := populated(rec, decl)
		if !ok {
			continue
		}
		if iss := checkChoice(f.Value(), decl.Type, at.Child(decl.Name)); iss != nil {
			r.add(*iss)
		}
	}
}

// selectedKind is the alternative a value selects. Values staged without a
// Choice wrapper select their own kind.
func selectedKind(v value.Value) string {
	if v.Kind() == value.KindChoice {
		return v.ChoiceKind()
	}
	return v.KindName()
}

// checkChoice checks membership, and the target of a selected reference.
func checkChoice(v value.Value, typ schema.Type, at path.Path) *issue.Issue {
	if v.IsAbsent() {
		return nil
	}
	kind := selectedKind(v)
	if !typ.Allows(kind) {
		iss := issue.InvalidChoiceKind(at, kind, typ.Choices)
		return &iss
	}
	return checkReference(v.Unwrap(), typ, at)
}
