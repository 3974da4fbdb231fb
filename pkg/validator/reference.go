package validator

import (
	"github.com/gofhir/datamodel/pkg/issue"
	"github.com/gofhir/datamodel/pkg/path"
	"github.com/gofhir/datamodel/pkg/schema"
	"github.com/gofhir/datamodel/pkg/value"
)

// checkReferences reports scalar reference fields pointing at a type outside
// the permitted set. References are never resolved.
func (r *run) checkReferences(rec *value.Record, entry *schema.Entry, at path.Path) {
	for _, decl := range entry.Fields {
		if decl.Type.Kind != schema.KindReference || decl.Cardinality.IsList() {
			continue
		}
		f, ok := populated(rec, decl)
		if !ok {
			continue
		}
		if iss := checkReference(f.Value(), decl.Type, at.Child(decl.Name)); iss != nil {
			r.add(*iss)
		}
	}
}

// checkReference checks the target type. Non-reference values are left to
// checkShape.
func checkReference(v value.Value, typ schema.Type, at path.Path) *issue.Issue {
	ref, ok := v.Reference()
	if !ok {
		return nil
	}
	if typ.AllowsTarget(ref.TargetType) {
		return nil
	}
	iss := issue.InvalidReferenceTarget(at, ref.TargetType, typ.Targets)
	return &iss
}
