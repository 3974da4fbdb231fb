package validator

import (
	"github.com/gofhir/datamodel/pkg/issue"
	"github.com/gofhir/datamodel/pkg/path"
	"github.com/gofhir/datamodel/pkg/schema"
	"github.com/gofhir/datamodel/pkg/value"
)

// checkRequired reports required scalars that are absent.
func (r *run) checkRequired(rec *value.Record, entry *schema.Entry, at path.Path) {
	for _, decl := range entry.Fields {
		if decl.Cardinality != schema.RequiredScalar {
			continue
		}
		if !rec.Has(decl.Name) {
			r.add(issue.MissingRequiredField(at.Child(decl.Name)))
		}
	}
}

// checkNonEmpty reports required lists with no elements.
func (r *run) checkNonEmpty(rec *value.Record, entry *schema.Entry, at path.Path) {
	for _, decl := range entry.Fields {
		if decl.Cardinality != schema.RequiredList {
			continue
		}
		if !rec.Has(decl.Name) {
			r.add(issue.EmptyRequiredList(at.Child(decl.Name)))
		}
	}
}

// checkListElements checks each element of every populated list against the
// declared element type. Nested records inside elements are validated later
// by checkNested.
func (r *run) checkListElements(rec *value.Record, entry *schema.Entry, at path.Path) {
	for _, decl := range entry.Fields {
		if !decl.Cardinality.IsList() {
			continue
		}
		f, ok := populated(rec, decl)
		if !ok {
			continue
		}
		for i, elem := range f.List().All() {
			elemAt := at.Element(decl.Name, i)
			if cause := conform(elem, decl.Type, elemAt); cause != nil {
				r.add(issue.ListElementInvalid(elemAt, *cause))
			}
		}
	}
}

// checkScalars checks scalar values against their declared type. Choice
// membership and reference targets were already reported.
func (r *run) checkScalars(rec *value.Record, entry *schema.Entry, at path.Path) {
	for _, decl := range entry.Fields {
		if decl.Cardinality.IsList() {
			continue
		}
		f, ok := populated(rec, decl)
		if !ok {
			continue
		}
		if iss := checkShape(f.Value(), decl.Type, at.Child(decl.Name)); iss != nil {
			r.add(*iss)
		}
	}
}
