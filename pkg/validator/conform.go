package validator

import (
	"github.com/gofhir/datamodel/pkg/issue"
	"github.com/gofhir/datamodel/pkg/path"
	"github.com/gofhir/datamodel/pkg/schema"
	"github.com/gofhir/datamodel/pkg/value"
)

// conform runs every value-level check for v against typ and returns the
// first defect, or nil.
func conform(v value.Value, typ schema.Type, at path.Path) *issue.Issue {
	switch typ.Kind {
	case schema.KindChoice:
		if iss := checkChoice(v, typ, at); iss != nil {
			return iss
		}
	case schema.KindReference:
		if iss := checkReference(v, typ, at); iss != nil {
			return iss
		}
	}
	return checkShape(v, typ, at)
}

// checkShape checks that v has the kind typ declares: the right primitive
// type with a well-formed raw value, a record of the declared type, a
// reference, or a choice whose held value matches its selected kind.
func checkShape(v value.Value, typ schema.Type, at path.Path) *issue.Issue {
	if v.IsAbsent() {
		return mismatch(at, typ.String(), "absent")
	}

	switch typ.Kind {
	case schema.KindPrimitive:
		if v.Kind() != value.KindPrimitive || v.PrimitiveType() != typ.Primitive {
			return mismatch(at, typ.String(), describe(v))
		}
		return checkPrimitive(v, at)

	case schema.KindRecord:
		if v.Kind() != value.KindRecord || v.Record().TypeName() != typ.Record {
			return mismatch(at, typ.String(), describe(v))
		}

	case schema.KindReference:
		if v.Kind() != value.KindReference {
			return mismatch(at, typ.String(), describe(v))
		}

	case schema.KindChoice:
		return checkChoiceValue(v, at)
	}
	return nil
}

// checkChoiceValue checks that the value held by a choice is of the kind the
// choice selects. Membership is checked separately.
func checkChoiceValue(v value.Value, at path.Path) *issue.Issue {
	if v.Kind() != value.KindChoice {
		// a bare value selects its own kind
		if v.Kind() == value.KindPrimitive {
			return checkPrimitive(v, at)
		}
		return nil
	}

	inner := v.Unwrap()
	switch inner.Kind() {
	case value.KindAbsent, value.KindChoice:
		return mismatch(at, v.ChoiceKind(), describe(inner))
	}
	if !schema.SameKind(inner.KindName(), v.ChoiceKind()) {
		return mismatch(at, v.ChoiceKind(), describe(inner))
	}
	if inner.Kind() == value.KindPrimitive {
		return checkPrimitive(inner, at)
	}
	return nil
}

func mismatch(at path.Path, expected, actual string) *issue.Issue {
	iss := issue.TypeMismatch(at, expected, actual)
	return &iss
}

// describe names v's kind for diagnostics.
func describe(v value.Value) string {
	switch v.Kind() {
	case value.KindAbsent:
		return "absent"
	case value.KindChoice:
		return "choice " + v.ChoiceKind()
	default:
		return v.KindName()
	}
}
