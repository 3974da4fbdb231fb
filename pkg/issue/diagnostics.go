package issue

import (
	"fmt"
	"strings"

	"github.com/gofhir/datamodel/pkg/path"
)

// DiagnosticID identifies a specific diagnostic message.
type DiagnosticID string

// Diagnostic IDs for structural checks.
const (
	DiagMissingRequiredField   DiagnosticID = "MISSING_REQUIRED_FIELD"
	DiagEmptyRequiredList      DiagnosticID = "EMPTY_REQUIRED_LIST"
	DiagListElementInvalid     DiagnosticID = "LIST_ELEMENT_INVALID"
	DiagInvalidChoiceKind      DiagnosticID = "INVALID_CHOICE_KIND"
	DiagInvalidReferenceTarget DiagnosticID = "INVALID_REFERENCE_TARGET"
	DiagUnknownField           DiagnosticID = "UNKNOWN_FIELD"
	DiagCardinalityMismatch    DiagnosticID = "CARDINALITY_MISMATCH"
	DiagTypeMismatch           DiagnosticID = "TYPE_MISMATCH"
	DiagInvalidPrimitive       DiagnosticID = "INVALID_PRIMITIVE"
	DiagUnknownType            DiagnosticID = "UNKNOWN_TYPE"
	DiagMaxDepthExceeded       DiagnosticID = "MAX_DEPTH_EXCEEDED"
)

// Diagnostic IDs for cross-field constraints.
const (
	DiagConstraintViolated DiagnosticID = "CONSTRAINT_VIOLATED"
	DiagConstraintEval     DiagnosticID = "CONSTRAINT_EVAL_ERROR"
)

// DiagnosticTemplate defines a diagnostic message template.
type DiagnosticTemplate struct {
	ID       DiagnosticID
	Severity Severity
	Code     Code
	Template string
}

// diagnosticTemplates maps diagnostic IDs to their templates.
// Templates use {placeholder} syntax for parameter substitution.
var diagnosticTemplates = map[DiagnosticID]DiagnosticTemplate{
	DiagMissingRequiredField: {
		Severity: SeverityError,
		Code:     CodeRequired,
		Template: "Required field '{field}' is missing",
	},
	DiagEmptyRequiredList: {
		Severity: SeverityError,
		Code:     CodeRequired,
		Template: "Field '{field}' requires at least one element",
	},
	DiagListElementInvalid: {
		Severity: SeverityError,
		Code:     CodeStructure,
		Template: "Element {index} of '{field}' is invalid: {cause}",
	},
	DiagInvalidChoiceKind: {
		Severity: SeverityError,
		Code:     CodeStructure,
		Template: "Field '{field}' does not allow kind '{actual}' (allowed: {allowed})",
	},
	DiagInvalidReferenceTarget: {
		Severity: SeverityError,
		Code:     CodeStructure,
		Template: "Field '{field}' cannot reference '{actual}' (allowed: {allowed})",
	},
	DiagUnknownField: {
		Severity: SeverityError,
		Code:     CodeStructure,
		Template: "Unknown field '{field}' for type '{type}'",
	},
	DiagCardinalityMismatch: {
		Severity: SeverityError,
		Code:     CodeStructure,
		Template: "Field '{field}' is declared {declared} but holds {actual}",
	},
	DiagTypeMismatch: {
		Severity: SeverityError,
		Code:     CodeValue,
		Template: "Field '{field}' expects {expected}, found {actual}",
	},
	DiagInvalidPrimitive: {
		Severity: SeverityError,
		Code:     CodeValue,
		Template: "Value '{value}' is not a valid {type}: {reason}",
	},
	DiagUnknownType: {
		Severity: SeverityError,
		Code:     CodeNotSupported,
		Template: "No schema registered for type '{type}'",
	},
	DiagMaxDepthExceeded: {
		Severity: SeverityError,
		Code:     CodeTooCostly,
		Template: "Nesting exceeds the maximum depth of {max}",
	},
	DiagConstraintViolated: {
		Severity: SeverityError,
		Code:     CodeInvariant,
		Template: "Constraint failed: {id}: {description}",
	},
	DiagConstraintEval: {
		Severity: SeverityWarning,
		Code:     CodeProcessing,
		Template: "Error evaluating constraint {id}: {error}",
	},
}

// FormatDiagnostic formats a diagnostic message with the given parameters.
func FormatDiagnostic(id DiagnosticID, params map[string]any) string {
	tmpl, ok := diagnosticTemplates[id]
	if !ok {
		return string(id)
	}
	return formatTemplate(tmpl.Template, params)
}

// GetDiagnosticTemplate returns the template for a diagnostic ID.
func GetDiagnosticTemplate(id DiagnosticID) (DiagnosticTemplate, bool) {
	tmpl, ok := diagnosticTemplates[id]
	if ok {
		tmpl.ID = id
	}
	return tmpl, ok
}

// formatTemplate replaces {placeholder} with values from params.
func formatTemplate(template string, params map[string]any) string {
	result := template
	for key, value := range params {
		placeholder := "{" + key + "}"
		result = strings.ReplaceAll(result, placeholder, fmt.Sprint(value))
	}
	return result
}

// newIssue fills severity, code and message from the template for id.
func newIssue(id DiagnosticID, at path.Path, params map[string]any) Issue {
	tmpl, ok := diagnosticTemplates[id]
	if !ok {
		return Issue{
			Severity:    SeverityError,
			Code:        CodeProcessing,
			ID:          id,
			Diagnostics: string(id),
			Path:        at,
		}
	}
	return Issue{
		Severity:    tmpl.Severity,
		Code:        tmpl.Code,
		ID:          id,
		Diagnostics: formatTemplate(tmpl.Template, params),
		Path:        at,
	}
}

func fieldName(at path.Path) string {
	seg, _ := at.Last()
	return seg.Name
}

// MissingRequiredField reports an absent required scalar at path at.
func MissingRequiredField(at path.Path) Issue {
	f := fieldName(at)
	iss := newIssue(DiagMissingRequiredField, at, map[string]any{"field": f})
	iss.Field = f
	return iss
}

// EmptyRequiredList reports a required list with no elements.
func EmptyRequiredList(at path.Path) Issue {
	f := fieldName(at)
	iss := newIssue(DiagEmptyRequiredList, at, map[string]any{"field": f})
	iss.Field = f
	return iss
}

// ListElementInvalid reports a list element that does not match the
// field's element kind. at addresses the element, e.g. "participant[2]".
func ListElementInvalid(at path.Path, cause Issue) Issue {
	seg, _ := at.Last()
	iss := newIssue(DiagListElementInvalid, at, map[string]any{
		"field": seg.Name,
		"index": seg.Index,
		"cause": cause.Diagnostics,
	})
	iss.Field = seg.Name
	iss.Actual = cause.Actual
	iss.Allowed = cause.Allowed
	iss.Cause = &cause
	return iss
}

// InvalidChoiceKind reports a choice alternative outside the declared set.
func InvalidChoiceKind(at path.Path, actual string, allowed []string) Issue {
	f := fieldName(at)
	iss := newIssue(DiagInvalidChoiceKind, at, map[string]any{
		"field":   f,
		"actual":  actual,
		"allowed": strings.Join(allowed, ", "),
	})
	iss.Field = f
	iss.Actual = actual
	iss.Allowed = allowed
	return iss
}

// InvalidReferenceTarget reports a reference to a type outside the permitted set.
func InvalidReferenceTarget(at path.Path, actual string, allowed []string) Issue {
	f := fieldName(at)
	iss := newIssue(DiagInvalidReferenceTarget, at, map[string]any{
		"field":   f,
		"actual":  actual,
		"allowed": strings.Join(allowed, ", "),
	})
	iss.Field = f
	iss.Actual = actual
	iss.Allowed = allowed
	return iss
}

// UnknownField reports a populated field the record type does not declare.
func UnknownField(at path.Path, typeName string) Issue {
	f := fieldName(at)
	iss := newIssue(DiagUnknownField, at, map[string]any{"field": f, "type": typeName})
	iss.Field = f
	return iss
}

// CardinalityMismatch reports a scalar field holding a list or the reverse.
func CardinalityMismatch(at path.Path, declared, actual string) Issue {
	f := fieldName(at)
	iss := newIssue(DiagCardinalityMismatch, at, map[string]any{
		"field":    f,
		"declared": declared,
		"actual":   actual,
	})
	iss.Field = f
	iss.Actual = actual
	return iss
}

// TypeMismatch reports a value whose kind differs from the declared one.
func TypeMismatch(at path.Path, expected, actual string) Issue {
	f := fieldName(at)
	iss := newIssue(DiagTypeMismatch, at, map[string]any{
		"field":    f,
		"expected": expected,
		"actual":   actual,
	})
	iss.Field = f
	iss.Actual = actual
	iss.Allowed = []string{expected}
	return iss
}

// InvalidPrimitive reports a raw value that does not conform to its primitive type.
func InvalidPrimitive(at path.Path, typeName, value, reason string) Issue {
	iss := newIssue(DiagInvalidPrimitive, at, map[string]any{
		"value":  value,
		"type":   typeName,
		"reason": reason,
	})
	iss.Field = fieldName(at)
	iss.Actual = value
	return iss
}

// UnknownType reports a nested record whose type has no schema entry.
func UnknownType(at path.Path, typeName string) Issue {
	iss := newIssue(DiagUnknownType, at, map[string]any{"type": typeName})
	iss.Field = fieldName(at)
	iss.Actual = typeName
	return iss
}

// MaxDepthExceeded reports nesting deeper than the configured limit.
func MaxDepthExceeded(at path.Path, limit int) Issue {
	return newIssue(DiagMaxDepthExceeded, at, map[string]any{"max": limit})
}

// ConstraintViolated reports a failed cross-field constraint on the record at path at.
// Advisory constraints pass SeverityWarning.
func ConstraintViolated(at path.Path, id, description string, severity Severity) Issue {
	iss := newIssue(DiagConstraintViolated, at, map[string]any{
		"id":          id,
		"description": description,
	})
	iss.Severity = severity
	if severity != SeverityError && severity != SeverityFatal {
		iss.Code = CodeBusinessRule
	}
	iss.Constraint = id
	return iss
}

// ConstraintEvalError reports a constraint that could not be evaluated.
func ConstraintEvalError(at path.Path, id string, err error) Issue {
	iss := newIssue(DiagConstraintEval, at, map[string]any{"id": id, "error": err})
	iss.Constraint = id
	return iss
}
