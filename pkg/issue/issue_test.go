package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/gofhir/datamodel/pkg/path"
)

func TestNewResult(t *testing.T) {
	r := NewResult()
	if r == nil {
		t.Fatal("NewResult() returned nil")
	}
	if len(r.Issues) != 0 {
		t.Errorf("NewResult() should have no issues, got %d", len(r.Issues))
	}
	if !r.Valid(true) {
		t.Error("empty result should be valid in strict mode")
	}
}

func TestMissingRequiredField(t *testing.T) {
	at := path.Root.Element("participant", 2).Child("status")
	iss := MissingRequiredField(at)

	if iss.Severity != SeverityError {
		t.Errorf("Severity = %q, want %q", iss.Severity, SeverityError)
	}
	if iss.Code != CodeRequired {
		t.Errorf("Code = %q, want %q", iss.Code, CodeRequired)
	}
	if iss.Field != "status" {
		t.Errorf("Field = %q, want status", iss.Field)
	}
	if iss.Expression() != "participant[2].status" {
		t.Errorf("Expression() = %q", iss.Expression())
	}
	if iss.Diagnostics != "Required field 'status' is missing" {
		t.Errorf("Diagnostics = %q", iss.Diagnostics)
	}
}

func TestListElementInvalidCarriesCause(t *testing.T) {
	at := path.Root.Element("participant", 1)
	cause := TypeMismatch(at, "Appointment.participant", "string")
	iss := ListElementInvalid(at, cause)

	if iss.ID != DiagListElementInvalid {
		t.Errorf("ID = %q", iss.ID)
	}
	if iss.Cause == nil || iss.Cause.ID != DiagTypeMismatch {
		t.Fatalf("Cause = %+v, want TYPE_MISMATCH", iss.Cause)
	}
	if !strings.Contains(iss.Diagnostics, "Element 1 of 'participant'") {
		t.Errorf("Diagnostics = %q", iss.Diagnostics)
	}
	if iss.Actual != "string" {
		t.Errorf("Actual = %q, want string", iss.Actual)
	}
}

func TestInvalidChoiceKind(t *testing.T) {
	allowed := []string{"Quantity", "dateTime"}
	iss := InvalidChoiceKind(path.Root.Child("measureScore"), "string", allowed)

	if iss.Field != "measureScore" || iss.Actual != "string" {
		t.Errorf("Field/Actual = %q/%q", iss.Field, iss.Actual)
	}
	want := "Field 'measureScore' does not allow kind 'string' (allowed: Quantity, dateTime)"
	if iss.Diagnostics != want {
		t.Errorf("Diagnostics = %q, want %q", iss.Diagnostics, want)
	}
}

func TestConstraintViolatedSeverity(t *testing.T) {
	at := path.Root.Element("participant", 0)

	rule := ConstraintViolated(at, "app-1", "Either the type or actor on the participant SHALL be specified", SeverityError)
	if rule.Code != CodeInvariant || rule.Severity != SeverityError {
		t.Errorf("rule = %s/%s", rule.Severity, rule.Code)
	}
	if rule.Constraint != "app-1" {
		t.Errorf("Constraint = %q", rule.Constraint)
	}
	if !strings.HasPrefix(rule.Diagnostics, "Constraint failed: app-1: ") {
		t.Errorf("Diagnostics = %q", rule.Diagnostics)
	}

	advisory := ConstraintViolated(at, "app-x", "should", SeverityWarning)
	if advisory.Severity != SeverityWarning || advisory.Code != CodeBusinessRule {
		t.Errorf("advisory = %s/%s", advisory.Severity, advisory.Code)
	}
}

func TestResultCounts(t *testing.T) {
	r := NewResult()
	r.AddIssue(MissingRequiredField(path.Root.Child("status")))
	r.AddIssue(EmptyRequiredList(path.Root.Child("participant")))
	r.AddIssue(ConstraintViolated(path.Root, "w-1", "advisory", SeverityWarning))
	r.AddIssue(ConstraintEvalError(path.Root, "bad-1", errors.New("boom")))

	if r.ErrorCount() != 2 {
		t.Errorf("ErrorCount() = %d, want 2", r.ErrorCount())
	}
	if r.WarningCount() != 2 {
		t.Errorf("WarningCount() = %d, want 2", r.WarningCount())
	}
	if !r.HasErrors() {
		t.Error("HasErrors() = false, want true")
	}
	if len(r.ByID(DiagEmptyRequiredList)) != 1 {
		t.Error("ByID(EMPTY_REQUIRED_LIST) should return one issue")
	}
	if r.Filter(SeverityWarning).WarningCount() != 2 {
		t.Error("Filter(warning) should keep both warnings")
	}
}

func TestResultValidAndErr(t *testing.T) {
	warnOnly := NewResult()
	warnOnly.AddIssue(ConstraintViolated(path.Root, "w-1", "advisory", SeverityWarning))

	if !warnOnly.Valid(false) {
		t.Error("warnings alone should be valid when not strict")
	}
	if warnOnly.Err(false) != nil {
		t.Error("Err(false) should be nil for warnings only")
	}
	if warnOnly.Valid(true) {
		t.Error("warnings should fail in strict mode")
	}

	err := warnOnly.Err(true)
	is, ok := AsIssues(err)
	if !ok || len(is) != 1 || is[0].Constraint != "w-1" {
		t.Errorf("AsIssues(Err(true)) = %v, %v", is, ok)
	}
}

func TestIssuesErrorSummary(t *testing.T) {
	var is Issues
	for i := 0; i < 5; i++ {
		is = append(is, MissingRequiredField(path.Root.Child(fmt.Sprintf("f%d", i))))
	}

	msg := is.Error()
	if !strings.Contains(msg, "f0: Required field 'f0' is missing") {
		t.Errorf("Error() = %q", msg)
	}
	if !strings.HasSuffix(msg, "and 2 more") {
		t.Errorf("Error() = %q, want suffix 'and 2 more'", msg)
	}

	wrapped := fmt.Errorf("decode appointment: %w", is)
	got, ok := AsIssues(wrapped)
	if !ok || len(got) != 5 {
		t.Errorf("AsIssues through wrap = %d, %v", len(got), ok)
	}
}

func TestResultMerge(t *testing.T) {
	r1 := NewResult()
	r1.AddIssue(MissingRequiredField(path.Root.Child("a")))

	r2 := NewResult()
	r2.AddIssue(MissingRequiredField(path.Root.Child("b")))

	r1.Merge(r2)
	r1.Merge(nil)

	if len(r1.Issues) != 2 {
		t.Errorf("After merge, result should have 2 issues, got %d", len(r1.Issues))
	}
}

func TestResultUnder(t *testing.T) {
	r := NewResult()
	r.AddIssue(MissingRequiredField(path.Root.Element("participant", 0).Child("status")))
	r.AddIssue(MissingRequiredField(path.Root.Element("participant", 1).Child("status")))
	r.AddIssue(MissingRequiredField(path.Root.Child("status")))

	got := r.Under(path.Root.Element("participant", 1))
	if len(got) != 1 || got[0].Expression() != "participant[1].status" {
		t.Errorf("Under(participant[1]) = %v", got)
	}
}

func TestFormatDiagnostic(t *testing.T) {
	got := FormatDiagnostic(DiagUnknownType, map[string]any{"type": "Widget"})
	if got != "No schema registered for type 'Widget'" {
		t.Errorf("FormatDiagnostic() = %q", got)
	}
	if FormatDiagnostic("NOPE", nil) != "NOPE" {
		t.Error("unknown id should format as itself")
	}

	tmpl, ok := GetDiagnosticTemplate(DiagConstraintEval)
	if !ok || tmpl.ID != DiagConstraintEval || tmpl.Severity != SeverityWarning {
		t.Errorf("GetDiagnosticTemplate() = %+v, %v", tmpl, ok)
	}
}
