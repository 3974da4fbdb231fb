package main

import (
	"fmt"
	"io"
	"time"

	json "github.com/goccy/go-json"

	"github.com/gofhir/datamodel/pkg/issue"
	"github.com/gofhir/datamodel/pkg/worker"
)

// ValidationOutput represents the JSON output structure for one document.
type ValidationOutput struct {
	Document string        `json:"document"`
	Type     string        `json:"type,omitempty"`
	Valid    bool          `json:"valid"`
	Errors   int           `json:"errors"`
	Warnings int           `json:"warnings"`
	Issues   []IssueOutput `json:"issues,omitempty"`
	Duration string        `json:"duration,omitempty"`
}

// IssueOutput represents a single issue in JSON output.
type IssueOutput struct {
	Severity    string `json:"severity"`
	Code        string `json:"code"`
	ID          string `json:"id"`
	Diagnostics string `json:"diagnostics"`
	Expression  string `json:"expression,omitempty"`
	Constraint  string `json:"constraint,omitempty"`
}

// failedOutput reports a document that could not be validated at all.
func failedOutput(name string, err error) ValidationOutput {
	return ValidationOutput{
		Document: name,
		Errors:   1,
		Issues: []IssueOutput{{
			Severity:    string(issue.SeverityError),
			Code:        string(issue.CodeProcessing),
			Diagnostics: err.Error(),
		}},
	}
}

func resultOutput(name, typeName string, result *issue.Result, strict bool, duration time.Duration) ValidationOutput {
	out := ValidationOutput{
		Document: name,
		Type:     typeName,
		Valid:    result.Valid(strict),
		Errors:   result.ErrorCount(),
		Warnings: result.WarningCount(),
		Duration: duration.Round(time.Microsecond).String(),
	}
	for _, iss := range result.Issues {
		out.Issues = append(out.Issues, IssueOutput{
			Severity:    string(iss.Severity),
			Code:        string(iss.Code),
			ID:          string(iss.ID),
			Diagnostics: iss.Diagnostics,
			Expression:  iss.Expression(),
			Constraint:  iss.Constraint,
		})
	}
	return out
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printTextResult(w io.Writer, out ValidationOutput) {
	status := "VALID"
	if !out.Valid {
		status = "INVALID"
	}

	fmt.Fprintf(w, "== %s ==\n", out.Document)
	fmt.Fprintf(w, "Status: %s\n", status)
	fmt.Fprintf(w, "Errors: %d, Warnings: %d\n", out.Errors, out.Warnings)
	if out.Type != "" {
		fmt.Fprintf(w, "Type: %s\n", out.Type)
	}
	if out.Duration != "" {
		fmt.Fprintf(w, "Duration: %s\n", out.Duration)
	}

	if len(out.Issues) > 0 {
		fmt.Fprintln(w, "\nIssues:")
		for _, iss := range out.Issues {
			location := ""
			if iss.Expression != "" {
				location = " @ " + iss.Expression
			}
			fmt.Fprintf(w, "  %s [%s] %s%s\n", getSeverityIcon(issue.Severity(iss.Severity)), iss.Code, iss.Diagnostics, location)
		}
	}
	fmt.Fprintln(w)
}

func getSeverityIcon(severity issue.Severity) string {
	switch severity {
	case issue.SeverityFatal, issue.SeverityError:
		return "ERROR"
	case issue.SeverityWarning:
		return "WARN "
	case issue.SeverityInformation:
		return "INFO "
	default:
		return "     "
	}
}

func printStats(w io.Writer, snap worker.Snapshot) {
	fmt.Fprintf(w, "Validated: %d, valid: %d, failed: %d\n", snap.ValidationsTotal, snap.ValidationsValid, snap.ValidationsFailed)
	fmt.Fprintf(w, "Time: avg %s, min %s, max %s\n",
		time.Duration(snap.AvgValidationTimeNs), time.Duration(snap.MinValidationTimeNs), time.Duration(snap.MaxValidationTimeNs))
	for _, ts := range snap.Types {
		fmt.Fprintf(w, "  %-24s %4d validated, %4d issues, avg %s\n", ts.Type, ts.Validations, ts.IssuesFound, ts.AvgTime)
	}
}
