package validator

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/gofhir/datamodel/pkg/r5"
	"github.com/gofhir/datamodel/pkg/schema"
	"github.com/gofhir/datamodel/pkg/value"
)

// Shared registry for tests; sealed so validators can run concurrently.
var (
	sharedRegistry     *schema.Registry
	sharedRegistryOnce sync.Once
	errSharedRegistry  error
)

func getRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	sharedRegistryOnce.Do(func() {
		sharedRegistry, errSharedRegistry = r5.NewRegistry()
	})
	if errSharedRegistry != nil {
		t.Fatalf("r5.NewRegistry() error: %v", errSharedRegistry)
	}
	return sharedRegistry
}

func getValidator(t *testing.T, opts ...Option) *Validator {
	t.Helper()
	return New(getRegistry(t), opts...)
}

func mustValidate(t *testing.T, v *Validator, rec *value.Record) []issueView {
	t.Helper()
	result, err := v.ValidateRecord(rec)
	if err != nil {
		t.Fatalf("ValidateRecord() error: %v", err)
	}
	out := make([]issueView, 0, len(result.Issues))
	for _, iss := range result.Issues {
		out = append(out, issueView{id: string(iss.ID), path: iss.Expression(), constraint: iss.Constraint})
	}
	return out
}

// issueView is the part of an issue most tests compare.
type issueView struct {
	id         string
	path       string
	constraint string
}

func participant(fields ...value.Field) value.Value {
	return value.Nested(value.Assemble(r5.AppointmentParticipantType, fields...))
}

func acceptedPatient(id string) value.Value {
	return participant(
		value.Scalar("status", value.Code("accepted")),
		value.Scalar("actor", value.Ref("Patient", id)),
	)
}

func appointment(fields ...value.Field) *value.Record {
	return value.Assemble(r5.AppointmentType, fields...)
}

func bookedAppointment(participants ...value.Value) *value.Record {
	return appointment(
		value.Scalar("status", value.Code("booked")),
		value.ListOf("participant", participants...),
	)
}

func quantity(amount, unit string) value.Value {
	return value.Nested(value.Assemble("Quantity",
		value.Scalar("value", value.Decimal(decimal.RequireFromString(amount))),
		value.Scalar("unit", value.String(unit)),
	))
}

func period(start, end string) value.Value {
	return value.Nested(value.Assemble("Period",
		value.Scalar("start", value.DateTime(start)),
		value.Scalar("end", value.DateTime(end)),
	))
}

func measureReport(groups ...value.Value) *value.Record {
	return value.Assemble(r5.MeasureReportType,
		value.Scalar("status", value.Code("complete")),
		value.Scalar("type", value.Code("summary")),
		value.Scalar("period", period("2024-01-01", "2024-12-31")),
		value.ListOf("group", groups...),
	)
}

func group(measureScore value.Value) value.Value {
	return value.Nested(value.Assemble(r5.MeasureReportGroupType,
		value.Scalar("linkId", value.String("g1")),
		value.ListOf("population", value.Nested(value.Assemble(r5.MeasureReportPopulationType,
			value.Scalar("count", value.Integer(42)),
		))),
		value.Scalar("measureScore", measureScore),
	))
}

func ids(issues []issueView) []string {
	out := make([]string, len(issues))
	for i, iss := range issues {
		out[i] = iss.id
	}
	return out
}
