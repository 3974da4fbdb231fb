package r5

import (
	"github.com/gofhir/datamodel/pkg/schema"
	"github.com/gofhir/datamodel/pkg/value"
)

const (
	MeasureReportType           = "MeasureReport"
	MeasureReportGroupType      = "MeasureReport.group"
	MeasureReportPopulationType = "MeasureReport.group.population"
	MeasureReportStratifierType = "MeasureReport.group.stratifier"
	MeasureReportStratumType    = "MeasureReport.group.stratifier.stratum"
)

// MeasureScoreKinds are the alternatives a measure score may take.
var MeasureScoreKinds = []string{"Quantity", "dateTime", "CodeableConcept", "Period", "Range", "Duration"}

// MeasureReport returns the MeasureReport resource and its backbone elements.
func MeasureReport() []*schema.Entry {
	subject := schema.ReferenceTo("Patient", "Practitioner", "PractitionerRole", "Location", "Device", "RelatedPerson", "Group")

	return []*schema.Entry{
		{
			TypeName:    MeasureReportType,
			Kind:        schema.KindResource,
			Description: "Results of a measure evaluation",
			Common:      true,
			Fields: []schema.Field{
				list("identifier", tIdentifier),
				req("status", tCode),
				req("type", tCode),
				opt("dataUpdateType", tCode),
				opt("measure", tCanonical),
				opt("subject", subject),
				opt("date", tDateTime),
				opt("reporter", schema.ReferenceTo("Practitioner", "PractitionerRole", "Organization", "Group")),
				opt("reportingVendor", schema.ReferenceTo("Organization")),
				opt("location", schema.ReferenceTo("Location")),
				req("period", tPeriod),
				opt("scoring", tCodeableConcept),
				opt("improvementNotation", tCodeableConcept),
				list("group", schema.RecordOf(MeasureReportGroupType)),
				list("evaluatedResource", schema.ReferenceTo("Resource")),
			},
			Constraints: []schema.Constraint{
				{
					ID:          "mrp-1",
					Description: "Measure Reports used for data collection SHALL NOT communicate group and score information",
					Check: func(r *value.Record) bool {
						typ, _ := r.Get("type").Str()
						return typ != "data-collection" || !r.Has("group")
					},
				},
				{
					ID:          "mrp-2",
					Description: "dataUpdateType is only used for data-collection reports",
					Check: func(r *value.Record) bool {
						typ, _ := r.Get("type").Str()
						return !r.Has("dataUpdateType") || typ == "data-collection"
					},
				},
			},
		},
		{
			TypeName:    MeasureReportGroupType,
			Kind:        schema.KindElement,
			Description: "Measure results for each group",
			Common:      true,
			Fields: []schema.Field{
				opt("linkId", tString),
				opt("code", tCodeableConcept),
				opt("subject", subject),
				list("population", schema.RecordOf(MeasureReportPopulationType)),
				opt("measureScore", schema.ChoiceOf(MeasureScoreKinds...)),
				list("stratifier", schema.RecordOf(MeasureReportStratifierType)),
			},
			Constraints: []schema.Constraint{{
				ID:          "mrp-3",
				Description: "A group reporting a measure score should report the populations it was computed from",
				Severity:    schema.SeverityWarning,
				Check: func(r *value.Record) bool {
					return !r.Has("measureScore") || r.Has("population")
				},
			}},
		},
		{
			TypeName:    MeasureReportPopulationType,
			Kind:        schema.KindElement,
			Description: "The populations in the group",
			Common:      true,
			Fields: []schema.Field{
				opt("linkId", tString),
				opt("code", tCodeableConcept),
				opt("count", tInteger),
				opt("subjectResults", schema.ReferenceTo("List")),
				list("subjectReport", schema.ReferenceTo(MeasureReportType)),
				opt("subjects", schema.ReferenceTo("Group")),
			},
		},
		{
			TypeName:    MeasureReportStratifierType,
			Kind:        schema.KindElement,
			Description: "Stratification results",
			Common:      true,
			Fields: []schema.Field{
				opt("linkId", tString),
				opt("code", tCodeableConcept),
				list("stratum", schema.RecordOf(MeasureReportStratumType)),
			},
		},
		{
			TypeName:    MeasureReportStratumType,
			Kind:        schema.KindElement,
			Description: "Stratum results, one for each unique value, or set of values, in the stratifier",
			Common:      true,
			Fields: []schema.Field{
				opt("value", schema.ChoiceOf("CodeableConcept", "boolean", "Quantity", "Range", "Reference")),
				list("population", schema.RecordOf(MeasureReportPopulationType)),
				opt("measureScore", schema.ChoiceOf(MeasureScoreKinds...)),
			},
		},
	}
}
