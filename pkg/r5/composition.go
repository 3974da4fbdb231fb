package r5

import "github.com/gofhir/datamodel/pkg/schema"

const (
	CompositionType         = "Composition"
	CompositionAttesterType = "Composition.attester"
	CompositionSectionType  = "Composition.section"
)

// Composition returns the Composition resource with its attester and
// recursive section elements. Its section rules are FHIRPath expressions.
func Composition() []*schema.Entry {
	authors := schema.ReferenceTo("Practitioner", "PractitionerRole", "Device", "Patient", "RelatedPerson", "Organization")

	return []*schema.Entry{
		{
			TypeName:    CompositionType,
			Kind:        schema.KindResource,
			Description: "A set of resources composed into a single coherent clinical statement with clinical attestation",
			Common:      true,
			Fields: []schema.Field{
				opt("url", tURI),
				list("identifier", tIdentifier),
				opt("version", tString),
				req("status", tCode),
				req("type", tCodeableConcept),
				list("category", tCodeableConcept),
				list("subject", schema.ReferenceTo("Resource")),
				opt("encounter", schema.ReferenceTo("Encounter")),
				req("date", tDateTime),
				nonEmpty("author", authors),
				opt("name", tString),
				req("title", tString),
				list("note", tAnnotation),
				list("attester", schema.RecordOf(CompositionAttesterType)),
				opt("custodian", schema.ReferenceTo("Organization")),
				list("section", schema.RecordOf(CompositionSectionType)),
			},
		},
		{
			TypeName:    CompositionAttesterType,
			Kind:        schema.KindElement,
			Description: "Attests to accuracy of composition",
			Common:      true,
			Fields: []schema.Field{
				req("mode", tCodeableConcept),
				opt("time", tDateTime),
				opt("party", schema.ReferenceTo("Patient", "RelatedPerson", "Practitioner", "PractitionerRole", "Organization")),
			},
		},
		{
			TypeName:    CompositionSectionType,
			Kind:        schema.KindElement,
			Description: "Composition is broken into sections",
			Common:      true,
			Fields: []schema.Field{
				opt("title", tString),
				opt("code", tCodeableConcept),
				list("author", authors),
				opt("focus", schema.ReferenceTo("Resource")),
				opt("text", tMarkdown),
				opt("orderedBy", tCodeableConcept),
				list("entry", schema.ReferenceTo("Resource")),
				opt("emptyReason", tCodeableConcept),
				list("section", schema.RecordOf(CompositionSectionType)),
			},
			Constraints: []schema.Constraint{
				{
					ID:          "cmp-1",
					Description: "A section must contain at least one of text, entries, or sub-sections",
					Expression:  "text.exists() or entry.exists() or section.exists()",
				},
				{
					ID:          "cmp-2",
					Description: "A section can only have an emptyReason if it is empty",
					Expression:  "emptyReason.empty() or entry.empty()",
				},
			},
		},
	}
}
