package r5

import (
	"strings"
	"time"

	"github.com/gofhir/datamodel/pkg/schema"
	"github.com/gofhir/datamodel/pkg/value"
)

var (
	tString    = schema.Primitive(value.TypeString)
	tCode      = schema.Primitive(value.TypeCode)
	tURI       = schema.Primitive(value.TypeURI)
	tCanonical = schema.Primitive(value.TypeCanonical)
	tMarkdown  = schema.Primitive(value.TypeMarkdown)
	tBoolean   = schema.Primitive(value.TypeBoolean)
	tInteger   = schema.Primitive(value.TypeInteger)
	tPosInt    = schema.Primitive(value.TypePositiveInt)
	tDecimal   = schema.Primitive(value.TypeDecimal)
	tDateTime  = schema.Primitive(value.TypeDateTime)
	tInstant   = schema.Primitive(value.TypeInstant)

	tCoding          = schema.RecordOf("Coding")
	tCodeableConcept = schema.RecordOf("CodeableConcept")
	tIdentifier      = schema.RecordOf("Identifier")
	tQuantity        = schema.RecordOf("Quantity")
	tPeriod          = schema.RecordOf("Period")
	tAnnotation      = schema.RecordOf("Annotation")
)

var annotationAuthorTargets = []string{
	"Practitioner", "PractitionerRole", "Patient", "RelatedPerson", "Organization",
}

// Datatypes returns the complex datatypes used by the resources in this package.
func Datatypes() []*schema.Entry {
	return []*schema.Entry{
		{
			TypeName:    schema.ExtensionType,
			Kind:        schema.KindDatatype,
			Description: "Optional Extensions Element",
			Common:      true,
			Fields: []schema.Field{
				req("url", tURI),
				opt("value", schema.ChoiceOf(
					"string", "code", "boolean", "integer", "decimal", "dateTime", "uri",
					"Coding", "CodeableConcept", "Quantity", "Period", "Identifier", "Reference",
				)),
			},
			Constraints: []schema.Constraint{{
				ID:          "ext-1",
				Description: "Must have either extensions or value[x], not both",
				Check: func(r *value.Record) bool {
					return r.Has(value.FieldExtension) != r.Has("value")
				},
			}},
		},
		{
			TypeName:    "Coding",
			Kind:        schema.KindDatatype,
			Description: "A reference to a code defined by a terminology system",
			Fields: []schema.Field{
				opt("system", tURI),
				opt("version", tString),
				opt("code", tCode),
				opt("display", tString),
				opt("userSelected", tBoolean),
			},
		},
		{
			TypeName:    "CodeableConcept",
			Kind:        schema.KindDatatype,
			Description: "Concept - reference to a terminology or just text",
			Fields: []schema.Field{
				list("coding", tCoding),
				opt("text", tString),
			},
		},
		{
			TypeName:    "Identifier",
			Kind:        schema.KindDatatype,
			Description: "An identifier intended for computation",
			Fields: []schema.Field{
				opt("use", tCode),
				opt("type", tCodeableConcept),
				opt("system", tURI),
				opt("value", tString),
				opt("period", tPeriod),
			},
		},
		quantityLike("Quantity", "A measured or measurable amount"),
		quantityLike("Duration", "A length of time"),
		{
			TypeName:    "Period",
			Kind:        schema.KindDatatype,
			Description: "Time range defined by start and end date/time",
			Fields: []schema.Field{
				opt("start", tDateTime),
				opt("end", tDateTime),
			},
			Constraints: []schema.Constraint{{
				ID:          "per-1",
				Description: "If present, start SHALL have a lower or equal value than end",
				Check:       periodOrdered,
			}},
		},
		{
			TypeName:    "Range",
			Kind:        schema.KindDatatype,
			Description: "Set of values bounded by low and high",
			Fields: []schema.Field{
				opt("low", tQuantity),
				opt("high", tQuantity),
			},
			Constraints: []schema.Constraint{{
				ID:          "rng-2",
				Description: "If present, low SHALL have a lower value than high",
				Check:       rangeOrdered,
			}},
		},
		{
			TypeName:    "Annotation",
			Kind:        schema.KindDatatype,
			Description: "Text node with attribution",
			Fields: []schema.Field{
				opt("author", schema.ChoiceOf("Reference", "string").WithTargets(annotationAuthorTargets...)),
				opt("time", tDateTime),
				req("text", tMarkdown),
			},
		},
	}
}

func quantityLike(name, description string) *schema.Entry {
	return &schema.Entry{
		TypeName:    name,
		Kind:        schema.KindDatatype,
		Description: description,
		Fields: []schema.Field{
			opt("value", tDecimal),
			opt("comparator", tCode),
			opt("unit", tString),
			opt("system", tURI),
			opt("code", tCode),
		},
		Constraints: []schema.Constraint{{
			ID:          "qty-3",
			Description: "If a code for the unit is present, the system SHALL also be present",
			Check: func(r *value.Record) bool {
				return !r.Has("code") || r.Has("system")
			},
		}},
	}
}

// periodOrdered compares start and end when both are present.
func periodOrdered(r *value.Record) bool {
	return timeOrdered(r.Get("start"), r.Get("end"))
}

// timeOrdered reports whether start is not after end. Values with a time
// and zone compare as instants; dates compare only at equal precision.
func timeOrdered(startV, endV value.Value) bool {
	start, okS := startV.Str()
	end, okE := endV.Str()
	if !okS || !okE {
		return true
	}
	if strings.Contains(start, "T") && strings.Contains(end, "T") {
		s, errS := time.Parse(time.RFC3339Nano, start)
		e, errE := time.Parse(time.RFC3339Nano, end)
		if errS == nil && errE == nil {
			return !s.After(e)
		}
	}
	if len(start) != len(end) {
		return true
	}
	return start <= end
}

func rangeOrdered(r *value.Record) bool {
	low := r.Get("low").Record()
	high := r.Get("high").Record()
	if low == nil || high == nil {
		return true
	}
	lv, okL := low.Get("value").Decimal()
	hv, okH := high.Get("value").Decimal()
	if !okL || !okH {
		return true
	}
	return lv.LessThanOrEqual(hv)
}
