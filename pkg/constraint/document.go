package constraint

import (
	"unicode"
	"unicode/utf8"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/gofhir/datamodel/pkg/value"
)

// Document renders rec as FHIR-style JSON for FHIRPath evaluation.
// Resources carry "resourceType"; choice values use the type-suffixed key
// ("measureScoreQuantity"); references render as {"reference": "Type/id"}.
func Document(rec *value.Record, resource bool) ([]byte, error) {
	m := recordMap(rec)
	if resource {
		m["resourceType"] = rec.TypeName()
	}
	return json.Marshal(m)
}

func recordMap(rec *value.Record) map[string]any {
	m := make(map[string]any, rec.NumFields()+1)
	for f := range rec.Fields() {
		if f.IsList() {
			items := make([]any, 0, f.Len())
			for _, v := range f.List().All() {
				items = append(items, encodeValue(v))
			}
			m[f.Name()] = items
			continue
		}

		v := f.Value()
		if v.Kind() == value.KindChoice {
			m[f.Name()+choiceSuffix(v.ChoiceKind())] = encodeValue(v.Unwrap())
			continue
		}
		m[f.Name()] = encodeValue(v)
	}
	return m
}

func encodeValue(v value.Value) any {
	switch v.Kind() {
	case value.KindPrimitive:
		if d, ok := v.Raw().(decimal.Decimal); ok {
			return json.Number(d.String())
		}
		return v.Raw()
	case value.KindRecord:
		return recordMap(v.Record())
	case value.KindReference:
		ref, _ := v.Reference()
		out := map[string]any{"reference": ref.String()}
		if ref.Display != "" {
			out["display"] = ref.Display
		}
		return out
	case value.KindChoice:
		return encodeValue(v.Unwrap())
	default:
		return nil
	}
}

// choiceSuffix upper-cases the first letter: dateTime -> DateTime.
func choiceSuffix(kind string) string {
	r, n := utf8.DecodeRuneInString(kind)
	if n == 0 {
		return ""
	}
	return string(unicode.ToUpper(r)) + kind[n:]
}
