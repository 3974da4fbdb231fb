package validator

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gofhir/datamodel/pkg/issue"
	"github.com/gofhir/datamodel/pkg/path"
	"github.com/gofhir/datamodel/pkg/value"
)

// Lexical rules for string-encoded primitives, as published for FHIR R5.
var primitivePatterns = map[value.PrimitiveType]*regexp.Regexp{
	value.TypeID:           regexp.MustCompile(`^[A-Za-z0-9\-\.]{1,64}$`),
	value.TypeCode:         regexp.MustCompile(`^[^\s]+( [^\s]+)*$`),
	value.TypeURI:          regexp.MustCompile(`^\S*$`),
	value.TypeURL:          regexp.MustCompile(`^\S*$`),
	value.TypeCanonical:    regexp.MustCompile(`^\S*$`),
	value.TypeOID:          regexp.MustCompile(`^urn:oid:[0-2](\.(0|[1-9][0-9]*))+$`),
	value.TypeUUID:         regexp.MustCompile(`^urn:uuid:[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`),
	value.TypeBase64Binary: regexp.MustCompile(`^(\s*([0-9a-zA-Z\+/=]){4}\s*)+$`),
	value.TypeDate:         regexp.MustCompile(`^([0-9]([0-9]([0-9][1-9]|[1-9]0)|[1-9]00)|[1-9]000)(-(0[1-9]|1[0-2])(-(0[1-9]|[1-2][0-9]|3[0-1]))?)?$`),
	value.TypeDateTime:     regexp.MustCompile(`^([0-9]([0-9]([0-9][1-9]|[1-9]0)|[1-9]00)|[1-9]000)(-(0[1-9]|1[0-2])(-(0[1-9]|[1-2][0-9]|3[0-1])(T([01][0-9]|2[0-3]):[0-5][0-9]:([0-5][0-9]|60)(\.[0-9]{1,9})?)?)?(Z|(\+|-)((0[0-9]|1[0-3]):[0-5][0-9]|14:00)?)?)?$`),
	value.TypeInstant:      regexp.MustCompile(`^([0-9]([0-9]([0-9][1-9]|[1-9]0)|[1-9]00)|[1-9]000)-(0[1-9]|1[0-2])-(0[1-9]|[1-2][0-9]|3[0-1])T([01][0-9]|2[0-3]):[0-5][0-9]:([0-5][0-9]|60)(\.[0-9]{1,9})?(Z|(\+|-)((0[0-9]|1[0-3]):[0-5][0-9]|14:00))$`),
	value.TypeTime:         regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]:([0-5][0-9]|60)(\.[0-9]{1,9})?$`),
}

// checkPrimitive checks the raw value of a primitive against its type.
func checkPrimitive(v value.Value, at path.Path) *issue.Issue {
	t := v.PrimitiveType()
	if !t.Known() {
		return invalid(at, t, v.String(), "unknown primitive type")
	}

	switch t.RawClass() {
	case value.RawString:
		s, ok := v.Raw().(string)
		if !ok {
			return invalid(at, t, fmt.Sprint(v.Raw()), fmt.Sprintf("expected text, got %T", v.Raw()))
		}
		return checkString(t, s, at)

	case value.RawBool:
		if _, ok := v.Raw().(bool); !ok {
			return invalid(at, t, fmt.Sprint(v.Raw()), fmt.Sprintf("expected boolean, got %T", v.Raw()))
		}

	case value.RawInt:
		i, ok := v.Raw().(int64)
		if !ok {
			return invalid(at, t, fmt.Sprint(v.Raw()), fmt.Sprintf("expected integer, got %T", v.Raw()))
		}
		return checkInteger(t, i, at)

	case value.RawDecimal:
		if _, ok := v.Raw().(decimal.Decimal); !ok {
			return invalid(at, t, fmt.Sprint(v.Raw()), fmt.Sprintf("expected decimal, got %T", v.Raw()))
		}
	}
	return nil
}

func checkString(t value.PrimitiveType, s string, at path.Path) *issue.Issue {
	switch t {
	case value.TypeString, value.TypeMarkdown:
		if strings.TrimSpace(s) == "" {
			return invalid(at, t, s, "must contain non-whitespace content")
		}
		return nil
	}

	re, ok := primitivePatterns[t]
	if !ok {
		return nil
	}
	if !re.MatchString(s) {
		return invalid(at, t, truncateValue(s), "does not match the "+string(t)+" format")
	}
	return nil
}

func checkInteger(t value.PrimitiveType, i int64, at path.Path) *issue.Issue {
	switch t {
	case value.TypeInteger:
		if i < math.MinInt32 || i > math.MaxInt32 {
			return invalid(at, t, fmt.Sprint(i), "out of 32-bit range")
		}
	case value.TypePositiveInt:
		if i < 1 || i > math.MaxInt32 {
			return invalid(at, t, fmt.Sprint(i), "must be between 1 and 2147483647")
		}
	case value.TypeUnsignedInt:
		if i < 0 || i > math.MaxInt32 {
			return invalid(at, t, fmt.Sprint(i), "must be between 0 and 2147483647")
		}
	}
	return nil
}

func invalid(at path.Path, t value.PrimitiveType, v, reason string) *issue.Issue {
	iss := issue.InvalidPrimitive(at, string(t), v, reason)
	return &iss
}

// truncateValue shortens long values for diagnostics.
func truncateValue(s string) string {
	const maxLen = 60
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
