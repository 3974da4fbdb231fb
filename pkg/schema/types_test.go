package schema

import "testing"

func TestCardinality(t *testing.T) {
	tests := []struct {
		in       string
		want     Cardinality
		list     bool
		required bool
	}{
		{"0..1", OptionalScalar, false, false},
		{"required", RequiredScalar, false, true},
		{"0..*", OptionalList, true, false},
		{"required-nonempty-list", RequiredList, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCardinality(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want || got.IsList() != tt.list || got.IsRequired() != tt.required {
				t.Errorf("ParseCardinality(%q) = %v (list=%v required=%v)", tt.in, got, got.IsList(), got.IsRequired())
			}
		})
	}

	if _, err := ParseCardinality("2..3"); err == nil {
		t.Error("ParseCardinality(2..3) should fail")
	}
}

func TestCardinalityOf(t *testing.T) {
	tests := []struct {
		min  uint32
		max  string
		want Cardinality
	}{
		{0, "1", OptionalScalar},
		{1, "1", RequiredScalar},
		{0, "*", OptionalList},
		{1, "*", RequiredList},
		{0, "3", OptionalList},
	}
	for _, tt := range tests {
		if got := CardinalityOf(tt.min, tt.max); got != tt.want {
			t.Errorf("CardinalityOf(%d, %q) = %v, want %v", tt.min, tt.max, got, tt.want)
		}
	}
}

func TestSameKind(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"dateTime", "DateTime", true},
		{"Quantity", "Quantity", true},
		{"Quantity", "quantity", true},
		{"Quantity", "Quantities", false},
		{"", "a", false},
		{"string", "String", true},
		{"code", "Coding", false},
	}
	for _, tt := range tests {
		if got := SameKind(tt.a, tt.b); got != tt.want {
			t.Errorf("SameKind(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestTypeAllows(t *testing.T) {
	score := ChoiceOf("Quantity", "dateTime", "CodeableConcept", "Period", "Range", "Duration")

	if !score.Allows("Quantity") || !score.Allows("DateTime") {
		t.Error("choice should allow Quantity and DateTime")
	}
	if score.Allows("string") {
		t.Error("choice should not allow string")
	}
	if alt, ok := score.Alternative("DateTime"); !ok || alt != "dateTime" {
		t.Errorf("Alternative(DateTime) = %q, %v", alt, ok)
	}

	ref := ReferenceTo("Patient", "Group")
	if !ref.AllowsTarget("Group") || ref.AllowsTarget("Device") {
		t.Error("reference target membership")
	}
	if !ReferenceTo("Resource").AllowsTarget("Device") {
		t.Error("Reference(Resource) should allow any target")
	}
	if ref.String() != "Reference(Patient|Group)" {
		t.Errorf("String() = %q", ref.String())
	}

	author := ChoiceOf("Reference", "string").WithTargets("Patient")
	if !author.AllowsTarget("Patient") || author.AllowsTarget("Device") {
		t.Error("choice reference target membership")
	}
	if !ChoiceOf("Reference", "string").AllowsTarget("Device") {
		t.Error("choice without targets should allow any target")
	}
	if author.String() != "choice(Reference(Patient)|string)" {
		t.Errorf("String() = %q", author.String())
	}
}
