package builder

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gofhir/datamodel/pkg/issue"
	"github.com/gofhir/datamodel/pkg/r5"
	"github.com/gofhir/datamodel/pkg/schema"
	"github.com/gofhir/datamodel/pkg/validator"
	"github.com/gofhir/datamodel/pkg/value"
)

func r5Registry(t *testing.T) *schema.Registry {
	t.Helper()
	reg, err := r5.NewRegistry()
	require.NoError(t, err)
	return reg
}

// memoRegistry declares a tiny type with a repeated notes field.
func memoRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	reg := schema.New()
	require.NoError(t, reg.Register(&schema.Entry{
		TypeName: "Memo",
		Kind:     schema.KindResource,
		Common:   true,
		Fields: []schema.Field{
			{Name: "title", Cardinality: schema.RequiredScalar, Type: schema.Primitive(value.TypeString)},
			{Name: "notes", Cardinality: schema.OptionalList, Type: schema.Primitive(value.TypeString)},
		},
	}))
	require.NoError(t, reg.Register(r5.Datatypes()[0])) // Extension
	return reg
}

func participant(fields ...value.Field) value.Value {
	return value.Nested(value.Assemble(r5.AppointmentParticipantType, fields...))
}

func TestAppendTwice(t *testing.T) {
	b, err := New(memoRegistry(t), "Memo")
	require.NoError(t, err)

	x := value.String("call back")
	require.NoError(t, b.Stage("title", value.String("Reminder")))
	require.NoError(t, b.Append("notes", x))
	require.NoError(t, b.Append("notes", x))

	rec, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, []value.Value{x, x}, rec.List("notes").Values())
	assert.Equal(t, Built, b.State())
}

func TestAppendEmptyIsNoop(t *testing.T) {
	b, err := New(memoRegistry(t), "Memo")
	require.NoError(t, err)

	require.NoError(t, b.Append("notes"))
	assert.Equal(t, Empty, b.State())

	require.NoError(t, b.Stage("title", value.String("t")))
	require.NoError(t, b.Append("notes", value.String("a")))
	require.NoError(t, b.Append("notes"))

	rec, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, 1, rec.List("notes").Len())
}

func TestStageOverwrites(t *testing.T) {
	b, err := New(memoRegistry(t), "Memo")
	require.NoError(t, err)

	require.NoError(t, b.Stage("title", value.String("first")))
	require.NoError(t, b.Stage("title", value.String("second")))

	rec, err := b.Build()
	require.NoError(t, err)
	s, _ := rec.Get("title").Str()
	assert.Equal(t, "second", s)
}

func TestSetAndClear(t *testing.T) {
	b, err := New(memoRegistry(t), "Memo")
	require.NoError(t, err)

	require.NoError(t, b.Stage("title", value.String("t")))
	require.NoError(t, b.Append("notes", value.String("a"), value.String("b")))
	require.NoError(t, b.Set("notes", value.String("c")))

	rec, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, []value.Value{value.String("c")}, rec.List("notes").Values())

	b, err = New(memoRegistry(t), "Memo")
	require.NoError(t, err)
	require.NoError(t, b.Stage("title", value.String("t")))
	require.NoError(t, b.Append("notes", value.String("a")))
	require.NoError(t, b.Clear("notes"))
	require.NoError(t, b.Stage("title", value.Absent()))

	_, err = b.Build()
	issues, ok := issue.AsIssues(err)
	require.True(t, ok, "want issue.Issues, got %v", err)
	require.Len(t, issues, 1)
	assert.Equal(t, issue.DiagMissingRequiredField, issues[0].ID)
	assert.Equal(t, "title", issues[0].Expression())
}

func TestCallerSliceIsCopied(t *testing.T) {
	b, err := New(memoRegistry(t), "Memo")
	require.NoError(t, err)

	notes := []value.Value{value.String("a"), value.String("b")}
	require.NoError(t, b.Stage("title", value.String("t")))
	require.NoError(t, b.Set("notes", notes...))
	notes[0] = value.String("changed")

	rec, err := b.Build()
	require.NoError(t, err)
	s, _ := rec.List("notes").At(0).Str()
	assert.Equal(t, "a", s)
}

func TestAppointmentMissingActorAndType(t *testing.T) {
	reg := r5Registry(t)
	b, err := New(reg, r5.AppointmentType)
	require.NoError(t, err)

	require.NoError(t, b.Stage("status", value.Code("booked")))
	require.NoError(t, b.Append("participant", participant(value.Scalar("status", value.Code("accepted")))))

	rec, err := b.Build()
	assert.Nil(t, rec)
	assert.Equal(t, Rejected, b.State())

	issues, ok := issue.AsIssues(err)
	require.True(t, ok)
	require.Len(t, issues, 1)
	assert.Equal(t, issue.DiagConstraintViolated, issues[0].ID)
	assert.Equal(t, "app-1", issues[0].Constraint)
	assert.Equal(t, "participant[0]", issues[0].Expression())

	require.NotNil(t, b.Report())
	assert.Equal(t, 1, b.Report().ErrorCount())
}

func TestAppointmentBuilds(t *testing.T) {
	reg := r5Registry(t)
	b, err := New(reg, r5.AppointmentType)
	require.NoError(t, err)

	// staged out of declaration order
	require.NoError(t, b.Append("participant", participant(
		value.Scalar("status", value.Code("accepted")),
		value.Scalar("actor", value.Ref("Patient", "p1")),
	)))
	require.NoError(t, b.Stage("status", value.Code("booked")))
	require.NoError(t, b.SetID("appt-1"))

	rec, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "appt-1", rec.ID())
	assert.Equal(t, []string{"id", "status", "participant"}, fieldNames(rec))
}

func TestReuseAfterTerminal(t *testing.T) {
	reg := r5Registry(t)

	built, err := New(reg, r5.AppointmentType)
	require.NoError(t, err)
	require.NoError(t, built.Stage("status", value.Code("booked")))
	require.NoError(t, built.Append("participant", participant(
		value.Scalar("status", value.Code("accepted")),
		value.Scalar("type", value.Nested(value.Assemble("CodeableConcept", value.Scalar("text", value.String("translator"))))),
	)))
	_, err = built.Build()
	require.NoError(t, err)

	rejected, err := New(reg, r5.AppointmentType)
	require.NoError(t, err)
	_, err = rejected.Build()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrReusedAfterTerminal)

	for _, b := range []*Builder{built, rejected} {
		before := b.State()
		calls := map[string]error{
			"Stage":        b.Stage("status", value.Code("cancelled")),
			"Append":       b.Append("participant"),
			"Set":          b.Set("participant"),
			"Clear":        b.Clear("status"),
			"SetID":        b.SetID("x"),
			"AddExtension": b.AddExtension("http://example.org/x", value.String("y")),
		}
		_, calls["Build"] = b.Build()

		for name, err := range calls {
			assert.ErrorIs(t, err, ErrReusedAfterTerminal, "%s on %s builder", name, before)
		}
		assert.Equal(t, before, b.State())
	}
}

func TestWarningsAndStrictMode(t *testing.T) {
	reg := r5Registry(t)
	stage := func(b *Builder) {
		period := value.Nested(value.Assemble("Period",
			value.Scalar("start", value.Date("2024-01-01")),
		))
		require.NoError(t, b.Stage("status", value.Code("complete")))
		require.NoError(t, b.Stage("type", value.Code("summary")))
		require.NoError(t, b.Stage("period", period))
		require.NoError(t, b.Append("group", value.Nested(value.Assemble(r5.MeasureReportGroupType,
			value.Scalar("measureScore", value.Choice("dateTime", value.DateTime("2024-06-30"))),
		))))
	}

	b, err := New(reg, r5.MeasureReportType)
	require.NoError(t, err)
	stage(b)
	rec, err := b.Build()
	// Period.start is a dateTime, so a date value is a type mismatch
	require.Error(t, err)
	assert.Nil(t, rec)

	b, err = New(reg, r5.MeasureReportType)
	require.NoError(t, err)
	stage(b)
	require.NoError(t, b.Stage("period", value.Nested(value.Assemble("Period",
		value.Scalar("start", value.DateTime("2024-01-01")),
	))))
	rec, err = b.Build()
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 1, b.Report().WarningCount())

	strict := validator.New(reg, validator.WithStrictMode(true))
	b, err = New(reg, r5.MeasureReportType, WithValidator(strict))
	require.NoError(t, err)
	stage(b)
	require.NoError(t, b.Stage("period", value.Nested(value.Assemble("Period",
		value.Scalar("start", value.DateTime("2024-01-01")),
	))))
	_, err = b.Build()
	issues, ok := issue.AsIssues(err)
	require.True(t, ok)
	require.Len(t, issues, 1)
	assert.Equal(t, "mrp-3", issues[0].Constraint)
	assert.Equal(t, issue.SeverityWarning, issues[0].Severity)
}

func TestFromExisting(t *testing.T) {
	reg := r5Registry(t)
	b, err := New(reg, r5.AppointmentType)
	require.NoError(t, err)
	require.NoError(t, b.Stage("status", value.Code("booked")))
	require.NoError(t, b.Append("participant", participant(
		value.Scalar("status", value.Code("accepted")),
		value.Scalar("actor", value.Ref("Patient", "p1")),
	)))
	original, err := b.Build()
	require.NoError(t, err)

	copyB, err := FromExisting(reg, original)
	require.NoError(t, err)
	assert.Equal(t, Staging, copyB.State())
	require.NoError(t, copyB.Stage("status", value.Code("cancelled")))
	require.NoError(t, copyB.Append("participant", participant(
		value.Scalar("status", value.Code("declined")),
		value.Scalar("actor", value.Ref("Practitioner", "dr-1")),
	)))

	modified, err := copyB.Build()
	require.NoError(t, err)

	status, _ := original.Get("status").Str()
	assert.Equal(t, "booked", status)
	assert.Equal(t, 1, original.List("participant").Len())

	status, _ = modified.Get("status").Str()
	assert.Equal(t, "cancelled", status)
	assert.Equal(t, 2, modified.List("participant").Len())
}

func TestFromExistingRoundTrip(t *testing.T) {
	reg := r5Registry(t)
	b, err := New(reg, r5.AppointmentType)
	require.NoError(t, err)
	require.NoError(t, b.Stage("status", value.Code("booked")))
	require.NoError(t, b.Append("participant", participant(
		value.Scalar("status", value.Code("accepted")),
		value.Scalar("actor", value.Ref("Patient", "p1")),
	)))
	original, err := b.Build()
	require.NoError(t, err)

	again, err := FromExisting(reg, original)
	require.NoError(t, err)
	rebuilt, err := again.Build()
	require.NoError(t, err)
	assert.True(t, original.Equal(rebuilt))
}

func TestGeneratedID(t *testing.T) {
	b, err := New(memoRegistry(t), "Memo", WithGeneratedID())
	require.NoError(t, err)
	require.NoError(t, b.Stage("title", value.String("t")))

	rec, err := b.Build()
	require.NoError(t, err)
	_, err = uuid.Parse(rec.ID())
	assert.NoError(t, err, "id %q", rec.ID())

	b, err = New(memoRegistry(t), "Memo", WithGeneratedID())
	require.NoError(t, err)
	require.NoError(t, b.Stage("title", value.String("t")))
	require.NoError(t, b.SetID("fixed"))
	rec, err = b.Build()
	require.NoError(t, err)
	assert.Equal(t, "fixed", rec.ID())
}

func TestGeneratedIDNeedsDeclaredID(t *testing.T) {
	reg := schema.New()
	require.NoError(t, reg.Register(&schema.Entry{
		TypeName: "Note",
		Kind:     schema.KindDatatype,
		Fields: []schema.Field{
			{Name: "text", Cardinality: schema.RequiredScalar, Type: schema.Primitive(value.TypeString)},
		},
	}))

	b, err := New(reg, "Note", WithGeneratedID())
	require.NoError(t, err)
	require.NoError(t, b.Stage("text", value.String("hello")))

	rec, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, Built, b.State())
	assert.Empty(t, rec.ID())
	_, ok := rec.Field(value.FieldID)
	assert.False(t, ok)
}

func TestAddExtension(t *testing.T) {
	b, err := New(memoRegistry(t), "Memo")
	require.NoError(t, err)
	require.NoError(t, b.Stage("title", value.String("t")))
	require.NoError(t, b.AddExtension("http://example.org/fhir/StructureDefinition/tag", value.Choice("string", value.String("urgent"))))

	rec, err := b.Build()
	require.NoError(t, err)
	require.Equal(t, 1, rec.Extensions().Len())
	ext := rec.Extensions().At(0).Record()
	url, _ := ext.Get("url").Str()
	assert.Equal(t, "http://example.org/fhir/StructureDefinition/tag", url)
}

func TestUndeclaredFieldRejected(t *testing.T) {
	b, err := New(memoRegistry(t), "Memo")
	require.NoError(t, err)
	require.NoError(t, b.Stage("title", value.String("t")))
	require.NoError(t, b.Stage("colour", value.String("red")))

	_, err = b.Build()
	issues, ok := issue.AsIssues(err)
	require.True(t, ok)
	require.Len(t, issues, 1)
	assert.Equal(t, issue.DiagUnknownField, issues[0].ID)
}

func TestNewUnknownType(t *testing.T) {
	_, err := New(memoRegistry(t), "Spaceship")
	assert.ErrorIs(t, err, schema.ErrUnknownType)

	_, err = FromExisting(memoRegistry(t), nil)
	assert.Error(t, err)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "empty", Empty.String())
	assert.Equal(t, "staging", Staging.String())
	assert.Equal(t, "built", Built.String())
	assert.Equal(t, "rejected", Rejected.String())
	assert.False(t, Staging.Terminal())
	assert.True(t, Rejected.Terminal())
}

func fieldNames(rec *value.Record) []string {
	var names []string
	for f := range rec.Fields() {
		names = append(names, f.Name())
	}
	return names
}
