package loader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofhir/fhir/r4"

	"github.com/gofhir/datamodel/pkg/schema"
	"github.com/gofhir/datamodel/pkg/value"
)

// plumbing lists base resource elements that carry no clinical content.
var plumbing = []string{"meta", "text", "contained", "modifierExtension", "implicitRules", "language"}

const systemTypePrefix = "http://hl7.org/fhirpath/System."

// ConvertOption configures FromStructureDefinition.
type ConvertOption func(*converter)

// SkipConstraints drops constraints with the given keys, e.g. "dom-6".
func SkipConstraints(keys ...string) ConvertOption {
	return func(c *converter) {
		for _, k := range keys {
			c.skipConstraints[k] = true
		}
	}
}

// SkipElements drops further element names at every level.
func SkipElements(names ...string) ConvertOption {
	return func(c *converter) {
		for _, n := range names {
			c.skipElements[n] = true
		}
	}
}

type converter struct {
	skipConstraints map[string]bool
	skipElements    map[string]bool
}

func newConverter(opts []ConvertOption) *converter {
	c := &converter{
		skipConstraints: make(map[string]bool),
		skipElements:    make(map[string]bool, len(plumbing)),
	}
	for _, n := range plumbing {
		c.skipElements[n] = true
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FromStructureDefinition converts a snapshot StructureDefinition into the
// entry for its type followed by one entry per backbone element, named by
// element path (e.g. "Appointment.participant"). Constraints are kept on
// the root and backbone elements only.
func FromStructureDefinition(sd *r4.StructureDefinition, opts ...ConvertOption) ([]*schema.Entry, error) {
	if sd == nil {
		return nil, errors.New("loader: nil StructureDefinition")
	}
	if sd.Snapshot == nil || len(sd.Snapshot.Element) == 0 {
		return nil, fmt.Errorf("loader: %s has no snapshot", derefString(sd.Url))
	}

	kind := schema.KindResource
	if sd.Kind != nil {
		k, err := schema.ParseEntryKind(string(*sd.Kind))
		if err != nil {
			return nil, fmt.Errorf("loader: %s: %w", derefString(sd.Url), err)
		}
		kind = k
	}

	c := newConverter(opts)
	elems := sd.Snapshot.Element
	rootPath := derefString(elems[0].Path)
	root := &schema.Entry{
		TypeName:    rootPath,
		Kind:        kind,
		Description: derefString(elems[0].Short),
		Constraints: c.constraints(elems[0].Constraint),
	}

	entries := map[string]*schema.Entry{rootPath: root}
	ordered := []*schema.Entry{root}

	for i := 1; i < len(elems); i++ {
		ed := &elems[i]
		p := derefString(ed.Path)
		if ed.SliceName != nil || p == "" {
			continue
		}
		dot := strings.LastIndexByte(p, '.')
		if dot < 0 {
			continue
		}

		// children of primitive or datatype fields have no entry of their own
		parent, ok := entries[p[:dot]]
		if !ok {
			continue
		}
		name := p[dot+1:]
		if c.skipElements[name] {
			continue
		}
		if name == value.FieldID || name == value.FieldExtension {
			parent.Common = true
			continue
		}

		f, backbone, err := c.field(p, name, ed)
		if err != nil {
			return nil, err
		}
		parent.Fields = append(parent.Fields, f)

		if backbone {
			e := &schema.Entry{
				TypeName:    p,
				Kind:        schema.KindElement,
				Description: derefString(ed.Short),
				Constraints: c.constraints(ed.Constraint),
			}
			entries[p] = e
			ordered = append(ordered, e)
		}
	}
	return ordered, nil
}

// field converts one element. backbone is true when the element declares
// an inline type that needs its own entry.
func (c *converter) field(p, name string, ed *r4.ElementDefinition) (f schema.Field, backbone bool, err error) {
	f = schema.Field{
		Name:        strings.TrimSuffix(name, "[x]"),
		Cardinality: schema.CardinalityOf(derefUint(ed.Min), derefString(ed.Max)),
		Short:       derefString(ed.Short),
	}

	if ref := derefString(ed.ContentReference); ref != "" {
		f.Type = schema.RecordOf(ref[strings.IndexByte(ref, '#')+1:])
		return f, false, nil
	}

	if len(ed.Type) == 0 {
		return f, false, fmt.Errorf("loader: %s declares no type", p)
	}
	if strings.HasSuffix(name, "[x]") || len(ed.Type) > 1 {
		codes := make([]string, 0, len(ed.Type))
		var refTargets []string
		for i := range ed.Type {
			code := derefString(ed.Type[i].Code)
			codes = append(codes, code)
			if code == value.ReferenceKind {
				refTargets = targets(ed.Type[i].TargetProfile)
			}
		}
		f.Type = schema.ChoiceOf(codes...).WithTargets(refTargets...)
		return f, false, nil
	}

	t := &ed.Type[0]
	code := derefString(t.Code)
	switch {
	case code == "BackboneElement" || code == "Element":
		f.Type = schema.RecordOf(p)
		return f, true, nil
	case code == value.ReferenceKind:
		f.Type = schema.ReferenceTo(targets(t.TargetProfile)...)
	case strings.HasPrefix(code, systemTypePrefix):
		f.Type = schema.Primitive(value.TypeString)
	case value.IsPrimitive(code):
		f.Type = schema.Primitive(value.PrimitiveType(code))
	default:
		f.Type = schema.RecordOf(code)
	}
	return f, false, nil
}

func (c *converter) constraints(in []r4.ElementDefinitionConstraint) []schema.Constraint {
	var out []schema.Constraint
	for i := range in {
		con := &in[i]
		key := derefString(con.Key)
		expr := derefString(con.Expression)
		if key == "" || expr == "" || c.skipConstraints[key] {
			continue
		}

		sev := schema.SeverityWarning
		if con.Severity != nil && *con.Severity == r4.ConstraintSeverityError {
			sev = schema.SeverityRule
		}
		out = append(out, schema.Constraint{
			ID:          key,
			Description: derefString(con.Human),
			Severity:    sev,
			Expression:  expr,
		})
	}
	return out
}

// targets maps target profile URLs to type names. No profiles permit any resource.
func targets(profiles []string) []string {
	if len(profiles) == 0 {
		return []string{"Resource"}
	}
	out := make([]string, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p[strings.LastIndexByte(p, '/')+1:])
	}
	return out
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefUint(u *uint32) uint32 {
	if u == nil {
		return 0
	}
	return *u
}
