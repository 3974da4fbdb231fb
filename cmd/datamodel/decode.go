package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/gofhir/datamodel/pkg/path"
	"github.com/gofhir/datamodel/pkg/schema"
	"github.com/gofhir/datamodel/pkg/value"
)

// resourceTypeKey names the root record type in a YAML record document.
const resourceTypeKey = "resourceType"

// document is one decoded YAML record document.
type document struct {
	Name   string
	Record *value.Record
	Err    error
}

// decoder turns generic YAML maps into records, using the registry to
// pick primitive types, nested record types and choice alternatives.
// It preserves the document's shape: values that do not fit their
// declaration are kept as they are so the validator reports them.
type decoder struct {
	reg *schema.Registry
}

// readDocuments decodes every document in the named file.
func (d *decoder) readDocuments(name string) []document {
	f, err := os.Open(name)
	if err != nil {
		return []document{{Name: name, Err: err}}
	}
	defer f.Close()
	return d.decodeAll(name, f)
}

func (d *decoder) decodeAll(name string, r io.Reader) []document {
	dec := yaml.NewDecoder(r)
	var docs []document
	for {
		var raw map[string]any
		err := dec.Decode(&raw)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			docs = append(docs, document{Name: name, Err: fmt.Errorf("yaml: %w", err)})
			break
		}
		if len(raw) == 0 {
			continue
		}
		rec, err := d.document(raw)
		docs = append(docs, document{Name: name, Record: rec, Err: err})
	}
	if len(docs) > 1 {
		for i := range docs {
			docs[i].Name = fmt.Sprintf("%s#%d", name, i+1)
		}
	}
	return docs
}

// document decodes one root record.
func (d *decoder) document(raw map[string]any) (*value.Record, error) {
	typeName, _ := raw[resourceTypeKey].(string)
	if typeName == "" {
		return nil, fmt.Errorf("missing %s", resourceTypeKey)
	}
	if _, err := d.reg.Lookup(typeName); err != nil {
		return nil, err
	}
	return d.record(typeName, raw, path.Root)
}

// member is one YAML key resolved against the record's declaration.
type member struct {
	key      string
	decl     schema.Field
	declared bool
	alt      string // set for FHIR-style suffixed choice keys
	rank     int
}

func (d *decoder) record(typeName string, raw map[string]any, at path.Path) (*value.Record, error) {
	entry, err := d.reg.Resolve(typeName)
	if err == nil {
		typeName = entry.TypeName
	} else {
		entry = nil
	}

	members := make([]member, 0, len(raw))
	for key, v := range raw {
		if key == resourceTypeKey || v == nil {
			continue
		}
		members = append(members, resolveMember(entry, key))
	}
	slices.SortFunc(members, func(a, b member) int {
		if a.rank != b.rank {
			return a.rank - b.rank
		}
		return strings.Compare(a.key, b.key)
	})

	var errs []error
	fields := make([]value.Field, 0, len(members))
	for _, m := range members {
		f, err := d.field(m, raw[m.key], at)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		fields = append(fields, f)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return value.Assemble(typeName, fields...), nil
}

func resolveMember(entry *schema.Entry, key string) member {
	m := member{key: key, rank: math.MaxInt}
	if entry == nil {
		return m
	}
	if decl, ok := entry.Field(key); ok {
		m.decl, m.declared, m.rank = decl, true, entry.FieldIndex(key)
		return m
	}
	// measureScoreQuantity selects the Quantity alternative of measureScore
	for i, decl := range entry.Fields {
		if decl.Type.Kind != schema.KindChoice || !strings.HasPrefix(key, decl.Name) {
			continue
		}
		if alt, ok := decl.Type.Alternative(key[len(decl.Name):]); ok {
			m.decl, m.declared, m.alt, m.rank = decl, true, alt, i
			return m
		}
	}
	return m
}

func (d *decoder) field(m member, raw any, at path.Path) (value.Field, error) {
	name := m.key
	if m.declared {
		name = m.decl.Name
	}

	convert := func(raw any, at path.Path) (value.Value, error) {
		switch {
		case !m.declared:
			return d.natural(raw, at)
		case m.alt != "":
			v, err := d.kind(m.alt, raw, at)
			return value.Choice(m.alt, v), err
		default:
			return d.value(m.decl.Type, raw, at)
		}
	}

	if items, ok := raw.([]any); ok {
		vs := make([]value.Value, 0, len(items))
		for i, item := range items {
			v, err := convert(item, at.Element(name, i))
			if err != nil {
				return value.Field{}, err
			}
			vs = append(vs, v)
		}
		return value.ListOf(name, vs...), nil
	}
	v, err := convert(raw, at.Child(name))
	if err != nil {
		return value.Field{}, err
	}
	return value.Scalar(name, v), nil
}

func (d *decoder) value(t schema.Type, raw any, at path.Path) (value.Value, error) {
	switch t.Kind {
	case schema.KindPrimitive:
		return d.primitive(t.Primitive, raw, at)
	case schema.KindRecord:
		return d.nested(t.Record, raw, at)
	case schema.KindReference:
		return reference(raw, at)
	case schema.KindChoice:
		if m, ok := raw.(map[string]any); ok && len(m) == 1 {
			for key, inner := range m {
				kind := key
				if alt, ok := t.Alternative(key); ok {
					kind = alt
				} else if !d.isKind(key) {
					break
				}
				v, err := d.kind(kind, inner, at)
				return value.Choice(kind, v), err
			}
		}
		// a bare value selects its own kind
		return d.natural(raw, at)
	default:
		return d.natural(raw, at)
	}
}

// isKind reports whether name could select a choice alternative.
func (d *decoder) isKind(name string) bool {
	if _, ok := primitiveKind(name); ok || name == value.ReferenceKind {
		return true
	}
	_, err := d.reg.Resolve(name)
	return err == nil
}

// kind decodes raw as the named alternative.
func (d *decoder) kind(name string, raw any, at path.Path) (value.Value, error) {
	if t, ok := primitiveKind(name); ok {
		return d.primitive(t, raw, at)
	}
	if name == value.ReferenceKind {
		return reference(raw, at)
	}
	return d.nested(name, raw, at)
}

func primitiveKind(name string) (value.PrimitiveType, bool) {
	if value.IsPrimitive(name) {
		return value.PrimitiveType(name), true
	}
	r, n := utf8.DecodeRuneInString(name)
	if n == 0 {
		return "", false
	}
	lower := string(unicode.ToLower(r)) + name[n:]
	if value.IsPrimitive(lower) {
		return value.PrimitiveType(lower), true
	}
	return "", false
}

func (d *decoder) nested(typeName string, raw any, at path.Path) (value.Value, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return d.natural(raw, at)
	}
	rec, err := d.record(typeName, m, at)
	if err != nil {
		return value.Value{}, err
	}
	return value.Nested(rec), nil
}

// primitive converts raw to t's representation, or keeps raw's own type
// when it does not fit.
func (d *decoder) primitive(t value.PrimitiveType, raw any, at path.Path) (value.Value, error) {
	switch t.RawClass() {
	case value.RawString:
		switch s := raw.(type) {
		case string:
			return value.Primitive(t, s), nil
		case time.Time:
			return value.Primitive(t, s.Format(time.RFC3339)), nil
		}
	case value.RawBool:
		if b, ok := raw.(bool); ok {
			return value.Primitive(t, b), nil
		}
	case value.RawInt:
		switch n := raw.(type) {
		case int:
			return value.Primitive(t, int64(n)), nil
		case int64:
			return value.Primitive(t, n), nil
		case uint64:
			if n <= math.MaxInt64 {
				return value.Primitive(t, int64(n)), nil
			}
		case float64:
			if n == math.Trunc(n) && math.Abs(n) < math.MaxInt64 {
				return value.Primitive(t, int64(n)), nil
			}
		}
	case value.RawDecimal:
		switch n := raw.(type) {
		case int:
			return value.Primitive(t, decimal.NewFromInt(int64(n))), nil
		case int64:
			return value.Primitive(t, decimal.NewFromInt(n)), nil
		case float64:
			return value.Primitive(t, decimal.NewFromFloat(n)), nil
		case string:
			if dec, err := decimal.NewFromString(n); err == nil {
				return value.Primitive(t, dec), nil
			}
		}
	}
	return d.natural(raw, at)
}

// natural decodes raw by its YAML type alone.
func (d *decoder) natural(raw any, at path.Path) (value.Value, error) {
	switch v := raw.(type) {
	case nil:
		return value.Absent(), nil
	case string:
		return value.String(v), nil
	case bool:
		return value.Boolean(v), nil
	case int:
		return value.Integer(int64(v)), nil
	case int64:
		return value.Integer(v), nil
	case uint64:
		return value.Decimal(decimal.RequireFromString(strconv.FormatUint(v, 10))), nil
	case float64:
		return value.Decimal(decimal.NewFromFloat(v)), nil
	case time.Time:
		return value.DateTime(v.Format(time.RFC3339)), nil
	case map[string]any:
		rec, err := d.record("", v, at)
		if err != nil {
			return value.Value{}, err
		}
		return value.Nested(rec), nil
	default:
		return value.Value{}, fmt.Errorf("%s: unsupported YAML value %T", at, raw)
	}
}

// reference accepts "Type/id", an absolute URL ending in Type/id, or a map
// with reference and display keys.
func reference(raw any, at path.Path) (value.Value, error) {
	var ref, display string
	switch v := raw.(type) {
	case string:
		ref = v
	case map[string]any:
		ref, _ = v["reference"].(string)
		display, _ = v["display"].(string)
	default:
		return value.Value{}, fmt.Errorf("%s: reference must be a string or a map, got %T", at, raw)
	}

	parts := strings.Split(strings.TrimRight(ref, "/"), "/")
	if len(parts) < 2 || parts[len(parts)-2] == "" || parts[len(parts)-1] == "" {
		return value.Value{}, fmt.Errorf("%s: reference %q is not of the form Type/id", at, ref)
	}
	targetType, targetID := parts[len(parts)-2], parts[len(parts)-1]
	if display != "" {
		return value.RefWithDisplay(targetType, targetID, display), nil
	}
	return value.Ref(targetType, targetID), nil
}
