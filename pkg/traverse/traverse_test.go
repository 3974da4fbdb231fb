package traverse

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gofhir/datamodel/pkg/path"
	"github.com/gofhir/datamodel/pkg/value"
)

// recorder logs every hook as a line and counts enter/exit pairs.
type recorder struct {
	events []string
	enters int
	exits  int

	skipRecord string // type whose fields are skipped
	skipField  string // field whose nested record is not entered
	failAt     string // path at which VisitField returns failWith
	failWith   error
}

func (r *recorder) PreVisit(root *value.Record) error {
	r.events = append(r.events, "pre "+root.TypeName())
	return nil
}

func (r *recorder) EnterRecord(rec *value.Record, at path.Path) (bool, error) {
	r.enters++
	r.events = append(r.events, fmt.Sprintf("enter %s@%s", rec.TypeName(), at))
	return rec.TypeName() != r.skipRecord, nil
}

func (r *recorder) VisitField(f Field) (bool, error) {
	r.events = append(r.events, f.Path.String())
	if f.Path.String() == r.failAt {
		return false, r.failWith
	}
	return f.Name != r.skipField, nil
}

func (r *recorder) ExitRecord(rec *value.Record, at path.Path) {
	r.exits++
	r.events = append(r.events, fmt.Sprintf("exit %s@%s", rec.TypeName(), at))
}

func (r *recorder) PostVisit(root *value.Record) {
	r.events = append(r.events, "post "+root.TypeName())
}

func leaf(name string) value.Value {
	return value.Nested(value.Assemble("Leaf", value.Scalar("name", value.String(name))))
}

func sample() *value.Record {
	return value.Assemble("Root",
		value.Scalar("a", value.String("x")),
		value.ListOf("b", value.Integer(1), value.Integer(2), value.Integer(3)),
	)
}

func TestWalkFieldOrder(t *testing.T) {
	var got []string
	err := Walk(sample(), Funcs{
		Visit: func(f Field) (bool, error) {
			got = append(got, f.Path.String())
			return true, nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b[0]", "b[1]", "b[2]"}, got)
}

func TestWalkFieldDetails(t *testing.T) {
	var fields []Field
	require.NoError(t, Walk(sample(), Funcs{
		Visit: func(f Field) (bool, error) {
			fields = append(fields, f)
			return true, nil
		},
	}))
	require.Len(t, fields, 4)

	assert.Equal(t, path.NoIndex, fields[0].Index)
	assert.Equal(t, "a", fields[0].Name)
	assert.Equal(t, 2, fields[3].Index)
	i, ok := fields[3].Value.Int()
	assert.True(t, ok)
	assert.Equal(t, int64(3), i)
	assert.Equal(t, "Root", fields[3].Record.TypeName())
}

func TestWalkNestedEvents(t *testing.T) {
	root := value.Assemble("Root",
		value.Scalar("a", leaf("one")),
		value.ListOf("b", leaf("two"), value.Choice("Leaf", leaf("three"))),
	)
	rec := &recorder{}
	require.NoError(t, Walk(root, rec))

	assert.Equal(t, []string{
		"pre Root",
		"enter Root@",
		"a",
		"enter Leaf@a",
		"a.name",
		"exit Leaf@a",
		"b[0]",
		"enter Leaf@b[0]",
		"b[0].name",
		"exit Leaf@b[0]",
		"b[1]",
		"enter Leaf@b[1]",
		"b[1].name",
		"exit Leaf@b[1]",
		"exit Root@",
		"post Root",
	}, rec.events)
	assert.Equal(t, rec.enters, rec.exits)
}

func TestWalkSkipRecord(t *testing.T) {
	root := value.Assemble("Root",
		value.Scalar("a", leaf("one")),
		value.Scalar("z", value.Boolean(true)),
	)
	rec := &recorder{skipRecord: "Leaf"}
	require.NoError(t, Walk(root, rec))

	assert.NotContains(t, rec.events, "a.name")
	assert.Contains(t, rec.events, "exit Leaf@a")
	assert.Contains(t, rec.events, "z")
	assert.Equal(t, 2, rec.enters)
	assert.Equal(t, rec.enters, rec.exits)
}

func TestWalkSkipField(t *testing.T) {
	root := value.Assemble("Root",
		value.Scalar("a", leaf("one")),
		value.ListOf("b", leaf("two")),
	)
	rec := &recorder{skipField: "a"}
	require.NoError(t, Walk(root, rec))

	assert.NotContains(t, rec.events, "enter Leaf@a")
	assert.Contains(t, rec.events, "b[0].name")
	assert.Equal(t, 2, rec.enters)
	assert.Equal(t, rec.enters, rec.exits)
}

func TestWalkStop(t *testing.T) {
	root := value.Assemble("Root",
		value.ListOf("b", leaf("one"), leaf("two")),
		value.Scalar("z", value.Boolean(true)),
	)
	rec := &recorder{failAt: "b[0].name", failWith: Stop}
	require.NoError(t, Walk(root, rec))

	assert.NotContains(t, rec.events, "b[1]")
	assert.NotContains(t, rec.events, "z")
	assert.Equal(t, 2, rec.enters)
	assert.Equal(t, rec.enters, rec.exits)

	// innermost record closes first, then the walk ends
	n := len(rec.events)
	assert.Equal(t, []string{"exit Leaf@b[0]", "exit Root@", "post Root"}, rec.events[n-3:])
}

func TestWalkForwardsVisitorError(t *testing.T) {
	domainErr := errors.New("patient record locked")
	rec := &recorder{failAt: "b[1]", failWith: domainErr}

	err := Walk(sample(), rec)
	assert.Same(t, domainErr, err)
	assert.NotContains(t, rec.events, "b[2]")
	assert.Equal(t, rec.enters, rec.exits)
	assert.Equal(t, "post Root", rec.events[len(rec.events)-1])
}

func TestWalkWrappedStop(t *testing.T) {
	err := Walk(sample(), Funcs{
		Visit: func(Field) (bool, error) {
			return false, fmt.Errorf("done early: %w", Stop)
		},
	})
	assert.NoError(t, err)
}

func TestWalkEnterError(t *testing.T) {
	boom := errors.New("boom")
	var enters, exits, posts int
	err := Walk(value.Assemble("Root", value.Scalar("a", leaf("one"))), Funcs{
		Enter: func(rec *value.Record, _ path.Path) (bool, error) {
			enters++
			if rec.TypeName() == "Leaf" {
				return true, boom
			}
			return true, nil
		},
		Exit: func(*value.Record, path.Path) { exits++ },
		Post: func(*value.Record) { posts++ },
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, enters)
	assert.Equal(t, enters, exits)
	assert.Equal(t, 1, posts)
}

func TestWalkPreVisitError(t *testing.T) {
	boom := errors.New("not ready")
	var enters, posts int
	err := Walk(sample(), Funcs{
		Pre:   func(*value.Record) error { return boom },
		Enter: func(*value.Record, path.Path) (bool, error) {
			enters++
			return true, nil
		},
		Post:  func(*value.Record) { posts++ },
	})

	assert.Same(t, boom, err)
	assert.Zero(t, enters)
	assert.Equal(t, 1, posts)
}

func TestWalkNilRoot(t *testing.T) {
	called := false
	err := Walk(nil, Funcs{Pre: func(*value.Record) error {
		called = true
		return nil
	}})
	assert.NoError(t, err)
	assert.False(t, called)
}

func TestWalkDeepNesting(t *testing.T) {
	// deeper than any recursive walk would comfortably go
	const depth = 2000
	rec := value.Assemble("Node")
	for i := 0; i < depth; i++ {
		rec = value.Assemble("Node", value.Scalar("child", value.Nested(rec)))
	}

	c := Count(rec)
	assert.Equal(t, depth+1, c.Records)
	assert.Equal(t, depth, c.Values)
	assert.Equal(t, depth+1, c.Depth)
}

// fieldCounter overrides a single hook.
type fieldCounter struct {
	Base
	n int
}

func (c *fieldCounter) VisitField(Field) (bool, error) {
	c.n++
	return true, nil
}

func TestBaseVisitor(t *testing.T) {
	c := &fieldCounter{}
	require.NoError(t, Walk(sample(), c))
	assert.Equal(t, 4, c.n)
}

func TestConcurrentWalks(t *testing.T) {
	root := value.Assemble("Root",
		value.ListOf("b", leaf("one"), leaf("two"), leaf("three")),
	)
	want := Count(root)

	results := make(chan Counts, 16)
	for i := 0; i < 16; i++ {
		go func() { results <- Count(root) }()
	}
	for i := 0; i < 16; i++ {
		assert.Equal(t, want, <-results)
	}
}
