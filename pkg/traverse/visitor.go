package traverse

import (
	"github.com/gofhir/datamodel/pkg/path"
	"github.com/gofhir/datamodel/pkg/value"
)

// Base is a Visitor that descends everywhere and does nothing. Embed it to
// implement only the hooks you need.
type Base struct{}

func (Base) PreVisit(*value.Record) error                       { return nil }
func (Base) EnterRecord(*value.Record, path.Path) (bool, error) { return true, nil }
func (Base) VisitField(Field) (bool, error)                     { return true, nil }
func (Base) ExitRecord(*value.Record, path.Path)                {}
func (Base) PostVisit(*value.Record)                            {}

// Funcs adapts optional functions to a Visitor. Nil hooks behave like Base.
type Funcs struct {
	Pre   func(root *value.Record) error
	Enter func(rec *value.Record, at path.Path) (bool, error)
	Visit func(f Field) (bool, error)
	Exit  func(rec *value.Record, at path.Path)
	Post  func(root *value.Record)
}

func (fs Funcs) PreVisit(root *value.Record) error {
	if fs.Pre == nil {
		return nil
	}
	return fs.Pre(root)
}

func (fs Funcs) EnterRecord(rec *value.Record, at path.Path) (bool, error) {
	if fs.Enter == nil {
		return true, nil
	}
	return fs.Enter(rec, at)
}

func (fs Funcs) VisitField(f Field) (bool, error) {
	if fs.Visit == nil {
		return true, nil
	}
	return fs.Visit(f)
}

func (fs Funcs) ExitRecord(rec *value.Record, at path.Path) {
	if fs.Exit != nil {
		fs.Exit(rec, at)
	}
}

func (fs Funcs) PostVisit(root *value.Record) {
	if fs.Post != nil {
		fs.Post(root)
	}
}

// Counts summarises a record tree.
type Counts struct {
	Records int
	Values  int
	Depth   int
}

// Count returns how many records and field values are reachable from root
// and the deepest record nesting, the root being depth 1.
func Count(root *value.Record) Counts {
	var c Counts
	depth := 0
	_ = Walk(root, Funcs{
		Enter: func(*value.Record, path.Path) (bool, error) {
			c.Records++
			depth++
			c.Depth = max(c.Depth, depth)
			return true, nil
		},
		Visit: func(Field) (bool, error) {
			c.Values++
			return true, nil
		},
		Exit: func(*value.Record, path.Path) {
			depth--
		},
	})
	return c
}
