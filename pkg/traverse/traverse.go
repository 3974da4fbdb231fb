// Package traverse walks record trees depth-first and reports each record
// and field value to a Visitor.
//
// Walk is iterative, so deep documents do not grow the goroutine stack.
// Every EnterRecord is matched by exactly one ExitRecord, including when a
// hook stops the walk early, and PostVisit always runs once. A record is
// only read, so any number of walks may share it.
package traverse

import (
	"errors"

	"github.com/gofhir/datamodel/pkg/path"
	"github.com/gofhir/datamodel/pkg/value"
)

// Stop ends a walk without error when returned by a hook.
var Stop = errors.New("traverse: stop")

// Field describes one field value reported to VisitField.
type Field struct {
	// Record holds the field
	Record *value.Record
	// Name of the field
	Name string
	// Index is the list position, or path.NoIndex for scalars
	Index int
	// Value is the scalar value or list element
	Value value.Value
	// Path locates the value from the root
	Path path.Path
}

// Visitor receives walk events.
//
// EnterRecord returning false skips the record's fields. VisitField
// returning false skips the nested record held by the value, if any.
// Returning Stop from a hook ends the walk and Walk returns nil; any other
// error ends the walk and Walk returns it unchanged.
type Visitor interface {
	PreVisit(root *value.Record) error
	EnterRecord(rec *value.Record, at path.Path) (bool, error)
	VisitField(f Field) (bool, error)
	ExitRecord(rec *value.Record, at path.Path)
	PostVisit(root *value.Record)
}

// frame is one open record on the walk stack.
type frame struct {
	rec   *value.Record
	at    path.Path
	field int
	elem  int
}

func (f *frame) done() bool {
	return f.field >= f.rec.NumFields()
}

// next returns the next field value of the frame and advances past it.
func (f *frame) next() Field {
	fld := f.rec.FieldAt(f.field)
	out := Field{
		Record: f.rec,
		Name:   fld.Name(),
		Index:  path.NoIndex,
		Value:  fld.At(f.elem),
	}
	if fld.IsList() {
		out.Index = f.elem
		out.Path = f.at.Element(out.Name, f.elem)
	} else {
		out.Path = f.at.Child(out.Name)
	}

	f.elem++
	if f.elem >= fld.Len() {
		f.field++
		f.elem = 0
	}
	return out
}

// Walk visits root and every record reachable from it, depth-first in
// field order, list elements in list order.
func Walk(root *value.Record, v Visitor) error {
	if root == nil {
		return nil
	}

	err := v.PreVisit(root)

	var stack []*frame
	enter := func(rec *value.Record, at path.Path) error {
		fr := &frame{rec: rec, at: at}
		stack = append(stack, fr)
		descend, err := v.EnterRecord(rec, at)
		if !descend {
			fr.field = rec.NumFields()
		}
		return err
	}

	if err == nil {
		err = enter(root, path.Root)
	}

	for err == nil && len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.done() {
			stack = stack[:len(stack)-1]
			v.ExitRecord(top.rec, top.at)
			continue
		}

		f := top.next()
		var descend bool
		descend, err = v.VisitField(f)
		if err != nil || !descend {
			continue
		}
		if child := f.Value.NestedRecord(); child != nil {
			err = enter(child, f.Path)
		}
	}

	// close whatever is still open, innermost first
	for i := len(stack) - 1; i >= 0; i-- {
		v.ExitRecord(stack[i].rec, stack[i].at)
	}
	v.PostVisit(root)

	if errors.Is(err, Stop) {
		return nil
	}
	return err
}
