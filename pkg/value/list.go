package value

import "iter"

// List is a read-only view over the values of a list field.
type List struct {
	items []Value
}

// Len returns the number of elements.
func (l List) Len() int { return len(l.items) }

// At returns element i. It panics when i is out of range.
func (l List) At(i int) Value { return l.items[i] }

// All iterates index/value pairs in list order.
func (l List) All() iter.Seq2[int, Value] {
	return func(yield func(int, Value) bool) {
		for i, v := range l.items {
			if !yield(i, v) {
				return
			}
		}
	}
}

// Values returns a copy of the elements.
func (l List) Values() []Value {
	return copyValues(l.items)
}
