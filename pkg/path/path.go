// Package path models field paths inside records, such as "participant[2].actor".
//
// A Path is a sequence of segments from the root record down to a field.
// Each segment names a field and, for list fields, the element index.
// Paths render with String and parse back with Parse; the two round-trip.
package path

import (
	"errors"
	"fmt"
	"strconv"
)

// NoIndex marks a segment that addresses a scalar field.
const NoIndex = -1

// ErrSyntax is returned by Parse for malformed path strings.
var ErrSyntax = errors.New("invalid path")

// Segment is one step of a Path.
type Segment struct {
	Name  string
	Index int
}

// String renders the segment alone.
func (s Segment) String() string {
	if s.Index == NoIndex {
		return s.Name
	}
	return s.Name + "[" + strconv.Itoa(s.Index) + "]"
}

// Path addresses a field value from the root record.
// The empty Path addresses the root record itself.
type Path []Segment

// Root is the empty path.
var Root = Path(nil)

// Child returns a new path extended with a scalar field.
// The receiver is never modified.
func (p Path) Child(name string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, Segment{Name: name, Index: NoIndex})
}

// Element returns a new path extended with a list element.
func (p Path) Element(name string, index int) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, Segment{Name: name, Index: index})
}

// Last returns the final segment. ok is false for the root path.
func (p Path) Last() (seg Segment, ok bool) {
	if len(p) == 0 {
		return Segment{Index: NoIndex}, false
	}
	return p[len(p)-1], true
}

// Parent returns the path without its final segment.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return p
	}
	return p[:len(p)-1:len(p)-1]
}

// Depth returns the number of segments.
func (p Path) Depth() int {
	return len(p)
}

// Equal reports whether two paths address the same field.
func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix addresses p or one of its ancestors.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	return p[:len(prefix)].Equal(prefix)
}

// String renders the path, e.g. "participant[2].actor".
func (p Path) String() string {
	if len(p) == 0 {
		return ""
	}
	b := AcquireBuilder()
	defer b.Release()
	for _, s := range p {
		b.WriteSegment(s)
	}
	return b.String()
}

// Parse reads a path rendered by String.
// A leading type name such as "Appointment." is not stripped; callers
// that render qualified expressions must remove it themselves.
func Parse(s string) (Path, error) {
	if s == "" {
		return Root, nil
	}

	var out Path
	start := 0
	for i := 0; i <= len(s); i++ {
		if i < len(s) && s[i] != '.' && s[i] != '[' {
			continue
		}

		name := s[start:i]
		if name == "" {
			return nil, fmt.Errorf("%w %q: empty field name at offset %d", ErrSyntax, s, start)
		}
		seg := Segment{Name: name, Index: NoIndex}

		if i < len(s) && s[i] == '[' {
			j := i + 1
			for j < len(s) && s[j] != ']' {
				j++
			}
			if j == len(s) {
				return nil, fmt.Errorf("%w %q: unterminated index", ErrSyntax, s)
			}
			idx, err := strconv.Atoi(s[i+1 : j])
			if err != nil || idx < 0 {
				return nil, fmt.Errorf("%w %q: bad index %q", ErrSyntax, s, s[i+1:j])
			}
			seg.Index = idx
			i = j + 1
			if i < len(s) && s[i] != '.' {
				return nil, fmt.Errorf("%w %q: unexpected %q after index", ErrSyntax, s, s[i])
			}
		}

		out = append(out, seg)
		start = i + 1
		if i == len(s)-1 {
			// trailing dot
			return nil, fmt.Errorf("%w %q: trailing separator", ErrSyntax, s)
		}
	}
	return out, nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string) Path {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}
