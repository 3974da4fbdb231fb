package issue

import (
	"errors"
	"fmt"
	"strings"
)

// Issues is a list of validation issues usable as an error.
// Builders return it when a record is rejected.
type Issues []Issue

// Error summarises the first few issues.
func (is Issues) Error() string {
	if len(is) == 0 {
		return "no issues"
	}
	const maxShown = 3
	var b strings.Builder
	for i, iss := range is {
		if i == maxShown {
			fmt.Fprintf(&b, "; and %d more", len(is)-maxShown)
			break
		}
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(iss.Error())
	}
	return b.String()
}

// AsIssues extracts Issues from err.
func AsIssues(err error) (Issues, bool) {
	var is Issues
	if errors.As(err, &is) {
		return is, true
	}
	return nil, false
}
