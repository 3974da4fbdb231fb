package value

import "github.com/google/uuid"

// NewID returns a fresh random logical id.
func NewID() string {
	return uuid.NewString()
}
