package schema

import (
	"errors"
	"fmt"
)

// Registry errors. They signal configuration defects and are expected to
// stop the program at startup.
var (
	ErrSchemaConflict = errors.New("schema conflict")
	ErrUnknownType    = errors.New("unknown type")
	ErrInvalidEntry   = errors.New("invalid schema entry")
	ErrSealed         = errors.New("registry sealed")
)

func enrichError(err error, msg string, args ...any) error {
	return fmt.Errorf("%w: %s", err, fmt.Sprintf(msg, args...))
}
