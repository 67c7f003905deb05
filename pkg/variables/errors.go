package variables

import (
	"errors"
	"fmt"
)

// Schema errors block a save before any network call.
var (
	ErrEmptyName     = errors.New("variable name cannot be empty")
	ErrDuplicateName = errors.New("variable name is already used")
	ErrInvalidName   = errors.New("variable name must start with a letter or underscore and contain only letters, digits and underscores")

	// ErrVariableNotFound is returned when an update or removal names an undeclared variable.
	ErrVariableNotFound = errors.New("variable not found")
)

// SchemaError points at the variable row that failed a pre-save check.
type SchemaError struct {
	Index int
	Name  string
	Err   error
}

func (e *SchemaError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("variable #%d: %v", e.Index+1, e.Err)
	}

	return fmt.Sprintf("variable %q: %v", e.Name, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

func (e *SchemaError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsSchemaError checks if an error is a local schema error that blocks saving.
func IsSchemaError(err error) bool {
	return errors.Is(err, ErrEmptyName) ||
		errors.Is(err, ErrDuplicateName) ||
		errors.Is(err, ErrInvalidName)
}
