package models

import (
	"fmt"
)

// ValidationError reports a single rejected field. Nothing has been
// mutated when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %q: %s", e.Field, e.Message)
}
