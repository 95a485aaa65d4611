package schema

import (
	"fmt"
	"strings"
)

// Violation describes a function attribute rejected by the schema.
type Violation struct {
	Function string
	Property string
	Value    any
	Allowed  []string
	Reason   string
}

func (v Violation) String() string {
	return fmt.Sprintf("functions.%s.%s %s (got %#v)", v.Function, v.Property, v.Reason, v.Value)
}

// ValidationError is returned when a descriptor does not satisfy the
// registered function properties.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	lines := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		lines[i] = v.String()
	}
	return "invalid service configuration: " + strings.Join(lines, "; ")
}
