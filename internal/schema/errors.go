package schema

import "fmt"

// DuplicateNameError is returned by the Builder when two entities of the same
// kind collide within the same scope.
type DuplicateNameError struct {
	// Kind is the entity kind, e.g. "table" or "column".
	Kind string
	// Scope is the namespace or qualified table the name must be unique in.
	Scope string
	Name  string
}

func (e *DuplicateNameError) Error() string {
	if e.Scope == "" {
		return fmt.Sprintf("duplicate %s name %q", e.Kind, e.Name)
	}
	return fmt.Sprintf("duplicate %s name %q in %q", e.Kind, e.Name, e.Scope)
}
