package steps

import (
	"fmt"
	"strings"

	"github.com/jonathan/docpack/internal/types"
)

// DependencyError represents a dependency on a type the table does not know
type DependencyError struct {
	Step                types.DocumentType
	MissingDependencies []types.DocumentType
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("missing dependencies for %s: %v", e.Step, e.MissingDependencies)
}

// CycleError is returned when the dependency table contains a cycle
type CycleError struct {
	Path []types.DocumentType
}

func (e *CycleError) Error() string {
	names := make([]string, len(e.Path))
	for i, p := range e.Path {
		names[i] = string(p)
	}
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(names, " -> "))
}

// UnknownTypeError is returned for a document type outside the closed set
type UnknownTypeError struct {
	Type types.DocumentType
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown document type: %q", string(e.Type))
}
