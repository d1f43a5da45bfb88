package generators

import (
	"fmt"

	"github.com/jonathan/docpack/internal/types"
)

// GenerationError represents a failure producing one document
type GenerationError struct {
	Type    types.DocumentType
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generating %s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("generating %s: %s", e.Type, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}
