package analysis

import "fmt"

// SummarizeError represents a failed call to the analysis collaborator
type SummarizeError struct {
	Message string
	Cause   error
}

func (e *SummarizeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("summarize error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("summarize error: %s", e.Message)
}

func (e *SummarizeError) Unwrap() error {
	return e.Cause
}

// ParseError represents collaborator output that is not a JSON object
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("insights parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("insights parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
