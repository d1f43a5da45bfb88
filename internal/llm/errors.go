package llm

import "fmt"

// APICallError represents a failed request to the model provider
type APICallError struct {
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("llm API call error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("llm API call error: %s", e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// ConfigError represents a client misconfiguration (missing key, model or provider)
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("llm config error: %s", e.Message)
}

// EmptyResponseError is returned when the provider answered without usable text
type EmptyResponseError struct {
	Message string
}

func (e *EmptyResponseError) Error() string {
	return fmt.Sprintf("llm empty response: %s", e.Message)
}

// BlockedError is returned when the provider refused the prompt or stopped
// for safety. Retrying the same prompt does not help.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("llm response blocked: %s", e.Reason)
}
