package progress

import "fmt"

// RedisError represents a failure setting up the Redis progress transport
type RedisError struct {
	Message string
	Cause   error
}

func (e *RedisError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("redis progress error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("redis progress error: %s", e.Message)
}

func (e *RedisError) Unwrap() error {
	return e.Cause
}
