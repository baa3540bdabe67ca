package types

import "fmt"

// ConfigError reports a request that is invalid before any transaction has
// been issued: unknown register category, unknown type code, chunk size above
// the protocol ceiling. Never retried.
type ConfigError struct {
	Op      string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// NewConfigError builds a consistent pre-flight validation error.
func NewConfigError(op, format string, args ...any) *ConfigError {
	return &ConfigError{
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}
