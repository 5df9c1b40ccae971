package process

import "fmt"

// ValidationError reports a semantic problem found after parsing:
// duplicate process names, undeclared symbols, bad builtin usage or
// mismatched initial values. The whole simulation call fails before any
// numeric work.
type ValidationError struct {
	Subject string // offending symbol, process name or key
	Msg     string
}

func (e *ValidationError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Subject, e.Msg)
	}
	return "validation error: " + e.Msg
}

// ConfigError reports an invalid run configuration: bad time grid,
// scenario count, or an unrecognized rng method or scheme.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error: %s: %s", e.Field, e.Msg)
	}
	return "config error: " + e.Msg
}

func validationErrorf(subject, format string, args ...any) error {
	return &ValidationError{Subject: subject, Msg: fmt.Sprintf(format, args...)}
}

func configErrorf(field, format string, args ...any) error {
	return &ConfigError{Field: field, Msg: fmt.Sprintf(format, args...)}
}
