package reference

import "fmt"

// ConfigurationError reports a missing or malformed reference-table entry.
// A run never mutates its grid once one has been returned.
type ConfigurationError struct {
	Table  string
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("reference table %s: %s", e.Table, e.Reason)
	}
	return fmt.Sprintf("reference table %s[%s]: %s", e.Table, e.Key, e.Reason)
}

func missing(table, key string) error {
	return &ConfigurationError{Table: table, Key: key, Reason: "missing entry"}
}

func malformed(table, key, format string, args ...any) error {
	return &ConfigurationError{Table: table, Key: key, Reason: fmt.Sprintf(format, args...)}
}
