package config

import "fmt"

// MissingVariableError is returned when a required environment variable is unset or empty.
type MissingVariableError struct {
	Name string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("missing required environment variable %s", e.Name)
}
