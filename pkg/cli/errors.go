package cli

import (
	"errors"
	"fmt"
)

// Process exit codes, stable for scripted callers (CI validation gates,
// deployment hooks that refuse to ship a conflicting scope assignment).
const (
	// ExitError is the generic failure status.
	ExitError = 1

	// ExitValidationFailed means one or more scope files failed validation.
	ExitValidationFailed = 2

	// ExitPolicyConflict means scope resolution hit a metadata filter
	// conflict and refused to produce a policy.
	ExitPolicyConflict = 3
)

// ConfigError represents an error in configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config error: %s", e.Message)
	}
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError represents a failed command execution. Code carries the
// process exit status; zero means ExitError.
type CommandError struct {
	Command string
	Err     error
	Code    int
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit status for this error.
func (e *CommandError) ExitCode() int {
	if e.Code == 0 {
		return ExitError
	}
	return e.Code
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewCommandError creates a CommandError with the generic failure status.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// NewCommandErrorWithCode creates a CommandError with an explicit exit
// status.
func NewCommandErrorWithCode(command string, err error, code int) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
		Code:    code,
	}
}

// ExitCode maps an error to the process exit status: the error's own code
// when it carries one, ExitError otherwise. A nil error maps to zero.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var coded interface{ ExitCode() int }
	if errors.As(err, &coded) {
		return coded.ExitCode()
	}
	return ExitError
}
