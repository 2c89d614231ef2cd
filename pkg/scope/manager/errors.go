package manager

import (
	"fmt"
	"strings"
)

// LoadError represents an error that occurred during scope loading.
// This includes file system errors like "file not found", "permission denied",
// or errors related to file size limits or encoding validation.
type LoadError struct {
	// FilePath is the path to the file that failed to load
	FilePath string

	// Message describes the error
	Message string

	// Cause is the underlying error that caused this load error
	Cause error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load scope file %q: %s: %v", e.FilePath, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load scope file %q: %s", e.FilePath, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// ParseError represents an error that occurred during YAML parsing.
type ParseError struct {
	// FilePath is the path to the file that failed to parse
	FilePath string

	// Message describes the parsing error
	Message string

	// Cause is the underlying parser error
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %q: %s", e.FilePath, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ValidationError represents an error that occurred during scope validation.
type ValidationError struct {
	// ScopeID is the id of the scope that failed validation
	ScopeID string

	// ScopeName is the human-readable name of the scope
	ScopeName string

	// Message describes the validation error
	Message string

	// Cause is the underlying validation error
	Cause error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	parts := []string{"validation error"}

	if e.ScopeName != "" {
		parts = append(parts, fmt.Sprintf("in scope %q", e.ScopeName))
	} else if e.ScopeID != "" {
		parts = append(parts, fmt.Sprintf("in scope %q", e.ScopeID))
	}

	parts = append(parts, e.Message)

	return strings.Join(parts, " ")
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// RegistryError represents an error that occurred during registry operations.
type RegistryError struct {
	// ScopeID is the id of the scope involved in the error
	ScopeID string

	// Operation is the operation that failed (e.g., "register", "unregister")
	Operation string

	// Message describes the registry error
	Message string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *RegistryError) Error() string {
	if e.ScopeID != "" {
		return fmt.Sprintf("registry error for scope %q during %s: %s", e.ScopeID, e.Operation, e.Message)
	}
	return fmt.Sprintf("registry error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *RegistryError) Unwrap() error {
	return e.Cause
}

// SnapshotError represents an error from the last-known-good snapshot store.
type SnapshotError struct {
	// Operation is the operation that failed (e.g., "save", "restore")
	Operation string

	// Message describes the snapshot error
	Message string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *SnapshotError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("snapshot error during %s: %s: %v", e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("snapshot error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *SnapshotError) Unwrap() error {
	return e.Cause
}

// ErrorList contains multiple errors that occurred during scope operations.
// This is used when loading multiple scopes where some may succeed and others fail.
type ErrorList struct {
	Errors []error
}

// Error implements the error interface.
func (e *ErrorList) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %v\n", i+1, err))
	}
	return sb.String()
}

// Add adds an error to the list.
func (e *ErrorList) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if the list contains any errors.
func (e *ErrorList) HasErrors() bool {
	return len(e.Errors) > 0
}

// ToError returns nil if there are no errors, the single error if there is one,
// or the ErrorList itself if there are multiple errors.
func (e *ErrorList) ToError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	if len(e.Errors) == 1 {
		return e.Errors[0]
	}
	return e
}
