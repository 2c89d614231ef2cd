package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ConflictError is the single fatal resolution error: two scopes assign
// different values to the same metadata filter key. That is an unresolvable
// contradiction, not a mergeable restriction, so the caller must treat the
// request as unanswerable (fail closed) rather than guess.
type ConflictError struct {
	// Key is the contested metadata filter key.
	Key string

	// Values maps scope id to the value that scope assigns.
	Values map[string]string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	ids := make([]string, 0, len(e.Values))
	for id := range e.Values {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%s=%q", id, e.Values[id]))
	}

	return fmt.Sprintf("conflicting metadata filter values for key %q: %s",
		e.Key, strings.Join(parts, ", "))
}

// IsConflict reports whether err is a resolution conflict.
func IsConflict(err error) bool {
	var conflict *ConflictError
	return errors.As(err, &conflict)
}
