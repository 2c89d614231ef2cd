package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestCommandErrorExitCode(t *testing.T) {
	if got := NewCommandError("resolve", errors.New("boom")).ExitCode(); got != ExitError {
		t.Fatalf("ExitCode() = %d, want %d", got, ExitError)
	}

	withCode := NewCommandErrorWithCode("validate", errors.New("bad scope"), ExitValidationFailed)
	if got := withCode.ExitCode(); got != ExitValidationFailed {
		t.Fatalf("ExitCode() = %d, want %d", got, ExitValidationFailed)
	}
}

func TestExitCode(t *testing.T) {
	conflict := NewCommandErrorWithCode("resolve", errors.New("conflict"), ExitPolicyConflict)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, 0},
		{"plain error", errors.New("boom"), ExitError},
		{"command error without code", NewCommandError("audit", errors.New("boom")), ExitError},
		{"command error with code", conflict, ExitPolicyConflict},
		{"wrapped command error", fmt.Errorf("outer: %w", conflict), ExitPolicyConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Fatalf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
