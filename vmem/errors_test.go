package vmem

import (
	"errors"
	"fmt"
	"testing"
)

func TestSimulationError(t *testing.T) {
	err := NewSimulationError(
		ErrCodeStarvation,
		"Emulate",
		"no frame",
		nil,
	)

	if err.Code != ErrCodeStarvation {
		t.Errorf("Expected error code %d, got %d", ErrCodeStarvation, err.Code)
	}

	expected := "Emulate: no frame"
	if err.Error() != expected {
		t.Errorf("Expected error message '%s', got '%s'", expected, err.Error())
	}
}

func TestSimulationErrorWithUnderlying(t *testing.T) {
	underlying := fmt.Errorf("disk full")
	err := ErrWorkloadIO("SaveWorkload", underlying)

	if errors.Unwrap(err) != underlying {
		t.Error("Unwrap did not return underlying error")
	}

	expected := "SaveWorkload: workload file operation failed: disk full"
	if err.Error() != expected {
		t.Errorf("Expected error message '%s', got '%s'", expected, err.Error())
	}
}

func TestSimulationErrorIs(t *testing.T) {
	err := ErrPoolOverflow("Admit", 5, 4)

	if !errors.Is(err, &SimulationError{Code: ErrCodePoolOverflow}) {
		t.Error("errors.Is should match on error code")
	}
	if errors.Is(err, &SimulationError{Code: ErrCodeStarvation}) {
		t.Error("errors.Is should not match a different code")
	}
}

func TestErrorCodeHelpers(t *testing.T) {
	wrapped := fmt.Errorf("run failed: %w", ErrInvalidMemorySize("NewProportional"))

	if !IsErrorCode(wrapped, ErrCodeInvalidMemorySize) {
		t.Error("IsErrorCode should see through wrapping")
	}
	if GetErrorCode(wrapped) != ErrCodeInvalidMemorySize {
		t.Errorf("Expected ErrCodeInvalidMemorySize, got %d", GetErrorCode(wrapped))
	}
	if GetErrorCode(fmt.Errorf("plain")) != ErrCodeUnknown {
		t.Error("Plain errors should map to ErrCodeUnknown")
	}
	if IsErrorCode(nil, ErrCodeUnknown) {
		t.Error("nil is not a simulation error")
	}
}
