package vmem

import (
	"errors"
	"fmt"
)

// ErrorCode represents different types of simulation errors
type ErrorCode int

const (
	// Generic errors
	ErrCodeUnknown ErrorCode = iota
	ErrCodeInternal

	// Construction errors
	ErrCodeInvalidMemorySize
	ErrCodeInvalidParameters
	ErrCodeUnknownPolicy

	// Invariant violations
	ErrCodePoolOverflow
	ErrCodeFrameNotReleased
	ErrCodeStarvation

	// Workload errors
	ErrCodeWorkloadCorrupted
	ErrCodeWorkloadIO
)

// SimulationError represents a simulation error with context
type SimulationError struct {
	Code    ErrorCode
	Message string
	Op      string // Operation that failed
	Err     error  // Underlying error (if any)
}

// Error implements the error interface
func (e *SimulationError) Error() string {
	if e.Op != "" {
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *SimulationError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches a specific error code
func (e *SimulationError) Is(target error) bool {
	if t, ok := target.(*SimulationError); ok {
		return e.Code == t.Code
	}
	return false
}

// NewSimulationError creates a new simulation error
func NewSimulationError(code ErrorCode, op, message string, err error) *SimulationError {
	return &SimulationError{
		Code:    code,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

// Helper functions for common errors

func ErrInvalidMemorySize(op string) *SimulationError {
	return NewSimulationError(
		ErrCodeInvalidMemorySize,
		op,
		"memory size must be greater than 0",
		nil,
	)
}

func ErrInvalidParameters(op, message string) *SimulationError {
	return NewSimulationError(ErrCodeInvalidParameters, op, message, nil)
}

func ErrUnknownPolicy(op, name string) *SimulationError {
	return NewSimulationError(
		ErrCodeUnknownPolicy,
		op,
		fmt.Sprintf("unknown allocation policy %q", name),
		nil,
	)
}

func ErrPoolOverflow(op string, used, capacity int) *SimulationError {
	return NewSimulationError(
		ErrCodePoolOverflow,
		op,
		fmt.Sprintf("memory overflow: %d frames used, %d available", used, capacity),
		nil,
	)
}

func ErrFrameNotReleased(op string, key FrameKey) *SimulationError {
	return NewSimulationError(
		ErrCodeFrameNotReleased,
		op,
		fmt.Sprintf("page %d of process %d is not resident", key.Page, key.Owner),
		nil,
	)
}

func ErrStarvation(op string, process int) *SimulationError {
	return NewSimulationError(
		ErrCodeStarvation,
		op,
		fmt.Sprintf("process %d holds no frame and none can be reclaimed", process),
		nil,
	)
}

func ErrWorkloadCorrupted(op, message string) *SimulationError {
	return NewSimulationError(ErrCodeWorkloadCorrupted, op, message, nil)
}

func ErrWorkloadIO(op string, err error) *SimulationError {
	return NewSimulationError(
		ErrCodeWorkloadIO,
		op,
		"workload file operation failed",
		err,
	)
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var se *SimulationError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrCodeUnknown
func GetErrorCode(err error) ErrorCode {
	var se *SimulationError
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrCodeUnknown
}
