package model

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed or missing request attributes.
	ErrValidation = errors.New("validation error")

	// ErrArtifactLoad marks a missing or corrupt model, scaler or column artifact.
	ErrArtifactLoad = errors.New("artifact load error")

	// ErrInference marks a mismatch between an encoded vector and the model.
	ErrInference = errors.New("inference error")

	// ErrPredictionNotFound is returned when an audit record does not exist.
	ErrPredictionNotFound = errors.New("prediction not found")
)

// ValidationError describes a single invalid request attribute.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ArtifactLoadError returns an error matching ErrArtifactLoad. A non-nil
// cause is wrapped as well.
func ArtifactLoadError(msg string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", ErrArtifactLoad, msg)
	}
	return fmt.Errorf("%w: %s: %w", ErrArtifactLoad, msg, cause)
}

// InferenceError returns an error matching ErrInference. A non-nil cause is
// wrapped as well.
func InferenceError(msg string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", ErrInference, msg)
	}
	return fmt.Errorf("%w: %s: %w", ErrInference, msg, cause)
}
