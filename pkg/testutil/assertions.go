package testutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/domain/model"
)

// RequireValidationError fails the test unless err is a ValidationError for field.
func RequireValidationError(t *testing.T, err error, field string) {
	t.Helper()
	require.Error(t, err)

	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	assert.Equal(t, field, verr.Field)
}

// AssertErrorContains checks that err contains the expected substring.
func AssertErrorContains(t *testing.T, err error, expected string) {
	t.Helper()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), expected)
}
