package model

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validAttributes() RawAttributes {
	return RawAttributes{
		"age":      json.Number("19"),
		"bmi":      json.Number("27.9"),
		"children": json.Number("0"),
		"sex":      "female",
		"smoker":   "yes",
		"region":   "southwest",
	}
}

func TestParseApplicant(t *testing.T) {
	a, err := ParseApplicant(validAttributes())
	require.NoError(t, err)

	assert.Equal(t, Applicant{
		Sex:      "female",
		Smoker:   "yes",
		Region:   "southwest",
		Age:      19,
		BMI:      27.9,
		Children: 0,
	}, a)
}

func TestParseApplicant_NumericForms(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  float64
	}{
		{name: "float64", value: 42.5, want: 42.5},
		{name: "float32", value: float32(2.5), want: 2.5},
		{name: "int", value: 42, want: 42},
		{name: "int64", value: int64(42), want: 42},
		{name: "json number", value: json.Number("42"), want: 42},
		{name: "numeric string", value: "42", want: 42},
		{name: "padded string", value: " 42.5 ", want: 42.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := validAttributes()
			attrs[AttrAge] = tt.value

			a, err := ParseApplicant(attrs)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, a.Age, 1e-9)
		})
	}
}

func TestParseApplicant_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(RawAttributes)
		field  string
		reason string
	}{
		{name: "missing age", mutate: func(r RawAttributes) { delete(r, AttrAge) }, field: AttrAge, reason: "is required"},
		{name: "null bmi", mutate: func(r RawAttributes) { r[AttrBMI] = nil }, field: AttrBMI, reason: "is required"},
		{name: "text children", mutate: func(r RawAttributes) { r[AttrChildren] = "two" }, field: AttrChildren, reason: "must be a number"},
		{name: "bool age", mutate: func(r RawAttributes) { r[AttrAge] = true }, field: AttrAge, reason: "must be a number"},
		{name: "NaN bmi", mutate: func(r RawAttributes) { r[AttrBMI] = math.NaN() }, field: AttrBMI, reason: "must be finite"},
		{name: "Inf string", mutate: func(r RawAttributes) { r[AttrAge] = "Inf" }, field: AttrAge, reason: "must be finite"},
		{name: "missing sex", mutate: func(r RawAttributes) { delete(r, AttrSex) }, field: AttrSex, reason: "is required"},
		{name: "numeric smoker", mutate: func(r RawAttributes) { r[AttrSmoker] = 1 }, field: AttrSmoker, reason: "must be a string"},
		{name: "missing region", mutate: func(r RawAttributes) { delete(r, AttrRegion) }, field: AttrRegion, reason: "is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := validAttributes()
			tt.mutate(attrs)

			_, err := ParseApplicant(attrs)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, tt.reason, verr.Reason)
		})
	}
}

func TestParseApplicant_CategoricalValuesUnrestricted(t *testing.T) {
	attrs := validAttributes()
	attrs[AttrRegion] = "mars"
	attrs[AttrSex] = "MALE"

	a, err := ParseApplicant(attrs)
	require.NoError(t, err)
	assert.Equal(t, "mars", a.Region)
	assert.Equal(t, "MALE", a.Sex)
}

func TestApplicant_RawRoundTrip(t *testing.T) {
	a, err := ParseApplicant(validAttributes())
	require.NoError(t, err)

	b, err := ParseApplicant(a.Raw())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
