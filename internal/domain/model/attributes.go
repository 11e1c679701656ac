package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Raw attribute keys accepted on a prediction request.
const (
	AttrAge      = "age"
	AttrBMI      = "bmi"
	AttrChildren = "children"
	AttrSex      = "sex"
	AttrSmoker   = "smoker"
	AttrRegion   = "region"
)

// RawAttributes is the unordered request payload before validation.
type RawAttributes map[string]any

// Applicant holds validated attributes for one prediction.
type Applicant struct {
	Sex      string  `json:"sex"`
	Smoker   string  `json:"smoker"`
	Region   string  `json:"region"`
	Age      float64 `json:"age"`
	BMI      float64 `json:"bmi"`
	Children float64 `json:"children"`
}

// ParseApplicant validates raw attributes. Numeric fields accept JSON numbers,
// Go numeric types and numeric strings. Categorical fields must be strings;
// their values are not restricted.
func ParseApplicant(attrs RawAttributes) (Applicant, error) {
	var (
		a   Applicant
		err error
	)

	if a.Age, err = attrs.Float(AttrAge); err != nil {
		return Applicant{}, err
	}
	if a.BMI, err = attrs.Float(AttrBMI); err != nil {
		return Applicant{}, err
	}
	if a.Children, err = attrs.Float(AttrChildren); err != nil {
		return Applicant{}, err
	}
	if a.Sex, err = attrs.String(AttrSex); err != nil {
		return Applicant{}, err
	}
	if a.Smoker, err = attrs.String(AttrSmoker); err != nil {
		return Applicant{}, err
	}
	if a.Region, err = attrs.String(AttrRegion); err != nil {
		return Applicant{}, err
	}

	return a, nil
}

// Float reads key as a finite float64.
func (r RawAttributes) Float(key string) (float64, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, NewValidationError(key, "is required")
	}

	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, NewValidationError(key, "must be a number")
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, NewValidationError(key, "must be a number")
		}
		f = parsed
	default:
		return 0, NewValidationError(key, "must be a number")
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, NewValidationError(key, "must be finite")
	}
	return f, nil
}

// String reads key as a string.
func (r RawAttributes) String(key string) (string, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", NewValidationError(key, "is required")
	}
	s, ok := v.(string)
	if !ok {
		return "", NewValidationError(key, "must be a string")
	}
	return s, nil
}

// Raw converts the applicant back to raw attributes.
func (a Applicant) Raw() RawAttributes {
	return RawAttributes{
		AttrAge:      a.Age,
		AttrBMI:      a.BMI,
		AttrChildren: a.Children,
		AttrSex:      a.Sex,
		AttrSmoker:   a.Smoker,
		AttrRegion:   a.Region,
	}
}
