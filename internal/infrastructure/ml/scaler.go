package ml

import (
	"encoding/json"
	"fmt"
	"math"
)

// StandardScaler applies (x - mean) / scale per column using statistics fixed
// at training time. It never refits.
type StandardScaler struct {
	features []string
	mean     []float64
	scale    []float64
}

// scalerFile is the on-disk form of a fitted scaler.
type scalerFile struct {
	Features []string  `json:"features"`
	Mean     []float64 `json:"mean"`
	Scale    []float64 `json:"scale"`
}

// NewStandardScaler validates fitted statistics. Every scale must be finite
// and non-zero.
func NewStandardScaler(features []string, mean, scale []float64) (*StandardScaler, error) {
	if len(features) == 0 {
		return nil, fmt.Errorf("scaler has no features")
	}
	if len(mean) != len(features) || len(scale) != len(features) {
		return nil, fmt.Errorf("scaler has %d features, %d means, %d scales", len(features), len(mean), len(scale))
	}
	for i := range features {
		if !finite(mean[i]) {
			return nil, fmt.Errorf("scaler mean for %q is not finite", features[i])
		}
		if !finite(scale[i]) || scale[i] == 0 {
			return nil, fmt.Errorf("scaler scale for %q must be finite and non-zero, got %v", features[i], scale[i])
		}
	}

	return &StandardScaler{
		features: append([]string(nil), features...),
		mean:     append([]float64(nil), mean...),
		scale:    append([]float64(nil), scale...),
	}, nil
}

// DecodeScaler parses scaler.json.
func DecodeScaler(data []byte) (*StandardScaler, error) {
	var f scalerFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode scaler: %w", err)
	}
	return NewStandardScaler(f.Features, f.Mean, f.Scale)
}

// Features returns a copy of the fitted column names.
func (s *StandardScaler) Features() []string {
	return append([]string(nil), s.features...)
}

// Transform scales values, which must follow Features() order.
func (s *StandardScaler) Transform(values []float64) ([]float64, error) {
	if len(values) != len(s.mean) {
		return nil, fmt.Errorf("scaler expects %d values, got %d", len(s.mean), len(values))
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - s.mean[i]) / s.scale[i]
	}
	return out, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
