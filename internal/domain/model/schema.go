package model

import (
	"fmt"
	"strings"
)

// Column names with fixed meaning in the training-time layout.
const (
	ColumnAge       = "age"
	ColumnBMI       = "bmi"
	ColumnChildren  = "children"
	ColumnSexMale   = "sex_male"
	ColumnSmokerYes = "smoker_yes"

	// RegionColumnPrefix prefixes every region one-hot column.
	RegionColumnPrefix = "region_"

	// BaselineRegion is the region dropped from the one-hot encoding at
	// training time. It encodes as all region columns at 0.
	BaselineRegion = "northeast"
)

// Categorical values the model was trained on. Anything else still encodes,
// as the all-zero baseline.
var (
	KnownSexes   = []string{"female", "male"}
	KnownSmokers = []string{"no", "yes"}
)

// ContinuousColumns are scaled as a group, in this order.
var ContinuousColumns = []string{ColumnAge, ColumnBMI, ColumnChildren}

// ColumnSchema is the ordered list of feature names a model was trained on.
// It is immutable once constructed.
type ColumnSchema struct {
	names []string
	index map[string]int
}

// NewColumnSchema validates names and builds a schema. Names must be
// non-empty, unique, and include every continuous column.
func NewColumnSchema(names []string) (ColumnSchema, error) {
	if len(names) == 0 {
		return ColumnSchema{}, ArtifactLoadError("column schema is empty", nil)
	}

	index := make(map[string]int, len(names))
	for i, name := range names {
		if strings.TrimSpace(name) == "" {
			return ColumnSchema{}, ArtifactLoadError(fmt.Sprintf("column %d has an empty name", i), nil)
		}
		if _, dup := index[name]; dup {
			return ColumnSchema{}, ArtifactLoadError(fmt.Sprintf("duplicate column %q", name), nil)
		}
		index[name] = i
	}

	for _, col := range ContinuousColumns {
		if _, ok := index[col]; !ok {
			return ColumnSchema{}, ArtifactLoadError(fmt.Sprintf("required column %q missing from schema", col), nil)
		}
	}

	owned := make([]string, len(names))
	copy(owned, names)

	return ColumnSchema{names: owned, index: index}, nil
}

// Len returns the number of columns.
func (s ColumnSchema) Len() int { return len(s.names) }

// Names returns a copy of the column names in order.
func (s ColumnSchema) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Index returns the position of name and whether it exists.
func (s ColumnSchema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Has reports whether the schema contains name.
func (s ColumnSchema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// RegionColumns returns the region one-hot columns present in the schema.
func (s ColumnSchema) RegionColumns() []string {
	var out []string
	for _, name := range s.names {
		if strings.HasPrefix(name, RegionColumnPrefix) {
			out = append(out, name)
		}
	}
	return out
}

// IsZero reports whether the schema was never constructed.
func (s ColumnSchema) IsZero() bool { return len(s.names) == 0 }

// FeatureVector is positionally aligned with a ColumnSchema.
type FeatureVector []float64

// Named returns the vector as a column name to value map, for logging and tests.
func (v FeatureVector) Named(schema ColumnSchema) map[string]float64 {
	out := make(map[string]float64, len(v))
	for i, name := range schema.names {
		if i < len(v) {
			out[name] = v[i]
		}
	}
	return out
}
