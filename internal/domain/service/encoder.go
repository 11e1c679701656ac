package service

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/domain/model"
	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/domain/port"
)

// CategoryObserver is notified when a categorical value falls outside the
// training vocabulary and silently encodes as the baseline.
type CategoryObserver interface {
	UnknownCategory(field string)
}

// FeatureEncoder turns raw request attributes into the exact vector layout the
// model was trained on: one-hot flags for sex, smoker and region, and the
// continuous columns standardized with the fitted scaler.
//
// The encoder holds only immutable state and is safe for concurrent use.
type FeatureEncoder struct {
	schema     model.ColumnSchema
	scaler     port.Scaler
	logger     *slog.Logger
	observer   CategoryObserver
	continuous []int
	sexCol     int
	smokerCol  int
}

// NewFeatureEncoder binds a column schema to the scaler fitted alongside it.
// The scaler must cover exactly the continuous columns, in order. observer may
// be nil.
func NewFeatureEncoder(schema model.ColumnSchema, scaler port.Scaler, logger *slog.Logger, observer CategoryObserver) (*FeatureEncoder, error) {
	if schema.IsZero() {
		return nil, model.ArtifactLoadError("encoder requires a column schema", nil)
	}
	if scaler == nil {
		return nil, model.ArtifactLoadError("encoder requires a scaler", nil)
	}
	if got := scaler.Features(); !slices.Equal(got, model.ContinuousColumns) {
		return nil, model.ArtifactLoadError(
			fmt.Sprintf("scaler features %v do not match continuous columns %v", got, model.ContinuousColumns), nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	continuous := make([]int, len(model.ContinuousColumns))
	for i, col := range model.ContinuousColumns {
		continuous[i], _ = schema.Index(col)
	}

	return &FeatureEncoder{
		schema:     schema,
		scaler:     scaler,
		logger:     logger,
		observer:   observer,
		continuous: continuous,
		sexCol:     indexOrMissing(schema, model.ColumnSexMale),
		smokerCol:  indexOrMissing(schema, model.ColumnSmokerYes),
	}, nil
}

func indexOrMissing(schema model.ColumnSchema, name string) int {
	if i, ok := schema.Index(name); ok {
		return i
	}
	return -1
}

// Schema returns the column schema the encoder emits.
func (e *FeatureEncoder) Schema() model.ColumnSchema {
	return e.schema
}

// Encode validates attrs and encodes them. On error no vector is returned.
func (e *FeatureEncoder) Encode(attrs model.RawAttributes) (model.FeatureVector, error) {
	applicant, err := model.ParseApplicant(attrs)
	if err != nil {
		return nil, err
	}
	return e.EncodeApplicant(applicant)
}

// EncodeApplicant encodes already validated attributes.
func (e *FeatureEncoder) EncodeApplicant(a model.Applicant) (model.FeatureVector, error) {
	vec := make(model.FeatureVector, e.schema.Len())

	// Exact, case-sensitive matches; everything else stays at the baseline.
	if a.Sex == "male" && e.sexCol >= 0 {
		vec[e.sexCol] = 1
	}
	if a.Smoker == "yes" && e.smokerCol >= 0 {
		vec[e.smokerCol] = 1
	}
	e.checkKnown(model.AttrSex, a.Sex, slices.Contains(model.KnownSexes, a.Sex))
	e.checkKnown(model.AttrSmoker, a.Smoker, slices.Contains(model.KnownSmokers, a.Smoker))

	region := strings.ToLower(a.Region)
	if i, ok := e.schema.Index(model.RegionColumnPrefix + region); ok {
		vec[i] = 1
	} else {
		e.checkKnown(model.AttrRegion, a.Region, region == model.BaselineRegion)
	}

	scaled, err := e.scaler.Transform([]float64{a.Age, a.BMI, a.Children})
	if err != nil {
		return nil, model.InferenceError("scaling continuous columns", err)
	}
	for i, col := range e.continuous {
		vec[col] = scaled[i]
	}

	return vec, nil
}

func (e *FeatureEncoder) checkKnown(field, value string, known bool) {
	if known {
		return
	}
	e.logger.Debug("unknown categorical value encoded as baseline",
		"field", field,
		"value", value,
	)
	if e.observer != nil {
		e.observer.UnknownCategory(field)
	}
}
