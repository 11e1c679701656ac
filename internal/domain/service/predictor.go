package service

import (
	"context"
	"fmt"
	"math"

	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/domain/model"
	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/domain/port"
)

// Predictor runs the fitted regressor and maps its log-space output back to a
// cost.
type Predictor struct {
	regressor port.Regressor
}

// NewPredictor creates a Predictor around a fitted regressor.
func NewPredictor(regressor port.Regressor) *Predictor {
	return &Predictor{regressor: regressor}
}

// Validate checks that the regressor accepts vectors of the schema's width.
func (p *Predictor) Validate(schema model.ColumnSchema) error {
	if p.regressor == nil {
		return model.InferenceError("no regressor loaded", nil)
	}
	if n := p.regressor.NumFeatures(); n != schema.Len() {
		return model.InferenceError(
			fmt.Sprintf("model expects %d features, column schema has %d", n, schema.Len()), nil)
	}
	return nil
}

// AttrOutOfRange is the ValidationError field used when the applicant's
// attributes drive the model outside a representable cost.
const AttrOutOfRange = "attributes"

// Predict returns exp(model(vec)). The result is always finite and positive.
// Shape and regressor faults are InferenceErrors; a correctly shaped vector
// whose output has no finite positive cost is a ValidationError, since only
// the request values can push it there.
func (p *Predictor) Predict(ctx context.Context, vec model.FeatureVector) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if p.regressor == nil {
		return 0, model.InferenceError("no regressor loaded", nil)
	}
	if n := p.regressor.NumFeatures(); len(vec) != n {
		return 0, model.InferenceError(
			fmt.Sprintf("vector has %d features, model expects %d", len(vec), n), nil)
	}

	logCost, err := p.regressor.Predict(vec)
	if err != nil {
		return 0, model.InferenceError("regressor failed", err)
	}

	cost := math.Exp(logCost)
	if math.IsNaN(cost) || math.IsInf(cost, 0) || cost <= 0 {
		return 0, model.NewValidationError(AttrOutOfRange, "outside the range the model can price")
	}
	return cost, nil
}
