package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/domain/model"
)

// PredictRequest is the input DTO for the PredictCost use case.
type PredictRequest struct {
	Attributes model.RawAttributes
}

// PredictResponse is the output DTO returned after a prediction. Clients that
// only read "prediction" are unaffected by the extra fields.
type PredictResponse struct {
	Prediction   float64   `json:"prediction"`
	PredictionID uuid.UUID `json:"prediction_id"`
	ModelVersion string    `json:"model_version"`
}

// GetPredictionRequest is the input DTO for retrieving a stored prediction.
type GetPredictionRequest struct {
	PredictionID uuid.UUID `json:"prediction_id"`
}

// PredictionRecord is a stored prediction as returned to API clients.
type PredictionRecord struct {
	PredictedAt  time.Time       `json:"predicted_at"`
	Attributes   model.Applicant `json:"attributes"`
	ID           uuid.UUID       `json:"id"`
	Cost         string          `json:"cost"`
	ModelVersion string          `json:"model_version"`
	Prediction   float64         `json:"prediction"`
}

// FromModel maps a domain model to the record DTO.
func FromModel(p *model.CostPrediction) PredictionRecord {
	return PredictionRecord{
		ID:           p.ID(),
		Attributes:   p.Applicant(),
		Cost:         p.Cost().StringFixed(2),
		Prediction:   p.RawCost(),
		ModelVersion: p.ModelVersion(),
		PredictedAt:  p.PredictedAt(),
	}
}
