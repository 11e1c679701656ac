package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/application/dto"
	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/domain/port"
)

// ErrAuditStoreDisabled is returned when no prediction store is configured.
var ErrAuditStoreDisabled = errors.New("prediction audit store is not configured")

// GetPrediction is the use case for retrieving a stored prediction.
type GetPrediction struct {
	repo port.PredictionRepository
}

// NewGetPrediction creates a new GetPrediction use case. repo may be nil.
func NewGetPrediction(repo port.PredictionRepository) *GetPrediction {
	return &GetPrediction{repo: repo}
}

// Execute retrieves a prediction by ID.
func (uc *GetPrediction) Execute(ctx context.Context, req dto.GetPredictionRequest) (dto.PredictionRecord, error) {
	if uc.repo == nil {
		return dto.PredictionRecord{}, ErrAuditStoreDisabled
	}

	prediction, err := uc.repo.FindByID(ctx, req.PredictionID)
	if err != nil {
		return dto.PredictionRecord{}, fmt.Errorf("failed to find prediction: %w", err)
	}

	return dto.FromModel(prediction), nil
}
