package port

import (
	"context"

	"github.com/google/uuid"

	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/domain/model"
	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/pkg/events"
)

// PredictionRepository defines the persistence port for the prediction audit trail.
type PredictionRepository interface {
	// Save persists a prediction record.
	Save(ctx context.Context, prediction *model.CostPrediction) error

	// FindByID retrieves a prediction by its identifier. Returns
	// model.ErrPredictionNotFound when no record exists.
	FindByID(ctx context.Context, id uuid.UUID) (*model.CostPrediction, error)
}

// EventPublisher defines the port for publishing domain events.
type EventPublisher interface {
	// Publish sends one or more domain events to the messaging infrastructure.
	Publish(ctx context.Context, evts ...events.DomainEvent) error
}
