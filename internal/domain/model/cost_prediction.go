package model

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/domain/event"
	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/pkg/events"
)

// costPlaces is the number of decimal places kept on stored costs.
const costPlaces = 2

// CostPrediction is the aggregate root for a single prediction and its inputs.
type CostPrediction struct {
	events.Collector

	predictedAt  time.Time
	modelVersion string
	applicant    Applicant
	cost         decimal.Decimal
	raw          float64
	id           uuid.UUID
}

// NewCostPrediction records a prediction for applicant. The raw cost must be
// finite and positive; the stored amount is rounded to cents.
func NewCostPrediction(applicant Applicant, cost float64, modelVersion string) (*CostPrediction, error) {
	if math.IsNaN(cost) || math.IsInf(cost, 0) || cost <= 0 {
		return nil, fmt.Errorf("cost must be a finite positive number, got %v", cost)
	}
	if modelVersion == "" {
		return nil, fmt.Errorf("model version is required")
	}

	p := &CostPrediction{
		id:           uuid.New(),
		applicant:    applicant,
		raw:          cost,
		cost:         decimal.NewFromFloat(cost).Round(costPlaces),
		modelVersion: modelVersion,
		predictedAt:  time.Now().UTC(),
	}

	p.Record(event.NewPredictionCompleted(
		p.id,
		applicant.Age, applicant.BMI, applicant.Children,
		applicant.Sex, applicant.Smoker, applicant.Region,
		p.cost.StringFixed(costPlaces),
		p.modelVersion,
		p.predictedAt,
	))

	return p, nil
}

// ReconstructPrediction rebuilds a CostPrediction from persisted data (no validation, no events).
// rawCost is the unrounded model output.
func ReconstructPrediction(
	id uuid.UUID,
	applicant Applicant,
	cost decimal.Decimal,
	rawCost float64,
	modelVersion string,
	predictedAt time.Time,
) *CostPrediction {
	return &CostPrediction{
		id:           id,
		applicant:    applicant,
		cost:         cost,
		raw:          rawCost,
		modelVersion: modelVersion,
		predictedAt:  predictedAt,
	}
}

func (p *CostPrediction) ID() uuid.UUID          { return p.id }
func (p *CostPrediction) Applicant() Applicant   { return p.applicant }
func (p *CostPrediction) Cost() decimal.Decimal  { return p.cost }
func (p *CostPrediction) RawCost() float64       { return p.raw }
func (p *CostPrediction) ModelVersion() string   { return p.modelVersion }
func (p *CostPrediction) PredictedAt() time.Time { return p.predictedAt }

// DomainEvents returns all accumulated domain events and clears them.
func (p *CostPrediction) DomainEvents() []events.DomainEvent {
	return p.Drain()
}
