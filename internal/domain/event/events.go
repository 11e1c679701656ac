package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/pkg/events"
)

const (
	// EventTypePredictionCompleted is emitted when a cost prediction is produced.
	EventTypePredictionCompleted = "medcost.prediction.completed"

	// AggregateTypeCostPrediction names the aggregate that emits prediction events.
	AggregateTypeCostPrediction = "CostPrediction"
)

// PredictionCompleted is published after a successful prediction. The
// payload carries the validated attributes so consumers can audit inputs.
type PredictionCompleted struct {
	events.BaseEvent `json:"-"`

	PredictionID uuid.UUID `json:"prediction_id"`
	Age          float64   `json:"age"`
	BMI          float64   `json:"bmi"`
	Children     float64   `json:"children"`
	Sex          string    `json:"sex"`
	Smoker       string    `json:"smoker"`
	Region       string    `json:"region"`
	Cost         string    `json:"cost"`
	ModelVersion string    `json:"model_version"`
	PredictedAt  time.Time `json:"predicted_at"`
}

// NewPredictionCompleted builds the event for the prediction with the given id.
func NewPredictionCompleted(
	predictionID uuid.UUID,
	age, bmi, children float64,
	sex, smoker, region string,
	cost string,
	modelVersion string,
	predictedAt time.Time,
) PredictionCompleted {
	return PredictionCompleted{
		BaseEvent:    events.NewBaseEvent(EventTypePredictionCompleted, predictionID, AggregateTypeCostPrediction, predictedAt),
		PredictionID: predictionID,
		Age:          age,
		BMI:          bmi,
		Children:     children,
		Sex:          sex,
		Smoker:       smoker,
		Region:       region,
		Cost:         cost,
		ModelVersion: modelVersion,
		PredictedAt:  predictedAt,
	}
}
