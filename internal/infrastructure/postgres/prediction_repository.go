package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/domain/model"
	pgutil "github.com/amed-elmi-dev/medical-insurance-cost-predictor/pkg/postgres"
)

// PredictionRepository implements port.PredictionRepository using PostgreSQL.
type PredictionRepository struct {
	db pgutil.Querier
}

// NewPredictionRepository creates a new PostgreSQL-backed prediction repository.
func NewPredictionRepository(db pgutil.Querier) *PredictionRepository {
	return &PredictionRepository{db: db}
}

// Save inserts a prediction. Records are immutable; saving the same ID twice
// is a no-op.
func (r *PredictionRepository) Save(ctx context.Context, p *model.CostPrediction) error {
	query := `
		INSERT INTO predictions (
			id, age, bmi, children, sex, smoker, region,
			cost, raw_cost, model_version, predicted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`

	a := p.Applicant()
	_, err := r.db.Exec(ctx, query,
		p.ID(),
		a.Age, a.BMI, a.Children,
		a.Sex, a.Smoker, a.Region,
		p.Cost(),
		p.RawCost(),
		p.ModelVersion(),
		p.PredictedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to save prediction: %w", err)
	}
	return nil
}

// FindByID retrieves a prediction by its identifier.
func (r *PredictionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.CostPrediction, error) {
	query := `
		SELECT id, age, bmi, children, sex, smoker, region,
			cost, raw_cost, model_version, predicted_at
		FROM predictions
		WHERE id = $1
	`

	var (
		predictionID uuid.UUID
		applicant    model.Applicant
		cost         decimal.Decimal
		rawCost      float64
		modelVersion string
		predictedAt  time.Time
	)

	err := r.db.QueryRow(ctx, query, id).Scan(
		&predictionID,
		&applicant.Age, &applicant.BMI, &applicant.Children,
		&applicant.Sex, &applicant.Smoker, &applicant.Region,
		&cost, &rawCost, &modelVersion, &predictedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("prediction %s: %w", id, model.ErrPredictionNotFound)
		}
		return nil, fmt.Errorf("failed to scan prediction: %w", err)
	}

	return model.ReconstructPrediction(predictionID, applicant, cost, rawCost, modelVersion, predictedAt.UTC()), nil
}
