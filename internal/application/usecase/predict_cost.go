package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/application/dto"
	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/domain/model"
	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/domain/port"
	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/domain/service"
	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/pkg/observability"
)

const tracerName = "github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/application/usecase"

// Audit sinks reported to PredictionObserver.AuditFailure.
const (
	SinkStore     = "store"
	SinkPublisher = "publisher"
)

// PredictionObserver receives per-prediction measurements.
type PredictionObserver interface {
	ObservePrediction(outcome string, elapsed time.Duration)
	AuditFailure(sink string)
}

// PredictCost is the use case for turning request attributes into a cost.
type PredictCost struct {
	encoder      *service.FeatureEncoder
	predictor    *service.Predictor
	repo         port.PredictionRepository
	publisher    port.EventPublisher
	observer     PredictionObserver
	logger       *slog.Logger
	tracer       trace.Tracer
	modelVersion string
}

// NewPredictCost creates a new PredictCost use case. repo, publisher and
// observer are optional; a nil repo or publisher disables that audit sink.
func NewPredictCost(
	encoder *service.FeatureEncoder,
	predictor *service.Predictor,
	modelVersion string,
	repo port.PredictionRepository,
	publisher port.EventPublisher,
	observer PredictionObserver,
	logger *slog.Logger,
) *PredictCost {
	return &PredictCost{
		encoder:      encoder,
		predictor:    predictor,
		repo:         repo,
		publisher:    publisher,
		observer:     observer,
		logger:       logger,
		tracer:       otel.Tracer(tracerName),
		modelVersion: modelVersion,
	}
}

// Execute validates and encodes the attributes, runs the model, then records
// the prediction. Audit failures are logged and never fail the request.
func (uc *PredictCost) Execute(ctx context.Context, req dto.PredictRequest) (dto.PredictResponse, error) {
	start := time.Now()
	ctx, span := uc.tracer.Start(ctx, "PredictCost")
	defer span.End()

	resp, err := uc.predict(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if uc.observer != nil {
		uc.observer.ObservePrediction(outcome(err), time.Since(start))
	}
	return resp, err
}

func (uc *PredictCost) predict(ctx context.Context, req dto.PredictRequest) (dto.PredictResponse, error) {
	// 1. Validate and encode.
	_, encodeSpan := uc.tracer.Start(ctx, "FeatureEncoder.Encode")
	applicant, err := model.ParseApplicant(req.Attributes)
	var vec model.FeatureVector
	if err == nil {
		vec, err = uc.encoder.EncodeApplicant(applicant)
	}
	encodeSpan.End()
	if err != nil {
		return dto.PredictResponse{}, fmt.Errorf("failed to encode attributes: %w", err)
	}

	// 2. Run the model.
	predictCtx, predictSpan := uc.tracer.Start(ctx, "Predictor.Predict")
	cost, err := uc.predictor.Predict(predictCtx, vec)
	predictSpan.End()
	if err != nil {
		return dto.PredictResponse{}, fmt.Errorf("failed to predict cost: %w", err)
	}

	// 3. Record the prediction.
	prediction, err := model.NewCostPrediction(applicant, cost, uc.modelVersion)
	if err != nil {
		return dto.PredictResponse{}, fmt.Errorf("failed to create prediction: %w", err)
	}
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("prediction.id", prediction.ID().String()),
		attribute.String("model.version", uc.modelVersion),
	)

	uc.audit(ctx, prediction)

	return dto.PredictResponse{
		Prediction:   cost,
		PredictionID: prediction.ID(),
		ModelVersion: uc.modelVersion,
	}, nil
}

// audit persists the prediction and publishes its events, best effort.
func (uc *PredictCost) audit(ctx context.Context, prediction *model.CostPrediction) {
	if uc.repo != nil {
		if err := uc.repo.Save(ctx, prediction); err != nil {
			uc.auditFailed(SinkStore, prediction, err)
		}
	}

	events := prediction.DomainEvents()
	if uc.publisher != nil && len(events) > 0 {
		if err := uc.publisher.Publish(ctx, events...); err != nil {
			uc.auditFailed(SinkPublisher, prediction, err)
		}
	}
}

func (uc *PredictCost) auditFailed(sink string, prediction *model.CostPrediction, err error) {
	uc.logger.Warn("failed to record prediction",
		"sink", sink,
		"prediction_id", prediction.ID(),
		"error", err,
	)
	if uc.observer != nil {
		uc.observer.AuditFailure(sink)
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return observability.OutcomeSuccess
	case errors.Is(err, model.ErrValidation):
		return observability.OutcomeValidationError
	case errors.Is(err, model.ErrInference):
		return observability.OutcomeInferenceError
	default:
		return observability.OutcomeError
	}
}
