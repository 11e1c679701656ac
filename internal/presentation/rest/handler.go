package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/application/dto"
	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/application/usecase"
	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/domain/model"
)

// WelcomeMessage is returned by the root endpoint.
const WelcomeMessage = "Medical Cost Prediction API"

var errNotObject = errors.New("body is not a single JSON object")

// CostPredictor runs a single prediction.
type CostPredictor interface {
	Execute(ctx context.Context, req dto.PredictRequest) (dto.PredictResponse, error)
}

// PredictionReader loads a stored prediction.
type PredictionReader interface {
	Execute(ctx context.Context, req dto.GetPredictionRequest) (dto.PredictionRecord, error)
}

// PredictionHandler serves the prediction API.
type PredictionHandler struct {
	predict      CostPredictor
	reader       PredictionReader
	logger       *slog.Logger
	maxBodyBytes int64
}

// NewPredictionHandler creates a handler. maxBodyBytes caps the request body
// of POST /predict.
func NewPredictionHandler(predict CostPredictor, reader PredictionReader, maxBodyBytes int64, logger *slog.Logger) *PredictionHandler {
	return &PredictionHandler{
		predict:      predict,
		reader:       reader,
		logger:       logger,
		maxBodyBytes: maxBodyBytes,
	}
}

// RegisterRoutes registers the API endpoints on the provided ServeMux.
func (h *PredictionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.Root)
	mux.HandleFunc("POST /predict", h.Predict)
	mux.HandleFunc("GET /predictions/{id}", h.GetPrediction)
}

// Root answers with a fixed welcome message.
func (h *PredictionHandler) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": WelcomeMessage})
}

// Predict decodes a JSON object of applicant attributes and returns the
// predicted annual cost.
func (h *PredictionHandler) Predict(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var attrs map[string]any
	err := dec.Decode(&attrs)
	if err == nil && attrs == nil {
		err = errNotObject
	}
	if err == nil {
		// Exactly one value: anything after it but whitespace is rejected.
		if extra := dec.Decode(&struct{}{}); !errors.Is(extra, io.EOF) {
			err = extra
			if err == nil {
				err = errNotObject
			}
		}
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "request body must be a single JSON object")
		return
	}

	resp, err := h.predict.Execute(r.Context(), dto.PredictRequest{Attributes: model.RawAttributes(attrs)})
	if err != nil {
		h.predictError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *PredictionHandler) predictError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, model.ErrInference):
		h.logger.ErrorContext(r.Context(), "prediction failed",
			slog.String("request_id", RequestIDFromContext(r.Context())),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "prediction failed")
	default:
		h.logger.ErrorContext(r.Context(), "unexpected prediction error",
			slog.String("request_id", RequestIDFromContext(r.Context())),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// GetPrediction returns a stored prediction record by id.
func (h *PredictionHandler) GetPrediction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid prediction id")
		return
	}

	record, err := h.reader.Execute(r.Context(), dto.GetPredictionRequest{PredictionID: id})
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, record)
	case errors.Is(err, usecase.ErrAuditStoreDisabled):
		writeError(w, http.StatusServiceUnavailable, "prediction store is not configured")
	case errors.Is(err, model.ErrPredictionNotFound):
		writeError(w, http.StatusNotFound, "prediction not found")
	default:
		h.logger.ErrorContext(r.Context(), "failed to load prediction",
			slog.String("prediction_id", id.String()),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
