package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/application/dto"
	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/application/usecase"
	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/domain/model"
)

// --- Mock implementations ---

type mockPredictor struct {
	got     dto.PredictRequest
	resp    dto.PredictResponse
	err     error
	invoked bool
}

func (m *mockPredictor) Execute(_ context.Context, req dto.PredictRequest) (dto.PredictResponse, error) {
	m.invoked = true
	m.got = req
	return m.resp, m.err
}

type mockReader struct {
	record dto.PredictionRecord
	err    error
}

func (m *mockReader) Execute(_ context.Context, _ dto.GetPredictionRequest) (dto.PredictionRecord, error) {
	return m.record, m.err
}

// --- Helpers ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMux(predictor CostPredictor, reader PredictionReader) *http.ServeMux {
	mux := http.NewServeMux()
	NewPredictionHandler(predictor, reader, 1024, discardLogger()).RegisterRoutes(mux)
	return mux
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

// --- Tests ---

func TestRoot(t *testing.T) {
	rec := httptest.NewRecorder()
	newMux(&mockPredictor{}, &mockReader{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, map[string]any{"message": "Medical Cost Prediction API"}, decodeBody(t, rec))
}

func TestRoot_OnlyExactPath(t *testing.T) {
	rec := httptest.NewRecorder()
	newMux(&mockPredictor{}, &mockReader{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPredict(t *testing.T) {
	id := uuid.New()
	predictor := &mockPredictor{resp: dto.PredictResponse{Prediction: 16884.92, PredictionID: id, ModelVersion: "v1"}}

	body := `{"age":19,"bmi":27.9,"children":0,"sex":"female","smoker":"yes","region":"southwest"}`
	rec := httptest.NewRecorder()
	newMux(predictor, &mockReader{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody(t, rec)
	assert.InDelta(t, 16884.92, got["prediction"], 1e-9)
	assert.Equal(t, id.String(), got["prediction_id"])
	assert.Equal(t, "v1", got["model_version"])

	assert.Equal(t, json.Number("19"), predictor.got.Attributes["age"])
	assert.Equal(t, "southwest", predictor.got.Attributes["region"])
}

func TestPredict_BadRequests(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{name: "malformed json", body: `{"age":`, wantCode: http.StatusBadRequest},
		{name: "array body", body: `[1,2,3]`, wantCode: http.StatusBadRequest},
		{name: "null body", body: `null`, wantCode: http.StatusBadRequest},
		{name: "empty body", body: ``, wantCode: http.StatusBadRequest},
		{name: "trailing garbage", body: `{"age":19} garbage`, wantCode: http.StatusBadRequest},
		{name: "second object", body: `{"age":19}{"age":20}`, wantCode: http.StatusBadRequest},
		{name: "trailing array", body: `{"age":19} [1]`, wantCode: http.StatusBadRequest},
		{name: "too large", body: `{"region":"` + strings.Repeat("x", 2048) + `"}`, wantCode: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			predictor := &mockPredictor{}
			rec := httptest.NewRecorder()
			newMux(predictor, &mockReader{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.NotEmpty(t, decodeBody(t, rec)["error"])
			assert.False(t, predictor.invoked)
		})
	}
}

func TestPredict_TrailingWhitespaceAccepted(t *testing.T) {
	predictor := &mockPredictor{resp: dto.PredictResponse{Prediction: 1}}
	rec := httptest.NewRecorder()
	newMux(predictor, &mockReader{}).ServeHTTP(rec,
		httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader("{\"age\":19}\n\t ")))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, predictor.invoked)
}

func TestPredict_ErrorMapping(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCode  int
		wantError string
	}{
		{
			name:      "validation",
			err:       fmt.Errorf("failed to encode attributes: %w", model.NewValidationError("age", "is required")),
			wantCode:  http.StatusBadRequest,
			wantError: "invalid age: is required",
		},
		{
			name:      "inference",
			err:       fmt.Errorf("failed to predict cost: %w", model.InferenceError("vector has 7 features, model expects 8", nil)),
			wantCode:  http.StatusInternalServerError,
			wantError: "prediction failed",
		},
		{
			name:      "unexpected",
			err:       context.DeadlineExceeded,
			wantCode:  http.StatusInternalServerError,
			wantError: "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(`{"age":19}`))
			newMux(&mockPredictor{err: tt.err}, &mockReader{}).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, tt.wantError, body["error"])
			if tt.wantCode == http.StatusInternalServerError {
				assert.NotContains(t, rec.Body.String(), "features")
			}
		})
	}
}

func TestGetPrediction(t *testing.T) {
	id := uuid.New()
	record := dto.PredictionRecord{
		ID:           id,
		Cost:         "16884.92",
		Prediction:   16884.924,
		ModelVersion: "v1",
		PredictedAt:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name     string
		path     string
		reader   *mockReader
		wantCode int
	}{
		{name: "found", path: "/predictions/" + id.String(), reader: &mockReader{record: record}, wantCode: http.StatusOK},
		{name: "bad id", path: "/predictions/not-a-uuid", reader: &mockReader{}, wantCode: http.StatusBadRequest},
		{
			name:     "not found",
			path:     "/predictions/" + id.String(),
			reader:   &mockReader{err: fmt.Errorf("failed to find prediction: %w", model.ErrPredictionNotFound)},
			wantCode: http.StatusNotFound,
		},
		{name: "store disabled", path: "/predictions/" + id.String(), reader: &mockReader{err: usecase.ErrAuditStoreDisabled}, wantCode: http.StatusServiceUnavailable},
		{name: "store failure", path: "/predictions/" + id.String(), reader: &mockReader{err: fmt.Errorf("connection reset")}, wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newMux(&mockPredictor{}, tt.reader).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			body := decodeBody(t, rec)
			if tt.wantCode == http.StatusOK {
				assert.Equal(t, id.String(), body["id"])
				assert.Equal(t, "16884.92", body["cost"])
				return
			}
			assert.NotEmpty(t, body["error"])
		})
	}
}
