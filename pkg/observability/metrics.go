package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	ServiceName string
	// Registerer receives the OTel exporter's collector. Defaults to the
	// Prometheus default registry, which the returned handler serves.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// InitMetrics initializes the Prometheus-backed OTel MeterProvider, installs it
// globally, and returns the handler for the /metrics endpoint.
func InitMetrics(cfg MetricsConfig) (*sdkmetric.MeterProvider, http.Handler, error) {
	opts := []promexporter.Option{}
	if cfg.Registerer != nil {
		opts = append(opts, promexporter.WithRegisterer(cfg.Registerer))
	}
	exporter, err := promexporter.New(opts...)
	if err != nil {
		return nil, nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName))),
	)
	otel.SetMeterProvider(provider)

	handler := promhttp.Handler()
	if cfg.Gatherer != nil {
		handler = promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})
	}

	return provider, handler, nil
}

// Prediction outcomes recorded by PredictionMetrics.
const (
	OutcomeSuccess         = "success"
	OutcomeValidationError = "validation_error"
	OutcomeInferenceError  = "inference_error"
	OutcomeError           = "error"
)

// PredictionMetrics holds the service's Prometheus collectors.
type PredictionMetrics struct {
	predictions     *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	unknownCategory *prometheus.CounterVec
	auditFailures   *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
}

// NewPredictionMetrics creates the collectors and registers them with reg.
func NewPredictionMetrics(reg prometheus.Registerer) (*PredictionMetrics, error) {
	m := &PredictionMetrics{
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "medcost_predictions_total",
			Help: "Prediction requests by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "medcost_prediction_duration_seconds",
			Help:    "Time spent encoding and predicting.",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		}, []string{"outcome"}),
		unknownCategory: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "medcost_unknown_category_total",
			Help: "Categorical values outside the training vocabulary, encoded as baseline.",
		}, []string{"field"}),
		auditFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "medcost_audit_failures_total",
			Help: "Best-effort audit writes that failed, by sink.",
		}, []string{"sink"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "medcost_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"method", "route", "code"}),
	}

	for _, c := range []prometheus.Collector{m.predictions, m.duration, m.unknownCategory, m.auditFailures, m.httpRequests} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObservePrediction records one prediction attempt.
func (m *PredictionMetrics) ObservePrediction(outcome string, elapsed time.Duration) {
	m.predictions.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// UnknownCategory counts a categorical value that fell through to baseline.
func (m *PredictionMetrics) UnknownCategory(field string) {
	m.unknownCategory.WithLabelValues(field).Inc()
}

// AuditFailure counts a failed write to sink ("store" or "publisher").
func (m *PredictionMetrics) AuditFailure(sink string) {
	m.auditFailures.WithLabelValues(sink).Inc()
}

// ObserveHTTP counts a served request.
func (m *PredictionMetrics) ObserveHTTP(method, route, code string) {
	m.httpRequests.WithLabelValues(method, route, code).Inc()
}
