package rest

import (
	"log/slog"
	"net/http"
	"time"
)

// RouteRegistrar registers its endpoints on a ServeMux.
type RouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux)
}

// RouterConfig holds the cross-cutting HTTP settings.
type RouterConfig struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
	// RateLimitRPS is the per-client request rate; 0 disables limiting.
	RateLimitRPS int
	// TrustForwardedFor keys the rate limit on X-Forwarded-For.
	TrustForwardedFor bool
	// MetricsHandler is mounted on GET /metrics when set.
	MetricsHandler http.Handler
}

// NewRouter mounts every registrar and wraps the mux with the middleware
// chain. Outermost first: recover, request id, logging, CORS, rate limit,
// timeout.
func NewRouter(cfg RouterConfig, logger *slog.Logger, observer HTTPObserver, registrars ...RouteRegistrar) http.Handler {
	mux := http.NewServeMux()
	for _, r := range registrars {
		r.RegisterRoutes(mux)
	}
	if cfg.MetricsHandler != nil {
		mux.Handle("GET /metrics", cfg.MetricsHandler)
	}

	var h http.Handler = mux
	if cfg.RequestTimeout > 0 {
		h = TimeoutMiddleware(cfg.RequestTimeout)(h)
	}
	if cfg.RateLimitRPS > 0 {
		h = RateLimitMiddleware(NewClientLimiter(cfg.RateLimitRPS), cfg.TrustForwardedFor)(h)
	}
	h = CORSMiddleware(cfg.AllowedOrigins)(h)
	h = LoggingMiddleware(logger, observer, routeLabel(mux))(h)
	h = RequestIDMiddleware(h)
	return RecoverMiddleware(logger)(h)
}

// routeLabel resolves the mux pattern for a request, keeping metric labels
// bounded by the number of registered routes.
func routeLabel(mux *http.ServeMux) func(*http.Request) string {
	return func(r *http.Request) string {
		if _, pattern := mux.Handler(r); pattern != "" {
			return pattern
		}
		return "unmatched"
	}
}
