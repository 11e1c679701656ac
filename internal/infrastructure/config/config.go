package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/pkg/kafka"
)

// Config holds all configuration for the prediction service.
type Config struct {
	// HTTP API port
	HTTPPort int
	// gRPC health port
	GRPCPort int
	// Service name for observability
	ServiceName string
	Environment string
	LogLevel    string
	LogFormat   string

	// Directory holding the model artifact set: a local path or s3://bucket/prefix.
	ArtifactURI string
	AWSRegion   string

	HTTP      HTTPConfig
	GRPC      GRPCConfig
	Database  DatabaseConfig
	Kafka     KafkaConfig
	Telemetry TelemetryConfig
}

// HTTPConfig holds request handling limits and CORS settings.
type HTTPConfig struct {
	AllowedOrigins  []string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
	// RateLimitRPS caps requests per second for each client; 0 disables it.
	RateLimitRPS int
	// TrustForwardedFor keys the rate limit on X-Forwarded-For instead of
	// the peer address.
	TrustForwardedFor bool
}

// GRPCConfig holds TLS and reflection settings for the health server.
type GRPCConfig struct {
	TLSCertFile string
	TLSKeyFile  string
	Reflection  bool
}

// TLSEnabled reports whether both certificate and key are configured.
func (c GRPCConfig) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// DatabaseConfig holds the optional prediction audit store settings.
type DatabaseConfig struct {
	URL           string
	MigrationsDir string
	MaxConns      int
}

// Enabled reports whether an audit store is configured.
func (c DatabaseConfig) Enabled() bool { return c.URL != "" }

// KafkaConfig holds the optional event publishing settings.
type KafkaConfig struct {
	Brokers       []string
	Topic         string
	TLS           bool
	SASLMechanism string
	SASLUsername  string
	SASLPassword  string
}

// Enabled reports whether event publishing is configured.
func (c KafkaConfig) Enabled() bool { return len(c.Brokers) > 0 }

// TelemetryConfig holds tracing exporter settings.
type TelemetryConfig struct {
	OTLPEndpoint string
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	return Config{
		HTTPPort:    getEnvInt("HTTP_PORT", 8000),
		GRPCPort:    getEnvInt("GRPC_PORT", 9000),
		ServiceName: getEnv("SERVICE_NAME", "medcost-predictor"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		ArtifactURI: getEnv("ARTIFACT_URI", "./models"),
		AWSRegion:   getEnv("AWS_REGION", ""),
		HTTP: HTTPConfig{
			AllowedOrigins:    getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
			RequestTimeout:    getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
			ShutdownTimeout:   getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
			MaxBodyBytes:      int64(getEnvInt("MAX_BODY_BYTES", 64<<10)),
			RateLimitRPS:      getEnvInt("RATE_LIMIT_RPS", 0),
			TrustForwardedFor: getEnv("TRUST_FORWARDED_FOR", "") == "true",
		},
		GRPC: GRPCConfig{
			TLSCertFile: getEnv("GRPC_TLS_CERT_FILE", ""),
			TLSKeyFile:  getEnv("GRPC_TLS_KEY_FILE", ""),
			Reflection:  getEnv("GRPC_REFLECTION", "") == "true",
		},
		Database: DatabaseConfig{
			URL:           getEnv("DATABASE_URL", ""),
			MigrationsDir: getEnv("MIGRATIONS_DIR", "internal/infrastructure/postgres/migrations"),
			MaxConns:      getEnvInt("DB_MAX_CONNS", 10),
		},
		Kafka: KafkaConfig{
			Brokers:       getEnvList("KAFKA_BROKERS", nil),
			Topic:         getEnv("KAFKA_TOPIC", "medcost.predictions"),
			TLS:           getEnv("KAFKA_TLS", "") == "true",
			SASLMechanism: getEnv("KAFKA_SASL_MECHANISM", ""),
			SASLUsername:  getEnv("KAFKA_SASL_USERNAME", ""),
			SASLPassword:  getEnv("KAFKA_SASL_PASSWORD", ""),
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		},
	}
}

// Validate checks for values the service cannot start with.
func (c Config) Validate() error {
	var errs []error

	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("HTTP_PORT out of range: %d", c.HTTPPort))
	}
	if c.GRPCPort <= 0 || c.GRPCPort > 65535 {
		errs = append(errs, fmt.Errorf("GRPC_PORT out of range: %d", c.GRPCPort))
	}
	if c.HTTPPort == c.GRPCPort {
		errs = append(errs, fmt.Errorf("HTTP_PORT and GRPC_PORT must differ, both are %d", c.HTTPPort))
	}
	if c.ArtifactURI == "" {
		errs = append(errs, errors.New("ARTIFACT_URI is required"))
	}
	if c.HTTP.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("MAX_BODY_BYTES must be positive"))
	}
	if c.HTTP.RateLimitRPS < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS must not be negative"))
	}
	if len(c.HTTP.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS must not be empty"))
	}
	if (c.GRPC.TLSCertFile == "") != (c.GRPC.TLSKeyFile == "") {
		errs = append(errs, errors.New("GRPC_TLS_CERT_FILE and GRPC_TLS_KEY_FILE must be set together"))
	}
	if c.Kafka.Enabled() && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set"))
	}
	if err := kafka.ValidateSASLMechanism(c.Kafka.SASLMechanism); err != nil {
		errs = append(errs, fmt.Errorf("KAFKA_SASL_MECHANISM: %w", err))
	}

	return errors.Join(errs...)
}

// HTTPAddress returns the full HTTP listen address.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// GRPCAddress returns the full gRPC listen address.
func (c Config) GRPCAddress() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// getEnvList splits a comma-separated value, dropping blank entries.
func getEnvList(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
