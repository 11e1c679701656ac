package kafka

import (
	"crypto/tls"
	"errors"
	"fmt"
	"strings"

	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"
)

// Config holds Kafka connection parameters.
type Config struct {
	ConsumerGroup string
	ClientID      string

	// SASL configuration for authentication.
	SASLMechanism string // one of the SASL* names, any case; empty means PLAIN
	SASLUsername  string
	SASLPassword  string

	Brokers []string

	// TLS enables TLS for Kafka connections.
	TLS         bool
	SASLEnabled bool
}

// Validate checks that the config can produce a working client.
func (c Config) Validate() error {
	if len(c.Brokers) == 0 {
		return errors.New("kafka: at least one broker is required")
	}
	if c.SASLEnabled {
		if _, err := c.saslMechanism(); err != nil {
			return err
		}
	}
	return nil
}

func (c Config) tlsConfig() *tls.Config {
	if !c.TLS {
		return nil
	}
	return &tls.Config{MinVersion: tls.VersionTLS12}
}

// Supported SASL mechanism names. Config.SASLMechanism matches them
// case-insensitively.
const (
	SASLPlain       = "PLAIN"
	SASLScramSHA256 = "SCRAM-SHA-256"
	SASLScramSHA512 = "SCRAM-SHA-512"
)

// ValidateSASLMechanism returns an error unless name is empty or a supported
// mechanism.
func ValidateSASLMechanism(name string) error {
	switch normalizeMechanism(name) {
	case "", SASLPlain, SASLScramSHA256, SASLScramSHA512:
		return nil
	default:
		return fmt.Errorf("kafka: unsupported SASL mechanism %q", name)
	}
}

func normalizeMechanism(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// saslMechanism returns the configured mechanism, or nil when SASL is off.
func (c Config) saslMechanism() (sasl.Mechanism, error) {
	if !c.SASLEnabled {
		return nil, nil
	}
	if err := ValidateSASLMechanism(c.SASLMechanism); err != nil {
		return nil, err
	}
	switch normalizeMechanism(c.SASLMechanism) {
	case SASLScramSHA256:
		return scram.Mechanism(scram.SHA256, c.SASLUsername, c.SASLPassword)
	case SASLScramSHA512:
		return scram.Mechanism(scram.SHA512, c.SASLUsername, c.SASLPassword)
	default:
		return &plain.Mechanism{
			Username: c.SASLUsername,
			Password: c.SASLPassword,
		}, nil
	}
}
