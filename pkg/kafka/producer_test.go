package kafka

import (
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducer(t *testing.T) {
	p, err := NewProducer(Config{
		Brokers:  []string{"localhost:9092", "localhost:9093"},
		ClientID: "medcost",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"localhost:9092", "localhost:9093"}, p.brokers)
	assert.Empty(t, p.writers)
	assert.Equal(t, "medcost", p.transport.ClientID)
	assert.Nil(t, p.transport.TLS)
	assert.Nil(t, p.transport.SASL)
}

func TestNewProducer_TLSAndSASL(t *testing.T) {
	p, err := NewProducer(Config{
		Brokers:       []string{"kafka:9093"},
		TLS:           true,
		SASLEnabled:   true,
		SASLMechanism: "SCRAM-SHA-512",
		SASLUsername:  "svc",
		SASLPassword:  "secret",
	})
	require.NoError(t, err)

	require.NotNil(t, p.transport.TLS)
	require.NotNil(t, p.transport.SASL)
	assert.Equal(t, "SCRAM-SHA-512", p.transport.SASL.Name())
}

func TestSASLMechanism_CaseInsensitive(t *testing.T) {
	tests := []struct {
		mechanism string
		wantName  string
	}{
		{mechanism: "", wantName: "PLAIN"},
		{mechanism: "plain", wantName: "PLAIN"},
		{mechanism: "PLAIN", wantName: "PLAIN"},
		{mechanism: "scram-sha-256", wantName: "SCRAM-SHA-256"},
		{mechanism: " Scram-Sha-512 ", wantName: "SCRAM-SHA-512"},
	}

	for _, tt := range tests {
		t.Run(tt.mechanism, func(t *testing.T) {
			require.NoError(t, ValidateSASLMechanism(tt.mechanism))

			cfg := Config{
				Brokers:       []string{"kafka:9092"},
				SASLEnabled:   true,
				SASLMechanism: tt.mechanism,
				SASLUsername:  "svc",
				SASLPassword:  "secret",
			}
			mechanism, err := cfg.saslMechanism()
			require.NoError(t, err)
			require.NotNil(t, mechanism)
			assert.Equal(t, tt.wantName, mechanism.Name())
		})
	}

	assert.ErrorContains(t, ValidateSASLMechanism("gssapi"), `unsupported SASL mechanism "gssapi"`)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "valid", cfg: Config{Brokers: []string{"kafka:9092"}}},
		{name: "no brokers", cfg: Config{}, wantErr: "at least one broker"},
		{name: "plain sasl", cfg: Config{Brokers: []string{"kafka:9092"}, SASLEnabled: true}},
		{
			name:    "unknown sasl mechanism",
			cfg:     Config{Brokers: []string{"kafka:9092"}, SASLEnabled: true, SASLMechanism: "GSSAPI"},
			wantErr: `unsupported SASL mechanism "GSSAPI"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestMessageConversion(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	msg := Message{
		Key:   []byte("prediction-123"),
		Value: []byte(`{"cost":"100.00"}`),
		Time:  at,
		Headers: map[string]string{
			"event_type": "medcost.prediction.completed",
		},
	}

	km := toKafkaMessage(msg)
	assert.Equal(t, msg.Key, km.Key)
	assert.Equal(t, msg.Value, km.Value)
	require.Len(t, km.Headers, 1)
	assert.Equal(t, kafkago.Header{Key: "event_type", Value: []byte("medcost.prediction.completed")}, km.Headers[0])

	km.Topic = "medcost.predictions"
	km.Partition = 2
	km.Offset = 41

	back := fromKafkaMessage(km)
	assert.Equal(t, "medcost.predictions", back.Topic)
	assert.Equal(t, 2, back.Partition)
	assert.Equal(t, int64(41), back.Offset)
	assert.Equal(t, msg.Headers, back.Headers)
	assert.Equal(t, at, back.Time)
}

func TestGetOrCreateWriter(t *testing.T) {
	p, err := NewProducer(Config{Brokers: []string{"localhost:9092"}})
	require.NoError(t, err)

	w1 := p.getOrCreateWriter("topic-a")
	w2 := p.getOrCreateWriter("topic-a")
	w3 := p.getOrCreateWriter("topic-b")

	assert.Same(t, w1, w2, "same topic reuses the writer")
	assert.NotSame(t, w1, w3)
	assert.Same(t, p.transport, w1.Transport)
	assert.Len(t, p.writers, 2)
}

func TestProducerClose(t *testing.T) {
	p, err := NewProducer(Config{Brokers: []string{"localhost:9092"}})
	require.NoError(t, err)

	_ = p.getOrCreateWriter("topic-a")
	_ = p.getOrCreateWriter("topic-b")

	require.NoError(t, p.Close())
	assert.Empty(t, p.writers)
}

func TestNewConsumer_RequiresGroup(t *testing.T) {
	_, err := NewConsumer(Config{Brokers: []string{"localhost:9092"}}, "topic", nil, nil)
	assert.ErrorContains(t, err, "consumer group is required")
}
