package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/domain/event"
	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/infrastructure/kafka"
	pkgkafka "github.com/amed-elmi-dev/medical-insurance-cost-predictor/pkg/kafka"
)

func newTailCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Follow PredictionCompleted events and print them as JSON lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger(cmd, v)

			cfg := pkgkafka.Config{
				Brokers:       v.GetStringSlice("kafka.brokers"),
				ConsumerGroup: v.GetString("kafka.group"),
				ClientID:      "medcostctl",
				TLS:           v.GetBool("kafka.tls"),
				SASLEnabled:   v.GetString("kafka.sasl_mechanism") != "",
				SASLMechanism: v.GetString("kafka.sasl_mechanism"),
				SASLUsername:  v.GetString("kafka.sasl_username"),
				SASLPassword:  v.GetString("kafka.sasl_password"),
			}

			var opts []pkgkafka.ConsumerOption
			if fromStart, _ := cmd.Flags().GetBool("from-beginning"); fromStart {
				opts = append(opts, pkgkafka.FromBeginning())
			}

			printer := &eventPrinter{out: cmd.OutOrStdout()}
			consumer, err := pkgkafka.NewConsumer(cfg, v.GetString("kafka.topic"), printer.Handle, logger, opts...)
			if err != nil {
				return err
			}
			defer consumer.Close()

			return consumer.Start(cmd.Context())
		},
	}

	cmd.Flags().StringSlice("brokers", []string{"localhost:9092"}, "Kafka bootstrap brokers")
	cmd.Flags().String("topic", "medcost.predictions", "topic carrying prediction events")
	cmd.Flags().String("group", "medcostctl-tail", "consumer group id")
	cmd.Flags().Bool("from-beginning", false, "start a new group at the oldest retained event")
	cmd.Flags().Bool("tls", false, "connect to the brokers over TLS")
	cmd.Flags().String("sasl-mechanism", "", "PLAIN, SCRAM-SHA-256 or SCRAM-SHA-512")
	cmd.Flags().String("sasl-username", "", "SASL username")
	cmd.Flags().String("sasl-password", "", "SASL password")

	_ = v.BindPFlag("kafka.brokers", cmd.Flags().Lookup("brokers"))
	_ = v.BindPFlag("kafka.topic", cmd.Flags().Lookup("topic"))
	_ = v.BindPFlag("kafka.group", cmd.Flags().Lookup("group"))
	_ = v.BindPFlag("kafka.tls", cmd.Flags().Lookup("tls"))
	_ = v.BindPFlag("kafka.sasl_mechanism", cmd.Flags().Lookup("sasl-mechanism"))
	_ = v.BindPFlag("kafka.sasl_username", cmd.Flags().Lookup("sasl-username"))
	_ = v.BindPFlag("kafka.sasl_password", cmd.Flags().Lookup("sasl-password"))

	return cmd
}

// eventPrinter writes each PredictionCompleted payload as one compact JSON line.
type eventPrinter struct {
	mu  sync.Mutex
	out io.Writer
}

func (p *eventPrinter) Handle(_ context.Context, msg pkgkafka.Message) error {
	if msg.Headers[kafka.HeaderEventType] != event.EventTypePredictionCompleted {
		return nil
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, msg.Value); err != nil {
		return fmt.Errorf("event at offset %d is not JSON: %w", msg.Offset, err)
	}
	buf.WriteByte('\n')

	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := p.out.Write(buf.Bytes())
	return err
}
