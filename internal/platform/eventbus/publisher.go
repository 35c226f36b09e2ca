// Package eventbus mirrors timeline events onto a Kafka topic for
// downstream consumers. Publishing is best-effort: a broker outage logs a
// warning and never fails the originating operation.
package eventbus

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/wardflow/wardflow/internal/domain/care"
)

type Publisher struct {
	writer *kafka.Writer
	logger zerolog.Logger
}

// NewPublisher builds a Kafka publisher, or returns nil when no brokers
// are configured. A nil *Publisher is safe to use and publishes nothing.
func NewPublisher(brokers []string, topic string, logger zerolog.Logger) *Publisher {
	if len(brokers) == 0 {
		return nil
	}
	return &Publisher{
		writer: kafka.NewWriter(kafka.WriterConfig{
			Brokers:  brokers,
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		}),
		logger: logger,
	}
}

// Publish writes one timeline event keyed by patient id, so a patient's
// events land on one partition in order.
func (p *Publisher) Publish(e *care.TimelineEvent) {
	if p == nil {
		return
	}
	payload, err := json.Marshal(e)
	if err != nil {
		p.logger.Warn().Err(err).Str("event_id", e.ID).Msg("encode timeline event")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	msg := kafka.Message{
		Key:   []byte(strconv.Itoa(e.PatientID)),
		Value: payload,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Warn().Err(err).Str("event_id", e.ID).Msg("publish timeline event")
	}
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
