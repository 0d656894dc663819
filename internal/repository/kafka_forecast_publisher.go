package repository

import (
	"context"
	"time"

	"FinCast/internal/domain/models"
	domrepo "FinCast/internal/domain/repository"
	pkgkafka "FinCast/pkg/kafka"
)

// Publisher is the producer surface the forecast publisher needs.
type Publisher interface {
	Publish(ctx context.Context, topic string, msg pkgkafka.Message) error
}

// ForecastEvent is the message body written to the result topic.
type ForecastEvent struct {
	Type        string                `json:"type"`
	PublishedAt time.Time             `json:"published_at"`
	Result      models.ForecastResult `json:"result"`
}

// KafkaForecastPublisher sends each forecast to the result topic keyed by symbol.
type KafkaForecastPublisher struct {
	producer Publisher
	topic    string
	now      func() time.Time
}

// NewKafkaForecastPublisher creates the Kafka sink.
func NewKafkaForecastPublisher(producer Publisher, topic string) domrepo.ForecastSink {
	return &KafkaForecastPublisher{producer: producer, topic: topic, now: time.Now}
}

func (p *KafkaForecastPublisher) Name() string { return "kafka" }

func (p *KafkaForecastPublisher) Publish(ctx context.Context, r models.ForecastResult) error {
	return p.producer.Publish(ctx, p.topic, pkgkafka.Message{
		Key:     []byte(r.Symbol),
		Value:   ForecastEvent{Type: "forecast", PublishedAt: p.now().UTC(), Result: r},
		Headers: map[string]string{"trend": string(r.Bias.Direction)},
	})
}
