package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"FinCast/internal/domain/models"
	pkgkafka "FinCast/pkg/kafka"
)

// ForecastRequestMessage is the payload on the request topic.
type ForecastRequestMessage struct {
	Symbol    string           `json:"symbol"`
	Overrides models.Overrides `json:"overrides"`
}

// KafkaForecastHandler consumes forecast requests. Results leave through the use case sinks.
type KafkaForecastHandler struct {
	topic    string
	analyzer Analyzer
}

func NewKafkaForecastHandler(topic string, analyzer Analyzer) *KafkaForecastHandler {
	return &KafkaForecastHandler{topic: topic, analyzer: analyzer}
}

func (h *KafkaForecastHandler) Topic() string { return h.topic }

// Handle runs one request. Bad payloads and input errors are permanent so the consumer skips retries.
func (h *KafkaForecastHandler) Handle(ctx context.Context, b []byte) error {
	var m ForecastRequestMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return pkgkafka.Permanent(fmt.Errorf("decode forecast request: %w", err))
	}
	if normalizeSymbol(m.Symbol) == "" {
		return pkgkafka.Permanent(fmt.Errorf("forecast request without symbol"))
	}
	if _, err := h.analyzer.Analyze(ctx, m.Symbol, m.Overrides); err != nil {
		if models.IsInputError(err) {
			return pkgkafka.Permanent(err)
		}
		return err
	}
	return nil
}
