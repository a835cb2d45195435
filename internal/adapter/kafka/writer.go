package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/climate-risk-engine/internal/config"
	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// Writer publishes hazard results to a Kafka topic, one message per hazard
// keyed by the deterministic record ID so a compacted topic keeps only the
// latest result per (location, hazard, scenario, year).
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch flattens the assessments into hazard results and publishes them in
// a single WriteMessages call.
func (w *Writer) LoadBatch(ctx context.Context, assessments []domain.Assessment) error {
	var msgs []kafkago.Message
	for i := range assessments {
		for j := range assessments[i].Hazards {
			msg, err := serializeToMessage(assessments[i].RequestID, assessments[i].Hazards[j])
			if err != nil {
				return err
			}
			msgs = append(msgs, msg)
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d results: %w", len(msgs), err)
	}
	w.logger.Debug("results published", "messages", len(msgs), "assessments", len(assessments))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a HazardResult into a Kafka message.
func serializeToMessage(requestID string, r domain.HazardResult) (kafkago.Message, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize hazard result: %w", err)
	}
	headers := []kafkago.Header{
		{Key: "hazard", Value: []byte(r.Hazard)},
		{Key: "scenario", Value: []byte(r.Scenario)},
		{Key: "data_source", Value: []byte(r.DataSource)},
		{Key: "computed_at", Value: []byte(r.ComputedAt.Format(time.RFC3339))},
	}
	if requestID != "" {
		headers = append(headers, kafkago.Header{Key: "request_id", Value: []byte(requestID)})
	}
	return kafkago.Message{
		Key:     []byte(r.ID),
		Value:   data,
		Headers: headers,
	}, nil
}
