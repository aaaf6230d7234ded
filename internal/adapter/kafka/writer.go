package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-outlook-service/internal/config"
	"github.com/couchcryptid/storm-outlook-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Report status header values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// messageWriter is the subset of *kafkago.Writer used by Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer produces outlook reports to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured report topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes one message per report and writes them in a single
// WriteMessages call. Reports are keyed by site so each site stays on one partition.
func (w *Writer) Publish(ctx context.Context, reports []domain.Report) error {
	if len(reports) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(reports))
	for i := range reports {
		msg, err := serializeToMessage(reports[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write reports: %w", err)
	}
	w.logger.Debug("published reports", "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Report into a Kafka message.
func serializeToMessage(r domain.Report) (kafkago.Message, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize report %q: %w", r.Site, err)
	}
	status := StatusOK
	if r.Error != "" {
		status = StatusError
	}
	return kafkago.Message{
		Key:   []byte(r.Site),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "site", Value: []byte(r.Site)},
			{Key: "status", Value: []byte(status)},
			{Key: "evaluated_at", Value: []byte(r.EvaluatedAt.Format(time.RFC3339))},
		},
	}, nil
}
