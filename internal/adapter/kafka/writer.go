package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/covid-dashboard-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes derived dataset rows to a Kafka topic.
type Writer struct {
	writer  *kafkago.Writer
	dataset string
	logger  *slog.Logger
}

// NewWriter creates a Kafka producer for topic. dataset is stamped on every
// message header.
func NewWriter(brokers []string, topic, dataset string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, dataset: dataset, logger: logger}
}

// LoadBatch serializes and publishes rows in a single WriteMessages call.
// Rows for the same category hash to the same partition, so their date
// order is kept per partition.
func (w *Writer) LoadBatch(ctx context.Context, rows []domain.DerivedRow) error {
	if len(rows) == 0 {
		return nil
	}
	publishedAt := domain.Now()
	msgs := make([]kafkago.Message, len(rows))
	for i := range rows {
		msg, err := serializeToMessage(w.dataset, rows[i], publishedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d rows: %w", len(msgs), err)
	}
	w.logger.Info("rows published", "dataset", w.dataset, "topic", w.writer.Topic, "rows", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// MessageKey partitions rows by category. The observation day travels in
// the observation_date header.
func MessageKey(r domain.DerivedRow) string {
	return r.Category
}

func serializeToMessage(dataset string, row domain.DerivedRow, publishedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(row)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize derived row: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(MessageKey(row)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "dataset", Value: []byte(dataset)},
			{Key: "observation_date", Value: []byte(row.Date.Format(time.DateOnly))},
			{Key: "published_at", Value: []byte(publishedAt.Format(time.RFC3339))},
		},
	}, nil
}
