package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"
)

// kafkaBatchSize bounds how many rows go into one WriteMessages call.
const kafkaBatchSize = 500

// MessageWriter is the part of *kafka.Writer the sink uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes one JSON object per row. The key is the row's first
// column and a "table" header names the source table.
type KafkaSink struct {
	Writer MessageWriter
}

func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	return &KafkaSink{Writer: &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}}
}

func (s *KafkaSink) Write(ctx context.Context, t Table) error {
	batch := make([]kafka.Message, 0, min(len(t.Rows), kafkaBatchSize))
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.Writer.WriteMessages(ctx, batch...); err != nil {
			return fmt.Errorf("export: publish %s: %w", t.Name, err)
		}
		batch = batch[:0]
		return nil
	}

	for _, row := range t.Rows {
		msg, err := rowMessage(t, row)
		if err != nil {
			return err
		}
		batch = append(batch, msg)
		if len(batch) == kafkaBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}
	slog.Info("table published", "table", t.Name, "rows", len(t.Rows))
	return nil
}

func (s *KafkaSink) Close() error {
	return s.Writer.Close()
}

func rowMessage(t Table, row []any) (kafka.Message, error) {
	obj := make(map[string]any, len(t.Header))
	for i, col := range t.Header {
		if i < len(row) {
			obj[col] = row[i]
		}
	}
	value, err := json.Marshal(obj)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("export: encode %s row: %w", t.Name, err)
	}
	var key []byte
	if len(row) > 0 {
		key = []byte(fmt.Sprint(row[0]))
	}
	return kafka.Message{
		Key:     key,
		Value:   value,
		Headers: []kafka.Header{{Key: "table", Value: []byte(t.Name)}},
	}, nil
}
