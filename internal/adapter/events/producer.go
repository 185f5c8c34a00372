package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// Writer is the subset of kafka.Writer the producer relies on.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Message is one keyed event handed to PublishBatch.
type Message struct {
	Key   string
	Value any
}

// Publisher publishes keyed JSON events.
type Publisher interface {
	Publish(ctx context.Context, key string, value any) error
	PublishBatch(ctx context.Context, msgs []Message) error
	Close() error
}

// KafkaProducer writes JSON events to a single Kafka topic.
type KafkaProducer struct {
	writer Writer
	logger *slog.Logger
}

// NewKafkaProducer creates a producer writing to topic on the given brokers.
func NewKafkaProducer(brokers []string, topic string, logger *slog.Logger) *KafkaProducer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: 5 * time.Second,
		BatchTimeout: 10 * time.Millisecond,
	}
	return NewKafkaProducerWithWriter(w, logger)
}

// NewKafkaProducerWithWriter allows injecting a test writer.
func NewKafkaProducerWithWriter(w Writer, logger *slog.Logger) *KafkaProducer {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &KafkaProducer{writer: w, logger: logger}
}

// Publish marshals value to JSON and writes it under key. Messages sharing a
// key land on the same partition, so events of one entity stay ordered.
func (p *KafkaProducer) Publish(ctx context.Context, key string, value any) error {
	return p.PublishBatch(ctx, []Message{{Key: key, Value: value}})
}

// PublishBatch writes msgs in a single round trip. Nothing is written when
// any value fails to marshal.
func (p *KafkaProducer) PublishBatch(ctx context.Context, msgs []Message) error {
	if len(msgs) == 0 {
		return nil
	}
	out := make([]kafka.Message, 0, len(msgs))
	for _, m := range msgs {
		body, err := json.Marshal(m.Value)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", m.Key, err)
		}
		out = append(out, kafka.Message{
			Key:     []byte(m.Key),
			Value:   body,
			Headers: []kafka.Header{{Key: "content-type", Value: []byte("application/json")}},
		})
	}
	if err := p.writer.WriteMessages(ctx, out...); err != nil {
		p.logger.Error("kafka write failed",
			slog.String("first_key", msgs[0].Key),
			slog.Int("messages", len(msgs)),
			slog.String("error", err.Error()))
		return fmt.Errorf("write events: %w", err)
	}
	p.logger.Debug("events published", slog.String("first_key", msgs[0].Key), slog.Int("messages", len(msgs)))
	return nil
}

// Close closes the underlying writer.
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

// NopPublisher drops every event. It stands in when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }

func (NopPublisher) PublishBatch(context.Context, []Message) error { return nil }

func (NopPublisher) Close() error { return nil }
