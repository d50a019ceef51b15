// Package kafka provides an eventstream.Publisher that writes memory change
// events to a Kafka topic. Messages are keyed by user ID so every event for
// one user lands on the same partition in order.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/papercomputeco/creatormem/pkg/eventstream"
)

const (
	defaultBatchTimeout = 10 * time.Millisecond

	// HeaderEventType carries the event type so consumers can route without
	// decoding the payload.
	HeaderEventType = "event_type"

	// HeaderSchemaVersion carries the payload schema version.
	HeaderSchemaVersion = "schema_version"
)

// Config is the configuration for the Kafka publisher.
type Config struct {
	// Brokers are the bootstrap broker addresses, e.g. "localhost:9092".
	Brokers []string

	// Topic is the destination topic.
	Topic string

	// BatchTimeout bounds how long the writer waits to fill a batch
	// (defaults to 10ms).
	BatchTimeout time.Duration

	// Logger is the provided slog logger.
	Logger *slog.Logger
}

// Publisher writes events with a kafka-go Writer.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka publisher. No connection is made until the
// first event is published.
func NewPublisher(c Config) (*Publisher, error) {
	if len(c.Brokers) == 0 {
		return nil, errors.New("at least one kafka broker is required")
	}
	if c.Topic == "" {
		return nil, errors.New("kafka topic is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	batchTimeout := c.BatchTimeout
	if batchTimeout == 0 {
		batchTimeout = defaultBatchTimeout
	}

	writer := &kafkago.Writer{
		Addr:                   kafkago.TCP(c.Brokers...),
		Topic:                  c.Topic,
		Balancer:               &kafkago.Hash{},
		BatchTimeout:           batchTimeout,
		RequiredAcks:           kafkago.RequireOne,
		AllowAutoTopicCreation: true,
	}

	return &Publisher{
		writer: writer,
		logger: c.Logger,
	}, nil
}

// PublishMemory encodes event as JSON and writes it to the topic.
func (p *Publisher) PublishMemory(ctx context.Context, event *eventstream.MemoryChangedEvent) error {
	msg, err := Message(event)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing kafka message: %w", err)
	}

	p.logger.Debug("published memory event",
		"event_id", event.EventID,
		"event_type", event.EventType,
		"user_id", event.UserID,
	)
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Message builds the Kafka message for event.
func Message(event *eventstream.MemoryChangedEvent) (kafkago.Message, error) {
	if event == nil {
		return kafkago.Message{}, eventstream.ErrNilMemoryEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("encoding memory event: %w", err)
	}

	return kafkago.Message{
		Key:   []byte(event.UserID),
		Value: payload,
		Headers: []kafkago.Header{
			{Key: HeaderEventType, Value: []byte(event.EventType)},
			{Key: HeaderSchemaVersion, Value: []byte(fmt.Sprintf("%d", event.SchemaVersion))},
		},
		Time: event.EmittedAt,
	}, nil
}
