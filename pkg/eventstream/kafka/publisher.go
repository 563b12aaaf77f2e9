// Package kafka publishes turn events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/papercomputeco/praxisvoice/pkg/eventstream"
)

// DefaultTopic is used when no topic is configured.
const DefaultTopic = "praxisvoice.turns"

// Config configures a Publisher.
type Config struct {
	Brokers []string
	Topic   string

	// WriteTimeout bounds a single publish. Defaults to 5 seconds.
	WriteTimeout time.Duration
}

// writer is the subset of kafka.Writer the publisher uses.
type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes each event as one JSON message keyed by call id, so all
// events of a call land in the same partition.
type Publisher struct {
	writer writer
}

// NewPublisher creates a Publisher for the given brokers.
func NewPublisher(c Config) (*Publisher, error) {
	if len(c.Brokers) == 0 {
		return nil, errors.New("kafka publisher requires at least one broker")
	}

	topic := c.Topic
	if topic == "" {
		topic = DefaultTopic
	}
	timeout := c.WriteTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return newPublisher(&kafkago.Writer{
		Addr:                   kafkago.TCP(c.Brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireOne,
		WriteTimeout:           timeout,
		AllowAutoTopicCreation: true,
	}), nil
}

func newPublisher(w writer) *Publisher {
	return &Publisher{writer: w}
}

// PublishTurn writes event to the topic.
func (p *Publisher) PublishTurn(ctx context.Context, event *eventstream.TurnProcessedEvent) error {
	if event == nil {
		return eventstream.ErrNilTurnEvent
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal turn event: %w", err)
	}

	msg := kafkago.Message{
		Key:   []byte(event.Call.CallID),
		Value: value,
		Time:  event.EmittedAt,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "schema_version", Value: []byte(fmt.Sprint(event.SchemaVersion))},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish turn event %s: %w", event.EventID, err)
	}
	return nil
}

// Close flushes pending writes and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
