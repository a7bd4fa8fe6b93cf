// Package events publishes post lifecycle events.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/replyrocket/composer/internal/core/ports"
)

var errNoBrokers = errors.New("kafka publisher requires at least one broker")

// KafkaPublisher writes every event type to one topic, keyed by account id
// so an account's events keep their order within a partition.
type KafkaPublisher struct {
	writer *kafka.Writer
	topic  string
}

func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, errNoBrokers
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			RequiredAcks: kafka.RequireAll,
			Balancer:     &kafka.Hash{},
			WriteTimeout: 5 * time.Second,
		},
		topic: topic,
	}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, payload []byte, key string) error {
	return p.writer.WriteMessages(ctx, newMessage(p.topic, eventType, payload, key, time.Now()))
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func newMessage(topic, eventType string, payload []byte, key string, now time.Time) kafka.Message {
	return kafka.Message{
		Topic:   topic,
		Key:     []byte(key),
		Value:   payload,
		Headers: []kafka.Header{{Key: "event_type", Value: []byte(eventType)}},
		Time:    now.UTC(),
	}
}

// LogPublisher is used when no brokers are configured; events are only logged.
type LogPublisher struct {
	log zerolog.Logger
}

func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, eventType string, payload []byte, key string) error {
	p.log.Debug().Str("event_type", eventType).Str("key", key).RawJSON("payload", payload).Msg("event")
	return nil
}

func (p *LogPublisher) Close() error { return nil }

var (
	_ ports.EventPublisher = (*KafkaPublisher)(nil)
	_ ports.EventPublisher = (*LogPublisher)(nil)
)
