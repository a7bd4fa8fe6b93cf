package main

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/replyrocket/composer/internal/infrastructure/config"
	"github.com/replyrocket/composer/internal/infrastructure/events"
)

func TestNewEventSink_NoBrokersUsesLogPublisher(t *testing.T) {
	sink := newEventSink(&config.Config{}, zerolog.Nop())
	if _, ok := sink.(*events.LogPublisher); !ok {
		t.Fatalf("expected log publisher, got %T", sink)
	}
	if err := sink.Close(); err != nil {
		t.Errorf("unexpected close error: %v", err)
	}
}

func TestNewEventSink_KafkaWhenBrokersSet(t *testing.T) {
	cfg := &config.Config{Kafka: config.KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "composer.posts"}}
	sink := newEventSink(cfg, zerolog.Nop())
	defer func() { _ = sink.Close() }()
	if _, ok := sink.(*events.KafkaPublisher); !ok {
		t.Fatalf("expected kafka publisher, got %T", sink)
	}
}
