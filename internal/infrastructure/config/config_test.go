package config

import (
	"context"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" || cfg.Env != "development" || cfg.LogLevel != "info" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.JWTTTL != 24*time.Hour {
		t.Errorf("expected 24h token ttl, got %v", cfg.JWTTTL)
	}
	if cfg.SweepInterval != 0 {
		t.Errorf("in-process sweep must be disabled by default, got %v", cfg.SweepInterval)
	}
	if cfg.OpenAI.Model != "gpt-4o-mini" {
		t.Errorf("unexpected model %q", cfg.OpenAI.Model)
	}
	if cfg.Mail.From != "ReplyRocket <onboarding@resend.dev>" {
		t.Errorf("unexpected sender %q", cfg.Mail.From)
	}
	if len(cfg.Kafka.Brokers) != 0 {
		t.Errorf("kafka must be disabled by default, got %v", cfg.Kafka.Brokers)
	}
	if cfg.TwitterCallbackURL() != "http://localhost:3000/v1/twitter/callback" {
		t.Errorf("unexpected callback %q", cfg.TwitterCallbackURL())
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("SWEEP_INTERVAL", "1m")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("APP_URL", "https://app.example.com/")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" || !cfg.IsProduction() {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.SweepInterval != time.Minute {
		t.Errorf("expected 1m sweep interval, got %v", cfg.SweepInterval)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Errorf("unexpected brokers %v", cfg.Kafka.Brokers)
	}
	if cfg.Redis.DB != 3 {
		t.Errorf("expected redis db 3, got %d", cfg.Redis.DB)
	}
	if cfg.TwitterCallbackURL() != "https://app.example.com/v1/twitter/callback" {
		t.Errorf("unexpected callback %q", cfg.TwitterCallbackURL())
	}
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(context.Background()); err == nil {
		t.Fatal("expected error without JWT_SECRET")
	}
}
