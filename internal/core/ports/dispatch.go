package ports

import (
	"context"
	"time"

	"github.com/replyrocket/composer/internal/core/domain"
)

// DispatchOutcome is the per-post result of a sweep.
type DispatchOutcome struct {
	ID             string `json:"id"`
	Success        bool   `json:"success"`
	Error          string `json:"error,omitempty"`
	ExternalPostID string `json:"external_post_id,omitempty"`
}

// SweepResult summarises one sweep.
type SweepResult struct {
	SweepID   string            `json:"sweep_id"`
	Attempted int               `json:"attempted"`
	Posted    int               `json:"posted"`
	Results   []DispatchOutcome `json:"results"`
}

// DispatchService delivers due scheduled posts.
type DispatchService interface {
	RunSweep(ctx context.Context, now time.Time) (*SweepResult, error)
}

// DispatchLog is the append-only record of delivery attempts.
type DispatchLog interface {
	Record(ctx context.Context, attempt domain.DispatchAttempt) error
	ListByPost(ctx context.Context, postID string) ([]domain.DispatchAttempt, error)
}

// DeliveryGuard remembers confirmed deliveries until the post row reflects them.
type DeliveryGuard interface {
	Remember(ctx context.Context, postID, externalID string) error
	// Lookup returns the external id of an earlier confirmed delivery.
	Lookup(ctx context.Context, postID string) (string, bool, error)
	Forget(ctx context.Context, postID string) error
}

// EventPublisher emits post lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload []byte, key string) error
}
