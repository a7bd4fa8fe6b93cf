package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/replyrocket/composer/internal/core/ports"
)

// deliveredTTL outlives any realistic gap between a delivery and the next sweep.
const deliveredTTL = 24 * time.Hour

// DeliveryGuard remembers confirmed deliveries whose post row has not yet
// been moved to posted.
// Key format: dispatch:delivered:<post_id> -> external post id
type DeliveryGuard struct {
	client *redis.Client
}

// NewDeliveryGuard creates a DeliveryGuard wrapping the given Redis client.
func NewDeliveryGuard(client *redis.Client) ports.DeliveryGuard {
	return &DeliveryGuard{client: client}
}

func (g *DeliveryGuard) Remember(ctx context.Context, postID, externalID string) error {
	return g.client.Set(ctx, prefixDelivered+postID, externalID, deliveredTTL).Err()
}

func (g *DeliveryGuard) Lookup(ctx context.Context, postID string) (string, bool, error) {
	externalID, err := g.client.Get(ctx, prefixDelivered+postID).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("delivery guard lookup: %w", err)
	}
	return externalID, true, nil
}

func (g *DeliveryGuard) Forget(ctx context.Context, postID string) error {
	return g.client.Del(ctx, prefixDelivered+postID).Err()
}
