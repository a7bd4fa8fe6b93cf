package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/replyrocket/composer/internal/core/ports"
)

// OAuthStateStore keeps PKCE envelopes under oauth:twitter:state:<state>.
type OAuthStateStore struct {
	client *redis.Client
}

// NewOAuthStateStore creates an OAuthStateStore wrapping the given Redis client.
func NewOAuthStateStore(client *redis.Client) ports.OAuthStateStore {
	return &OAuthStateStore{client: client}
}

func (s *OAuthStateStore) Put(ctx context.Context, state string, value ports.OAuthState, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("oauth state encode: %w", err)
	}
	return s.client.Set(ctx, prefixOAuthState+state, raw, ttl).Err()
}

// Take reads and deletes the envelope atomically so a state value can only
// complete one callback.
func (s *OAuthStateStore) Take(ctx context.Context, state string) (*ports.OAuthState, error) {
	raw, err := s.client.GetDel(ctx, prefixOAuthState+state).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("oauth state take: %w", err)
	}

	var value ports.OAuthState
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("oauth state decode: %w", err)
	}
	return &value, nil
}
