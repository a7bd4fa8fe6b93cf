package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/replyrocket/composer/internal/core/domain"
	"github.com/replyrocket/composer/internal/core/ports"
)

// SignupStore keeps signup sessions as JSON under signup:<email>.
type SignupStore struct {
	client *redis.Client
}

// NewSignupStore creates a SignupStore wrapping the given Redis client.
func NewSignupStore(client *redis.Client) ports.SignupStore {
	return &SignupStore{client: client}
}

func (s *SignupStore) Save(ctx context.Context, session *domain.SignupSession, ttl time.Duration) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("signup encode: %w", err)
	}
	return s.client.Set(ctx, prefixSignup+session.Email, raw, ttl).Err()
}

func (s *SignupStore) Get(ctx context.Context, email string) (*domain.SignupSession, error) {
	raw, err := s.client.Get(ctx, prefixSignup+email).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSignupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("signup get: %w", err)
	}

	var session domain.SignupSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("signup decode: %w", err)
	}
	return &session, nil
}

func (s *SignupStore) Delete(ctx context.Context, email string) error {
	return s.client.Del(ctx, prefixSignup+email).Err()
}
