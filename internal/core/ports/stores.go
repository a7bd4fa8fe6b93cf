package ports

import (
	"context"
	"time"

	"github.com/replyrocket/composer/internal/core/domain"
)

// SignupStore keeps in-progress signup sessions keyed by email.
type SignupStore interface {
	Save(ctx context.Context, session *domain.SignupSession, ttl time.Duration) error
	// Get returns domain.ErrSignupNotFound when no live session exists.
	Get(ctx context.Context, email string) (*domain.SignupSession, error)
	Delete(ctx context.Context, email string) error
}

// OAuthState is the envelope kept between the authorization redirect and the callback.
type OAuthState struct {
	AccountID string `json:"account_id"`
	Verifier  string `json:"verifier"`
}

// OAuthStateStore keeps PKCE envelopes keyed by the state parameter.
type OAuthStateStore interface {
	Put(ctx context.Context, state string, value OAuthState, ttl time.Duration) error
	// Take returns and removes the envelope; nil when absent or expired.
	Take(ctx context.Context, state string) (*OAuthState, error)
}
