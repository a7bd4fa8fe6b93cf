package ports

import (
	"context"
	"time"

	"github.com/replyrocket/composer/internal/core/domain"
)

// TokenGrant is the result of a code exchange or refresh.
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

// SocialPlatform is the external posting platform.
//
// Errors caused by a rejected credential unwrap to domain.ErrReconnectRequired;
// every other refusal unwraps to domain.ErrUpstreamRejected.
type SocialPlatform interface {
	AuthCodeURL(state, verifier string) string
	Exchange(ctx context.Context, code, verifier string) (*TokenGrant, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenGrant, error)
	Me(ctx context.Context, accessToken string) (*domain.TwitterIdentity, error)
	// CreatePost publishes text and returns the external post id.
	CreatePost(ctx context.Context, accessToken, text string, mediaIDs []string) (string, error)
	UploadMedia(ctx context.Context, accessToken string, data []byte, mimeType string) (string, error)
}

// CredentialProvider resolves a usable credential bundle, refreshing and
// persisting it when it is close to expiry.
type CredentialProvider interface {
	Resolve(ctx context.Context, accountID string, cred domain.Credential, now time.Time) (domain.Credential, error)
}
