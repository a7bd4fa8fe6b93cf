package ports

import (
	"context"

	"github.com/replyrocket/composer/internal/core/domain"
)

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	// Create stores a new account. Returns domain.ErrAccountExists when the email is taken.
	Create(ctx context.Context, account *domain.Account) error
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	UpdateProfile(ctx context.Context, id string, profile domain.Profile) error

	// LinkTwitter writes the identity and the full credential bundle in one statement.
	LinkTwitter(ctx context.Context, id string, link domain.TwitterLink) error
	// UpdateCredential replaces the token bundle after a refresh.
	UpdateCredential(ctx context.Context, id string, cred domain.Credential) error
	// UnlinkTwitter clears every linkage column in one statement.
	UnlinkTwitter(ctx context.Context, id string) error
}
