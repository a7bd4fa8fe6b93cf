package ports

import (
	"context"

	"github.com/replyrocket/composer/internal/core/domain"
)

// ProfileUpdate carries optional profile edits; nil fields are left unchanged.
type ProfileUpdate struct {
	Name      *string
	Handle    *string
	Bio       *string
	Tone      *string
	Topics    *string
	AvatarURL *string
}

// LinkStart is returned when an authorization redirect is prepared.
type LinkStart struct {
	URL   string
	State string
}

// CompleteLinkInput carries the callback query plus the cookie values set by
// BeginTwitterLink.
type CompleteLinkInput struct {
	Code            string
	State           string
	CookieState     string
	CookieAccountID string
}

// AccountService manages profiles and platform linkage.
type AccountService interface {
	Get(ctx context.Context, id string) (*domain.Account, error)
	UpdateProfile(ctx context.Context, id string, in ProfileUpdate) (*domain.Account, error)
	BeginTwitterLink(ctx context.Context, accountID string) (*LinkStart, error)
	CompleteTwitterLink(ctx context.Context, in CompleteLinkInput) (*domain.Account, error)
	UnlinkTwitter(ctx context.Context, accountID string) error
}
