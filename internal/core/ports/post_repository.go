package ports

import (
	"context"
	"time"

	"github.com/replyrocket/composer/internal/core/domain"
)

// ListPostsFilter carries the query parameters for listing an account's posts.
type ListPostsFilter struct {
	AccountID string
	Status    domain.PostStatus // optional
}

// DuePost is a scheduled post joined with its owner's credential bundle.
// Credential is nil when the owner has no complete linkage.
type DuePost struct {
	Post       *domain.Post
	Credential *domain.Credential
}

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	// FindByID retrieves a post. When accountID is non-empty the lookup is
	// additionally filtered by owner, so foreign posts read as not found.
	FindByID(ctx context.Context, id, accountID string) (*domain.Post, error)
	// List returns the filtered posts, newest first.
	List(ctx context.Context, filter ListPostsFilter) ([]*domain.Post, error)
	Update(ctx context.Context, post *domain.Post) error
	Delete(ctx context.Context, id, accountID string) error

	// ListDue returns every scheduled post with scheduled_for <= now, oldest first.
	ListDue(ctx context.Context, now time.Time) ([]DuePost, error)
	// MarkPosted moves a scheduled post to posted. A post that is no longer
	// scheduled is left untouched and reported as domain.ErrPostNotFound.
	MarkPosted(ctx context.Context, id string, postedAt time.Time, externalID string) error
}
