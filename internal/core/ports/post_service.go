package ports

import (
	"context"
	"time"

	"github.com/replyrocket/composer/internal/core/domain"
)

// CreatePostInput carries a new draft or scheduled post.
type CreatePostInput struct {
	AccountID    string
	Text         string
	Status       domain.PostStatus
	ScheduledFor *time.Time
}

// UpdatePostInput carries edits to an unposted post. Unschedule wins over ScheduledFor.
type UpdatePostInput struct {
	AccountID    string
	PostID       string
	Text         *string
	ScheduledFor *time.Time
	Unschedule   bool
}

// ImageInput is an image attached to a direct post.
type ImageInput struct {
	Data     []byte
	MimeType string
}

// PublishInput carries a direct "post now" request.
type PublishInput struct {
	AccountID string
	Text      string
	Image     *ImageInput
}

// PublishResult is returned after a successful direct post.
type PublishResult struct {
	ExternalPostID string
	Post           *domain.Post
}

// PostService manages an account's posts.
type PostService interface {
	Create(ctx context.Context, in CreatePostInput) (*domain.Post, error)
	Get(ctx context.Context, accountID, postID string) (*domain.Post, error)
	List(ctx context.Context, accountID string, status domain.PostStatus) ([]*domain.Post, error)
	Update(ctx context.Context, in UpdatePostInput) (*domain.Post, error)
	Delete(ctx context.Context, accountID, postID string) error
	Publish(ctx context.Context, in PublishInput) (*PublishResult, error)
	Attempts(ctx context.Context, accountID, postID string) ([]domain.DispatchAttempt, error)
}
