package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/replyrocket/composer/internal/api/metrics"
	"github.com/replyrocket/composer/internal/core/domain"
	"github.com/replyrocket/composer/internal/core/ports"
)

type PostService struct {
	posts       ports.PostRepository
	accounts    ports.AccountRepository
	credentials ports.CredentialProvider
	platform    ports.SocialPlatform
	attempts    ports.DispatchLog
	log         zerolog.Logger
	now         func() time.Time
}

func NewPostService(
	posts ports.PostRepository,
	accounts ports.AccountRepository,
	credentials ports.CredentialProvider,
	platform ports.SocialPlatform,
	attempts ports.DispatchLog,
	log zerolog.Logger,
) *PostService {
	return &PostService{
		posts:       posts,
		accounts:    accounts,
		credentials: credentials,
		platform:    platform,
		attempts:    attempts,
		log:         log,
		now:         time.Now,
	}
}

// Create stores a draft or a scheduled post. Posted records are only created
// by Publish.
func (s *PostService) Create(ctx context.Context, in ports.CreatePostInput) (*domain.Post, error) {
	now := s.now().UTC()

	var (
		post *domain.Post
		err  error
	)
	switch in.Status {
	case "", domain.StatusDraft:
		if in.ScheduledFor != nil {
			return nil, fmt.Errorf("%w: scheduled_for is only allowed on scheduled posts", domain.ErrValidation)
		}
		post, err = domain.NewDraft(in.AccountID, in.Text, now)
	case domain.StatusScheduled:
		if in.ScheduledFor == nil {
			return nil, fmt.Errorf("%w: scheduled_for is required", domain.ErrValidation)
		}
		post, err = domain.NewScheduled(in.AccountID, in.Text, *in.ScheduledFor, now)
	default:
		return nil, fmt.Errorf("%w: status must be draft or scheduled", domain.ErrValidation)
	}
	if err != nil {
		return nil, err
	}

	post.ID = uuid.NewString()
	if err := s.posts.Create(ctx, post); err != nil {
		s.log.Error().Err(err).Str("account_id", in.AccountID).Msg("failed to create post")
		return nil, fmt.Errorf("create post: %w", err)
	}

	metrics.PostsCreatedTotal.WithLabelValues(string(post.Status)).Inc()
	s.log.Info().Str("post_id", post.ID).Str("account_id", post.AccountID).Str("status", string(post.Status)).Msg("post created")
	return post, nil
}

func (s *PostService) Get(ctx context.Context, accountID, postID string) (*domain.Post, error) {
	return s.posts.FindByID(ctx, postID, accountID)
}

func (s *PostService) List(ctx context.Context, accountID string, status domain.PostStatus) ([]*domain.Post, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}
	return s.posts.List(ctx, ports.ListPostsFilter{AccountID: accountID, Status: status})
}

// Update edits the text and/or schedule of a post that has not been posted.
func (s *PostService) Update(ctx context.Context, in ports.UpdatePostInput) (*domain.Post, error) {
	post, err := s.posts.FindByID(ctx, in.PostID, in.AccountID)
	if err != nil {
		return nil, err
	}
	if post.Status == domain.StatusPosted {
		return nil, domain.ErrPostImmutable
	}

	now := s.now().UTC()
	if in.Text != nil {
		if err := post.EditText(*in.Text, now); err != nil {
			return nil, err
		}
	}
	switch {
	case in.Unschedule:
		if err := post.Unschedule(now); err != nil {
			return nil, err
		}
	case in.ScheduledFor != nil:
		if err := post.Schedule(*in.ScheduledFor, now); err != nil {
			return nil, err
		}
	}

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	s.log.Info().Str("post_id", post.ID).Str("status", string(post.Status)).Msg("post updated")
	return post, nil
}

// Delete removes a draft or scheduled post.
func (s *PostService) Delete(ctx context.Context, accountID, postID string) error {
	post, err := s.posts.FindByID(ctx, postID, accountID)
	if err != nil {
		return err
	}
	if !post.Deletable() {
		return domain.ErrPostImmutable
	}
	if err := s.posts.Delete(ctx, postID, accountID); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	s.log.Info().Str("post_id", postID).Str("account_id", accountID).Msg("post deleted")
	return nil
}

// Publish delivers text right away and stores it as posted once the platform
// has accepted it. Nothing is stored when delivery fails.
func (s *PostService) Publish(ctx context.Context, in ports.PublishInput) (*ports.PublishResult, error) {
	if err := domain.ValidateText(in.Text); err != nil {
		return nil, err
	}

	account, err := s.accounts.FindByID(ctx, in.AccountID)
	if err != nil {
		return nil, err
	}
	if !account.Connected() {
		return nil, domain.ErrNotConnected
	}

	now := s.now().UTC()
	cred, err := s.credentials.Resolve(ctx, account.ID, account.Twitter.Credential, now)
	if err != nil {
		metrics.DirectPublishTotal.WithLabelValues("reconnect").Inc()
		return nil, err
	}
	token := cred.AccessToken

	var mediaIDs []string
	if in.Image != nil {
		mediaID, err := s.platform.UploadMedia(ctx, token, in.Image.Data, in.Image.MimeType)
		if err != nil {
			s.countPublishFailure(err)
			return nil, fmt.Errorf("upload media: %w", err)
		}
		mediaIDs = append(mediaIDs, mediaID)
	}

	externalID, err := s.platform.CreatePost(ctx, token, in.Text, mediaIDs)
	if err != nil {
		s.countPublishFailure(err)
		s.log.Warn().Err(err).Str("account_id", account.ID).Msg("direct post failed")
		return nil, fmt.Errorf("publish: %w", err)
	}
	metrics.DirectPublishTotal.WithLabelValues("ok").Inc()

	result := &ports.PublishResult{ExternalPostID: externalID}

	post, err := domain.NewPublished(account.ID, in.Text, externalID, now)
	if err != nil {
		return result, nil
	}
	post.ID = uuid.NewString()
	if err := s.posts.Create(ctx, post); err != nil {
		// Already live on the platform; report success and keep the id in the log.
		s.log.Error().Err(err).Str("account_id", account.ID).Str("external_post_id", externalID).Msg("post delivered but not stored")
		return result, nil
	}

	metrics.PostsCreatedTotal.WithLabelValues(string(domain.StatusPosted)).Inc()
	s.log.Info().Str("post_id", post.ID).Str("external_post_id", externalID).Msg("post published")
	result.Post = post
	return result, nil
}

func (s *PostService) countPublishFailure(err error) {
	if isReconnect(err) {
		metrics.DirectPublishTotal.WithLabelValues("reconnect").Inc()
		return
	}
	metrics.DirectPublishTotal.WithLabelValues("failed").Inc()
}

// Attempts returns the dispatch log of a post owned by accountID.
func (s *PostService) Attempts(ctx context.Context, accountID, postID string) ([]domain.DispatchAttempt, error) {
	if _, err := s.posts.FindByID(ctx, postID, accountID); err != nil {
		return nil, err
	}
	if s.attempts == nil {
		return []domain.DispatchAttempt{}, nil
	}
	return s.attempts.ListByPost(ctx, postID)
}
