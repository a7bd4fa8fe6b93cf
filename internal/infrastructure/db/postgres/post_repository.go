package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/replyrocket/composer/internal/core/domain"
	"github.com/replyrocket/composer/internal/core/ports"
)

// PostRepository implements ports.PostRepository on PostgreSQL.
type PostRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new PostRepository.
func NewPostRepository(db *gorm.DB) ports.PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, post *domain.Post) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := toPostRow(post)
	return r.db.WithContext(ctx).Create(&row).Error
}

// FindByID retrieves a post. When accountID is non-empty, the lookup is also
// filtered by owner.
func (r *PostRepository) FindByID(ctx context.Context, id, accountID string) (*domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	q := r.db.WithContext(ctx).Where("id = ?", id)
	if accountID != "" {
		q = q.Where("account_id = ?", accountID)
	}

	var row postRow
	if err := q.Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPostNotFound
		}
		return nil, err
	}
	return toDomainPost(row), nil
}

func (r *PostRepository) List(ctx context.Context, filter ports.ListPostsFilter) ([]*domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	q := r.db.WithContext(ctx).Where("account_id = ?", filter.AccountID)
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}

	var rows []postRow
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	posts := make([]*domain.Post, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, toDomainPost(row))
	}
	return posts, nil
}

func (r *PostRepository) Update(ctx context.Context, post *domain.Post) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := toPostRow(post)
	res := r.db.WithContext(ctx).Model(&postRow{}).
		Where("id = ? AND account_id = ?", post.ID, post.AccountID).
		Updates(map[string]any{
			"text":             row.Text,
			"status":           row.Status,
			"scheduled_for":    row.ScheduledFor,
			"posted_at":        row.PostedAt,
			"external_post_id": row.ExternalPostID,
			"updated_at":       row.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id, accountID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res := r.db.WithContext(ctx).Where("id = ? AND account_id = ?", id, accountID).Delete(&postRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

// ListDue joins every due scheduled post with its owner's token columns.
func (r *PostRepository) ListDue(ctx context.Context, now time.Time) ([]ports.DuePost, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rows []dueRow
	err := r.db.WithContext(ctx).
		Table("posts AS p").
		Select(`p.*, a.twitter_access_token, a.twitter_refresh_token, a.twitter_token_expires_at`).
		Joins("JOIN accounts AS a ON a.id = p.account_id").
		Where("p.status = ? AND p.scheduled_for <= ?", string(domain.StatusScheduled), now.UTC()).
		Order("p.scheduled_for ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	due := make([]ports.DuePost, 0, len(rows))
	for _, row := range rows {
		due = append(due, ports.DuePost{
			Post:       toDomainPost(row.postRow),
			Credential: toCredential(row.TwitterAccessToken, row.TwitterRefreshToken, row.TwitterTokenExpiresAt),
		})
	}
	return due, nil
}

// MarkPosted is conditional on the post still being scheduled, so two
// overlapping sweeps cannot both record a delivery.
func (r *PostRepository) MarkPosted(ctx context.Context, id string, postedAt time.Time, externalID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	at := postedAt.UTC()
	res := r.db.WithContext(ctx).Model(&postRow{}).
		Where("id = ? AND status = ?", id, string(domain.StatusScheduled)).
		Updates(map[string]any{
			"status":           string(domain.StatusPosted),
			"posted_at":        at,
			"scheduled_for":    nil,
			"external_post_id": nullable(externalID),
			"updated_at":       at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}
