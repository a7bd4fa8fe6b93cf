package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/replyrocket/composer/internal/core/domain"
	"github.com/replyrocket/composer/internal/core/ports"
)

// AccountRepository implements ports.AccountRepository on PostgreSQL.
type AccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db *gorm.DB) ports.AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := toAccountRow(account)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrAccountExists
		}
		return err
	}
	return nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *AccountRepository) findOne(ctx context.Context, query string, arg any) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var row accountRow
	if err := r.db.WithContext(ctx).Where(query, arg).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return toDomainAccount(row), nil
}

func (r *AccountRepository) UpdateProfile(ctx context.Context, id string, profile domain.Profile) error {
	return r.update(ctx, id, map[string]any{
		"name":       profile.Name,
		"handle":     profile.Handle,
		"bio":        profile.Bio,
		"tone":       profile.Tone,
		"topics":     profile.Topics,
		"avatar_url": profile.AvatarURL,
	})
}

// LinkTwitter writes identity and credential in a single UPDATE so readers
// never observe a half-linked account.
func (r *AccountRepository) LinkTwitter(ctx context.Context, id string, link domain.TwitterLink) error {
	access, refresh, exp := credentialColumns(link.Credential)
	return r.update(ctx, id, map[string]any{
		"twitter_user_id":           link.Identity.UserID,
		"twitter_username":          link.Identity.Username,
		"twitter_name":              link.Identity.Name,
		"twitter_profile_image_url": nullable(link.Identity.ProfileImageURL),
		"twitter_verified":          link.Identity.Verified,
		"twitter_access_token":      access,
		"twitter_refresh_token":     refresh,
		"twitter_token_expires_at":  exp,
	})
}

func (r *AccountRepository) UpdateCredential(ctx context.Context, id string, cred domain.Credential) error {
	access, refresh, exp := credentialColumns(cred)
	return r.update(ctx, id, map[string]any{
		"twitter_access_token":     access,
		"twitter_refresh_token":    refresh,
		"twitter_token_expires_at": exp,
	})
}

func (r *AccountRepository) UnlinkTwitter(ctx context.Context, id string) error {
	return r.update(ctx, id, map[string]any{
		"twitter_user_id":           nil,
		"twitter_username":          nil,
		"twitter_name":              nil,
		"twitter_profile_image_url": nil,
		"twitter_verified":          false,
		"twitter_access_token":      nil,
		"twitter_refresh_token":     nil,
		"twitter_token_expires_at":  nil,
	})
}

func (r *AccountRepository) update(ctx context.Context, id string, fields map[string]any) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	fields["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&accountRow{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}
