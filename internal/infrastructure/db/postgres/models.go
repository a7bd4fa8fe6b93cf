package postgres

import "time"

type accountRow struct {
	ID           string `gorm:"column:id;type:uuid;primaryKey"`
	Email        string `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash string `gorm:"column:password_hash;not null"`

	Name      string `gorm:"column:name"`
	Handle    string `gorm:"column:handle"`
	Bio       string `gorm:"column:bio"`
	Tone      string `gorm:"column:tone"`
	Topics    string `gorm:"column:topics"`
	AvatarURL string `gorm:"column:avatar_url"`

	TwitterUserID          *string    `gorm:"column:twitter_user_id"`
	TwitterUsername        *string    `gorm:"column:twitter_username"`
	TwitterName            *string    `gorm:"column:twitter_name"`
	TwitterProfileImageURL *string    `gorm:"column:twitter_profile_image_url"`
	TwitterVerified        bool       `gorm:"column:twitter_verified;not null;default:false"`
	TwitterAccessToken     *string    `gorm:"column:twitter_access_token"`
	TwitterRefreshToken    *string    `gorm:"column:twitter_refresh_token"`
	TwitterTokenExpiresAt  *time.Time `gorm:"column:twitter_token_expires_at"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (accountRow) TableName() string { return "accounts" }

type postRow struct {
	ID             string     `gorm:"column:id;type:uuid;primaryKey"`
	AccountID      string     `gorm:"column:account_id;type:uuid;not null;index"`
	Text           string     `gorm:"column:text;not null"`
	Status         string     `gorm:"column:status;not null;index:idx_posts_due,priority:1"`
	ScheduledFor   *time.Time `gorm:"column:scheduled_for;index:idx_posts_due,priority:2"`
	PostedAt       *time.Time `gorm:"column:posted_at"`
	ExternalPostID *string    `gorm:"column:external_post_id"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
}

func (postRow) TableName() string { return "posts" }

// dueRow is the projection read by the dispatch query.
type dueRow struct {
	postRow
	TwitterAccessToken    *string    `gorm:"column:twitter_access_token"`
	TwitterRefreshToken   *string    `gorm:"column:twitter_refresh_token"`
	TwitterTokenExpiresAt *time.Time `gorm:"column:twitter_token_expires_at"`
}
