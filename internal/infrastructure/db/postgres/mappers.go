package postgres

import (
	"time"

	"github.com/replyrocket/composer/internal/core/domain"
)

func toAccountRow(a *domain.Account) accountRow {
	row := accountRow{
		ID:           a.ID,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		Name:         a.Profile.Name,
		Handle:       a.Profile.Handle,
		Bio:          a.Profile.Bio,
		Tone:         a.Profile.Tone,
		Topics:       a.Profile.Topics,
		AvatarURL:    a.Profile.AvatarURL,
		CreatedAt:    a.CreatedAt.UTC(),
		UpdatedAt:    a.UpdatedAt.UTC(),
	}
	if a.Twitter != nil {
		id := a.Twitter.Identity
		row.TwitterUserID = nullable(id.UserID)
		row.TwitterUsername = nullable(id.Username)
		row.TwitterName = nullable(id.Name)
		row.TwitterProfileImageURL = nullable(id.ProfileImageURL)
		row.TwitterVerified = id.Verified
		row.TwitterAccessToken, row.TwitterRefreshToken, row.TwitterTokenExpiresAt = credentialColumns(a.Twitter.Credential)
	}
	return row
}

func toDomainAccount(row accountRow) *domain.Account {
	a := &domain.Account{
		ID:           row.ID,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		Profile: domain.Profile{
			Name:      row.Name,
			Handle:    row.Handle,
			Bio:       row.Bio,
			Tone:      row.Tone,
			Topics:    row.Topics,
			AvatarURL: row.AvatarURL,
		},
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
	if row.TwitterUserID != nil {
		a.Twitter = &domain.TwitterLink{
			Identity: domain.TwitterIdentity{
				UserID:          *row.TwitterUserID,
				Username:        deref(row.TwitterUsername),
				Name:            deref(row.TwitterName),
				ProfileImageURL: deref(row.TwitterProfileImageURL),
				Verified:        row.TwitterVerified,
			},
		}
		if cred := toCredential(row.TwitterAccessToken, row.TwitterRefreshToken, row.TwitterTokenExpiresAt); cred != nil {
			a.Twitter.Credential = *cred
		}
	}
	return a
}

func toPostRow(p *domain.Post) postRow {
	return postRow{
		ID:             p.ID,
		AccountID:      p.AccountID,
		Text:           p.Text,
		Status:         string(p.Status),
		ScheduledFor:   utcPtr(p.ScheduledFor),
		PostedAt:       utcPtr(p.PostedAt),
		ExternalPostID: nullable(p.ExternalPostID),
		CreatedAt:      p.CreatedAt.UTC(),
		UpdatedAt:      p.UpdatedAt.UTC(),
	}
}

func toDomainPost(row postRow) *domain.Post {
	return &domain.Post{
		ID:             row.ID,
		AccountID:      row.AccountID,
		Text:           row.Text,
		Status:         domain.PostStatus(row.Status),
		ScheduledFor:   utcPtr(row.ScheduledFor),
		PostedAt:       utcPtr(row.PostedAt),
		ExternalPostID: deref(row.ExternalPostID),
		CreatedAt:      row.CreatedAt.UTC(),
		UpdatedAt:      row.UpdatedAt.UTC(),
	}
}

// toCredential returns nil unless all three columns are present.
func toCredential(access, refresh *string, expiresAt *time.Time) *domain.Credential {
	if access == nil || refresh == nil || expiresAt == nil || *access == "" || *refresh == "" {
		return nil
	}
	return &domain.Credential{
		AccessToken:  *access,
		RefreshToken: *refresh,
		ExpiresAt:    expiresAt.UTC(),
	}
}

func credentialColumns(c domain.Credential) (*string, *string, *time.Time) {
	var exp *time.Time
	if !c.ExpiresAt.IsZero() {
		t := c.ExpiresAt.UTC()
		exp = &t
	}
	return nullable(c.AccessToken), nullable(c.RefreshToken), exp
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
