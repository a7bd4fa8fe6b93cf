package domain

import (
	"strings"
	"time"
)

// RefreshMargin is how close to expiry an access token may get before it is
// refreshed ahead of use.
const RefreshMargin = 5 * time.Minute

// Tones accepted for a profile.
const (
	ToneCasual        = "casual"
	ToneProfessional  = "professional"
	ToneWitty         = "witty"
	ToneInspirational = "inspirational"
	ToneEducational   = "educational"
	ToneBold          = "bold"
)

var tones = []string{ToneCasual, ToneProfessional, ToneWitty, ToneInspirational, ToneEducational, ToneBold}

// Tones returns the accepted tone labels.
func Tones() []string {
	out := make([]string, len(tones))
	copy(out, tones)
	return out
}

// ValidTone reports whether t is empty or one of Tones.
func ValidTone(t string) bool {
	if t == "" {
		return true
	}
	for _, v := range tones {
		if v == t {
			return true
		}
	}
	return false
}

// Profile is the writing persona used to steer generated drafts.
type Profile struct {
	Name      string `json:"name"`
	Handle    string `json:"handle"`
	Bio       string `json:"bio"`
	Tone      string `json:"tone"`
	Topics    string `json:"topics"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Credential is the delivery token bundle for the linked platform account.
type Credential struct {
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Complete reports whether every field of the bundle is present.
func (c Credential) Complete() bool {
	return c.AccessToken != "" && c.RefreshToken != "" && !c.ExpiresAt.IsZero()
}

// NeedsRefresh reports whether the access token expires within RefreshMargin of now.
func (c Credential) NeedsRefresh(now time.Time) bool {
	return c.ExpiresAt.Sub(now) < RefreshMargin
}

// TwitterIdentity is the external profile fetched after linking.
type TwitterIdentity struct {
	UserID          string `json:"user_id"`
	Username        string `json:"username"`
	Name            string `json:"name"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
	Verified        bool   `json:"verified"`
}

// LargeProfileImage swaps the thumbnail suffix the platform returns for the
// 400x400 rendition.
func (t TwitterIdentity) LargeProfileImage() string {
	return strings.Replace(t.ProfileImageURL, "_normal", "_400x400", 1)
}

// TwitterLink is the linked platform account: identity plus credential.
type TwitterLink struct {
	Identity   TwitterIdentity `json:"identity"`
	Credential Credential      `json:"credential"`
}

// Account models a registered user.
type Account struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	Profile      Profile      `json:"profile"`
	Twitter      *TwitterLink `json:"twitter,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Connected reports whether the account has a complete credential bundle.
func (a *Account) Connected() bool {
	return a.Twitter != nil && a.Twitter.Credential.Complete()
}
