package handler

import (
	"time"

	"github.com/replyrocket/composer/internal/core/domain"
	"github.com/replyrocket/composer/internal/core/ports"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type signupRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type verifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code"  validate:"required,len=6,numeric"`
}

type verifyResponse struct {
	Verified bool   `json:"verified"`
	Step     string `json:"step"`
}

type registerRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name"     validate:"required,max=100"`
	Handle   string `json:"handle"   validate:"max=50"`
	Bio      string `json:"bio"      validate:"max=500"`
	Tone     string `json:"tone"     validate:"tone"`
	Topics   string `json:"topics"   validate:"max=500"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token   string          `json:"token"`
	Account *domain.Account `json:"account"`
}

// --- Account ---

type updateProfileRequest struct {
	Name      *string `json:"name"       validate:"omitempty,max=100"`
	Handle    *string `json:"handle"     validate:"omitempty,max=50"`
	Bio       *string `json:"bio"        validate:"omitempty,max=500"`
	Tone      *string `json:"tone"       validate:"omitempty,tone"`
	Topics    *string `json:"topics"     validate:"omitempty,max=500"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
}

type connectResponse struct {
	URL string `json:"url"`
}

// --- Posts ---

type createPostRequest struct {
	Text         string     `json:"text"          validate:"required"`
	Status       string     `json:"status"        validate:"required,oneof=draft scheduled"`
	ScheduledFor *time.Time `json:"scheduled_for"`
}

type updatePostRequest struct {
	Text         *string    `json:"text"`
	ScheduledFor *time.Time `json:"scheduled_for"`
	Unschedule   bool       `json:"unschedule"`
}

type imageRequest struct {
	Data     string `json:"data"      validate:"required,base64"`
	MimeType string `json:"mime_type" validate:"required,oneof=image/png image/jpeg image/gif image/webp"`
}

type publishRequest struct {
	AccountID string        `json:"account_id" validate:"required"`
	Text      string        `json:"text"       validate:"required"`
	Image     *imageRequest `json:"image"      validate:"omitempty"`
}

type publishResponse struct {
	Success        bool         `json:"success"`
	ExternalPostID string       `json:"external_post_id"`
	Post           *domain.Post `json:"post,omitempty"`
}

type postListResponse struct {
	Posts []*domain.Post `json:"posts"`
}

type attemptsResponse struct {
	Attempts []domain.DispatchAttempt `json:"attempts"`
}

// --- Compose ---

type profileContext struct {
	Name   string `json:"name"`
	Handle string `json:"handle"`
	Bio    string `json:"bio"`
	Tone   string `json:"tone"`
	Topics string `json:"topics"`
}

type generateRequest struct {
	Prompt         string          `json:"prompt"          validate:"required,max=2000"`
	ProfileContext *profileContext `json:"profile_context"`
	CurrentDraft   string          `json:"current_draft"   validate:"max=2000"`
}

type generateResponse struct {
	Result string `json:"result"`
}

type analyzeRequest struct {
	Handle      string   `json:"handle"       validate:"max=50"`
	SampleTexts []string `json:"sample_texts" validate:"max=50"`
}

// --- Cron ---

type dispatchResponse struct {
	Message string                  `json:"message"`
	Posted  int                     `json:"posted"`
	Results []ports.DispatchOutcome `json:"results,omitempty"`
}
