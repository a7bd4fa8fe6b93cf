package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// PostStatus represents the lifecycle state of a post.
type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusScheduled PostStatus = "scheduled"
	StatusPosted    PostStatus = "posted"
)

// MaxPostLength is the platform's character limit, counted in runes.
const MaxPostLength = 280

// validTransitions defines the allowed state machine transitions. Posted is terminal.
var validTransitions = map[PostStatus][]PostStatus{
	StatusDraft:     {StatusScheduled},
	StatusScheduled: {StatusDraft, StatusPosted},
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s PostStatus) CanTransitionTo(next PostStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known status.
func (s PostStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusScheduled, StatusPosted:
		return true
	}
	return false
}

// Post is a piece of text owned by an account, at some point in its lifecycle.
//
// ScheduledFor is set only while Status is scheduled; PostedAt only once
// Status is posted. All times are UTC.
type Post struct {
	ID             string     `json:"id"`
	AccountID      string     `json:"account_id"`
	Text           string     `json:"text"`
	Status         PostStatus `json:"status"`
	ScheduledFor   *time.Time `json:"scheduled_for,omitempty"`
	PostedAt       *time.Time `json:"posted_at,omitempty"`
	ExternalPostID string     `json:"external_post_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ValidateText checks the text is non-blank and within MaxPostLength.
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: text is required", ErrValidation)
	}
	if n := utf8.RuneCountInString(text); n > MaxPostLength {
		return fmt.Errorf("%w: text is %d characters, limit is %d", ErrValidation, n, MaxPostLength)
	}
	return nil
}

// NewDraft builds an unscheduled post.
func NewDraft(accountID, text string, now time.Time) (*Post, error) {
	if err := ValidateText(text); err != nil {
		return nil, err
	}
	now = now.UTC()
	return &Post{
		AccountID: accountID,
		Text:      text,
		Status:    StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// NewScheduled builds a post queued for at, which must be after now.
func NewScheduled(accountID, text string, at, now time.Time) (*Post, error) {
	p, err := NewDraft(accountID, text, now)
	if err != nil {
		return nil, err
	}
	if err := p.Schedule(at, now); err != nil {
		return nil, err
	}
	return p, nil
}

// NewPublished builds the record of a post that was already delivered.
func NewPublished(accountID, text, externalID string, now time.Time) (*Post, error) {
	if err := ValidateText(text); err != nil {
		return nil, err
	}
	now = now.UTC()
	return &Post{
		AccountID:      accountID,
		Text:           text,
		Status:         StatusPosted,
		PostedAt:       &now,
		ExternalPostID: externalID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Schedule queues a draft, or moves the time of an already scheduled post.
func (p *Post) Schedule(at, now time.Time) error {
	if p.Status == StatusPosted {
		return ErrPostImmutable
	}
	if p.Status != StatusScheduled && !p.Status.CanTransitionTo(StatusScheduled) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, StatusScheduled)
	}
	at = at.UTC()
	if !at.After(now.UTC()) {
		return fmt.Errorf("%w: scheduled_for must be in the future", ErrValidation)
	}
	p.Status = StatusScheduled
	p.ScheduledFor = &at
	p.UpdatedAt = now.UTC()
	return nil
}

// Unschedule returns a scheduled post to draft.
func (p *Post) Unschedule(now time.Time) error {
	if p.Status == StatusPosted {
		return ErrPostImmutable
	}
	if !p.Status.CanTransitionTo(StatusDraft) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, StatusDraft)
	}
	p.Status = StatusDraft
	p.ScheduledFor = nil
	p.UpdatedAt = now.UTC()
	return nil
}

// EditText replaces the text of a post that has not been posted.
func (p *Post) EditText(text string, now time.Time) error {
	if p.Status == StatusPosted {
		return ErrPostImmutable
	}
	if err := ValidateText(text); err != nil {
		return err
	}
	p.Text = text
	p.UpdatedAt = now.UTC()
	return nil
}

// MarkPosted records a confirmed delivery of a scheduled post.
func (p *Post) MarkPosted(externalID string, at time.Time) error {
	if p.Status == StatusPosted {
		return ErrPostImmutable
	}
	if !p.Status.CanTransitionTo(StatusPosted) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, StatusPosted)
	}
	at = at.UTC()
	p.Status = StatusPosted
	p.ScheduledFor = nil
	p.PostedAt = &at
	p.ExternalPostID = externalID
	p.UpdatedAt = at
	return nil
}

// Deletable reports whether the post may be removed.
func (p *Post) Deletable() bool {
	return p.Status == StatusDraft || p.Status == StatusScheduled
}

// IsDue reports whether a scheduled post should be dispatched at now.
func (p *Post) IsDue(now time.Time) bool {
	return p.Status == StatusScheduled && p.ScheduledFor != nil && !p.ScheduledFor.After(now.UTC())
}
