package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/replyrocket/composer/internal/api/metrics"
	"github.com/replyrocket/composer/internal/core/domain"
	"github.com/replyrocket/composer/internal/core/ports"
)

// Event types emitted for each sweep outcome.
const (
	EventPostPublished      = "post.published"
	EventPostDispatchFailed = "post.dispatch_failed"
)

// DispatchService delivers due scheduled posts, one at a time.
//
// attempts, guard and events are optional; a nil value disables that side effect.
type DispatchService struct {
	posts       ports.PostRepository
	credentials ports.CredentialProvider
	platform    ports.SocialPlatform
	attempts    ports.DispatchLog
	guard       ports.DeliveryGuard
	events      ports.EventPublisher
	log         zerolog.Logger
}

func NewDispatchService(
	posts ports.PostRepository,
	credentials ports.CredentialProvider,
	platform ports.SocialPlatform,
	attempts ports.DispatchLog,
	guard ports.DeliveryGuard,
	events ports.EventPublisher,
	log zerolog.Logger,
) *DispatchService {
	return &DispatchService{
		posts:       posts,
		credentials: credentials,
		platform:    platform,
		attempts:    attempts,
		guard:       guard,
		events:      events,
		log:         log,
	}
}

// RunSweep attempts every post that is scheduled at or before now. now is the
// only time reference used for the whole sweep. A failing post never stops
// the remaining ones; only a failure to load the due set is returned.
func (s *DispatchService) RunSweep(ctx context.Context, now time.Time) (*ports.SweepResult, error) {
	started := time.Now()
	now = now.UTC()

	due, err := s.posts.ListDue(ctx, now)
	if err != nil {
		metrics.SweepsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("run sweep: %w", err)
	}

	result := &ports.SweepResult{
		SweepID:   uuid.NewString(),
		Attempted: len(due),
		Results:   make([]ports.DispatchOutcome, 0, len(due)),
	}

	creds := make(sweepCredentials)
	for _, d := range due {
		out := s.dispatch(ctx, d, creds, now)
		if out.Success {
			result.Posted++
		}
		result.Results = append(result.Results, out)
		s.record(ctx, result.SweepID, d.Post, out, now)
	}

	metrics.SweepsTotal.WithLabelValues("ok").Inc()
	metrics.SweepDuration.Observe(time.Since(started).Seconds())
	s.log.Info().
		Str("sweep_id", result.SweepID).
		Time("now", now).
		Int("attempted", result.Attempted).
		Int("posted", result.Posted).
		Msg("sweep finished")

	return result, nil
}

// sweepCredentials holds each account's resolved credential for one sweep so
// later posts of the same account reuse a rotated bundle instead of the copy
// loaded with the due set.
type sweepCredentials map[string]resolvedCredential

type resolvedCredential struct {
	cred domain.Credential
	err  error
}

func (s *DispatchService) resolve(ctx context.Context, creds sweepCredentials, accountID string, stored domain.Credential, now time.Time) (domain.Credential, error) {
	if r, ok := creds[accountID]; ok {
		return r.cred, r.err
	}
	cred, err := s.credentials.Resolve(ctx, accountID, stored, now)
	creds[accountID] = resolvedCredential{cred: cred, err: err}
	return cred, err
}

func (s *DispatchService) dispatch(ctx context.Context, d ports.DuePost, creds sweepCredentials, now time.Time) ports.DispatchOutcome {
	post := d.Post
	out := ports.DispatchOutcome{ID: post.ID}
	log := s.log.With().Str("post_id", post.ID).Str("account_id", post.AccountID).Logger()

	// An earlier sweep delivered this post but did not get to mark it.
	if externalID, ok := s.previousDelivery(ctx, log, post.ID); ok {
		log.Warn().Str("external_post_id", externalID).Msg("post already delivered, marking posted without resending")
		s.markPosted(ctx, log, post.ID, externalID, now)
		metrics.DispatchOutcomesTotal.WithLabelValues("recovered").Inc()
		out.Success = true
		out.ExternalPostID = externalID
		return out
	}

	if d.Credential == nil || !d.Credential.Complete() {
		metrics.DispatchOutcomesTotal.WithLabelValues("no_connection").Inc()
		log.Debug().Msg("owner has no twitter connection")
		out.Error = domain.DispatchErrNoConnection
		return out
	}

	cred, err := s.resolve(ctx, creds, post.AccountID, *d.Credential, now)
	if err != nil {
		metrics.DispatchOutcomesTotal.WithLabelValues("refresh_failed").Inc()
		out.Error = domain.DispatchErrRefreshFailed
		return out
	}

	externalID, err := s.platform.CreatePost(ctx, cred.AccessToken, post.Text, nil)
	if err != nil {
		metrics.DispatchOutcomesTotal.WithLabelValues("delivery_failed").Inc()
		log.Warn().Err(err).Msg("scheduled post delivery failed")
		out.Error = err.Error()
		return out
	}

	if s.guard != nil {
		if err := s.guard.Remember(ctx, post.ID, externalID); err != nil {
			log.Warn().Err(err).Msg("failed to set delivery guard")
		}
	}
	s.markPosted(ctx, log, post.ID, externalID, now)

	metrics.DispatchOutcomesTotal.WithLabelValues("posted").Inc()
	log.Info().Str("external_post_id", externalID).Msg("scheduled post delivered")
	out.Success = true
	out.ExternalPostID = externalID
	return out
}

func (s *DispatchService) previousDelivery(ctx context.Context, log zerolog.Logger, postID string) (string, bool) {
	if s.guard == nil {
		return "", false
	}
	externalID, ok, err := s.guard.Lookup(ctx, postID)
	if err != nil {
		log.Warn().Err(err).Msg("delivery guard lookup failed, delivering anyway")
		return "", false
	}
	return externalID, ok
}

// markPosted persists a confirmed delivery. The delivery stands even if the
// write fails; the guard then lets the next sweep finish the job.
func (s *DispatchService) markPosted(ctx context.Context, log zerolog.Logger, postID, externalID string, now time.Time) {
	if err := s.posts.MarkPosted(ctx, postID, now, externalID); err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			log.Warn().Msg("post no longer scheduled, status left unchanged")
		} else {
			log.Error().Err(err).Str("external_post_id", externalID).Msg("post delivered but status update failed")
			return
		}
	}
	if s.guard != nil {
		if err := s.guard.Forget(ctx, postID); err != nil {
			log.Warn().Err(err).Msg("failed to clear delivery guard")
		}
	}
}

type dispatchEvent struct {
	PostID         string    `json:"post_id"`
	AccountID      string    `json:"account_id"`
	SweepID        string    `json:"sweep_id"`
	ExternalPostID string    `json:"external_post_id,omitempty"`
	Error          string    `json:"error,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// record appends the outcome to the dispatch log and publishes it. Both are
// best effort and never affect the sweep result.
func (s *DispatchService) record(ctx context.Context, sweepID string, post *domain.Post, out ports.DispatchOutcome, now time.Time) {
	if s.attempts != nil {
		attempt := domain.DispatchAttempt{
			PostID:         post.ID,
			AccountID:      post.AccountID,
			SweepID:        sweepID,
			Success:        out.Success,
			Error:          out.Error,
			ExternalPostID: out.ExternalPostID,
			AttemptedAt:    now,
		}
		if err := s.attempts.Record(ctx, attempt); err != nil {
			s.log.Warn().Err(err).Str("post_id", post.ID).Msg("failed to record dispatch attempt")
		}
	}

	if s.events == nil {
		return
	}
	eventType := EventPostPublished
	if !out.Success {
		eventType = EventPostDispatchFailed
	}
	payload, err := json.Marshal(dispatchEvent{
		PostID:         post.ID,
		AccountID:      post.AccountID,
		SweepID:        sweepID,
		ExternalPostID: out.ExternalPostID,
		Error:          out.Error,
		OccurredAt:     now,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("post_id", post.ID).Msg("failed to encode dispatch event")
		return
	}
	if err := s.events.Publish(ctx, eventType, payload, post.AccountID); err != nil {
		s.log.Warn().Err(err).Str("post_id", post.ID).Str("event", eventType).Msg("failed to publish dispatch event")
	}
}
