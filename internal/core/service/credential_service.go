package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/replyrocket/composer/internal/api/metrics"
	"github.com/replyrocket/composer/internal/core/domain"
	"github.com/replyrocket/composer/internal/core/ports"
)

// CredentialRefresher hands out access tokens, refreshing them ahead of expiry.
type CredentialRefresher struct {
	accounts ports.AccountRepository
	platform ports.SocialPlatform
	log      zerolog.Logger
}

func NewCredentialRefresher(accounts ports.AccountRepository, platform ports.SocialPlatform, log zerolog.Logger) *CredentialRefresher {
	return &CredentialRefresher{accounts: accounts, platform: platform, log: log}
}

// Resolve returns cred unchanged, or the refreshed bundle when cred expires
// within domain.RefreshMargin of now. A rejected refresh is reported as
// domain.ErrRefreshFailed and must be treated as "reconnect required".
func (r *CredentialRefresher) Resolve(ctx context.Context, accountID string, cred domain.Credential, now time.Time) (domain.Credential, error) {
	now = now.UTC()
	if !cred.NeedsRefresh(now) {
		return cred, nil
	}

	grant, err := r.platform.Refresh(ctx, cred.RefreshToken)
	if err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues("failed").Inc()
		r.log.Warn().Err(err).Str("account_id", accountID).Msg("token refresh rejected")
		return domain.Credential{}, fmt.Errorf("%w: %v", domain.ErrRefreshFailed, err)
	}

	next := domain.Credential{
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		ExpiresAt:    now.Add(grant.ExpiresIn),
	}
	// Providers that do not rotate keep the previous refresh token valid.
	if next.RefreshToken == "" {
		next.RefreshToken = cred.RefreshToken
	}

	// The new access token is usable even if it could not be stored.
	if err := r.accounts.UpdateCredential(ctx, accountID, next); err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues("persist_failed").Inc()
		r.log.Error().Err(err).Str("account_id", accountID).Msg("failed to persist refreshed credential")
		return next, nil
	}

	metrics.TokenRefreshesTotal.WithLabelValues("ok").Inc()
	r.log.Info().Str("account_id", accountID).Time("expires_at", next.ExpiresAt).Msg("credential refreshed")
	return next, nil
}

// isReconnect reports whether err means the user has to link the platform again.
func isReconnect(err error) bool {
	return errors.Is(err, domain.ErrReconnectRequired) || errors.Is(err, domain.ErrRefreshFailed)
}
