package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/replyrocket/composer/internal/core/domain"
	"github.com/replyrocket/composer/internal/core/ports"
)

// OAuthStateTTL bounds the time between the authorization redirect and the callback.
const OAuthStateTTL = 10 * time.Minute

type AccountService struct {
	accounts    ports.AccountRepository
	platform    ports.SocialPlatform
	oauthStates ports.OAuthStateStore
	log         zerolog.Logger
}

func NewAccountService(accounts ports.AccountRepository, platform ports.SocialPlatform, oauthStates ports.OAuthStateStore, log zerolog.Logger) *AccountService {
	return &AccountService{accounts: accounts, platform: platform, oauthStates: oauthStates, log: log}
}

func (s *AccountService) Get(ctx context.Context, id string) (*domain.Account, error) {
	return s.accounts.FindByID(ctx, id)
}

func (s *AccountService) UpdateProfile(ctx context.Context, id string, in ports.ProfileUpdate) (*domain.Account, error) {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p := account.Profile
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Handle != nil {
		p.Handle = strings.TrimPrefix(strings.TrimSpace(*in.Handle), "@")
	}
	if in.Bio != nil {
		p.Bio = *in.Bio
	}
	if in.Tone != nil {
		if !domain.ValidTone(*in.Tone) {
			return nil, fmt.Errorf("%w: unknown tone %q", domain.ErrValidation, *in.Tone)
		}
		p.Tone = *in.Tone
	}
	if in.Topics != nil {
		p.Topics = *in.Topics
	}
	if in.AvatarURL != nil {
		p.AvatarURL = *in.AvatarURL
	}

	if err := s.accounts.UpdateProfile(ctx, id, p); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	account.Profile = p
	account.UpdatedAt = time.Now().UTC()
	return account, nil
}

// BeginTwitterLink prepares a PKCE authorization redirect for accountID.
func (s *AccountService) BeginTwitterLink(ctx context.Context, accountID string) (*ports.LinkStart, error) {
	if _, err := s.accounts.FindByID(ctx, accountID); err != nil {
		return nil, err
	}

	state, err := randomState()
	if err != nil {
		return nil, err
	}
	verifier := oauth2.GenerateVerifier()

	if err := s.oauthStates.Put(ctx, state, ports.OAuthState{AccountID: accountID, Verifier: verifier}, OAuthStateTTL); err != nil {
		return nil, fmt.Errorf("store oauth state: %w", err)
	}

	return &ports.LinkStart{URL: s.platform.AuthCodeURL(state, verifier), State: state}, nil
}

// CompleteTwitterLink finishes the authorization-code flow and stores the
// credential bundle against the account that started it.
func (s *AccountService) CompleteTwitterLink(ctx context.Context, in ports.CompleteLinkInput) (*domain.Account, error) {
	if in.Code == "" || in.State == "" {
		return nil, fmt.Errorf("%w: code and state are required", domain.ErrValidation)
	}
	if in.CookieState == "" || subtle.ConstantTimeCompare([]byte(in.State), []byte(in.CookieState)) != 1 {
		return nil, domain.ErrInvalidOAuthState
	}

	envelope, err := s.oauthStates.Take(ctx, in.State)
	if err != nil {
		return nil, fmt.Errorf("load oauth state: %w", err)
	}
	if envelope == nil || envelope.AccountID == "" || envelope.AccountID != in.CookieAccountID {
		return nil, domain.ErrInvalidOAuthState
	}

	grant, err := s.platform.Exchange(ctx, in.Code, envelope.Verifier)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	identity, err := s.platform.Me(ctx, grant.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("fetch identity: %w", err)
	}
	identity.ProfileImageURL = identity.LargeProfileImage()

	link := domain.TwitterLink{
		Identity: *identity,
		Credential: domain.Credential{
			AccessToken:  grant.AccessToken,
			RefreshToken: grant.RefreshToken,
			ExpiresAt:    time.Now().UTC().Add(grant.ExpiresIn),
		},
	}
	if !link.Credential.Complete() {
		return nil, fmt.Errorf("%w: token grant is missing a refresh token", domain.ErrUpstreamRejected)
	}

	if err := s.accounts.LinkTwitter(ctx, envelope.AccountID, link); err != nil {
		return nil, fmt.Errorf("link twitter: %w", err)
	}

	s.log.Info().
		Str("account_id", envelope.AccountID).
		Str("twitter_username", identity.Username).
		Msg("twitter account linked")

	return s.accounts.FindByID(ctx, envelope.AccountID)
}

func (s *AccountService) UnlinkTwitter(ctx context.Context, accountID string) error {
	if err := s.accounts.UnlinkTwitter(ctx, accountID); err != nil {
		return err
	}
	s.log.Info().Str("account_id", accountID).Msg("twitter account unlinked")
	return nil
}

func randomState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("oauth state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
