package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/replyrocket/composer/internal/core/domain"
	"github.com/replyrocket/composer/internal/core/ports"
)

const minPasswordLength = 8

// AuthService implements email-verified signup and login.
type AuthService struct {
	accounts  ports.AccountRepository
	signups   ports.SignupStore
	mailer    ports.Mailer
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
	newCode   func() (string, error)
}

func NewAuthService(
	accounts ports.AccountRepository,
	signups ports.SignupStore,
	mailer ports.Mailer,
	jwtSecret string,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		accounts:  accounts,
		signups:   signups,
		mailer:    mailer,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		log:       log,
		newCode:   verificationCode,
	}
}

// StartSignup opens (or restarts) a signup session and emails a verification code.
func (s *AuthService) StartSignup(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	if _, err := s.accounts.FindByEmail(ctx, email); err == nil {
		return domain.ErrAccountExists
	} else if !errors.Is(err, domain.ErrAccountNotFound) {
		return fmt.Errorf("start signup: %w", err)
	}

	code, err := s.newCode()
	if err != nil {
		return fmt.Errorf("start signup: %w", err)
	}

	session := &domain.SignupSession{
		Email:     email,
		Code:      code,
		Step:      domain.StepVerifyEmail,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.signups.Save(ctx, session, domain.VerificationCodeTTL); err != nil {
		return fmt.Errorf("start signup: %w", err)
	}

	if err := s.mailer.SendVerificationCode(ctx, email, code); err != nil {
		s.log.Error().Err(err).Str("email", email).Msg("failed to send verification email")
		return fmt.Errorf("send verification: %w", err)
	}

	s.log.Info().Str("email", email).Msg("signup started")
	return nil
}

// VerifySignup checks the emailed code and advances the session past the
// verification step. Too many wrong codes discard the session.
func (s *AuthService) VerifySignup(ctx context.Context, email, code string) (domain.SignupStep, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return 0, err
	}

	session, err := s.signups.Get(ctx, email)
	if err != nil {
		return 0, err
	}
	if session.Step.Verified() {
		return session.Step, nil
	}

	remaining := domain.VerificationCodeTTL - time.Since(session.CreatedAt)
	if remaining <= 0 {
		_ = s.signups.Delete(ctx, email)
		return 0, domain.ErrSignupNotFound
	}

	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(code)), []byte(session.Code)) != 1 {
		session.Attempts++
		if session.Attempts >= domain.MaxVerifyAttempts {
			if err := s.signups.Delete(ctx, email); err != nil {
				s.log.Warn().Err(err).Str("email", email).Msg("failed to discard signup session")
			}
			s.log.Warn().Str("email", email).Msg("signup session discarded after too many attempts")
			return 0, domain.ErrInvalidCode
		}
		if err := s.signups.Save(ctx, session, remaining); err != nil {
			return 0, fmt.Errorf("verify signup: %w", err)
		}
		return 0, domain.ErrInvalidCode
	}

	session.Step = domain.StepVerifyEmail.Next()
	session.Code = ""
	session.Attempts = 0
	if err := s.signups.Save(ctx, session, domain.VerifiedSessionTTL); err != nil {
		return 0, fmt.Errorf("verify signup: %w", err)
	}
	return session.Step, nil
}

// Register creates the account for a verified email and returns a session token.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (string, *domain.Account, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return "", nil, err
	}
	if len(in.Password) < minPasswordLength {
		return "", nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLength)
	}
	if !domain.ValidTone(in.Profile.Tone) {
		return "", nil, fmt.Errorf("%w: unknown tone %q", domain.ErrValidation, in.Profile.Tone)
	}

	session, err := s.signups.Get(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrSignupNotFound) {
			return "", nil, domain.ErrSignupIncomplete
		}
		return "", nil, fmt.Errorf("register: %w", err)
	}
	if !session.Step.Verified() {
		return "", nil, domain.ErrSignupIncomplete
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, err
	}

	now := time.Now().UTC()
	profile := in.Profile
	profile.Handle = strings.TrimPrefix(strings.TrimSpace(profile.Handle), "@")
	account := &domain.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Profile:      profile,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return "", nil, err
	}

	if err := s.signups.Delete(ctx, email); err != nil {
		s.log.Warn().Err(err).Str("email", email).Msg("failed to clear signup session")
	}

	token, err := s.generateToken(account)
	if err != nil {
		return "", nil, err
	}
	s.log.Info().Str("account_id", account.ID).Msg("account registered")
	return token, account, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(account)
	if err != nil {
		return "", nil, err
	}
	return token, account, nil
}

func (s *AuthService) generateToken(account *domain.Account) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   account.ID,
		"email": account.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return "", fmt.Errorf("%w: a valid email is required", domain.ErrValidation)
	}
	return email, nil
}

// verificationCode returns a random 6-digit code.
func verificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
