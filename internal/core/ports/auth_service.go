package ports

import (
	"context"

	"github.com/replyrocket/composer/internal/core/domain"
)

// RegisterInput carries the final signup form.
type RegisterInput struct {
	Email    string
	Password string
	Profile  domain.Profile
}

// AuthService drives signup, email verification and login.
type AuthService interface {
	StartSignup(ctx context.Context, email string) error
	VerifySignup(ctx context.Context, email, code string) (domain.SignupStep, error)
	Register(ctx context.Context, in RegisterInput) (string, *domain.Account, error)
	Login(ctx context.Context, email, password string) (string, *domain.Account, error)
}
