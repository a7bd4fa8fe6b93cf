package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/replyrocket/composer/internal/core/domain"
	"github.com/replyrocket/composer/internal/core/ports"
)

const testSecret = "test-secret"

type authFixture struct {
	accounts *stubAccountRepo
	signups  *stubSignupStore
	mailer   *stubMailer
	svc      *AuthService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		accounts: newStubAccountRepo(),
		signups:  newStubSignupStore(),
		mailer:   &stubMailer{},
	}
	f.svc = NewAuthService(f.accounts, f.signups, f.mailer, testSecret, time.Hour, discardLogger)
	f.svc.newCode = func() (string, error) { return "123456", nil }
	return f
}

func registerInput(email string) ports.RegisterInput {
	return ports.RegisterInput{
		Email:    email,
		Password: "correct horse",
		Profile:  domain.Profile{Name: "Ada", Handle: "@ada", Tone: domain.ToneCasual},
	}
}

func TestAuthService_SignupFlow(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	if err := f.svc.StartSignup(ctx, " Ada@Example.com "); err != nil {
		t.Fatalf("start signup: %v", err)
	}
	if len(f.mailer.sent) != 1 || f.mailer.sent[0].to != "ada@example.com" || f.mailer.sent[0].code != "123456" {
		t.Fatalf("unexpected mail: %+v", f.mailer.sent)
	}
	if f.signups.ttls["ada@example.com"] != domain.VerificationCodeTTL {
		t.Errorf("expected code ttl %v, got %v", domain.VerificationCodeTTL, f.signups.ttls["ada@example.com"])
	}

	step, err := f.svc.VerifySignup(ctx, "ada@example.com", "123456")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if step != domain.StepAbout {
		t.Errorf("expected step about, got %s", step)
	}

	token, account, err := f.svc.Register(ctx, registerInput("ada@example.com"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if account.ID == "" || account.Profile.Handle != "ada" {
		t.Errorf("unexpected account: %+v", account)
	}
	if account.PasswordHash == "correct horse" {
		t.Errorf("password must be hashed")
	}
	if _, ok := f.signups.sessions["ada@example.com"]; ok {
		t.Errorf("signup session must be cleared after registration")
	}

	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) { return []byte(testSecret), nil }); err != nil {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims["sub"] != account.ID {
		t.Errorf("expected sub %q, got %v", account.ID, claims["sub"])
	}
}

func TestAuthService_StartSignup_ExistingAccount(t *testing.T) {
	f := newAuthFixture()
	seedAccount(f.accounts, "acc_1", nil)

	if err := f.svc.StartSignup(context.Background(), "acc_1@example.com"); !errors.Is(err, domain.ErrAccountExists) {
		t.Errorf("expected ErrAccountExists, got %v", err)
	}
	if len(f.mailer.sent) != 0 {
		t.Errorf("no mail may be sent for an existing account")
	}
}

func TestAuthService_StartSignup_InvalidEmail(t *testing.T) {
	f := newAuthFixture()
	if err := f.svc.StartSignup(context.Background(), "not-an-email"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestAuthService_VerifySignup_WrongCodeCountsAttempts(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	_ = f.svc.StartSignup(ctx, "bo@example.com")

	for i := 1; i < domain.MaxVerifyAttempts; i++ {
		if _, err := f.svc.VerifySignup(ctx, "bo@example.com", "000000"); !errors.Is(err, domain.ErrInvalidCode) {
			t.Fatalf("attempt %d: expected ErrInvalidCode, got %v", i, err)
		}
		if got := f.signups.sessions["bo@example.com"].Attempts; got != i {
			t.Fatalf("attempt %d: expected counter %d, got %d", i, i, got)
		}
	}

	if _, err := f.svc.VerifySignup(ctx, "bo@example.com", "000000"); !errors.Is(err, domain.ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode on final attempt, got %v", err)
	}
	if _, ok := f.signups.sessions["bo@example.com"]; ok {
		t.Errorf("session must be discarded after too many attempts")
	}
	if _, err := f.svc.VerifySignup(ctx, "bo@example.com", "123456"); !errors.Is(err, domain.ErrSignupNotFound) {
		t.Errorf("expected ErrSignupNotFound after discard, got %v", err)
	}
}

func TestAuthService_VerifySignup_ExpiredSession(t *testing.T) {
	f := newAuthFixture()
	f.signups.sessions["old@example.com"] = domain.SignupSession{
		Email:     "old@example.com",
		Code:      "123456",
		Step:      domain.StepVerifyEmail,
		CreatedAt: time.Now().Add(-time.Hour),
	}

	if _, err := f.svc.VerifySignup(context.Background(), "old@example.com", "123456"); !errors.Is(err, domain.ErrSignupNotFound) {
		t.Errorf("expected ErrSignupNotFound, got %v", err)
	}
}

func TestAuthService_Register_RequiresVerifiedEmail(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	if _, _, err := f.svc.Register(ctx, registerInput("new@example.com")); !errors.Is(err, domain.ErrSignupIncomplete) {
		t.Errorf("no session: expected ErrSignupIncomplete, got %v", err)
	}

	_ = f.svc.StartSignup(ctx, "new@example.com")
	if _, _, err := f.svc.Register(ctx, registerInput("new@example.com")); !errors.Is(err, domain.ErrSignupIncomplete) {
		t.Errorf("unverified: expected ErrSignupIncomplete, got %v", err)
	}
	if len(f.accounts.byID) != 0 {
		t.Errorf("no account may be created before verification")
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	f := newAuthFixture()
	in := registerInput("v@example.com")
	in.Password = "short"
	if _, _, err := f.svc.Register(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("short password: expected ErrValidation, got %v", err)
	}

	in = registerInput("v@example.com")
	in.Profile.Tone = "grumpy"
	if _, _, err := f.svc.Register(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("unknown tone: expected ErrValidation, got %v", err)
	}
}

func TestAuthService_Login(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	_ = f.svc.StartSignup(ctx, "cy@example.com")
	_, _ = f.svc.VerifySignup(ctx, "cy@example.com", "123456")
	_, registered, err := f.svc.Register(ctx, registerInput("cy@example.com"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	token, account, err := f.svc.Login(ctx, "CY@example.com", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" || account.ID != registered.ID {
		t.Errorf("unexpected login result: %q %+v", token, account)
	}

	if _, _, err := f.svc.Login(ctx, "cy@example.com", "wrong password"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := f.svc.Login(ctx, "nobody@example.com", "whatever1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestVerificationCode_Format(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := verificationCode()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6 digits, got %q", code)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("expected digits only, got %q", code)
			}
		}
	}
}
