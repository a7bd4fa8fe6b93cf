package handler

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/replyrocket/composer/internal/api/middleware"
	"github.com/replyrocket/composer/internal/core/domain"
	"github.com/replyrocket/composer/internal/core/ports"
)

var errUnexpectedCall = errors.New("unexpected call")

// newContext builds an echo context for a JSON request. When account is
// non-empty the context looks authenticated.
func newContext(method, target, body, account string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if account != "" {
		c.Set(middleware.ContextAccountID, account)
	}
	return c, rec
}

// httpStatus returns the status an error returned by a handler would render as.
func httpStatus(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %T: %v", err, err)
	}
	return he.Code
}

type stubAuthService struct {
	startFn    func(email string) error
	verifyFn   func(email, code string) (domain.SignupStep, error)
	registerFn func(in ports.RegisterInput) (string, *domain.Account, error)
	loginFn    func(email, password string) (string, *domain.Account, error)
}

func (s *stubAuthService) StartSignup(_ context.Context, email string) error {
	if s.startFn == nil {
		return errUnexpectedCall
	}
	return s.startFn(email)
}

func (s *stubAuthService) VerifySignup(_ context.Context, email, code string) (domain.SignupStep, error) {
	if s.verifyFn == nil {
		return 0, errUnexpectedCall
	}
	return s.verifyFn(email, code)
}

func (s *stubAuthService) Register(_ context.Context, in ports.RegisterInput) (string, *domain.Account, error) {
	if s.registerFn == nil {
		return "", nil, errUnexpectedCall
	}
	return s.registerFn(in)
}

func (s *stubAuthService) Login(_ context.Context, email, password string) (string, *domain.Account, error) {
	if s.loginFn == nil {
		return "", nil, errUnexpectedCall
	}
	return s.loginFn(email, password)
}

type stubAccountService struct {
	account    *domain.Account
	lastUpdate ports.ProfileUpdate
	linkStart  *ports.LinkStart
	completeFn func(in ports.CompleteLinkInput) (*domain.Account, error)
	unlinked   string
}

func (s *stubAccountService) Get(_ context.Context, id string) (*domain.Account, error) {
	if s.account == nil || s.account.ID != id {
		return nil, domain.ErrAccountNotFound
	}
	return s.account, nil
}

func (s *stubAccountService) UpdateProfile(_ context.Context, id string, in ports.ProfileUpdate) (*domain.Account, error) {
	s.lastUpdate = in
	return s.account, nil
}

func (s *stubAccountService) BeginTwitterLink(_ context.Context, accountID string) (*ports.LinkStart, error) {
	return s.linkStart, nil
}

func (s *stubAccountService) CompleteTwitterLink(_ context.Context, in ports.CompleteLinkInput) (*domain.Account, error) {
	if s.completeFn == nil {
		return nil, errUnexpectedCall
	}
	return s.completeFn(in)
}

func (s *stubAccountService) UnlinkTwitter(_ context.Context, accountID string) error {
	s.unlinked = accountID
	return nil
}

type stubPostService struct {
	created   ports.CreatePostInput
	updated   ports.UpdatePostInput
	listed    domain.PostStatus
	publishFn func(in ports.PublishInput) (*ports.PublishResult, error)
	err       error
}

func (s *stubPostService) Create(_ context.Context, in ports.CreatePostInput) (*domain.Post, error) {
	s.created = in
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Post{ID: "p1", AccountID: in.AccountID, Text: in.Text, Status: in.Status, ScheduledFor: in.ScheduledFor}, nil
}

func (s *stubPostService) Get(_ context.Context, accountID, postID string) (*domain.Post, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Post{ID: postID, AccountID: accountID}, nil
}

func (s *stubPostService) List(_ context.Context, accountID string, status domain.PostStatus) ([]*domain.Post, error) {
	s.listed = status
	return []*domain.Post{{ID: "p1", AccountID: accountID, Status: domain.StatusDraft}}, nil
}

func (s *stubPostService) Update(_ context.Context, in ports.UpdatePostInput) (*domain.Post, error) {
	s.updated = in
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Post{ID: in.PostID, AccountID: in.AccountID}, nil
}

func (s *stubPostService) Delete(_ context.Context, accountID, postID string) error {
	return s.err
}

func (s *stubPostService) Publish(_ context.Context, in ports.PublishInput) (*ports.PublishResult, error) {
	if s.publishFn == nil {
		return nil, errUnexpectedCall
	}
	return s.publishFn(in)
}

func (s *stubPostService) Attempts(_ context.Context, accountID, postID string) ([]domain.DispatchAttempt, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []domain.DispatchAttempt{{PostID: postID, Success: false, Error: "Token refresh failed", AttemptedAt: time.Now()}}, nil
}

type stubComposeService struct {
	generated ports.GenerateInput
	analyzed  ports.AnalyzeInput
	err       error
}

func (s *stubComposeService) Generate(_ context.Context, in ports.GenerateInput) (string, error) {
	s.generated = in
	if s.err != nil {
		return "", s.err
	}
	return "generated text", nil
}

func (s *stubComposeService) AnalyzeStyle(_ context.Context, in ports.AnalyzeInput) (ports.StyleAnalysis, error) {
	s.analyzed = in
	if s.err != nil {
		return ports.StyleAnalysis{}, s.err
	}
	return ports.StyleAnalysis{Tone: "witty", Bio: "b", Topics: "t"}, nil
}

type stubDispatchService struct {
	result *ports.SweepResult
	err    error
	calls  int
}

func (s *stubDispatchService) RunSweep(_ context.Context, now time.Time) (*ports.SweepResult, error) {
	s.calls++
	return s.result, s.err
}
