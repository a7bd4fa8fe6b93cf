package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/replyrocket/composer/internal/core/domain"
	"github.com/replyrocket/composer/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubAccountRepo struct {
	byID             map[string]*domain.Account
	createErr        error
	updateCredErr    error
	credentialWrites int
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{byID: make(map[string]*domain.Account)}
}

func (r *stubAccountRepo) Create(_ context.Context, a *domain.Account) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.byID {
		if existing.Email == a.Email {
			return domain.ErrAccountExists
		}
	}
	clone := *a
	r.byID[a.ID] = &clone
	return nil
}

func (r *stubAccountRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	clone := *a
	if a.Twitter != nil {
		link := *a.Twitter
		clone.Twitter = &link
	}
	return &clone, nil
}

func (r *stubAccountRepo) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	for id, a := range r.byID {
		if a.Email == email {
			return r.FindByID(ctx, id)
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) UpdateProfile(_ context.Context, id string, p domain.Profile) error {
	a, ok := r.byID[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.Profile = p
	return nil
}

func (r *stubAccountRepo) LinkTwitter(_ context.Context, id string, link domain.TwitterLink) error {
	a, ok := r.byID[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.Twitter = &link
	return nil
}

func (r *stubAccountRepo) UpdateCredential(_ context.Context, id string, cred domain.Credential) error {
	if r.updateCredErr != nil {
		return r.updateCredErr
	}
	a, ok := r.byID[id]
	if !ok || a.Twitter == nil {
		return domain.ErrAccountNotFound
	}
	r.credentialWrites++
	a.Twitter.Credential = cred
	return nil
}

func (r *stubAccountRepo) UnlinkTwitter(_ context.Context, id string) error {
	a, ok := r.byID[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.Twitter = nil
	return nil
}

// stubPostRepo mirrors the SQL join of ListDue: a credential is attached only
// when the owning account has a complete bundle.
type stubPostRepo struct {
	byID          map[string]*domain.Post
	accounts      *stubAccountRepo
	createErr     error
	listDueErr    error
	markPostedErr error
}

func newStubPostRepo(accounts *stubAccountRepo) *stubPostRepo {
	return &stubPostRepo{byID: make(map[string]*domain.Post), accounts: accounts}
}

func (r *stubPostRepo) Create(_ context.Context, p *domain.Post) error {
	if r.createErr != nil {
		return r.createErr
	}
	clone := *p
	r.byID[p.ID] = &clone
	return nil
}

func (r *stubPostRepo) FindByID(_ context.Context, id, accountID string) (*domain.Post, error) {
	p, ok := r.byID[id]
	if !ok || (accountID != "" && p.AccountID != accountID) {
		return nil, domain.ErrPostNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubPostRepo) List(_ context.Context, f ports.ListPostsFilter) ([]*domain.Post, error) {
	var out []*domain.Post
	for _, p := range r.byID {
		if p.AccountID != f.AccountID {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		clone := *p
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *stubPostRepo) Update(_ context.Context, p *domain.Post) error {
	if _, ok := r.byID[p.ID]; !ok {
		return domain.ErrPostNotFound
	}
	clone := *p
	r.byID[p.ID] = &clone
	return nil
}

func (r *stubPostRepo) Delete(_ context.Context, id, accountID string) error {
	p, ok := r.byID[id]
	if !ok || p.AccountID != accountID {
		return domain.ErrPostNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubPostRepo) ListDue(_ context.Context, now time.Time) ([]ports.DuePost, error) {
	if r.listDueErr != nil {
		return nil, r.listDueErr
	}
	var out []ports.DuePost
	for _, p := range r.byID {
		if !p.IsDue(now) {
			continue
		}
		clone := *p
		d := ports.DuePost{Post: &clone}
		if a, ok := r.accounts.byID[p.AccountID]; ok && a.Connected() {
			cred := a.Twitter.Credential
			d.Credential = &cred
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Post.ScheduledFor.Before(*out[j].Post.ScheduledFor) })
	return out, nil
}

func (r *stubPostRepo) MarkPosted(_ context.Context, id string, at time.Time, externalID string) error {
	if r.markPostedErr != nil {
		return r.markPostedErr
	}
	p, ok := r.byID[id]
	if !ok || p.Status != domain.StatusScheduled {
		return domain.ErrPostNotFound
	}
	return p.MarkPosted(externalID, at)
}

// ---------------------------------------------------------------------------
// Stub collaborators
// ---------------------------------------------------------------------------

type createCall struct {
	token    string
	text     string
	mediaIDs []string
}

type stubPlatform struct {
	refreshCalls []string
	refreshFn    func(refreshToken string) (*ports.TokenGrant, error)
	createCalls  []createCall
	createFn     func(token, text string) (string, error)
	uploadFn     func(data []byte, mime string) (string, error)
	exchangeFn   func(code, verifier string) (*ports.TokenGrant, error)
	meFn         func(token string) (*domain.TwitterIdentity, error)
	authURLState string
}

func (p *stubPlatform) AuthCodeURL(state, verifier string) string {
	p.authURLState = state
	return "https://x.com/i/oauth2/authorize?state=" + state
}

func (p *stubPlatform) Exchange(_ context.Context, code, verifier string) (*ports.TokenGrant, error) {
	return p.exchangeFn(code, verifier)
}

func (p *stubPlatform) Refresh(_ context.Context, refreshToken string) (*ports.TokenGrant, error) {
	p.refreshCalls = append(p.refreshCalls, refreshToken)
	if p.refreshFn == nil {
		return nil, errors.New("refresh not expected")
	}
	return p.refreshFn(refreshToken)
}

func (p *stubPlatform) Me(_ context.Context, token string) (*domain.TwitterIdentity, error) {
	return p.meFn(token)
}

func (p *stubPlatform) CreatePost(_ context.Context, token, text string, mediaIDs []string) (string, error) {
	p.createCalls = append(p.createCalls, createCall{token: token, text: text, mediaIDs: mediaIDs})
	if p.createFn == nil {
		return "ext_" + text, nil
	}
	return p.createFn(token, text)
}

func (p *stubPlatform) UploadMedia(_ context.Context, _ string, data []byte, mime string) (string, error) {
	return p.uploadFn(data, mime)
}

type stubDispatchLog struct {
	recorded  []domain.DispatchAttempt
	recordErr error
}

func (l *stubDispatchLog) Record(_ context.Context, a domain.DispatchAttempt) error {
	if l.recordErr != nil {
		return l.recordErr
	}
	l.recorded = append(l.recorded, a)
	return nil
}

func (l *stubDispatchLog) ListByPost(_ context.Context, postID string) ([]domain.DispatchAttempt, error) {
	var out []domain.DispatchAttempt
	for _, a := range l.recorded {
		if a.PostID == postID {
			out = append(out, a)
		}
	}
	return out, nil
}

type stubGuard struct {
	delivered map[string]string
}

func newStubGuard() *stubGuard {
	return &stubGuard{delivered: make(map[string]string)}
}

func (g *stubGuard) Remember(_ context.Context, postID, externalID string) error {
	g.delivered[postID] = externalID
	return nil
}

func (g *stubGuard) Lookup(_ context.Context, postID string) (string, bool, error) {
	id, ok := g.delivered[postID]
	return id, ok, nil
}

func (g *stubGuard) Forget(_ context.Context, postID string) error {
	delete(g.delivered, postID)
	return nil
}

type publishedEvent struct {
	eventType string
	payload   []byte
	key       string
}

type stubEvents struct {
	published  []publishedEvent
	publishErr error
}

func (e *stubEvents) Publish(_ context.Context, eventType string, payload []byte, key string) error {
	if e.publishErr != nil {
		return e.publishErr
	}
	e.published = append(e.published, publishedEvent{eventType: eventType, payload: payload, key: key})
	return nil
}

type stubGenerator struct {
	reply    string
	err      error
	requests []ports.CompletionRequest
}

func (g *stubGenerator) Complete(_ context.Context, req ports.CompletionRequest) (string, error) {
	g.requests = append(g.requests, req)
	return g.reply, g.err
}

type sentCode struct {
	to, code string
}

type stubMailer struct {
	sent    []sentCode
	sendErr error
}

func (m *stubMailer) SendVerificationCode(_ context.Context, to, code string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, sentCode{to: to, code: code})
	return nil
}

type stubSignupStore struct {
	sessions map[string]domain.SignupSession
	ttls     map[string]time.Duration
}

func newStubSignupStore() *stubSignupStore {
	return &stubSignupStore{sessions: make(map[string]domain.SignupSession), ttls: make(map[string]time.Duration)}
}

func (s *stubSignupStore) Save(_ context.Context, session *domain.SignupSession, ttl time.Duration) error {
	s.sessions[session.Email] = *session
	s.ttls[session.Email] = ttl
	return nil
}

func (s *stubSignupStore) Get(_ context.Context, email string) (*domain.SignupSession, error) {
	session, ok := s.sessions[email]
	if !ok {
		return nil, domain.ErrSignupNotFound
	}
	return &session, nil
}

func (s *stubSignupStore) Delete(_ context.Context, email string) error {
	delete(s.sessions, email)
	return nil
}

type stubOAuthStates struct {
	states map[string]ports.OAuthState
}

func newStubOAuthStates() *stubOAuthStates {
	return &stubOAuthStates{states: make(map[string]ports.OAuthState)}
}

func (s *stubOAuthStates) Put(_ context.Context, state string, v ports.OAuthState, _ time.Duration) error {
	s.states[state] = v
	return nil
}

func (s *stubOAuthStates) Take(_ context.Context, state string) (*ports.OAuthState, error) {
	v, ok := s.states[state]
	if !ok {
		return nil, nil
	}
	delete(s.states, state)
	return &v, nil
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

func seedAccount(repo *stubAccountRepo, id string, cred *domain.Credential) *domain.Account {
	a := &domain.Account{
		ID:      id,
		Email:   id + "@example.com",
		Profile: domain.Profile{Name: "Ada", Handle: "ada", Bio: "builder", Tone: domain.ToneWitty, Topics: "go, databases"},
	}
	if cred != nil {
		a.Twitter = &domain.TwitterLink{
			Identity:   domain.TwitterIdentity{UserID: "tw_" + id, Username: id},
			Credential: *cred,
		}
	}
	repo.byID[id] = a
	return a
}

func seedScheduled(repo *stubPostRepo, id, accountID, text string, at time.Time) *domain.Post {
	at = at.UTC()
	p := &domain.Post{
		ID:           id,
		AccountID:    accountID,
		Text:         text,
		Status:       domain.StatusScheduled,
		ScheduledFor: &at,
		CreatedAt:    at.Add(-time.Hour),
		UpdatedAt:    at.Add(-time.Hour),
	}
	repo.byID[id] = p
	return p
}

func validCredential(now time.Time) *domain.Credential {
	return &domain.Credential{AccessToken: "access_ok", RefreshToken: "refresh_ok", ExpiresAt: now.Add(2 * time.Hour)}
}
