package handler

import (
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/rs/zerolog"

	"github.com/replyrocket/composer/internal/core/domain"
	"github.com/replyrocket/composer/internal/core/ports"
)

const testAppURL = "http://localhost:3000"

func cookieByName(rec interface{ Result() *http.Response }, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func TestAccountHandler_Connect(t *testing.T) {
	svc := &stubAccountService{linkStart: &ports.LinkStart{URL: "https://x.com/i/oauth2/authorize?state=st", State: "st"}}
	h := NewAccountHandler(svc, testAppURL, true, zerolog.Nop())

	c, rec := newContext(http.MethodGet, "/v1/twitter/connect", "", "acc_1")
	if err := h.Connect(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	state := cookieByName(rec, cookieTwitterState)
	if state == nil || state.Value != "st" || !state.HttpOnly || !state.Secure || state.MaxAge != 600 || state.SameSite != http.SameSiteLaxMode {
		t.Errorf("unexpected state cookie %+v", state)
	}
	if ck := cookieByName(rec, cookieLinkAccountID); ck == nil || ck.Value != "acc_1" {
		t.Errorf("unexpected account cookie %+v", ck)
	}
}

func TestAccountHandler_Connect_RequiresAuth(t *testing.T) {
	h := NewAccountHandler(&stubAccountService{}, testAppURL, false, zerolog.Nop())

	c, _ := newContext(http.MethodGet, "/v1/twitter/connect", "", "")
	if code := httpStatus(t, h.Connect(c)); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestAccountHandler_Callback_Redirects(t *testing.T) {
	cases := []struct {
		name     string
		target   string
		err      error
		location string
	}{
		{"provider denied", "/v1/twitter/callback?error=access_denied&state=st", nil, "twitter_error=denied"},
		{"missing code", "/v1/twitter/callback?state=st", nil, "twitter_error=missing_params"},
		{"bad state", "/v1/twitter/callback?code=c&state=st", domain.ErrInvalidOAuthState, "twitter_error=invalid_state"},
		{"exchange failed", "/v1/twitter/callback?code=c&state=st", errors.New("boom"), "twitter_error=callback_failed"},
	}
	for _, tc := range cases {
		svc := &stubAccountService{completeFn: func(ports.CompleteLinkInput) (*domain.Account, error) { return nil, tc.err }}
		h := NewAccountHandler(svc, testAppURL+"/", false, zerolog.Nop())

		c, rec := newContext(http.MethodGet, tc.target, "", "")
		if err := h.Callback(c); err != nil {
			t.Fatalf("%s: handler error: %v", tc.name, err)
		}
		if rec.Code != http.StatusFound {
			t.Errorf("%s: expected 302, got %d", tc.name, rec.Code)
		}
		if got := rec.Header().Get("Location"); got != testAppURL+"/?"+tc.location {
			t.Errorf("%s: unexpected location %q", tc.name, got)
		}
	}
}

func TestAccountHandler_Callback_Success(t *testing.T) {
	var got ports.CompleteLinkInput
	svc := &stubAccountService{completeFn: func(in ports.CompleteLinkInput) (*domain.Account, error) {
		got = in
		return &domain.Account{ID: "acc_1", Twitter: &domain.TwitterLink{Identity: domain.TwitterIdentity{Username: "ada_x"}}}, nil
	}}
	h := NewAccountHandler(svc, testAppURL, false, zerolog.Nop())

	c, rec := newContext(http.MethodGet, "/v1/twitter/callback?code=the-code&state=st", "", "")
	c.Request().AddCookie(&http.Cookie{Name: cookieTwitterState, Value: "st"})
	c.Request().AddCookie(&http.Cookie{Name: cookieLinkAccountID, Value: "acc_1"})

	if err := h.Callback(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	want := ports.CompleteLinkInput{Code: "the-code", State: "st", CookieState: "st", CookieAccountID: "acc_1"}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	loc, _ := url.Parse(rec.Header().Get("Location"))
	if loc.Query().Get("twitter_connected") != "true" {
		t.Errorf("unexpected redirect %q", loc)
	}
	connected := cookieByName(rec, cookieTwitterConnected)
	if connected == nil || connected.HttpOnly || connected.Value != "true" {
		t.Errorf("expected readable connected cookie, got %+v", connected)
	}
	if ck := cookieByName(rec, cookieTwitterState); ck == nil || ck.MaxAge >= 0 {
		t.Errorf("state cookie must be cleared, got %+v", ck)
	}
}

func TestAccountHandler_UpdateAndDisconnect(t *testing.T) {
	svc := &stubAccountService{account: &domain.Account{ID: "acc_1"}}
	h := NewAccountHandler(svc, testAppURL, false, zerolog.Nop())

	c, rec := newContext(http.MethodPatch, "/v1/account", `{"bio":"hello","tone":"bold"}`, "acc_1")
	if err := h.Update(c); err != nil {
		t.Fatalf("update error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.lastUpdate.Bio == nil || *svc.lastUpdate.Bio != "hello" || svc.lastUpdate.Name != nil {
		t.Errorf("unexpected update %+v", svc.lastUpdate)
	}

	c, _ = newContext(http.MethodPatch, "/v1/account", `{"tone":"angry"}`, "acc_1")
	if code := httpStatus(t, h.Update(c)); code != http.StatusUnprocessableEntity {
		t.Errorf("bad tone: expected 422, got %d", code)
	}

	c, rec = newContext(http.MethodDelete, "/v1/account/twitter", "", "acc_1")
	if err := h.Disconnect(c); err != nil {
		t.Fatalf("disconnect error: %v", err)
	}
	if rec.Code != http.StatusNoContent || svc.unlinked != "acc_1" {
		t.Errorf("unexpected disconnect result %d %q", rec.Code, svc.unlinked)
	}
}

func TestAccountHandler_Get(t *testing.T) {
	h := NewAccountHandler(&stubAccountService{account: &domain.Account{ID: "acc_1"}}, testAppURL, false, zerolog.Nop())

	c, rec := newContext(http.MethodGet, "/v1/account", "", "acc_1")
	if err := h.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	c, _ = newContext(http.MethodGet, "/v1/account", "", "acc_2")
	if err := h.Get(c); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}
