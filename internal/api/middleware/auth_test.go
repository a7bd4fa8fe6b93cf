package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

func signToken(t *testing.T, claims jwt.MapClaims, method jwt.SigningMethod, key any) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func runAuth(t *testing.T, header string) (*httptest.ResponseRecorder, echo.Context, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth("secret")(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, c, called
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	signed := signToken(t, jwt.MapClaims{
		"sub":   "acc_1",
		"email": "ada@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}, jwt.SigningMethodHS256, []byte("secret"))

	rec, c, called := runAuth(t, "Bearer "+signed)
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if c.Get(ContextAccountID) != "acc_1" {
		t.Errorf("account id not set, got %v", c.Get(ContextAccountID))
	}
	if c.Get(ContextEmail) != "ada@example.com" {
		t.Errorf("email not set, got %v", c.Get(ContextEmail))
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	valid := jwt.MapClaims{"sub": "acc_1", "exp": time.Now().Add(time.Hour).Unix()}

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Token abc"},
		{"garbage", "Bearer not-a-token"},
		{"wrong secret", "Bearer " + signToken(t, valid, jwt.SigningMethodHS256, []byte("other"))},
		{"expired", "Bearer " + signToken(t, jwt.MapClaims{"sub": "acc_1", "exp": time.Now().Add(-time.Minute).Unix()}, jwt.SigningMethodHS256, []byte("secret"))},
		{"no expiry", "Bearer " + signToken(t, jwt.MapClaims{"sub": "acc_1"}, jwt.SigningMethodHS256, []byte("secret"))},
		{"no subject", "Bearer " + signToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}, jwt.SigningMethodHS256, []byte("secret"))},
		{"wrong algorithm", "Bearer " + signToken(t, valid, jwt.SigningMethodHS512, []byte("secret"))},
	}
	for _, tc := range cases {
		rec, _, called := runAuth(t, tc.header)
		if called {
			t.Errorf("%s: next must not be called", tc.name)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", tc.name, rec.Code)
		}
	}
}
