package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/replyrocket/composer/internal/core/domain"
	"github.com/replyrocket/composer/internal/core/ports"
)

// Cookies carried across the authorization redirect.
const (
	cookieTwitterState     = "twitter_state"
	cookieLinkAccountID    = "composer_account_id"
	cookieTwitterConnected = "twitter_connected"

	linkCookieTTL      = 10 * time.Minute
	connectedCookieTTL = time.Minute
)

// AccountHandler serves the profile and platform linking routes.
type AccountHandler struct {
	service       ports.AccountService
	appURL        string
	secureCookies bool
	log           zerolog.Logger
}

func NewAccountHandler(service ports.AccountService, appURL string, secureCookies bool, log zerolog.Logger) *AccountHandler {
	return &AccountHandler{
		service:       service,
		appURL:        strings.TrimRight(appURL, "/"),
		secureCookies: secureCookies,
		log:           log,
	}
}

// Get returns the authenticated account.
//
// @Summary      Current account
// @Tags         account
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Account
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/account [get]
func (h *AccountHandler) Get(c echo.Context) error {
	id, err := accountID(c)
	if err != nil {
		return err
	}
	account, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, account)
}

// Update edits profile fields; omitted fields are left unchanged.
//
// @Summary      Update profile
// @Tags         account
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Profile fields"
// @Success      200   {object}  domain.Account
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/account [patch]
func (h *AccountHandler) Update(c echo.Context) error {
	id, err := accountID(c)
	if err != nil {
		return err
	}
	var req updateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	account, err := h.service.UpdateProfile(c.Request().Context(), id, ports.ProfileUpdate{
		Name:      req.Name,
		Handle:    req.Handle,
		Bio:       req.Bio,
		Tone:      req.Tone,
		Topics:    req.Topics,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, account)
}

// Connect prepares the authorization redirect.
//
// @Summary      Start linking a Twitter account
// @Description  Returns the authorization URL. State and account cookies are set for the callback.
// @Tags         twitter
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  connectResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/twitter/connect [get]
func (h *AccountHandler) Connect(c echo.Context) error {
	id, err := accountID(c)
	if err != nil {
		return err
	}
	start, err := h.service.BeginTwitterLink(c.Request().Context(), id)
	if err != nil {
		return err
	}

	c.SetCookie(h.cookie(cookieTwitterState, start.State, linkCookieTTL, true))
	c.SetCookie(h.cookie(cookieLinkAccountID, id, linkCookieTTL, true))
	return c.JSON(http.StatusOK, connectResponse{URL: start.URL})
}

// Callback completes linking and redirects the browser back to the app.
//
// @Summary      OAuth callback
// @Tags         twitter
// @Param        code   query  string  false  "Authorization code"
// @Param        state  query  string  false  "State"
// @Param        error  query  string  false  "Provider error"
// @Success      302
// @Router       /v1/twitter/callback [get]
func (h *AccountHandler) Callback(c echo.Context) error {
	if providerErr := c.QueryParam("error"); providerErr != "" {
		h.log.Warn().Str("provider_error", providerErr).Msg("twitter authorization denied")
		return h.redirect(c, "twitter_error", "denied")
	}

	in := ports.CompleteLinkInput{
		Code:  c.QueryParam("code"),
		State: c.QueryParam("state"),
	}
	if in.Code == "" || in.State == "" {
		return h.redirect(c, "twitter_error", "missing_params")
	}
	if ck, err := c.Cookie(cookieTwitterState); err == nil {
		in.CookieState = ck.Value
	}
	if ck, err := c.Cookie(cookieLinkAccountID); err == nil {
		in.CookieAccountID = ck.Value
	}

	account, err := h.service.CompleteTwitterLink(c.Request().Context(), in)
	switch {
	case errors.Is(err, domain.ErrValidation):
		return h.redirect(c, "twitter_error", "missing_params")
	case errors.Is(err, domain.ErrInvalidOAuthState):
		return h.redirect(c, "twitter_error", "invalid_state")
	case err != nil:
		h.log.Error().Err(err).Str("account_id", in.CookieAccountID).Msg("twitter callback failed")
		return h.redirect(c, "twitter_error", "callback_failed")
	}

	h.log.Info().Str("account_id", account.ID).Str("twitter_username", account.Twitter.Identity.Username).Msg("twitter account linked")
	c.SetCookie(h.cookie(cookieTwitterState, "", -1, true))
	c.SetCookie(h.cookie(cookieLinkAccountID, "", -1, true))
	c.SetCookie(h.cookie(cookieTwitterConnected, "true", connectedCookieTTL, false))
	return h.redirect(c, "twitter_connected", "true")
}

// Disconnect removes the linked Twitter account.
//
// @Summary      Unlink Twitter
// @Tags         twitter
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/account/twitter [delete]
func (h *AccountHandler) Disconnect(c echo.Context) error {
	id, err := accountID(c)
	if err != nil {
		return err
	}
	if err := h.service.UnlinkTwitter(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// cookie builds a Lax cookie; a negative ttl deletes it.
func (h *AccountHandler) cookie(name, value string, ttl time.Duration, httpOnly bool) *http.Cookie {
	maxAge := int(ttl.Seconds())
	if ttl < 0 {
		maxAge = -1
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: httpOnly,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *AccountHandler) redirect(c echo.Context, key, value string) error {
	q := url.Values{}
	q.Set(key, value)
	return c.Redirect(http.StatusFound, h.appURL+"/?"+q.Encode())
}
