package domain

import "errors"

var ErrUnauthorized = errors.New("unauthorized")
var ErrForbidden = errors.New("access forbidden")
var ErrValidation = errors.New("validation failed")

var ErrAccountNotFound = errors.New("account not found")
var ErrAccountExists = errors.New("account already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")

var ErrPostNotFound = errors.New("post not found")
var ErrPostImmutable = errors.New("post already posted")
var ErrInvalidTransition = errors.New("invalid status transition")

// Platform linkage and delivery.
var (
	ErrNotConnected      = errors.New("twitter not connected")
	ErrReconnectRequired = errors.New("twitter session expired, reconnect required")
	ErrRefreshFailed     = errors.New("token refresh failed")
	ErrUpstreamRejected  = errors.New("upstream rejected request")
	ErrInvalidOAuthState = errors.New("invalid oauth state")
)

// Signup flow.
var (
	ErrInvalidCode      = errors.New("invalid verification code")
	ErrSignupNotFound   = errors.New("signup session not found or expired")
	ErrSignupIncomplete = errors.New("email not verified")
)
