package twitter

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/replyrocket/composer/internal/core/domain"
)

// APIError is a non-2xx answer from the platform. Error returns the
// provider's own message so it can be surfaced to the caller verbatim.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return e.Detail
}

// Unwrap classifies the refusal: a rejected credential asks the user to
// reconnect, anything else is an upstream refusal.
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return domain.ErrReconnectRequired
	}
	return domain.ErrUpstreamRejected
}

type errorBody struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func newAPIError(status int, body []byte) *APIError {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)

	detail := eb.Detail
	if detail == "" && len(eb.Errors) > 0 {
		detail = eb.Errors[0].Message
	}
	if detail == "" {
		detail = eb.Title
	}
	if detail == "" {
		detail = fmt.Sprintf("twitter: unexpected status %d", status)
	}
	return &APIError{Status: status, Detail: detail}
}

// tokenError maps an oauth2 endpoint failure. The token endpoint answers
// 400 invalid_grant for a revoked or expired refresh token.
func tokenError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		detail := re.ErrorDescription
		if detail == "" {
			detail = re.ErrorCode
		}
		if detail == "" {
			detail = fmt.Sprintf("twitter: token endpoint status %d", re.Response.StatusCode)
		}
		status := re.Response.StatusCode
		if status == http.StatusBadRequest && re.ErrorCode == "invalid_grant" {
			status = http.StatusUnauthorized
		}
		return &APIError{Status: status, Detail: detail}
	}
	return fmt.Errorf("%w: %v", domain.ErrUpstreamRejected, err)
}
