package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/replyrocket/composer/internal/api/middleware"
)

// accountID returns the authenticated account id set by the Auth middleware.
// An empty value means the route was wired without Auth.
func accountID(c echo.Context) (string, error) {
	id, _ := c.Get(middleware.ContextAccountID).(string)
	if id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return id, nil
}
