package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/replyrocket/composer/internal/core/ports"
)

// CronHandler exposes the dispatch sweep to an external scheduler.
type CronHandler struct {
	dispatch ports.DispatchService
	now      func() time.Time
	log      zerolog.Logger
}

func NewCronHandler(dispatch ports.DispatchService, log zerolog.Logger) *CronHandler {
	return &CronHandler{dispatch: dispatch, now: time.Now, log: log}
}

// Dispatch runs one sweep over every due scheduled post.
//
// @Summary      Dispatch due posts
// @Tags         cron
// @Produce      json
// @Param        token  query     string  true  "Shared cron secret"
// @Success      200    {object}  dispatchResponse
// @Failure      401    {object}  errorResponse
// @Failure      500    {object}  errorResponse
// @Router       /v1/cron/dispatch [get]
func (h *CronHandler) Dispatch(c echo.Context) error {
	result, err := h.dispatch.RunSweep(c.Request().Context(), h.now())
	if err != nil {
		h.log.Error().Err(err).Msg("dispatch sweep failed")
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Failed to fetch scheduled posts"})
	}

	if result.Attempted == 0 {
		return c.JSON(http.StatusOK, dispatchResponse{Message: "No posts to dispatch", Posted: 0})
	}
	return c.JSON(http.StatusOK, dispatchResponse{
		Message: fmt.Sprintf("Posted %d of %d posts", result.Posted, result.Attempted),
		Posted:  result.Posted,
		Results: result.Results,
	})
}
