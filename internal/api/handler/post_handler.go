package handler

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/replyrocket/composer/internal/core/domain"
	"github.com/replyrocket/composer/internal/core/ports"
)

// PostHandler serves post management and direct publishing.
type PostHandler struct {
	service ports.PostService
}

func NewPostHandler(service ports.PostService) *PostHandler {
	return &PostHandler{service: service}
}

// Create stores a draft or a scheduled post.
//
// @Summary      Create a post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createPostRequest  true  "Post"
// @Success      201   {object}  domain.Post
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/posts [post]
func (h *PostHandler) Create(c echo.Context) error {
	id, err := accountID(c)
	if err != nil {
		return err
	}
	var req createPostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.service.Create(c.Request().Context(), ports.CreatePostInput{
		AccountID:    id,
		Text:         req.Text,
		Status:       domain.PostStatus(req.Status),
		ScheduledFor: req.ScheduledFor,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, post)
}

// List returns the caller's posts, newest first.
//
// @Summary      List posts
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "draft, scheduled or posted"
// @Success      200     {object}  postListResponse
// @Failure      400     {object}  errorResponse
// @Router       /v1/posts [get]
func (h *PostHandler) List(c echo.Context) error {
	id, err := accountID(c)
	if err != nil {
		return err
	}
	status := domain.PostStatus(c.QueryParam("status"))
	if status != "" && !status.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown status %q", status))
	}

	posts, err := h.service.List(c.Request().Context(), id, status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, postListResponse{Posts: posts})
}

// Get returns one of the caller's posts.
//
// @Summary      Get a post
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Post id"
// @Success      200  {object}  domain.Post
// @Failure      404  {object}  errorResponse
// @Router       /v1/posts/{id} [get]
func (h *PostHandler) Get(c echo.Context) error {
	id, err := accountID(c)
	if err != nil {
		return err
	}
	post, err := h.service.Get(c.Request().Context(), id, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// Update edits, schedules, reschedules or unschedules a post.
//
// @Summary      Update a post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Post id"
// @Param        body  body      updatePostRequest  true  "Changes"
// @Success      200   {object}  domain.Post
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/posts/{id} [patch]
func (h *PostHandler) Update(c echo.Context) error {
	id, err := accountID(c)
	if err != nil {
		return err
	}
	var req updatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.service.Update(c.Request().Context(), ports.UpdatePostInput{
		AccountID:    id,
		PostID:       c.Param("id"),
		Text:         req.Text,
		ScheduledFor: req.ScheduledFor,
		Unschedule:   req.Unschedule,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// Delete removes a draft or scheduled post.
//
// @Summary      Delete a post
// @Tags         posts
// @Security     BearerAuth
// @Param        id   path  string  true  "Post id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/posts/{id} [delete]
func (h *PostHandler) Delete(c echo.Context) error {
	id, err := accountID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), id, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Attempts lists the dispatch log of a post.
//
// @Summary      Dispatch attempts of a post
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Post id"
// @Success      200  {object}  attemptsResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/posts/{id}/attempts [get]
func (h *PostHandler) Attempts(c echo.Context) error {
	id, err := accountID(c)
	if err != nil {
		return err
	}
	attempts, err := h.service.Attempts(c.Request().Context(), id, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, attemptsResponse{Attempts: attempts})
}

// Publish posts text immediately, optionally with one image.
//
// @Summary      Post now
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      publishRequest  true  "Post"
// @Success      200   {object}  publishResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /v1/posts/publish [post]
func (h *PostHandler) Publish(c echo.Context) error {
	id, err := accountID(c)
	if err != nil {
		return err
	}
	var req publishRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if req.AccountID == "" || req.Text == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Missing account_id or text"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.AccountID != id {
		return c.JSON(http.StatusForbidden, errorResponse{Error: "access forbidden"})
	}

	in := ports.PublishInput{AccountID: id, Text: req.Text}
	if req.Image != nil {
		data, err := base64.StdEncoding.DecodeString(req.Image.Data)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "image data must be base64 encoded"})
		}
		in.Image = &ports.ImageInput{Data: data, MimeType: req.Image.MimeType}
	}

	result, err := h.service.Publish(c.Request().Context(), in)
	if err != nil {
		return publishError(c, err)
	}
	return c.JSON(http.StatusOK, publishResponse{
		Success:        true,
		ExternalPostID: result.ExternalPostID,
		Post:           result.Post,
	})
}

func publishError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrAccountNotFound):
		return err
	case errors.Is(err, domain.ErrNotConnected):
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "Twitter not connected"})
	case errors.Is(err, domain.ErrRefreshFailed):
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "Twitter session expired. Please reconnect."})
	case errors.Is(err, domain.ErrReconnectRequired):
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "Twitter authorization failed. Please reconnect your account."})
	case errors.Is(err, domain.ErrUpstreamRejected):
		return c.JSON(http.StatusBadGateway, errorResponse{Error: "Failed to post"})
	}
	return err
}
