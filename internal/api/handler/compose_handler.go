package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/replyrocket/composer/internal/core/domain"
	"github.com/replyrocket/composer/internal/core/ports"
)

// ComposeHandler serves draft generation and style analysis.
type ComposeHandler struct {
	service ports.ComposeService
}

func NewComposeHandler(service ports.ComposeService) *ComposeHandler {
	return &ComposeHandler{service: service}
}

// Generate drafts a post in the author's voice.
//
// @Summary      Generate a draft
// @Description  Uses profile_context when given, otherwise the caller's stored profile.
// @Tags         compose
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      generateRequest  true  "Prompt"
// @Success      200   {object}  generateResponse
// @Failure      400   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /v1/compose/generate [post]
func (h *ComposeHandler) Generate(c echo.Context) error {
	id, err := accountID(c)
	if err != nil {
		return err
	}
	var req generateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	in := ports.GenerateInput{AccountID: id, Prompt: req.Prompt, CurrentDraft: req.CurrentDraft}
	if p := req.ProfileContext; p != nil {
		in.Profile = &domain.Profile{Name: p.Name, Handle: p.Handle, Bio: p.Bio, Tone: p.Tone, Topics: p.Topics}
	}

	result, err := h.service.Generate(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, generateResponse{Result: result})
}

// Analyze infers tone, bio and topics from sample posts.
//
// @Summary      Analyze writing style
// @Tags         compose
// @Accept       json
// @Produce      json
// @Param        body  body      analyzeRequest  true  "Sample posts"
// @Success      200   {object}  ports.StyleAnalysis
// @Failure      400   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /v1/compose/analyze [post]
func (h *ComposeHandler) Analyze(c echo.Context) error {
	var req analyzeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	analysis, err := h.service.AnalyzeStyle(c.Request().Context(), ports.AnalyzeInput{
		Handle:      req.Handle,
		SampleTexts: req.SampleTexts,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, analysis)
}
