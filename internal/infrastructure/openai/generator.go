package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	goopenai "github.com/sashabaranov/go-openai"

	"github.com/replyrocket/composer/internal/core/ports"
)

const DefaultModel = goopenai.GPT4oMini

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Generator implements ports.TextGenerator with the chat completions API.
type Generator struct {
	client *goopenai.Client
	model  string
	log    zerolog.Logger
}

func NewGenerator(cfg Config, log zerolog.Logger) *Generator {
	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Generator{
		client: goopenai.NewClientWithConfig(clientCfg),
		model:  model,
		log:    log,
	}
}

var _ ports.TextGenerator = (*Generator)(nil)

// Complete runs one system+user exchange and returns the trimmed reply.
func (g *Generator) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: g.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: req.System},
			{Role: goopenai.ChatMessageRoleUser, Content: req.User},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		var apiErr *goopenai.APIError
		if errors.As(err, &apiErr) {
			g.log.Warn().Int("status", apiErr.HTTPStatusCode).Str("model", g.model).Msg("completion refused")
			return "", fmt.Errorf("openai: %s", apiErr.Message)
		}
		return "", fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		g.log.Warn().Str("model", g.model).Msg("completion returned no choices")
		return "", nil
	}
	g.log.Debug().Int("total_tokens", resp.Usage.TotalTokens).Msg("completion done")
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
