package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/replyrocket/composer/internal/api/metrics"
	"github.com/replyrocket/composer/internal/core/domain"
	"github.com/replyrocket/composer/internal/core/ports"
)

const (
	generateMaxTokens   = 500
	generateTemperature = 0.8
	analyzeMaxTokens    = 500
	analyzeTemperature  = 0.3
	sampleSeparator     = "\n---\n"
)

// jsonObject matches from the first '{' to the last '}' of a reply.
var jsonObject = regexp.MustCompile(`(?s)\{.*\}`)

// FallbackStyle is returned when an analysis reply cannot be parsed.
var FallbackStyle = ports.StyleAnalysis{Tone: domain.ToneCasual, Bio: "", Topics: ""}

const generateSystemPrompt = `You are a Twitter/X content assistant helping %[1]s (@%[2]s) create engaging tweets.

User Profile:
- Name: %[1]s
- Handle: @%[2]s
- Bio: %[3]s
- Tone: %[4]s
- Topics they post about: %[5]s

Guidelines:
- Keep tweets under 280 characters
- Match the user's tone and style
- Make content relevant to their topics
- Be authentic and engaging
- Don't use hashtags unless specifically requested`

const analyzeSystemPrompt = `You are an expert at analyzing Twitter/X writing styles. Analyze the provided tweets and extract:
1. The user's writing tone (casual, professional, witty, inspirational, educational, or bold)
2. A brief bio/description of who they are based on their tweets (1-2 sentences)
3. The main topics they tweet about (comma-separated list)

Respond in JSON format:
{
  "tone": "casual" | "professional" | "witty" | "inspirational" | "educational" | "bold",
  "bio": "string",
  "topics": "string"
}`

// ComposeService wraps the generative-text service with the account's writing profile.
type ComposeService struct {
	generator ports.TextGenerator
	accounts  ports.AccountRepository
	log       zerolog.Logger
}

func NewComposeService(generator ports.TextGenerator, accounts ports.AccountRepository, log zerolog.Logger) *ComposeService {
	return &ComposeService{generator: generator, accounts: accounts, log: log}
}

// Generate drafts a post for the request, steered by the profile.
func (s *ComposeService) Generate(ctx context.Context, in ports.GenerateInput) (string, error) {
	if strings.TrimSpace(in.Prompt) == "" {
		return "", fmt.Errorf("%w: prompt is required", domain.ErrValidation)
	}

	profile := in.Profile
	if profile == nil {
		account, err := s.accounts.FindByID(ctx, in.AccountID)
		if err != nil {
			return "", err
		}
		profile = &account.Profile
	}

	user := in.Prompt
	if in.CurrentDraft != "" {
		user = fmt.Sprintf("The user is working on this draft: \"%s\"\n\nTheir request: %s", in.CurrentDraft, in.Prompt)
	}

	out, err := s.generator.Complete(ctx, ports.CompletionRequest{
		System:      fmt.Sprintf(generateSystemPrompt, profile.Name, profile.Handle, profile.Bio, profile.Tone, profile.Topics),
		User:        user,
		MaxTokens:   generateMaxTokens,
		Temperature: generateTemperature,
	})
	if err != nil {
		metrics.CompletionsTotal.WithLabelValues("generate", "error").Inc()
		s.log.Error().Err(err).Str("account_id", in.AccountID).Msg("draft generation failed")
		return "", fmt.Errorf("generate: %w: %v", domain.ErrUpstreamRejected, err)
	}

	metrics.CompletionsTotal.WithLabelValues("generate", "ok").Inc()
	return out, nil
}

// AnalyzeStyle infers tone, bio and topics from sample posts. An unparseable
// reply yields FallbackStyle rather than an error.
func (s *ComposeService) AnalyzeStyle(ctx context.Context, in ports.AnalyzeInput) (ports.StyleAnalysis, error) {
	samples := make([]string, 0, len(in.SampleTexts))
	for _, t := range in.SampleTexts {
		if strings.TrimSpace(t) != "" {
			samples = append(samples, t)
		}
	}
	if len(samples) == 0 {
		return ports.StyleAnalysis{}, fmt.Errorf("%w: at least one sample text is required", domain.ErrValidation)
	}

	out, err := s.generator.Complete(ctx, ports.CompletionRequest{
		System:      analyzeSystemPrompt,
		User:        fmt.Sprintf("Analyze these tweets from @%s:\n\n%s", strings.TrimPrefix(in.Handle, "@"), strings.Join(samples, sampleSeparator)),
		MaxTokens:   analyzeMaxTokens,
		Temperature: analyzeTemperature,
	})
	if err != nil {
		metrics.CompletionsTotal.WithLabelValues("analyze", "error").Inc()
		s.log.Error().Err(err).Str("handle", in.Handle).Msg("style analysis failed")
		return ports.StyleAnalysis{}, fmt.Errorf("analyze: %w: %v", domain.ErrUpstreamRejected, err)
	}

	style, ok := parseStyle(out)
	if !ok {
		metrics.CompletionsTotal.WithLabelValues("analyze", "fallback").Inc()
		s.log.Warn().Str("handle", in.Handle).Msg("style analysis reply not parseable, using fallback")
		return FallbackStyle, nil
	}
	metrics.CompletionsTotal.WithLabelValues("analyze", "ok").Inc()
	return style, nil
}

func parseStyle(reply string) (ports.StyleAnalysis, bool) {
	raw := jsonObject.FindString(reply)
	if raw == "" {
		return ports.StyleAnalysis{}, false
	}
	var style ports.StyleAnalysis
	if err := json.Unmarshal([]byte(raw), &style); err != nil {
		return ports.StyleAnalysis{}, false
	}
	style.Tone = strings.ToLower(strings.TrimSpace(style.Tone))
	if style.Tone == "" || !domain.ValidTone(style.Tone) {
		style.Tone = domain.ToneCasual
	}
	return style, true
}
