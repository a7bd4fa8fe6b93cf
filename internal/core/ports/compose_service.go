package ports

import (
	"context"

	"github.com/replyrocket/composer/internal/core/domain"
)

// GenerateInput carries a draft generation request. When Profile is nil the
// stored profile of AccountID is used.
type GenerateInput struct {
	AccountID    string
	Prompt       string
	Profile      *domain.Profile
	CurrentDraft string
}

// AnalyzeInput carries sample posts to infer a writing style from.
type AnalyzeInput struct {
	Handle      string
	SampleTexts []string
}

// StyleAnalysis is the inferred writing style.
type StyleAnalysis struct {
	Tone   string `json:"tone"`
	Bio    string `json:"bio"`
	Topics string `json:"topics"`
}

// ComposeService produces drafts and style analyses.
type ComposeService interface {
	Generate(ctx context.Context, in GenerateInput) (string, error)
	AnalyzeStyle(ctx context.Context, in AnalyzeInput) (StyleAnalysis, error)
}
