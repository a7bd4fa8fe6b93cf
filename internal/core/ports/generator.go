package ports

import "context"

// CompletionRequest is a single-turn chat completion.
type CompletionRequest struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float32
}

// TextGenerator is the generative-text service.
type TextGenerator interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
