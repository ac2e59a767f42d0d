package domain

import "context"

// CompletionRequest is a single system+user turn sent to a chat oracle.
type CompletionRequest struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
}

// CompletionResult is the oracle's raw text output and token usage.
type CompletionResult struct {
	Text         string
	PromptTokens int
	TotalTokens  int
}

// Completer is the chat oracle used for both classification and generation.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error)
}
