package openai

import (
	"context"
	"math"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragate/internal/domain"
)

// Completer runs one system+user chat exchange per call.
type Completer struct {
	api    *openai.Client
	model  string
	logger *zap.Logger
}

// NewCompleter creates a chat completer for cfg.ChatModel.
func NewCompleter(cfg *Config) *Completer {
	return &Completer{api: newClient(cfg), model: cfg.ChatModel, logger: cfg.Logger}
}

// Complete sends req as a system and a user message and returns the first choice.
func (c *Completer) Complete(ctx context.Context, req domain.CompletionRequest) (domain.CompletionResult, error) {
	chat := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	// omitempty drops 0, which the API then reads as 1.0
	if chat.Temperature == 0 {
		chat.Temperature = math.SmallestNonzeroFloat32
	}

	resp, err := roundTrip(kindChat, c.model, c.logger,
		func() (openai.ChatCompletionResponse, error) { return c.api.CreateChatCompletion(ctx, chat) },
		func(r openai.ChatCompletionResponse) bool { return len(r.Choices) == 0 },
	)
	if err != nil {
		return domain.CompletionResult{}, err
	}
	return domain.CompletionResult{
		Text:         resp.Choices[0].Message.Content,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

// HealthCheck lists models to confirm the API answers.
func (c *Completer) HealthCheck(ctx context.Context) error {
	return healthCheck(ctx, c.api)
}
