package openai

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragate/internal/domain"
)

// Embedder calls /embeddings, one text per request.
type Embedder struct {
	api  *openai.Client
	req  openai.EmbeddingRequest
	logger *zap.Logger
}

func NewEmbedder(cfg *Config) *Embedder {
	return &Embedder{
		api: newClient(cfg),
		req: openai.EmbeddingRequest{
			Model:          openai.EmbeddingModel(cfg.EmbeddingModel),
			EncodingFormat: openai.EmbeddingEncodingFormatFloat,
			Dimensions:     cfg.Dimensions, // omitted when zero
		},
		logger: cfg.Logger,
	}
}

func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	req := e.req
	req.Input = []string{text}

	resp, err := roundTrip(kindEmbedding, string(req.Model), e.logger,
		func() (openai.EmbeddingResponse, error) { return e.api.CreateEmbeddings(ctx, req) },
		func(r openai.EmbeddingResponse) bool { return len(r.Data) == 0 || len(r.Data[0].Embedding) == 0 },
	)
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{
		Embedding:    resp.Data[0].Embedding,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

// HealthCheck lists models, which costs no tokens.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	return healthCheck(ctx, e.api)
}
