package ragate

import (
	"context"

	"github.com/kailas-cloud/ragate/internal/domain"
	healthuc "github.com/kailas-cloud/ragate/internal/usecase/health"
	usageuc "github.com/kailas-cloud/ragate/internal/usecase/usage"
)

// --- pipelineUseCase mock ---

type mockPipelineUC struct {
	runFn    func(ctx context.Context, req domain.QueryRequest) (domain.QueryResult, error)
	ingestFn func(ctx context.Context, docs []domain.Document) (int, error)
}

func (m *mockPipelineUC) RunQuery(ctx context.Context, req domain.QueryRequest) (domain.QueryResult, error) {
	return m.runFn(ctx, req)
}

func (m *mockPipelineUC) IngestDocuments(ctx context.Context, docs []domain.Document) (int, error) {
	return m.ingestFn(ctx, docs)
}

// --- documentUseCase mock ---

type mockDocumentUC struct {
	getFn    func(ctx context.Context, id string) (domain.Document, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockDocumentUC) Get(ctx context.Context, id string) (domain.Document, error) {
	return m.getFn(ctx, id)
}

func (m *mockDocumentUC) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

// --- usageUseCase mock ---

type mockUsageUC struct {
	report usageuc.Report
	err    error
}

func (m *mockUsageUC) GetReport(context.Context) (usageuc.Report, error) { return m.report, m.err }

// --- provider mocks ---

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

type mockCompleter struct {
	fn func(ctx context.Context, req CompletionRequest) (CompletionResult, error)
}

func (m *mockCompleter) Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error) {
	return m.fn(ctx, req)
}

// checkingCompleter also reports provider health.
type checkingCompleter struct {
	mockCompleter
	healthErr error
}

func (m *checkingCompleter) HealthCheck(context.Context) error { return m.healthErr }

// --- helpers ---

func testClient(pipe pipelineUseCase, docs documentUseCase) *Client {
	return &Client{pipe: pipe, docSvc: docs}
}
