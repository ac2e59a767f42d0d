package relevance

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/ragate/internal/domain"
)

// --- Mock ---

type mockCompleter struct {
	text string
	err  error
	got  domain.CompletionRequest
}

func (m *mockCompleter) Complete(_ context.Context, req domain.CompletionRequest) (domain.CompletionResult, error) {
	m.got = req
	if m.err != nil {
		return domain.CompletionResult{}, m.err
	}
	return domain.CompletionResult{Text: m.text}, nil
}

// --- Tests ---

func TestIsRelevant_Verdicts(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"RELEVANT", true},
		{"  RELEVANT\n", true},
		{"NOT_RELEVANT", false},
		{"relevant", false},
		{"RELEVANT.", false},
		{"", false},
	}
	for _, tt := range tests {
		c := New(&mockCompleter{text: tt.text}, 0, zap.NewNop())
		if got := c.IsRelevant(context.Background(), "q"); got != tt.want {
			t.Errorf("verdict %q: got %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestIsRelevant_Request(t *testing.T) {
	m := &mockCompleter{text: "RELEVANT"}
	New(m, 0, zap.NewNop()).IsRelevant(context.Background(), "top agents by revenue")

	if m.got.System != SystemPrompt {
		t.Errorf("unexpected system prompt %q", m.got.System)
	}
	if m.got.User != "top agents by revenue" {
		t.Errorf("unexpected user turn %q", m.got.User)
	}
	if m.got.Temperature != 0 || m.got.MaxTokens != DefaultMaxTokens {
		t.Errorf("unexpected sampling: temperature %v max_tokens %d", m.got.Temperature, m.got.MaxTokens)
	}
}

func TestIsRelevant_FailOpen(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	c := New(&mockCompleter{err: errors.New("timeout")}, 0, zap.New(core))

	if !c.IsRelevant(context.Background(), "q") {
		t.Fatal("oracle failure must fail open")
	}
	if logs.FilterMessage("relevance check failed, fail-open").Len() != 1 {
		t.Error("expected the failure to be logged")
	}
}
