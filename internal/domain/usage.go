package domain

import (
	"context"
	"sync"
)

type oracleUsageKey struct{}

// OracleUsage collects oracle token usage for a single request.
// The handler puts a pointer into the context; oracle decorators add to it;
// the handler reads it for response headers.
type OracleUsage struct {
	mu          sync.Mutex
	totalTokens int
	calls       int
}

// NewContextWithUsage returns a context carrying a fresh usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *OracleUsage) {
	u := &OracleUsage{}
	return context.WithValue(ctx, oracleUsageKey{}, u), u
}

// UsageFromContext returns the collector, or nil if none is set.
func UsageFromContext(ctx context.Context) *OracleUsage {
	u, _ := ctx.Value(oracleUsageKey{}).(*OracleUsage)
	return u
}

// AddTokens records one oracle call and the tokens it consumed. Safe on a nil receiver.
func (u *OracleUsage) AddTokens(n int) {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.totalTokens += n
	u.calls++
	u.mu.Unlock()
}

// TotalTokens returns tokens consumed so far.
func (u *OracleUsage) TotalTokens() int {
	if u == nil {
		return 0
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.totalTokens
}

// Calls returns the number of oracle calls recorded.
func (u *OracleUsage) Calls() int {
	if u == nil {
		return 0
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls
}
