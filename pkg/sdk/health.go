package ragate

import (
	"context"
	"slices"

	healthuc "github.com/kailas-cloud/ragate/internal/usecase/health"
)

// HealthStatus is the outcome of one round of probes.
// Status is "ok" or "degraded"; Checks maps "database", "embedding" and "chat" to "ok" or "error".
// Oracle entries appear only for providers that support a liveness call.
type HealthStatus struct {
	Status string
	Checks map[string]string
}

// OK reports whether every probe passed.
func (h HealthStatus) OK() bool { return h.Status == string(healthuc.Healthy) }

// Failing lists the components whose probe failed, sorted.
func (h HealthStatus) Failing() []string {
	var out []string
	for name, res := range h.Checks {
		if res != string(healthuc.CheckOK) {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

// Health probes the store and the oracles concurrently.
func (c *Client) Health(ctx context.Context) HealthStatus {
	r := c.healthSvc.Check(ctx)
	h := HealthStatus{Status: string(r.Status), Checks: make(map[string]string, len(r.Checks))}
	for name, res := range r.Checks {
		h.Checks[name] = string(res)
	}
	return h
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
