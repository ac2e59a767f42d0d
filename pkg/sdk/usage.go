package ragate

import (
	"context"
	"fmt"

	usageuc "github.com/kailas-cloud/ragate/internal/usecase/usage"
)

// Stats returns the persisted query counters shared with every gateway on the same store.
func (c *Client) Stats(ctx context.Context) (s Stats, err error) {
	done := c.obs.track("stats")
	defer func() { done(err) }()

	report, err := c.usageSvc.GetReport(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	return Stats{
		TotalQueries:      report.TotalQueries,
		SuccessfulQueries: report.SuccessfulQueries,
		SuccessRate:       report.SuccessRate,
		Timestamp:         report.Timestamp,
	}, nil
}

// usageUseCase is the internal interface for the counter report.
type usageUseCase interface {
	GetReport(ctx context.Context) (usageuc.Report, error)
}
