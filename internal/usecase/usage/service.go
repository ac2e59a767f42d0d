package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/ragate/internal/domain"
)

// Report is the counter surface exposed on GET /metrics.
type Report struct {
	TotalQueries      int64     `json:"total_queries"`
	SuccessfulQueries int64     `json:"successful_queries"`
	SuccessRate       float64   `json:"success_rate"`
	Timestamp         time.Time `json:"timestamp"`
}

// Service handles usage reporting.
type Service struct {
	counters CounterReader
	now      func() time.Time
}

// New creates a Service.
func New(counters CounterReader) *Service {
	return &Service{counters: counters, now: time.Now}
}

// GetReport reads both counters. success_rate = successful / max(total, 1).
func (s *Service) GetReport(ctx context.Context) (Report, error) {
	total, err := s.counters.Get(ctx, domain.CounterTotalQueries)
	if err != nil {
		return Report{}, fmt.Errorf("read %s: %w", domain.CounterTotalQueries, err)
	}
	successful, err := s.counters.Get(ctx, domain.CounterSuccessfulQueries)
	if err != nil {
		return Report{}, fmt.Errorf("read %s: %w", domain.CounterSuccessfulQueries, err)
	}

	return Report{
		TotalQueries:      total,
		SuccessfulQueries: successful,
		SuccessRate:       float64(successful) / float64(max(total, 1)),
		Timestamp:         s.now().UTC(),
	}, nil
}
