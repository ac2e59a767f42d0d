package ragate

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/ragate/internal/usecase/pipeline"
)

// observer logs and counts public Client calls. The zero value and a nil
// pointer both observe nothing.
type observer struct {
	log   *slog.Logger
	calls *prometheus.CounterVec   // op, outcome
	took  *prometheus.HistogramVec // op
}

func newObserver(log *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{log: log}
	if reg == nil {
		return o, nil
	}

	var err error
	o.calls, err = shared(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ragate",
		Subsystem: "sdk",
		Name:      "operations_total",
		Help:      "Client calls by operation and pipeline outcome.",
	}, []string{"operation", "outcome"}))
	if err != nil {
		return nil, err
	}
	o.took, err = shared(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ragate",
		Subsystem: "sdk",
		Name:      "operation_duration_seconds",
		Help:      "Client call latency.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
	}, []string{"operation"}))
	if err != nil {
		return nil, err
	}
	return o, nil
}

// shared registers c, or hands back the collector an earlier Client put on the same registry.
func shared[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var dup prometheus.AlreadyRegisteredError
	if !errors.As(err, &dup) {
		return c, fmt.Errorf("ragate: register metrics: %w", err)
	}
	existing, ok := dup.ExistingCollector.(T)
	if !ok {
		return c, fmt.Errorf("ragate: metric name taken by a %T", dup.ExistingCollector)
	}
	return existing, nil
}

// track starts timing op. Call the returned func exactly once with the call's error.
func (o *observer) track(op string) func(error) {
	if o == nil {
		return func(error) {}
	}
	began := time.Now()
	return func(err error) {
		elapsed := time.Since(began)
		outcome := pipeline.Outcome(err)

		if o.calls != nil {
			o.calls.WithLabelValues(op, outcome).Inc()
			o.took.WithLabelValues(op).Observe(elapsed.Seconds())
		}
		if o.log == nil {
			return
		}
		if err != nil {
			o.log.Warn("ragate call failed", "op", op, "outcome", outcome, "elapsed", elapsed, "error", err)
			return
		}
		o.log.Debug("ragate call done", "op", op, "elapsed", elapsed)
	}
}
