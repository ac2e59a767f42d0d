package health

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragate/internal/logger"
)

// Status is the rolled-up verdict: ok only when every probe passes.
type Status string

const (
	Healthy  Status = "ok"
	Degraded Status = "degraded"
)

// CheckResult is one probe's outcome.
type CheckResult string

const (
	CheckOK    CheckResult = "ok"
	CheckError CheckResult = "error"
)

// Probe names, the keys of Report.Checks.
const (
	CheckDatabase  = "database"
	CheckEmbedding = "embedding"
	CheckChat      = "chat"
)

type Report struct {
	Status Status
	Checks map[string]CheckResult
}

type probe struct {
	name string
	run  func(context.Context) error
}

// Service probes the store and, when they support it, both oracles.
type Service struct {
	probes []probe
}

// New builds the probe list. A nil oracle checker is left out of reports.
func New(db DBPinger, embedding, chat OracleChecker) *Service {
	probes := []probe{{CheckDatabase, db.Ping}}
	if embedding != nil {
		probes = append(probes, probe{CheckEmbedding, embedding.HealthCheck})
	}
	if chat != nil {
		probes = append(probes, probe{CheckChat, chat.HealthCheck})
	}
	return &Service{probes: probes}
}

// Check runs all probes concurrently and waits for every one of them.
func (s *Service) Check(ctx context.Context) Report {
	log := logger.FromContext(ctx)

	results := make([]CheckResult, len(s.probes))
	var wg sync.WaitGroup
	for i, p := range s.probes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := p.run(ctx); err != nil {
				log.Warn("Health probe failed", zap.String("component", p.name), zap.Error(err))
				results[i] = CheckError
				return
			}
			results[i] = CheckOK
		}()
	}
	wg.Wait()

	report := Report{Status: Healthy, Checks: make(map[string]CheckResult, len(s.probes))}
	for i, p := range s.probes {
		report.Checks[p.name] = results[i]
		if results[i] == CheckError {
			report.Status = Degraded
		}
	}
	return report
}
