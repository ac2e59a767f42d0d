package health

import "context"

// DBPinger is the store behind documents and counters.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// OracleChecker is a model provider that can answer a cheap liveness call.
type OracleChecker interface {
	HealthCheck(ctx context.Context) error
}
