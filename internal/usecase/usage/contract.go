package usage

import "context"

// CounterReader provides read-only access to the persisted query counters.
type CounterReader interface {
	Get(ctx context.Context, name string) (int64, error)
}
