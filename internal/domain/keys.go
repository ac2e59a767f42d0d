package domain

// KeyPrefix namespaces every key the gateway writes to the shared store.
const KeyPrefix = "ragate:"

// Metric counter names kept in the counter store.
const (
	CounterTotalQueries      = "total_queries"
	CounterSuccessfulQueries = "successful_queries"
)
