package ports

import (
	"context"

	"ContentPilot/internal/domain"
)

// ModelClient submits one agent invocation to the underlying language model
// and returns its final free-text answer. The model's own reasoning loop may
// interleave web-search tool calls when the invocation allows them.
// Implementations must be safe for concurrent use.
type ModelClient interface {
	Invoke(ctx context.Context, inv domain.Invocation) (string, error)
}

// SearchProvider fetches web-search results for a query. A failed search is
// reported as an error to the adapter, which turns it into degraded context
// for the agent rather than a run failure.
type SearchProvider interface {
	Name() string
	Search(ctx context.Context, query string) ([]domain.SearchResult, error)
}

// Deliverer transmits a finished content message to its recipient.
type Deliverer interface {
	Deliver(ctx context.Context, msg domain.Message) error
}
