package core

import (
	"context"
)

// GateClient defines the interface for the LLM-backed subscription gate
type GateClient interface {
	// IsSubscription decides whether an email is about a paid subscription
	IsSubscription(ctx context.Context, email *Email) (bool, error)
}

// VerdictCache defines the interface for caching gate verdicts
type VerdictCache interface {
	// Get retrieves a cached verdict by key
	Get(ctx context.Context, key string) (*VerdictEntry, error)

	// Set stores a verdict entry
	Set(ctx context.Context, entry *VerdictEntry) error

	// Delete removes a verdict entry
	Delete(ctx context.Context, key string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}

// ResultSink defines the interface for delivering a finished batch
type ResultSink interface {
	// Deliver hands the batch to the downstream consumer. A non-nil error
	// means delivery failed; the batch is not retried.
	Deliver(ctx context.Context, batch *ResultBatch) error
}
