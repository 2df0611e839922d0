package domain

import (
	"context"

	"github.com/smallbiznis/atlasbi/internal/config"
)

// Result summarizes one organization's invoice sync.
type Result struct {
	// RowsWritten is the number of invoice rows replaced in the warehouse.
	RowsWritten int
	// SkippedFinalized counts invoices excluded by the dedup frontier.
	SkippedFinalized int
	// SkippedErrors counts invoices whose detail fetch failed and was
	// skipped without failing the batch.
	SkippedErrors int
	// Diagnostics counts reshape reconciliation events (dropped provider
	// fields, defaulted columns).
	Diagnostics int
}

// Service synchronizes invoice headers from the billing provider into the
// warehouse, one organization per call.
type Service interface {
	SyncOrg(ctx context.Context, org config.Organization) (Result, error)
}
