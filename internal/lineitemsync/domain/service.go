package domain

import (
	"context"

	"github.com/smallbiznis/atlasbi/internal/config"
)

// Result summarizes one organization's line item sync.
type Result struct {
	// RowsWritten is the number of line item rows replaced in the warehouse.
	RowsWritten int
	// InvoicesReconciled counts window invoices whose line items were
	// fully replaced.
	InvoicesReconciled int
	// SkippedErrors counts window invoices whose detail fetch failed and
	// was skipped without failing the batch.
	SkippedErrors int
	// Diagnostics counts reshape reconciliation events.
	Diagnostics int
	// SnapshotPath is the CSV side artifact written after the insert.
	SnapshotPath string
}

// Service reconciles the line items of the most recent invoices for one
// organization: their warehouse rows are deleted and reinserted from the
// provider's current detail on every run.
type Service interface {
	SyncOrg(ctx context.Context, org config.Organization) (Result, error)
}
