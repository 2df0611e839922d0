package domain

import (
	"context"

	"github.com/smallbiznis/atlasbi/internal/reshape"
)

// Repository is the warehouse access surface shared by both sync pipelines.
// Replace operations run the delete and insert of a batch inside one
// transaction so a mid-run failure cannot leave an invoice's rows deleted
// but not reinserted.
type Repository interface {
	// FinalizedInvoiceIDs returns the dedup frontier: every invoice id
	// already stored with a non-PENDING status.
	FinalizedInvoiceIDs(ctx context.Context) (map[string]struct{}, error)

	// LatestInvoiceIDs returns the reconciliation window: up to limit
	// invoice ids for the organization, most recent end date first.
	LatestInvoiceIDs(ctx context.Context, orgID string, limit int) ([]string, error)

	// ReplaceInvoices deletes any stored rows matching the batch ids, then
	// inserts the batch row by row. Returns rows written.
	ReplaceInvoices(ctx context.Context, rows []reshape.Row) (int, error)

	// ReplaceLineItems deletes all stored rows for every invoice id present
	// in the batch, then inserts the batch in chunks of batchSize, assigning
	// each row a fresh warehouse-local id. Returns rows written.
	ReplaceLineItems(ctx context.Context, rows []reshape.Row, batchSize int) (int, error)
}
