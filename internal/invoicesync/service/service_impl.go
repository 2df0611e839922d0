package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/smallbiznis/atlasbi/internal/atlas"
	"github.com/smallbiznis/atlasbi/internal/config"
	invoicedomain "github.com/smallbiznis/atlasbi/internal/invoicesync/domain"
	"github.com/smallbiznis/atlasbi/internal/observability/metrics"
	"github.com/smallbiznis/atlasbi/internal/reshape"
	warehousedomain "github.com/smallbiznis/atlasbi/internal/warehouse/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// nestedCollections are invoice detail fields owned by other pipelines.
// They are stripped before reshape so they never show up as dropped-field
// diagnostics.
var nestedCollections = []string{"lineItems", "payments", "linkedInvoices", "links"}

type ServiceParam struct {
	fx.In

	Log     *zap.Logger
	Client  *atlas.Client
	Repo    warehousedomain.Repository
	Metrics *metrics.SyncMetrics
}

type Service struct {
	log     *zap.Logger
	client  *atlas.Client
	repo    warehousedomain.Repository
	metrics *metrics.SyncMetrics
}

func NewService(p ServiceParam) invoicedomain.Service {
	return &Service{
		log:     p.Log.Named("invoicesync.service"),
		client:  p.Client,
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

// SyncOrg pulls every not-yet-finalized invoice for the organization and
// replaces its warehouse row. Finalized invoices (anything non-PENDING
// already stored) are immutable and never re-fetched. A failed detail fetch
// skips that invoice only; a failed listing aborts the organization.
func (s *Service) SyncOrg(ctx context.Context, org config.Organization) (invoicedomain.Result, error) {
	log := s.log.With(zap.String("org_id", org.OrgID))

	frontier, err := s.repo.FinalizedInvoiceIDs(ctx)
	if err != nil {
		return invoicedomain.Result{}, err
	}

	invoices, err := s.client.ListInvoices(ctx, org)
	if err != nil {
		s.metrics.RecordSyncError(metrics.PipelineInvoices, "listing")
		return invoicedomain.Result{}, fmt.Errorf("list invoices for org %s: %w", org.OrgID, err)
	}

	var result invoicedomain.Result
	batch := make([]reshape.Row, 0, len(invoices))

	for _, summary := range invoices {
		invoiceID := summary.ID()
		if invoiceID == "" {
			log.Warn("invoice summary without id, skipping")
			continue
		}
		if _, finalized := frontier[invoiceID]; finalized {
			result.SkippedFinalized++
			continue
		}

		log.Info("processing invoice", zap.String("invoice_id", invoiceID))

		detail, err := s.client.GetInvoice(ctx, org, invoiceID)
		if err != nil {
			var statusErr *atlas.StatusError
			if errors.As(err, &statusErr) {
				log.Warn("invoice detail fetch failed, skipping invoice",
					zap.String("invoice_id", invoiceID),
					zap.Int("status", statusErr.Code),
					zap.String("body", statusErr.Body),
				)
				s.metrics.RecordSyncError(metrics.PipelineInvoices, "detail")
				result.SkippedErrors++
				continue
			}
			return invoicedomain.Result{}, fmt.Errorf("fetch invoice %s: %w", invoiceID, err)
		}

		for _, field := range nestedCollections {
			delete(detail, field)
		}

		row, diags := reshape.InvoicePlan.Apply(detail)
		s.reportDiagnostics(log, invoiceID, diags)
		result.Diagnostics += len(diags)

		if err := serializeRefunds(row); err != nil {
			return invoicedomain.Result{}, fmt.Errorf("serialize refunds for invoice %s: %w", invoiceID, err)
		}

		batch = append(batch, row)
	}

	written, err := s.repo.ReplaceInvoices(ctx, batch)
	if err != nil {
		return invoicedomain.Result{}, err
	}
	result.RowsWritten = written

	s.metrics.RecordRowsWritten(metrics.PipelineInvoices, written)
	s.metrics.RecordInvoicesSkipped(result.SkippedFinalized)

	log.Info("invoice sync complete",
		zap.Int("rows_written", result.RowsWritten),
		zap.Int("skipped_finalized", result.SkippedFinalized),
		zap.Int("skipped_errors", result.SkippedErrors),
	)
	return result, nil
}

func (s *Service) reportDiagnostics(log *zap.Logger, invoiceID string, diags []reshape.Diagnostic) {
	for _, d := range diags {
		s.metrics.RecordDiagnostic(d.Op)
		log.Info("reshape diagnostic",
			zap.String("invoice_id", invoiceID),
			zap.String("op", d.Op),
			zap.String("table", d.Table),
			zap.String("field", d.Field),
		)
	}
}

// serializeRefunds turns a structured refunds value into its JSON string so
// the warehouse stores one text column. Scalars and nulls pass through.
func serializeRefunds(row reshape.Row) error {
	switch row["refunds"].(type) {
	case []any, map[string]any:
		encoded, err := json.Marshal(row["refunds"])
		if err != nil {
			return err
		}
		row["refunds"] = string(encoded)
	}
	return nil
}
