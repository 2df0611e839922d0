package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/smallbiznis/atlasbi/internal/atlas"
	"github.com/smallbiznis/atlasbi/internal/config"
	lineitemdomain "github.com/smallbiznis/atlasbi/internal/lineitemsync/domain"
	"github.com/smallbiznis/atlasbi/internal/observability/metrics"
	"github.com/smallbiznis/atlasbi/internal/reshape"
	"github.com/smallbiznis/atlasbi/internal/snapshot"
	warehousedomain "github.com/smallbiznis/atlasbi/internal/warehouse/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Config   config.Config
	Log      *zap.Logger
	Client   *atlas.Client
	Repo     warehousedomain.Repository
	Exporter *snapshot.Exporter
	Metrics  *metrics.SyncMetrics
}

type Service struct {
	log      *zap.Logger
	client   *atlas.Client
	repo     warehousedomain.Repository
	exporter *snapshot.Exporter
	metrics  *metrics.SyncMetrics

	windowSize int
	batchSize  int
}

func NewService(p ServiceParam) lineitemdomain.Service {
	return &Service{
		log:        p.Log.Named("lineitemsync.service"),
		client:     p.Client,
		repo:       p.Repo,
		exporter:   p.Exporter,
		metrics:    p.Metrics,
		windowSize: p.Config.WindowSize,
		batchSize:  p.Config.InsertBatchSize,
	}
}

// SyncOrg fully reconciles the line items of the organization's
// reconciliation window: the most recent invoices by end date, as already
// stored in the warehouse. Invoices outside the window are never touched.
// The CSV snapshot is written after the database insert.
func (s *Service) SyncOrg(ctx context.Context, org config.Organization) (lineitemdomain.Result, error) {
	log := s.log.With(zap.String("org_id", org.OrgID))

	invoiceIDs, err := s.repo.LatestInvoiceIDs(ctx, org.OrgID, s.windowSize)
	if err != nil {
		return lineitemdomain.Result{}, err
	}
	if len(invoiceIDs) == 0 {
		log.Info("no invoices in warehouse yet, nothing to reconcile")
	}

	var result lineitemdomain.Result
	var rows []reshape.Row

	for _, invoiceID := range invoiceIDs {
		detail, err := s.client.GetInvoice(ctx, org, invoiceID)
		if err != nil {
			var statusErr *atlas.StatusError
			if errors.As(err, &statusErr) {
				log.Warn("invoice detail fetch failed, skipping invoice",
					zap.String("invoice_id", invoiceID),
					zap.Int("status", statusErr.Code),
					zap.String("body", statusErr.Body),
				)
				s.metrics.RecordSyncError(metrics.PipelineLineItems, "detail")
				result.SkippedErrors++
				continue
			}
			return lineitemdomain.Result{}, fmt.Errorf("fetch invoice %s: %w", invoiceID, err)
		}

		items := detail.LineItems()
		for _, item := range items {
			item["invoice_id"] = invoiceID

			row, diags := reshape.LineItemPlan.Apply(item)
			s.reportDiagnostics(log, invoiceID, diags)
			result.Diagnostics += len(diags)

			rows = append(rows, row)
		}

		log.Info("invoice line items flattened",
			zap.String("invoice_id", invoiceID),
			zap.Int("count", len(items)),
		)
		result.InvoicesReconciled++
	}

	written, err := s.repo.ReplaceLineItems(ctx, rows, s.batchSize)
	if err != nil {
		return lineitemdomain.Result{}, err
	}
	result.RowsWritten = written
	s.metrics.RecordRowsWritten(metrics.PipelineLineItems, written)

	path, err := s.exporter.Write(org.OrgID, reshape.LineItemPlan.Columns, rows)
	if err != nil {
		return lineitemdomain.Result{}, fmt.Errorf("write snapshot for org %s: %w", org.OrgID, err)
	}
	result.SnapshotPath = path

	log.Info("line item sync complete",
		zap.Int("rows_written", result.RowsWritten),
		zap.Int("invoices_reconciled", result.InvoicesReconciled),
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
