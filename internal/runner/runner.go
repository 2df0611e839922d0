// Package runner drives one batch run: every configured organization,
// invoice sync then line item sync, strictly sequential.
package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/smallbiznis/atlasbi/internal/atlas"
	"github.com/smallbiznis/atlasbi/internal/config"
	invoicedomain "github.com/smallbiznis/atlasbi/internal/invoicesync/domain"
	lineitemdomain "github.com/smallbiznis/atlasbi/internal/lineitemsync/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ErrPartialFailure marks a run in which at least one organization's
// provider calls failed. Storage failures are returned as-is and abort the
// run instead.
var ErrPartialFailure = errors.New("one or more organizations failed to sync")

type Params struct {
	fx.In

	Config config.Config
	Log    *zap.Logger

	// Each entrypoint wires the pipelines it runs; the other stays nil.
	Invoices  invoicedomain.Service  `optional:"true"`
	LineItems lineitemdomain.Service `optional:"true"`
}

type Runner struct {
	cfg       config.Config
	log       *zap.Logger
	invoices  invoicedomain.Service
	lineItems lineitemdomain.Service
}

func New(p Params) *Runner {
	return &Runner{
		cfg:       p.Config,
		log:       p.Log.Named("runner"),
		invoices:  p.Invoices,
		lineItems: p.LineItems,
	}
}

// Run processes organizations one after another. A provider failure is
// scoped to its organization and pipeline: it is logged, the run moves on,
// and the whole run reports ErrPartialFailure at the end. Any other error
// (warehouse, snapshot) aborts immediately.
func (r *Runner) Run(ctx context.Context) error {
	var partial bool

	for _, org := range r.cfg.Organizations {
		log := r.log.With(zap.String("org_id", org.OrgID))

		if r.invoices != nil {
			res, err := r.invoices.SyncOrg(ctx, org)
			if err != nil {
				if !isProviderError(err) {
					return fmt.Errorf("invoice sync for org %s: %w", org.OrgID, err)
				}
				log.Error("invoice sync failed for organization", zap.Error(err))
				partial = true
			} else {
				log.Info("invoice sync finished",
					zap.Int("rows_written", res.RowsWritten),
					zap.Int("skipped_finalized", res.SkippedFinalized),
				)
			}
		}

		if r.lineItems != nil {
			res, err := r.lineItems.SyncOrg(ctx, org)
			if err != nil {
				if !isProviderError(err) {
					return fmt.Errorf("line item sync for org %s: %w", org.OrgID, err)
				}
				log.Error("line item sync failed for organization", zap.Error(err))
				partial = true
			} else {
				log.Info("line item sync finished",
					zap.Int("rows_written", res.RowsWritten),
					zap.String("snapshot", res.SnapshotPath),
				)
			}
		}
	}

	if partial {
		return ErrPartialFailure
	}
	return nil
}

func isProviderError(err error) bool {
	var statusErr *atlas.StatusError
	return errors.As(err, &statusErr)
}
