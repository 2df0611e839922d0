// The invoices app runs only the invoice header pipeline, mirroring the
// standalone invoicing batch job.
package main

import (
	"github.com/smallbiznis/atlasbi/internal/atlas"
	"github.com/smallbiznis/atlasbi/internal/config"
	"github.com/smallbiznis/atlasbi/internal/invoicesync"
	"github.com/smallbiznis/atlasbi/internal/logger"
	"github.com/smallbiznis/atlasbi/internal/migration"
	"github.com/smallbiznis/atlasbi/internal/observability"
	"github.com/smallbiznis/atlasbi/internal/runner"
	"github.com/smallbiznis/atlasbi/internal/warehouse"
	"github.com/smallbiznis/atlasbi/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		observability.Module,
		db.Module,
		migration.Module,

		atlas.Module,
		warehouse.Module,

		invoicesync.Module,
		runner.Module,
	)
	app.Run()
}
