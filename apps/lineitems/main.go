// The lineitems app runs only the line item pipeline, mirroring the
// standalone line items batch job.
package main

import (
	"github.com/smallbiznis/atlasbi/internal/atlas"
	"github.com/smallbiznis/atlasbi/internal/config"
	"github.com/smallbiznis/atlasbi/internal/lineitemsync"
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

		lineitemsync.Module,
		runner.Module,
	)
	app.Run()
}
