package main

import (
	"github.com/smallbiznis/atlasbi/internal/atlas"
	"github.com/smallbiznis/atlasbi/internal/config"
	"github.com/smallbiznis/atlasbi/internal/invoicesync"
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
		// Core infrastructure
		config.Module,
		logger.Module,
		observability.Module,
		db.Module,
		migration.Module,

		// Billing API and warehouse
		atlas.Module,
		warehouse.Module,

		// Both pipelines, then the one-shot runner
		invoicesync.Module,
		lineitemsync.Module,
		runner.Module,
	)
	app.Run()
}
