package lineitemsync

import (
	"github.com/smallbiznis/atlasbi/internal/lineitemsync/service"
	"github.com/smallbiznis/atlasbi/internal/snapshot"
	"go.uber.org/fx"
)

var Module = fx.Module("lineitemsync.service",
	snapshot.Module,
	fx.Provide(service.NewService),
)
