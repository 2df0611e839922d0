package invoicesync

import (
	"github.com/smallbiznis/atlasbi/internal/invoicesync/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoicesync.service",
	fx.Provide(service.NewService),
)
