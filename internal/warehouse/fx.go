package warehouse

import (
	"github.com/smallbiznis/atlasbi/internal/warehouse/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("warehouse.repository",
	fx.Provide(repository.NewRepository),
)
