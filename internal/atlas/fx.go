package atlas

import "go.uber.org/fx"

var Module = fx.Module("atlas.client",
	fx.Provide(NewClient),
)
