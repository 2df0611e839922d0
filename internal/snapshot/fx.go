package snapshot

import "go.uber.org/fx"

var Module = fx.Module("snapshot.exporter",
	fx.Provide(NewExporter),
)
