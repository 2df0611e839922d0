package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/atlasbi/internal/observability/metrics"
	"go.uber.org/fx"
)

func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

var Module = fx.Module("observability",
	fx.Provide(
		NewRegistry,
		metrics.NewSyncMetrics,
	),
)
