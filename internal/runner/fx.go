package runner

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Execute runs the batch once on startup and shuts the app down with the
// run's exit code. The run itself is detached from the startup context so
// fx's start timeout does not bound it.
func Execute(lc fx.Lifecycle, shutdowner fx.Shutdowner, r *Runner, registry *prometheus.Registry, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			_ = ctx
			go func() {
				code := 0
				if err := r.Run(context.Background()); err != nil {
					log.Error("sync run failed", zap.Error(err))
					code = 1
				}
				logCounters(registry, log.Named("runner.metrics"))
				_ = shutdowner.Shutdown(fx.ExitCode(code))
			}()
			return nil
		},
	})
}

// logCounters dumps the final counter values before shutdown. A one-shot
// process has no scrape window, so the logs are where the run's metrics
// end up.
func logCounters(registry *prometheus.Registry, log *zap.Logger) {
	families, err := registry.Gather()
	if err != nil {
		log.Warn("gather metrics", zap.Error(err))
		return
	}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			counter := metric.GetCounter()
			if counter == nil {
				continue
			}
			fields := make([]zap.Field, 0, len(metric.GetLabel())+1)
			for _, label := range metric.GetLabel() {
				fields = append(fields, zap.String(label.GetName(), label.GetValue()))
			}
			fields = append(fields, zap.Float64("value", counter.GetValue()))
			log.Info(family.GetName(), fields...)
		}
	}
}

var Module = fx.Module("runner",
	fx.Provide(New),
	fx.Invoke(Execute),
)
