package injector

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/zeusync/btree/internal/config"
	"github.com/zeusync/btree/internal/core/agent"
	"github.com/zeusync/btree/internal/core/bt/definition"
	"github.com/zeusync/btree/internal/core/events/bus"
	"github.com/zeusync/btree/internal/core/observability/log"
	"github.com/zeusync/btree/internal/core/observability/metrics"
	"github.com/zeusync/btree/internal/inspector"
)

// ProviderSet builds a Runtime from a *config.Config.
var ProviderSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	ProvidePrometheusRegistry,
	wire.Bind(new(prometheus.Registerer), new(*prometheus.Registry)),
	wire.Bind(new(prometheus.Gatherer), new(*prometheus.Registry)),
	metrics.New,
	bus.New,
	ProvideLeafRegistry,
	ProvideManager,
	ProvideInspector,
	wire.Struct(new(Runtime), "*"),
)

func ProvideLogger(cfg *config.Config) *log.Logger {
	return log.NewWithOptions(cfg.LogLevel(), log.Options{Encoding: cfg.Log.Encoding})
}

// ProvidePrometheusRegistry keeps simulator metrics off the global registry.
func ProvidePrometheusRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

func ProvideLeafRegistry(logger log.Log) *definition.Registry {
	return definition.NewDefaultRegistry(logger)
}

func ProvideManager(cfg *config.Config, logger log.Log) *agent.Manager {
	return agent.NewManager(logger, agent.WithConcurrency(cfg.Sim.Concurrency))
}

func ProvideInspector(cfg *config.Config, b bus.EventBus, m *agent.Manager, logger log.Log) *inspector.Server {
	return inspector.New(b, m, logger, cfg.Inspector)
}
