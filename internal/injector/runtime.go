package injector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/zeusync/btree/internal/config"
	"github.com/zeusync/btree/internal/core/agent"
	"github.com/zeusync/btree/internal/core/bt/definition"
	"github.com/zeusync/btree/internal/core/events/bus"
	"github.com/zeusync/btree/internal/core/observability/log"
	"github.com/zeusync/btree/internal/core/observability/metrics"
	"github.com/zeusync/btree/internal/inspector"
)

// Runtime holds the services of one simulator process.
type Runtime struct {
	Config    *config.Config
	Logger    *log.Logger
	Gatherer  prometheus.Gatherer
	Metrics   *metrics.Collector
	Bus       bus.EventBus
	Registry  *definition.Registry
	Manager   *agent.Manager
	Inspector *inspector.Server

	metricsServer *http.Server `wire:"-"`
}

// Spawn builds a fresh tree from def and registers it as a new agent. The
// agent reports to the metrics collector and publishes its transitions on
// the bus.
func (r *Runtime) Spawn(def *definition.Definition, id string) (*agent.Agent, error) {
	tree, err := definition.Build(def, r.Registry)
	if err != nil {
		return nil, err
	}
	opts := []agent.Option{
		agent.WithID(id),
		agent.WithLogger(r.Logger),
		agent.WithObserver(r.Metrics),
	}
	if r.Config.Sim.RestartOnSettle {
		opts = append(opts, agent.WithRestartOnSettle())
	}
	a := agent.New(tree, opts...)
	inspector.Attach(r.Bus, a)
	if err := r.Manager.Add(a); err != nil {
		return nil, err
	}
	return a, nil
}

// Start brings up the optional HTTP endpoints. When the inspector is
// enabled the metrics handler is mounted on it as well.
func (r *Runtime) Start() error {
	handler := metrics.Handler(r.Gatherer)
	if r.Config.Inspector.Addr != "" {
		r.Inspector.Handle(r.Config.Metrics.Path, handler)
		if _, err := r.Inspector.Start(); err != nil {
			return err
		}
	}
	if r.Config.Metrics.Addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle(r.Config.Metrics.Path, handler)
	r.metricsServer = &http.Server{
		Addr:              r.Config.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := r.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.Logger.Error("metrics server error", log.Error(err))
		}
	}()
	r.Logger.Info("metrics server started", log.String("address", r.Config.Metrics.Addr))
	return nil
}

// Close stops the HTTP endpoints and flushes the logger.
func (r *Runtime) Close(ctx context.Context) error {
	var errs []error
	if r.Config.Inspector.Addr != "" {
		if err := r.Inspector.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if r.metricsServer != nil {
		if err := r.metricsServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown metrics server: %w", err))
		}
	}
	_ = r.Logger.Sync()
	return errors.Join(errs...)
}
