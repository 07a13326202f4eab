// Package metrics exports interpreter activity as prometheus series.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zeusync/btree/internal/core/bt"
)

const namespace = "btree"

// Collector is a bt.Observer recording ticks, node exits and aborts. One
// Collector can observe any number of trees; series are labeled by tree name.
type Collector struct {
	ticks    *prometheus.CounterVec
	exits    *prometheus.CounterVec
	aborts   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ bt.Observer = (*Collector)(nil)

// New creates the collectors and registers them with reg. A nil reg uses
// prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		ticks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ticks_total",
				Help:      "Tree ticks by resulting root state.",
			},
			[]string{"tree", "state"},
		),
		exits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "node_exits_total",
				Help:      "Nodes leaving the running state, by kind and terminal state.",
			},
			[]string{"kind", "state"},
		),
		aborts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "aborts_total",
				Help:      "Nodes terminated by an abort, by kind.",
			},
			[]string{"kind"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tick_duration_seconds",
				Help:      "Wall time spent in one tree tick.",
				Buckets:   prometheus.ExponentialBuckets(0.000_01, 4, 10),
			},
			[]string{"tree"},
		),
	}
	for _, col := range []prometheus.Collector{c.ticks, c.exits, c.aborts, c.duration} {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("register btree metrics: %w", err)
		}
	}
	return c, nil
}

func (c *Collector) NodeEntered(*bt.Node) {}
func (c *Collector) NodeReset(*bt.Node)   {}

func (c *Collector) NodeExited(n *bt.Node, st bt.Status) {
	kind := n.Kind().String()
	c.exits.WithLabelValues(kind, st.String()).Inc()
	if st == bt.StatusAbort {
		c.aborts.WithLabelValues(kind).Inc()
	}
}

func (c *Collector) TickCompleted(t *bt.Tree, st bt.Status, elapsed time.Duration) {
	c.ticks.WithLabelValues(t.Name(), st.String()).Inc()
	c.duration.WithLabelValues(t.Name()).Observe(elapsed.Seconds())
}

// Handler serves the series gathered by g in the text exposition format.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
