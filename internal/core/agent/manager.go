package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/zeusync/btree/internal/core/observability/log"
	"github.com/zeusync/btree/pkg/concurrent"
)

// Manager schedules a population of agents. Each Step ticks every live agent
// once; distinct agents are ticked concurrently.
type Manager struct {
	mu     sync.RWMutex
	agents map[string]*Agent
	order  []string

	logger      log.Log
	concurrency int
	frame       uint64
}

// Stats summarizes one manager step.
type Stats struct {
	Frame   uint64
	Ticked  int
	Settled int
	Halted  int
}

type ManagerOption func(*Manager)

// WithConcurrency bounds the goroutines used per step. Zero or less means
// one goroutine per agent.
func WithConcurrency(n int) ManagerOption { return func(m *Manager) { m.concurrency = n } }

func NewManager(logger log.Log, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = log.NewNop()
	}
	m := &Manager{
		agents: make(map[string]*Agent),
		logger: logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Add(a *Agent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.agents[a.ID()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, a.ID())
	}
	m.agents[a.ID()] = a
	m.order = append(m.order, a.ID())
	return nil
}

func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.agents[id]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.agents, id)
	for i, cur := range m.order {
		if cur == id {
			m.order = append(m.order[:i:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Manager) Get(id string) (*Agent, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.agents[id]
	return a, ok
}

// All returns the agents in registration order.
func (m *Manager) All() []*Agent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Agent, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.agents[id])
	}
	return out
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.agents)
}

// Step ticks every agent that is not done. Agents halted during this step
// are reported in the returned error; the others keep running.
func (m *Manager) Step(ctx context.Context) (Stats, error) {
	agents := m.All()
	m.mu.Lock()
	m.frame++
	stats := Stats{Frame: m.frame}
	m.mu.Unlock()

	live := concurrent.Filter(agents, func(a *Agent) bool { return !a.Done() })
	errs := make([]error, len(live))
	_ = concurrent.ForEach(live, m.concurrency, func(i int, a *Agent) error {
		_, errs[i] = a.Step(ctx)
		return nil
	})
	stats.Ticked = len(live)

	for _, a := range agents {
		switch {
		case a.Halted() != nil:
			stats.Halted++
		case a.Done():
			stats.Settled++
		}
	}
	for i, err := range errs {
		if err != nil && !errors.Is(err, ErrHalted) {
			// context errors are not worth one entry per agent
			errs[i] = nil
		}
	}
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	return stats, errors.Join(errs...)
}

// Run steps the population every interval until ctx ends, frames steps
// have run, or every agent is done. frames <= 0 means no frame limit; an
// interval <= 0 steps back to back.
func (m *Manager) Run(ctx context.Context, interval time.Duration, frames int) (Stats, error) {
	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	var stats Stats
	for n := 0; frames <= 0 || n < frames; n++ {
		if tick != nil {
			select {
			case <-ctx.Done():
				return stats, ctx.Err()
			case <-tick:
			}
		}
		var err error
		stats, err = m.Step(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			m.logger.Warn("agents halted", log.Uint64("frame", stats.Frame), log.Error(err))
		}
		if stats.Settled+stats.Halted == m.Len() {
			m.logger.Info("all agents done",
				log.Uint64("frame", stats.Frame),
				log.Int("settled", stats.Settled),
				log.Int("halted", stats.Halted),
			)
			return stats, nil
		}
	}
	return stats, nil
}
