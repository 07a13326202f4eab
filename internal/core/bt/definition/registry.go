package definition

import (
	"fmt"
	"sort"
	"sync"

	"github.com/zeusync/btree/internal/core/bt"
	"github.com/zeusync/btree/internal/core/observability/log"
)

// Leaf is what an action factory produces: the update hook plus optional
// listeners bound to the node when it is built.
type Leaf struct {
	Update bt.UpdateFunc
	Enter  func()
	Exit   func(bt.Status)
}

type (
	ActionFactory    func(p Params) (Leaf, error)
	ConditionFactory func(p Params) (func(*bt.TickContext) bool, error)
)

// Registry maps leaf names used in definitions to factories.
type Registry struct {
	mu     sync.RWMutex
	acts   map[string]ActionFactory
	conds  map[string]ConditionFactory
	logger log.Log
}

// NewRegistry returns an empty registry. The logger is handed to leaves that
// write to the log.
func NewRegistry(logger log.Log) *Registry {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Registry{
		acts:   make(map[string]ActionFactory),
		conds:  make(map[string]ConditionFactory),
		logger: logger,
	}
}

// NewDefaultRegistry returns a registry with the built-in leaves.
func NewDefaultRegistry(logger log.Log) *Registry {
	r := NewRegistry(logger)
	RegisterBuiltins(r)
	return r
}

func (r *Registry) Logger() log.Log { return r.logger }

func (r *Registry) RegisterAction(name string, factory ActionFactory) {
	r.mu.Lock()
	r.acts[name] = factory
	r.mu.Unlock()
}

func (r *Registry) RegisterCondition(name string, factory ConditionFactory) {
	r.mu.Lock()
	r.conds[name] = factory
	r.mu.Unlock()
}

func (r *Registry) NewAction(name string, params Params) (Leaf, error) {
	r.mu.RLock()
	f := r.acts[name]
	r.mu.RUnlock()
	if f == nil {
		return Leaf{}, fmt.Errorf("%w: action %q", ErrUnknownLeaf, name)
	}
	leaf, err := f(params)
	if err != nil {
		return Leaf{}, fmt.Errorf("action %q: %w", name, err)
	}
	return leaf, nil
}

func (r *Registry) NewCondition(name string, params Params) (func(*bt.TickContext) bool, error) {
	r.mu.RLock()
	f := r.conds[name]
	r.mu.RUnlock()
	if f == nil {
		return nil, fmt.Errorf("%w: condition %q", ErrUnknownLeaf, name)
	}
	fn, err := f(params)
	if err != nil {
		return nil, fmt.Errorf("condition %q: %w", name, err)
	}
	return fn, nil
}

// Actions lists the registered action names in order.
func (r *Registry) Actions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.acts)
}

// Conditions lists the registered condition names in order.
func (r *Registry) Conditions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.conds)
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
