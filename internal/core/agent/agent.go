// Package agent binds a behavior tree to the entity it drives and schedules
// ticks for many such entities.
package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/zeusync/btree/internal/core/bt"
	"github.com/zeusync/btree/internal/core/bt/definition"
	"github.com/zeusync/btree/internal/core/observability/log"
)

var (
	// ErrHalted is returned once a tree has broken the interpreter contract.
	// The agent is never ticked again.
	ErrHalted    = errors.New("agent halted")
	ErrDuplicate = errors.New("agent already registered")
	ErrNotFound  = errors.New("agent not found")
)

// Agent is the owner context of one tree. Step is safe to call from any
// goroutine; calls are serialized so the tree is only ever ticked by one
// goroutine at a time.
type Agent struct {
	mu sync.Mutex

	id     string
	name   string
	tree   *bt.Tree
	logger log.Log

	restartOnSettle bool
	observers       []bt.Observer

	last   bt.Status
	frames uint64
	halted error
}

type Option func(*Agent)

func WithID(id string) Option     { return func(a *Agent) { a.id = id } }
func WithName(name string) Option { return func(a *Agent) { a.name = name } }

// WithLogger logs every node exit at debug level and halts at error level.
func WithLogger(l log.Log) Option { return func(a *Agent) { a.logger = l } }

// WithRestartOnSettle returns the root to Waiting after each terminal result
// so that the next Step runs the behavior again.
func WithRestartOnSettle() Option { return func(a *Agent) { a.restartOnSettle = true } }

// WithObserver attaches obs to the tree after the agent's own log observer.
func WithObserver(obs bt.Observer) Option {
	return func(a *Agent) { a.observers = append(a.observers, obs) }
}

// New adopts tree. The agent becomes the tree's owner.
func New(tree *bt.Tree, opts ...Option) *Agent {
	a := &Agent{tree: tree}
	for _, opt := range opts {
		opt(a)
	}
	if a.id == "" {
		a.id = uuid.NewString()
	}
	if a.name == "" {
		a.name = tree.Name()
	}
	if a.logger == nil {
		a.logger = log.NewNop()
	}
	a.logger = a.logger.With(log.Agent(a.id), log.Tree(tree.Name()))
	tree.SetOwner(a)
	tree.AddObserver(&LogObserver{Logger: a.logger})
	for _, obs := range a.observers {
		tree.AddObserver(obs)
	}
	return a
}

func (a *Agent) ID() string                 { return a.id }
func (a *Agent) Name() string               { return a.name }
func (a *Agent) Tree() *bt.Tree             { return a.tree }
func (a *Agent) Blackboard() *bt.Blackboard { return a.tree.Blackboard() }
func (a *Agent) RestartsOnSettle() bool     { return a.restartOnSettle }

// Step ticks the tree once. A contract violation raised by the tree halts
// the agent and is returned wrapped in ErrHalted; so is every later call.
func (a *Agent) Step(ctx context.Context) (st bt.Status, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.halted != nil {
		return a.last, a.halted
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err = ctx.Err(); err != nil {
		return a.last, err
	}

	defer func() {
		if r := recover(); r != nil {
			a.halted = halt(a.id, r)
			a.logger.Error("agent halted", log.Frame(a.tree.Frame()), log.Error(a.halted))
			st, err = a.last, a.halted
		}
	}()

	st = a.tree.Tick(ctx)
	a.last = st
	a.frames++
	if st.IsTerminal() {
		a.logger.Debug("tree settled", log.State("state", st), log.Frame(a.tree.Frame()))
		if a.restartOnSettle {
			a.tree.Restart()
		}
	}
	return st, nil
}

func halt(id string, r any) error {
	switch v := r.(type) {
	case error:
		return fmt.Errorf("%w: %s: %w", ErrHalted, id, v)
	default:
		return fmt.Errorf("%w: %s: %v", ErrHalted, id, v)
	}
}

// Halted returns the error that stopped the agent, or nil.
func (a *Agent) Halted() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.halted
}

// LastStatus returns the root status produced by the latest Step.
func (a *Agent) LastStatus() bt.Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}

// Frames returns the number of completed steps.
func (a *Agent) Frames() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frames
}

// Done reports whether stepping the agent again is pointless: it has halted,
// or its tree has settled and will not be restarted.
func (a *Agent) Done() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.halted != nil || (!a.restartOnSettle && a.last.IsTerminal())
}

// Snapshot exports the tree between two steps.
func (a *Agent) Snapshot() definition.Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return definition.Export(a.tree)
}
