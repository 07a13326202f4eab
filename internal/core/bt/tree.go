package bt

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Tree owns every node of one behavior tree and exposes the per-frame entry
// point. A Tree must be ticked by a single goroutine.
type Tree struct {
	name  string
	nodes []*Node
	ids   map[string]Handle
	root  Handle

	owner     any
	bb        *Blackboard
	clock     func() time.Time
	observers []Observer

	frame    uint64
	lastTick time.Time

	buildErrs []error
	validated bool
}

// Option configures a Tree.
type Option func(*Tree)

// WithName names the tree for logs and metrics.
func WithName(name string) Option { return func(t *Tree) { t.name = name } }

// WithOwner sets the agent the leaves of this tree act on.
func WithOwner(owner any) Option { return func(t *Tree) { t.owner = owner } }

// WithBlackboard shares an existing blackboard with the tree.
func WithBlackboard(bb *Blackboard) Option { return func(t *Tree) { t.bb = bb } }

// WithClock replaces time.Now, mostly for tests.
func WithClock(clock func() time.Time) Option { return func(t *Tree) { t.clock = clock } }

// WithObserver registers a diagnostics observer.
func WithObserver(o Observer) Option {
	return func(t *Tree) {
		if o != nil {
			t.observers = append(t.observers, o)
		}
	}
}

// NewTree creates an empty tree.
func NewTree(opts ...Option) *Tree {
	t := &Tree{
		ids:   make(map[string]Handle),
		root:  NoHandle,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.bb == nil {
		t.bb = NewBlackboard()
	}
	if t.name == "" {
		t.name = "tree"
	}
	return t
}

func (t *Tree) Name() string            { return t.name }
func (t *Tree) Owner() any              { return t.owner }
func (t *Tree) Blackboard() *Blackboard { return t.bb }
func (t *Tree) Frame() uint64           { return t.frame }
func (t *Tree) Len() int                { return len(t.nodes) }

// SetOwner rebinds the owner context, e.g. when an agent adopts the tree.
func (t *Tree) SetOwner(owner any) { t.owner = owner }

// AddObserver registers a diagnostics observer.
func (t *Tree) AddObserver(o Observer) {
	if o != nil {
		t.observers = append(t.observers, o)
	}
}

// Add creates a node of the given kind. An empty id is replaced by a random
// one. A duplicate id is reported by Validate.
func (t *Tree) Add(kind Kind, id string) Handle {
	if id == "" {
		id = uuid.NewString()
	}
	h := Handle(len(t.nodes))
	n := &Node{id: id, kind: kind, handle: h, tree: t, parent: NoHandle}
	n.bindPolicy()
	t.nodes = append(t.nodes, n)
	if _, dup := t.ids[id]; dup {
		t.buildErrs = append(t.buildErrs, structural(n, ErrDuplicateID))
	} else {
		t.ids[id] = h
	}
	t.invalidate()
	return h
}

// Sequence creates a Sequence node with the given children.
func (t *Tree) Sequence(id string, children ...Handle) Handle {
	return t.withChildren(t.Add(KindSequence, id), children)
}

// Selector creates a Selector node with the given children.
func (t *Tree) Selector(id string, children ...Handle) Handle {
	return t.withChildren(t.Add(KindSelector, id), children)
}

// Parallel creates a Parallel node with success and failure thresholds.
func (t *Tree) Parallel(id string, success, failure int, children ...Handle) Handle {
	h := t.Add(KindParallel, id)
	t.nodes[h].successThreshold, t.nodes[h].failureThreshold = success, failure
	return t.withChildren(h, children)
}

// Monitor creates a Monitor node. Condition children are placed in front of
// the action children regardless of the order they are passed in.
func (t *Tree) Monitor(id string, success, failure int, children ...Handle) Handle {
	h := t.Add(KindMonitor, id)
	t.nodes[h].successThreshold, t.nodes[h].failureThreshold = success, failure
	return t.withChildren(h, children)
}

// Repeat creates a Repeat decorator around child.
func (t *Tree) Repeat(id string, limit int, child Handle) Handle {
	h := t.Add(KindRepeat, id)
	t.nodes[h].limit = limit
	return t.withChildren(h, []Handle{child})
}

// Action creates an Action leaf.
func (t *Tree) Action(id string, fn UpdateFunc) Handle {
	h := t.Add(KindAction, id)
	t.nodes[h].update = fn
	return h
}

// Condition creates a Condition leaf from a predicate.
func (t *Tree) Condition(id string, fn func(*TickContext) bool) Handle {
	h := t.Add(KindCondition, id)
	if fn != nil {
		t.nodes[h].update = Predicate(fn)
	}
	return h
}

func (t *Tree) withChildren(parent Handle, children []Handle) Handle {
	for _, c := range children {
		if err := t.AddChild(parent, c); err != nil {
			t.buildErrs = append(t.buildErrs, err)
		}
	}
	return parent
}

// SetThresholds changes the thresholds of a Parallel or Monitor node.
func (t *Tree) SetThresholds(h Handle, success, failure int) error {
	n := t.Node(h)
	if n == nil {
		return structural(nil, ErrUnknownNode)
	}
	if n.kind != KindParallel && n.kind != KindMonitor {
		return structural(n, ErrThreshold)
	}
	n.successThreshold, n.failureThreshold = success, failure
	t.invalidate()
	return nil
}

// SetLimit changes the repetition count of a Repeat node.
func (t *Tree) SetLimit(h Handle, limit int) error {
	n := t.Node(h)
	if n == nil {
		return structural(nil, ErrUnknownNode)
	}
	if n.kind != KindRepeat {
		return structural(n, ErrRepeatLimit)
	}
	n.limit = limit
	t.invalidate()
	return nil
}

// AddChild appends child to parent. Monitor nodes insert condition children
// at the front instead.
func (t *Tree) AddChild(parent, child Handle) error {
	p, c := t.Node(parent), t.Node(child)
	if p == nil || c == nil {
		return structural(nil, ErrUnknownNode)
	}
	switch {
	case p.kind.IsLeaf():
		return structural(p, ErrLeafChildren)
	case p.kind.IsDecorator() && len(p.children) > 0:
		return structural(p, ErrDecoratorArity)
	case c.root:
		return structural(c, ErrRootAsChild)
	case c.parent != NoHandle:
		return structural(c, ErrMultipleParents)
	}
	for h := parent; h != NoHandle; h = t.nodes[h].parent {
		if h == child {
			return structural(c, ErrCycle)
		}
	}
	if p.kind == KindMonitor && c.kind == KindCondition {
		p.children = append([]Handle{child}, p.children...)
	} else {
		p.children = append(p.children, child)
	}
	c.parent = parent
	t.invalidate()
	return nil
}

// RemoveChild detaches child from parent and rewinds the parent.
func (t *Tree) RemoveChild(parent, child Handle) error {
	p, c := t.Node(parent), t.Node(child)
	if p == nil || c == nil || c.parent != parent {
		return structural(nil, ErrUnknownNode)
	}
	for i, h := range p.children {
		if h == child {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	c.parent = NoHandle
	p.index = 0
	t.invalidate()
	return nil
}

// SetRoot marks h as the single root of the tree.
func (t *Tree) SetRoot(h Handle) error {
	n := t.Node(h)
	if n == nil {
		return structural(nil, ErrUnknownNode)
	}
	if n.parent != NoHandle {
		return structural(n, ErrRootAsChild)
	}
	if t.root != NoHandle {
		t.nodes[t.root].root = false
	}
	n.root = true
	t.root = h
	t.invalidate()
	return nil
}

// Root returns the root node, or nil if none was set.
func (t *Tree) Root() *Node {
	if t.root == NoHandle {
		return nil
	}
	return t.nodes[t.root]
}

// Node returns the node addressed by h, or nil.
func (t *Tree) Node(h Handle) *Node {
	if h < 0 || int(h) >= len(t.nodes) {
		return nil
	}
	return t.nodes[h]
}

// Lookup finds a node by identity.
func (t *Tree) Lookup(id string) (*Node, bool) {
	h, ok := t.ids[id]
	if !ok {
		return nil, false
	}
	return t.nodes[h], true
}

// Nodes returns every node of the arena in creation order.
func (t *Tree) Nodes() []*Node {
	out := make([]*Node, len(t.nodes))
	copy(out, t.nodes)
	return out
}

// Edge is a parent to child link, listed in child order.
type Edge struct {
	Parent Handle
	Child  Handle
}

// Edges returns all parent/child links of the arena.
func (t *Tree) Edges() []Edge {
	var out []Edge
	for _, n := range t.nodes {
		for _, c := range n.children {
			out = append(out, Edge{Parent: n.handle, Child: c})
		}
	}
	return out
}

// Tick evaluates the tree once and returns the root status. The structure is
// validated on the first tick after any change; an invalid tree panics.
func (t *Tree) Tick(ctx context.Context) Status {
	if !t.validated {
		if err := t.Validate(); err != nil {
			panic(err)
		}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	now := t.clock()
	var delta time.Duration
	if !t.lastTick.IsZero() {
		delta = now.Sub(t.lastTick)
	}
	t.lastTick = now
	t.frame++

	tc := &TickContext{
		Ctx:        ctx,
		Tree:       t,
		Owner:      t.owner,
		Blackboard: t.bb,
		Frame:      t.frame,
		Delta:      delta,
		Clock:      t.clock,
	}
	st := t.nodes[t.root].Tick(tc)
	if len(t.observers) > 0 {
		elapsed := t.clock().Sub(now)
		for _, o := range t.observers {
			o.TickCompleted(t, st, elapsed)
		}
	}
	return st
}

// Restart returns the root to Waiting so the next tick enters it afresh.
func (t *Tree) Restart() {
	if r := t.Root(); r != nil && r.status.IsTerminal() {
		r.ResetState()
	}
}

func (t *Tree) invalidate() { t.validated = false }

func (t *Tree) notifyEnter(n *Node) {
	for _, o := range t.observers {
		o.NodeEntered(n)
	}
}

func (t *Tree) notifyExit(n *Node, st Status) {
	for _, o := range t.observers {
		o.NodeExited(n, st)
	}
}

func (t *Tree) notifyReset(n *Node) {
	for _, o := range t.observers {
		o.NodeReset(n)
	}
}
