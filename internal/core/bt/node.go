package bt

// Handle addresses a node inside the arena of its Tree.
type Handle int

// NoHandle marks the absence of a node (e.g. the parent of the root).
const NoHandle Handle = -1

// UpdateFunc performs one step of a node and returns its new status.
type UpdateFunc func(t *TickContext) Status

// Node is a single behavioral unit of a Tree.
//
// Nodes are created and owned by a Tree and addressed by Handle. The fields
// used by control and decorator kinds (index, thresholds, counters, limit)
// persist between ticks and carry the suspension point of a running subtree.
type Node struct {
	id     string
	kind   Kind
	handle Handle
	tree   *Tree
	parent Handle
	root   bool

	status Status

	onEnter []func()
	update  UpdateFunc
	onExit  []func(Status)

	children []Handle
	index    int

	successThreshold int
	failureThreshold int
	successCount     int
	failureCount     int

	limit   int
	counter int
}

// ID returns the identity correlating this node with an external view.
func (n *Node) ID() string { return n.id }

// Kind returns the node variant.
func (n *Node) Kind() Kind { return n.kind }

// Handle returns the arena address of the node.
func (n *Node) Handle() Handle { return n.handle }

// Tree returns the tree that owns the node.
func (n *Node) Tree() *Tree { return n.tree }

// Parent returns the parent handle or NoHandle.
func (n *Node) Parent() Handle { return n.parent }

// IsRoot reports whether the node is the root of its tree.
func (n *Node) IsRoot() bool { return n.root }

// Status returns the current state.
func (n *Node) Status() Status { return n.status }

// Children returns a copy of the ordered child handles.
func (n *Node) Children() []Handle {
	out := make([]Handle, len(n.children))
	copy(out, n.children)
	return out
}

// Index returns the resume position of a Sequence or Selector.
func (n *Node) Index() int { return n.index }

// Thresholds returns the success and failure thresholds of a Parallel or Monitor.
func (n *Node) Thresholds() (success, failure int) {
	return n.successThreshold, n.failureThreshold
}

// Counters returns the success and failure counts of the current Parallel run.
func (n *Node) Counters() (success, failure int) {
	return n.successCount, n.failureCount
}

// Limit returns the number of repetitions a Repeat node performs.
func (n *Node) Limit() int { return n.limit }

// Counter returns the completed repetitions of the current Repeat run.
func (n *Node) Counter() int { return n.counter }

// OnEnter registers a listener fired when the node starts a fresh run.
func (n *Node) OnEnter(fn func()) {
	if fn != nil {
		n.onEnter = append(n.onEnter, fn)
	}
}

// OnExit registers a listener fired with the terminal status of a run.
func (n *Node) OnExit(fn func(Status)) {
	if fn != nil {
		n.onExit = append(n.onExit, fn)
	}
}

// SetUpdate installs the update hook of a leaf. Control and decorator kinds
// get their update from the kind policy and reject replacement.
func (n *Node) SetUpdate(fn UpdateFunc) {
	if !n.kind.IsLeaf() {
		panic(&ContractError{Node: n.id, Kind: n.kind, Err: ErrBoundUpdate})
	}
	n.update = fn
	n.tree.invalidate()
}

// HasUpdate reports whether an update hook is installed.
func (n *Node) HasUpdate() bool { return n.update != nil }

// Tick runs one evaluation step.
//
// Enter listeners fire only if the node was not already running, the update
// hook decides the new status, and exit listeners fire once that status is
// no longer Running.
func (n *Node) Tick(t *TickContext) Status {
	if n.update == nil {
		panic(&ContractError{Node: n.id, Kind: n.kind, Err: ErrUpdateUnset})
	}
	if n.status != StatusRunning {
		n.enter()
	}
	st := n.update(t)
	if !st.IsUpdateOutcome() {
		panic(&ContractError{Node: n.id, Kind: n.kind, Status: st, Err: ErrIllegalOutcome})
	}
	n.status = st
	if st != StatusRunning {
		n.exit(st)
	}
	return st
}

// Abort terminates the node from outside its normal evaluation order.
// Exit listeners receive StatusAbort; the update hook is not called.
// Aborting an already aborted node does nothing.
func (n *Node) Abort() {
	if n.update == nil {
		panic(&ContractError{Node: n.id, Kind: n.kind, Err: ErrUpdateUnset})
	}
	if n.status == StatusAbort {
		return
	}
	n.status = StatusAbort
	n.exit(StatusAbort)
}

// ResetState returns the node to Waiting. Child bookkeeping is left alone.
func (n *Node) ResetState() {
	n.status = StatusWaiting
	n.tree.notifyReset(n)
}

// IsExit reports whether the node finished with Success or Failure.
// An aborted node is not considered exited.
func (n *Node) IsExit() bool {
	return n.status == StatusSuccess || n.status == StatusFailure
}

// IsRunning reports whether the node is suspended mid-execution.
func (n *Node) IsRunning() bool { return n.status == StatusRunning }

func (n *Node) enter() {
	for _, fn := range n.onEnter {
		fn()
	}
	n.tree.notifyEnter(n)
}

func (n *Node) exit(st Status) {
	for _, fn := range n.onExit {
		fn(st)
	}
	n.tree.notifyExit(n, st)
}

func (n *Node) child(i int) *Node { return n.tree.nodes[n.children[i]] }
