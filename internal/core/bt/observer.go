package bt

import "time"

// Observer receives diagnostics from a Tree. Observers run synchronously on
// the ticking goroutine and must not mutate the tree.
type Observer interface {
	NodeEntered(n *Node)
	NodeExited(n *Node, st Status)
	NodeReset(n *Node)
	TickCompleted(t *Tree, st Status, elapsed time.Duration)
}

// ObserverFuncs adapts optional functions to the Observer interface.
type ObserverFuncs struct {
	Entered func(n *Node)
	Exited  func(n *Node, st Status)
	Reset   func(n *Node)
	Tick    func(t *Tree, st Status, elapsed time.Duration)
}

var _ Observer = ObserverFuncs{}

func (o ObserverFuncs) NodeEntered(n *Node) {
	if o.Entered != nil {
		o.Entered(n)
	}
}

func (o ObserverFuncs) NodeExited(n *Node, st Status) {
	if o.Exited != nil {
		o.Exited(n, st)
	}
}

func (o ObserverFuncs) NodeReset(n *Node) {
	if o.Reset != nil {
		o.Reset(n)
	}
}

func (o ObserverFuncs) TickCompleted(t *Tree, st Status, elapsed time.Duration) {
	if o.Tick != nil {
		o.Tick(t, st, elapsed)
	}
}
