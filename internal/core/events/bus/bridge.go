package bus

import (
	"time"

	"github.com/zeusync/btree/internal/core/bt"
)

// Event types published for tree transitions.
const (
	EventNodeEnter = "node.enter"
	EventNodeExit  = "node.exit"
	EventNodeAbort = "node.abort"
	EventTreeTick  = "tree.tick"
)

// Transition is the payload of every tree event.
type Transition struct {
	Source  string        `json:"source"`
	Tree    string        `json:"tree"`
	Frame   uint64        `json:"frame"`
	Node    string        `json:"node,omitempty"`
	Kind    string        `json:"kind,omitempty"`
	Status  string        `json:"status"`
	Elapsed time.Duration `json:"elapsed,omitempty"`
}

// TreeBridge is a bt.Observer that republishes node transitions on a bus.
// Handler errors cannot influence the tick and are collected in OnError.
type TreeBridge struct {
	bus    EventBus
	source string
	topic  string

	// OnError receives delivery errors; nil discards them.
	OnError func(error)
}

var _ bt.Observer = (*TreeBridge)(nil)

// NewTreeBridge publishes to the default topic under the given source id.
func NewTreeBridge(b EventBus, source string) *TreeBridge {
	return &TreeBridge{bus: b, source: source}
}

// WithTopic returns a copy publishing to topic.
func (tb *TreeBridge) WithTopic(topic string) *TreeBridge {
	cp := *tb
	cp.topic = topic
	return &cp
}

func (tb *TreeBridge) NodeEntered(n *bt.Node) {
	tb.publish(EventNodeEnter, n, bt.StatusRunning)
}

func (tb *TreeBridge) NodeExited(n *bt.Node, st bt.Status) {
	typ := EventNodeExit
	if st == bt.StatusAbort {
		typ = EventNodeAbort
	}
	tb.publish(typ, n, st)
}

func (tb *TreeBridge) NodeReset(*bt.Node) {}

func (tb *TreeBridge) TickCompleted(t *bt.Tree, st bt.Status, elapsed time.Duration) {
	tb.emit(EventTreeTick, Transition{
		Source:  tb.source,
		Tree:    t.Name(),
		Frame:   t.Frame(),
		Status:  st.String(),
		Elapsed: elapsed,
	})
}

func (tb *TreeBridge) publish(typ string, n *bt.Node, st bt.Status) {
	t := n.Tree()
	tb.emit(typ, Transition{
		Source: tb.source,
		Tree:   t.Name(),
		Frame:  t.Frame(),
		Node:   n.ID(),
		Kind:   n.Kind().String(),
		Status: st.String(),
	})
}

func (tb *TreeBridge) emit(typ string, tr Transition) {
	err := tb.bus.PublishToTopic(tb.topic, NewEvent(typ, tb.source, tr, nil))
	if err != nil && tb.OnError != nil {
		tb.OnError(err)
	}
}
