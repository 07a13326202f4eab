package agent

import (
	"time"

	"github.com/zeusync/btree/internal/core/bt"
	"github.com/zeusync/btree/internal/core/observability/log"
)

// LogObserver writes node transitions to a logger at debug level.
type LogObserver struct {
	Logger log.Log
}

var _ bt.Observer = (*LogObserver)(nil)

func (o *LogObserver) NodeEntered(n *bt.Node) {
	o.Logger.Debug("node entered", log.Node(n.ID()), log.Stringer("kind", n.Kind()))
}

func (o *LogObserver) NodeExited(n *bt.Node, st bt.Status) {
	o.Logger.Debug("node exited", log.Node(n.ID()), log.Stringer("kind", n.Kind()), log.State("state", st))
}

func (o *LogObserver) NodeReset(*bt.Node) {}

func (o *LogObserver) TickCompleted(t *bt.Tree, st bt.Status, elapsed time.Duration) {
	o.Logger.Debug("tick", log.Frame(t.Frame()), log.State("state", st), log.Duration("elapsed", elapsed))
}
