package bt

// bindPolicy attaches the behavior of the node's kind. Policy listeners are
// registered before any user listener and therefore always run first.
func (n *Node) bindPolicy() {
	switch n.kind {
	case KindSequence:
		n.onEnter = append(n.onEnter, n.rewind)
		n.update = n.updateSequence
		n.onExit = append(n.onExit, n.abortActive)
	case KindSelector:
		n.onEnter = append(n.onEnter, n.rewind)
		n.update = n.updateSelector
		n.onExit = append(n.onExit, n.abortActive)
	case KindParallel, KindMonitor:
		n.onEnter = append(n.onEnter, n.restartParallel)
		n.update = n.updateParallel
		n.onExit = append(n.onExit, n.abortRunning)
	case KindRepeat:
		n.onEnter = append(n.onEnter, func() { n.counter = 0 })
		n.update = n.updateRepeat
		n.onExit = append(n.onExit, n.abortActive)
	case KindAction, KindCondition:
		// update supplied by the caller
	default:
		panic("bt: unknown node kind " + n.kind.String())
	}
}

func (n *Node) rewind() { n.index = 0 }

// updateSequence ticks exactly one child and holds position while it runs.
func (n *Node) updateSequence(t *TickContext) Status {
	if n.index >= len(n.children) {
		return StatusRunning
	}
	switch n.child(n.index).Tick(t) {
	case StatusSuccess:
		n.index++
		if n.index == len(n.children) {
			n.index = 0
			return StatusSuccess
		}
	case StatusFailure:
		n.index = 0
		return StatusFailure
	}
	return StatusRunning
}

// updateSelector mirrors updateSequence with Success and Failure swapped.
func (n *Node) updateSelector(t *TickContext) Status {
	if n.index >= len(n.children) {
		return StatusRunning
	}
	switch n.child(n.index).Tick(t) {
	case StatusSuccess:
		n.index = 0
		return StatusSuccess
	case StatusFailure:
		n.index++
		if n.index == len(n.children) {
			n.index = 0
			return StatusFailure
		}
	}
	return StatusRunning
}

// restartParallel starts a fresh run: counters go back to zero and children
// finished by a previous run are returned to Waiting so they get ticked again.
func (n *Node) restartParallel() {
	n.successCount, n.failureCount = 0, 0
	for _, h := range n.children {
		if c := n.tree.nodes[h]; c.status.IsTerminal() {
			c.ResetState()
		}
	}
}

// updateParallel ticks every child that has not exited yet, in order.
// A failure reaching its threshold wins over successes later in the pass.
func (n *Node) updateParallel(t *TickContext) Status {
	for _, h := range n.children {
		c := n.tree.nodes[h]
		if c.IsExit() {
			continue
		}
		switch c.Tick(t) {
		case StatusFailure:
			n.failureCount++
			if n.failureCount >= n.failureThreshold {
				return StatusFailure
			}
		case StatusSuccess:
			n.successCount++
			if n.successCount >= n.successThreshold {
				return StatusSuccess
			}
		}
	}
	return StatusRunning
}

// abortRunning aborts every child still in flight when the node exits.
func (n *Node) abortRunning(Status) {
	for _, h := range n.children {
		if c := n.tree.nodes[h]; c.IsRunning() {
			c.Abort()
		}
	}
}

// updateRepeat re-enters its child within the same tick until the child
// suspends, fails, or the limit is reached.
func (n *Node) updateRepeat(t *TickContext) Status {
	c := n.child(0)
	for {
		switch c.Tick(t) {
		case StatusSuccess:
			n.counter++
			if n.counter >= n.limit {
				return StatusSuccess
			}
			c.ResetState()
		case StatusFailure:
			return StatusFailure
		default:
			return StatusRunning
		}
	}
}

// abortActive forwards an abort to the child currently being resumed and
// rewinds the node's own bookkeeping.
func (n *Node) abortActive(st Status) {
	if st != StatusAbort || len(n.children) == 0 {
		return
	}
	i := n.index
	if n.kind == KindRepeat {
		i = 0
	}
	if i < len(n.children) {
		if c := n.child(i); c.IsRunning() {
			c.Abort()
		}
	}
	n.index = 0
	n.counter = 0
}
