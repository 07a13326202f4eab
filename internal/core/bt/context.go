package bt

import (
	"context"
	"time"
)

// TickContext is handed to every update hook during a tick. It carries the
// owner context a leaf executes against.
type TickContext struct {
	Ctx        context.Context
	Tree       *Tree
	Owner      any
	Blackboard *Blackboard
	// Frame is the 1-based number of the current tree tick.
	Frame uint64
	// Delta is the time elapsed since the previous tick, zero on the first.
	Delta time.Duration
	Clock func() time.Time
}

// Now returns the tick clock, falling back to time.Now.
func (t *TickContext) Now() time.Time {
	if t.Clock == nil {
		return time.Now()
	}
	return t.Clock()
}
