package bt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestTickContextCarriesFrameAndDelta(t *testing.T) {
	clk := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	owner := struct{ Name string }{"goblin"}
	tr := NewTree(WithClock(clk.Now), WithOwner(owner))

	var frames []uint64
	var deltas []time.Duration
	h := tr.Action("sensor", func(tc *TickContext) Status {
		frames = append(frames, tc.Frame)
		deltas = append(deltas, tc.Delta)
		assert.Equal(t, owner, tc.Owner)
		assert.Same(t, tr.Blackboard(), tc.Blackboard)
		assert.Equal(t, clk.now, tc.Now())
		return StatusRunning
	})
	mustRoot(t, tr, h)

	tr.Tick(context.Background())
	clk.Advance(16 * time.Millisecond)
	tr.Tick(context.Background())
	clk.Advance(33 * time.Millisecond)
	tr.Tick(context.Background())

	assert.Equal(t, []uint64{1, 2, 3}, frames)
	assert.Equal(t, []time.Duration{0, 16 * time.Millisecond, 33 * time.Millisecond}, deltas)
	assert.Equal(t, uint64(3), tr.Frame())
}

func TestObserverSeesEveryEdge(t *testing.T) {
	var log []string
	obs := ObserverFuncs{
		Entered: func(n *Node) { log = append(log, "enter "+n.ID()) },
		Exited:  func(n *Node, st Status) { log = append(log, "exit "+n.ID()+" "+st.String()) },
		Tick:    func(_ *Tree, st Status, _ time.Duration) { log = append(log, "tick "+st.String()) },
	}
	tr := NewTree(WithObserver(obs))
	seq := tr.Sequence("seq", tr.Action("a", Succeed()), tr.Action("b", Fail()))
	mustRoot(t, tr, seq)

	tickN(tr, 2)
	assert.Equal(t, []string{
		"enter seq", "enter a", "exit a Success", "tick Running",
		"enter b", "exit b Failure", "exit seq Failure", "tick Failure",
	}, log)
}

func TestRestartReentersSettledRoot(t *testing.T) {
	tr := NewTree()
	h, p := addRecorder(tr, "once", Succeed())
	mustRoot(t, tr, h)

	tr.Tick(context.Background())
	tr.Restart()
	assert.Equal(t, StatusWaiting, tr.Root().Status())
	tr.Tick(context.Background())
	assert.Equal(t, 2, p.enters)
}

func TestLookupAndEdges(t *testing.T) {
	tr := NewTree(WithName("guard"))
	a := tr.Action("a", Succeed())
	b := tr.Action("b", Succeed())
	seq := tr.Sequence("seq", a, b)
	anon := tr.Add(KindCondition, "")

	n, ok := tr.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, b, n.Handle())
	assert.Equal(t, seq, n.Parent())
	_, ok = tr.Lookup("missing")
	assert.False(t, ok)

	assert.NotEmpty(t, tr.Node(anon).ID(), "anonymous nodes get a generated id")
	assert.Nil(t, tr.Node(NoHandle))
	assert.Nil(t, tr.Root())
	assert.Equal(t, 4, tr.Len())
	assert.Len(t, tr.Nodes(), 4)
	assert.Equal(t, "guard", tr.Name())
	assert.Equal(t, []Edge{{Parent: seq, Child: a}, {Parent: seq, Child: b}}, tr.Edges())
}
