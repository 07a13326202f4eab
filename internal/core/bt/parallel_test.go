package bt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelFailureThresholdAbortsRunningChildren(t *testing.T) {
	tr := NewTree()
	a, pa := addRecorder(tr, "a", Always(StatusRunning))
	b, pb := addRecorder(tr, "b", Script(StatusRunning, StatusFailure))
	c, pc := addRecorder(tr, "c", Always(StatusRunning))
	par := tr.Parallel("par", 2, 1, a, b, c)
	mustRoot(t, tr, par)

	assert.Equal(t, StatusRunning, tr.Tick(context.Background()))
	assert.Equal(t, StatusFailure, tr.Tick(context.Background()))

	assert.Equal(t, 1, pa.aborts)
	assert.Equal(t, 0, pb.aborts, "the failed child has already exited")
	assert.Equal(t, 1, pc.aborts)
	assert.Equal(t, 1, pc.ticks, "evaluation stops once the threshold is crossed")
	assert.Equal(t, StatusAbort, tr.Node(a).Status())
}

func TestParallelFailureOnFirstTick(t *testing.T) {
	tr := NewTree()
	a, pa := addRecorder(tr, "a", Always(StatusRunning))
	b := tr.Action("b", Fail())
	c, pc := addRecorder(tr, "c", Always(StatusRunning))
	par := tr.Parallel("par", 2, 1, a, b, c)
	mustRoot(t, tr, par)

	assert.Equal(t, StatusFailure, tr.Tick(context.Background()))
	assert.Equal(t, 1, pa.aborts)
	assert.Equal(t, 0, pc.ticks)
	assert.Equal(t, 0, pc.aborts, "a child never started is not aborted")
}

func TestParallelSuccessThreshold(t *testing.T) {
	tr := NewTree()
	a, pa := addRecorder(tr, "a", Succeed())
	b := tr.Action("b", Script(StatusRunning, StatusSuccess))
	c, pc := addRecorder(tr, "c", Always(StatusRunning))
	par := tr.Parallel("par", 2, 2, a, b, c)
	mustRoot(t, tr, par)

	assert.Equal(t, StatusRunning, tr.Tick(context.Background()))
	s, f := tr.Node(par).Counters()
	assert.Equal(t, 1, s)
	assert.Equal(t, 0, f)

	assert.Equal(t, StatusSuccess, tr.Tick(context.Background()))
	assert.Equal(t, 1, pa.ticks, "exited children are not ticked again")
	assert.Equal(t, 1, pc.ticks)
	assert.Equal(t, 1, pc.aborts)
}

func TestParallelFailureWinsTies(t *testing.T) {
	tr := NewTree()
	fail := tr.Action("fail", Fail())
	ok, pok := addRecorder(tr, "ok", Succeed())
	par := tr.Parallel("par", 1, 1, fail, ok)
	mustRoot(t, tr, par)

	assert.Equal(t, StatusFailure, tr.Tick(context.Background()))
	assert.Equal(t, 0, pok.ticks)
}

func TestParallelRunResetsCounters(t *testing.T) {
	tr := NewTree()
	a, pa := addRecorder(tr, "a", Always(StatusRunning))
	b := tr.Action("b", Fail())
	c := tr.Action("c", Always(StatusRunning))
	par := tr.Parallel("par", 2, 1, a, b, c)
	mustRoot(t, tr, par)

	require.Equal(t, StatusFailure, tr.Tick(context.Background()))
	require.Equal(t, StatusFailure, tr.Tick(context.Background()))

	s, f := tr.Node(par).Counters()
	assert.Equal(t, 0, s)
	assert.Equal(t, 1, f, "counts do not accumulate across runs")
	assert.Equal(t, 2, pa.enters, "aborted children start over on the next run")
	assert.Equal(t, 2, pa.aborts)
}

func TestParallelAbortsNestedSubtree(t *testing.T) {
	tr := NewTree()
	x, px := addRecorder(tr, "x", Always(StatusRunning))
	seq := tr.Sequence("seq", x)
	f := tr.Action("f", Script(StatusRunning, StatusFailure))
	par := tr.Parallel("par", 1, 1, seq, f)
	mustRoot(t, tr, par)

	assert.Equal(t, []Status{StatusRunning, StatusFailure}, tickN(tr, 2))
	assert.Equal(t, StatusAbort, tr.Node(seq).Status())
	assert.Equal(t, 1, px.aborts)
}

func TestMonitorPlacesConditionsFirst(t *testing.T) {
	tr := NewTree()
	act, pact := addRecorder(tr, "attack", Always(StatusRunning))
	inRange := tr.Condition("in-range", func(*TickContext) bool { return false })
	alive := tr.Condition("alive", func(*TickContext) bool { return true })
	mon := tr.Monitor("guarded-attack", 2, 1, act, alive, inRange)
	mustRoot(t, tr, mon)

	assert.Equal(t, []Handle{inRange, alive, act}, tr.Node(mon).Children())

	assert.Equal(t, StatusFailure, tr.Tick(context.Background()))
	assert.Equal(t, 0, pact.ticks, "a failing guard settles the node before the action runs")
}

func TestMonitorRunsActionWhileGuardHolds(t *testing.T) {
	tr := NewTree()
	act, pact := addRecorder(tr, "attack", Script(StatusRunning, StatusSuccess))
	guard := tr.Condition("alive", func(*TickContext) bool { return true })
	mon := tr.Monitor("guarded-attack", 2, 1, act, guard)
	mustRoot(t, tr, mon)

	assert.Equal(t, []Status{StatusRunning, StatusSuccess}, tickN(tr, 2))
	assert.Equal(t, 2, pact.ticks)
}
