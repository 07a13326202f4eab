package bt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// recorder records how the interpreter drove a leaf.
type recorder struct {
	ticks  int
	enters int
	aborts int
	exits  []Status
}

func addRecorder(tr *Tree, id string, fn UpdateFunc) (Handle, *recorder) {
	p := &recorder{}
	h := tr.Action(id, func(t *TickContext) Status {
		p.ticks++
		return fn(t)
	})
	n := tr.Node(h)
	n.OnEnter(func() { p.enters++ })
	n.OnExit(func(st Status) {
		p.exits = append(p.exits, st)
		if st == StatusAbort {
			p.aborts++
		}
	})
	return h, p
}

func mustRoot(t *testing.T, tr *Tree, h Handle) {
	t.Helper()
	require.NoError(t, tr.SetRoot(h))
	require.NoError(t, tr.Validate())
}

func tickN(tr *Tree, n int) []Status {
	out := make([]Status, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, tr.Tick(context.Background()))
	}
	return out
}

// contractPanic runs fn and returns the *ContractError it panicked with.
func contractPanic(t *testing.T, fn func()) (ce *ContractError) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		var ok bool
		ce, ok = r.(*ContractError)
		require.True(t, ok, "panic value %T is not a *ContractError", r)
	}()
	fn()
	return nil
}
