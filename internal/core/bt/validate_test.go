package bt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name  string
		build func(tr *Tree)
		want  error
	}{
		{
			name:  "no root",
			build: func(tr *Tree) { tr.Action("a", Succeed()) },
			want:  ErrNoRoot,
		},
		{
			name: "empty control node",
			build: func(tr *Tree) {
				_ = tr.SetRoot(tr.Sequence("seq"))
			},
			want: ErrNoChildren,
		},
		{
			name: "zero repeat limit",
			build: func(tr *Tree) {
				_ = tr.SetRoot(tr.Repeat("rep", 0, tr.Action("a", Succeed())))
			},
			want: ErrRepeatLimit,
		},
		{
			name: "leaf without update",
			build: func(tr *Tree) {
				_ = tr.SetRoot(tr.Sequence("seq", tr.Add(KindAction, "hollow")))
			},
			want: ErrMissingUpdate,
		},
		{
			name: "zero success threshold",
			build: func(tr *Tree) {
				_ = tr.SetRoot(tr.Parallel("par", 0, 1, tr.Action("a", Succeed())))
			},
			want: ErrThreshold,
		},
		{
			name: "zero failure threshold",
			build: func(tr *Tree) {
				_ = tr.SetRoot(tr.Monitor("mon", 1, 0, tr.Action("a", Succeed())))
			},
			want: ErrThreshold,
		},
		{
			name: "duplicate id",
			build: func(tr *Tree) {
				_ = tr.SetRoot(tr.Sequence("seq", tr.Action("a", Succeed()), tr.Action("a", Succeed())))
			},
			want: ErrDuplicateID,
		},
		{
			name: "second parent",
			build: func(tr *Tree) {
				a := tr.Action("a", Succeed())
				_ = tr.SetRoot(tr.Sequence("seq", a, tr.Selector("sel", a)))
			},
			want: ErrMultipleParents,
		},
		{
			name: "decorator arity",
			build: func(tr *Tree) {
				rep := tr.Repeat("rep", 1, tr.Action("a", Succeed()))
				tr.withChildren(rep, []Handle{tr.Action("b", Succeed())})
				_ = tr.SetRoot(rep)
			},
			want: ErrDecoratorArity,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := NewTree(WithName(tc.name))
			tc.build(tr)
			err := tr.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidTree)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	tr := NewTree()
	root := tr.Sequence("seq", tr.Selector("empty"), tr.Add(KindCondition, "hollow"))
	require.NoError(t, tr.SetRoot(root))

	err := tr.Validate()
	assert.ErrorIs(t, err, ErrNoChildren)
	assert.ErrorIs(t, err, ErrMissingUpdate)

	var se *StructuralError
	require.ErrorAs(t, err, &se)
	assert.NotEmpty(t, se.Node)
}

func TestValidateIgnoresDetachedNodes(t *testing.T) {
	tr := NewTree()
	tr.Sequence("draft")
	root := tr.Action("a", Succeed())
	require.NoError(t, tr.SetRoot(root))
	assert.NoError(t, tr.Validate())
}

func TestAddChildRejectsBadEdges(t *testing.T) {
	tr := NewTree()
	a := tr.Action("a", Succeed())
	b := tr.Action("b", Succeed())
	seq := tr.Sequence("seq", a)
	sel := tr.Selector("sel", seq)

	assert.ErrorIs(t, tr.AddChild(a, b), ErrLeafChildren)
	assert.ErrorIs(t, tr.AddChild(seq, sel), ErrCycle)
	assert.ErrorIs(t, tr.AddChild(seq, seq), ErrMultipleParents)
	assert.ErrorIs(t, tr.AddChild(b, b), ErrLeafChildren)
	loop := tr.Selector("loop")
	assert.ErrorIs(t, tr.AddChild(loop, loop), ErrCycle)
	assert.ErrorIs(t, tr.AddChild(sel, a), ErrMultipleParents)
	assert.ErrorIs(t, tr.AddChild(seq, Handle(99)), ErrUnknownNode)

	require.NoError(t, tr.SetRoot(sel))
	other := tr.Selector("other")
	assert.ErrorIs(t, tr.AddChild(other, sel), ErrRootAsChild)
	assert.ErrorIs(t, tr.SetRoot(seq), ErrRootAsChild)
}

func TestRemoveChildRewindsParent(t *testing.T) {
	tr := NewTree()
	a := tr.Action("a", Succeed())
	b := tr.Action("b", Always(StatusRunning))
	seq := tr.Sequence("seq", a, b)
	mustRoot(t, tr, seq)
	tickN(tr, 2)

	require.NoError(t, tr.RemoveChild(seq, b))
	assert.Equal(t, []Handle{a}, tr.Node(seq).Children())
	assert.Equal(t, NoHandle, tr.Node(b).Parent())
	assert.Equal(t, 0, tr.Node(seq).Index())
	assert.ErrorIs(t, tr.RemoveChild(seq, b), ErrUnknownNode)
}

func TestTickInvalidTreePanics(t *testing.T) {
	tr := NewTree()
	require.NoError(t, tr.SetRoot(tr.Selector("sel")))

	assert.PanicsWithError(t, tr.Validate().Error(), func() { tr.Tick(context.Background()) })
}

func TestMutationRevalidates(t *testing.T) {
	tr := NewTree()
	seq := tr.Sequence("seq", tr.Action("a", Succeed()))
	mustRoot(t, tr, seq)
	tr.Tick(context.Background())

	require.NoError(t, tr.AddChild(seq, tr.Add(KindAction, "hollow")))
	assert.Panics(t, func() { tr.Tick(context.Background()) })
}

func TestUnreachableThresholdsAreWarnings(t *testing.T) {
	tr := NewTree()
	stall := tr.Parallel("stall", 2, 2, tr.Action("a", Succeed()), tr.Action("b", Fail()))
	high := tr.Parallel("high", 1, 3, tr.Action("c", Succeed()), tr.Action("d", Succeed()))
	fine := tr.Parallel("fine", 2, 1, tr.Action("e", Succeed()), tr.Action("f", Succeed()))
	mustRoot(t, tr, tr.Sequence("seq", stall, high, fine))

	warns := tr.Warnings()
	require.Len(t, warns, 2)
	for i, id := range []string{"stall", "high"} {
		var se *StructuralError
		require.ErrorAs(t, warns[i], &se)
		assert.Equal(t, id, se.Node)
		assert.ErrorIs(t, warns[i], ErrThresholdUnreachable)
	}

	assert.Equal(t, StatusRunning, tr.Tick(context.Background()))
	assert.Equal(t, StatusRunning, tr.Tick(context.Background()), "a stalled split keeps running once its children finish")
}

func TestSetThresholdsAndLimit(t *testing.T) {
	tr := NewTree()
	a := tr.Action("a", Succeed())
	par := tr.Parallel("par", 1, 1, a, tr.Action("b", Succeed()))
	mustRoot(t, tr, par)

	require.NoError(t, tr.SetThresholds(par, 2, 1))
	s, f := tr.Node(par).Thresholds()
	assert.Equal(t, 2, s)
	assert.Equal(t, 1, f)
	assert.NoError(t, tr.Validate())

	assert.ErrorIs(t, tr.SetThresholds(a, 1, 1), ErrThreshold)
	assert.ErrorIs(t, tr.SetLimit(par, 2), ErrRepeatLimit)
	assert.ErrorIs(t, tr.SetLimit(Handle(42), 2), ErrUnknownNode)
}
