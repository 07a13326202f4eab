package definition

import (
	"errors"
	"fmt"

	"github.com/zeusync/btree/internal/core/bt"
	"github.com/zeusync/btree/internal/core/observability/log"
)

// Build instantiates def into a new tree and validates it. Nodes are added
// depth-first from the root in declaration order, then any node the root
// does not reach is added detached in identity order. Every problem found is
// reported in one joined error.
//
// Parallel and Monitor nodes without explicit thresholds default to success
// on all children and failure on the first.
func Build(def *Definition, reg *Registry, opts ...bt.Option) (*bt.Tree, error) {
	if def == nil {
		return nil, errors.New("nil definition")
	}
	if reg == nil {
		reg = NewDefaultRegistry(nil)
	}
	if def.Name != "" {
		opts = append([]bt.Option{bt.WithName(def.Name)}, opts...)
	}
	tr := bt.NewTree(opts...)
	for k, v := range def.Blackboard {
		tr.Blackboard().Set(k, normalize(v))
	}

	b := &builder{def: def, reg: reg, tr: tr, handles: make(map[string]bt.Handle, len(def.Nodes))}
	if def.Root == "" {
		b.errs = append(b.errs, bt.ErrNoRoot)
	} else if h, ok := b.build(def.Root); ok {
		if err := tr.SetRoot(h); err != nil {
			b.errs = append(b.errs, err)
		}
	}
	for _, id := range sortedKeys(def.Nodes) {
		b.build(id)
	}

	if len(b.errs) > 0 {
		return nil, fmt.Errorf("%w %q: %w", bt.ErrInvalidTree, def.Name, errors.Join(b.errs...))
	}
	if err := tr.Validate(); err != nil {
		return nil, err
	}
	for _, w := range tr.Warnings() {
		reg.Logger().Warn("scenario may not settle", log.Tree(tr.Name()), log.Error(w))
	}
	return tr, nil
}

type builder struct {
	def     *Definition
	reg     *Registry
	tr      *bt.Tree
	handles map[string]bt.Handle
	errs    []error
}

func (b *builder) fail(id string, err error) {
	b.errs = append(b.errs, &bt.StructuralError{Node: id, Err: err})
}

func (b *builder) build(id string) (bt.Handle, bool) {
	if h, ok := b.handles[id]; ok {
		return h, true
	}
	nd, ok := b.def.Nodes[id]
	if !ok {
		b.fail(id, ErrMissingNode)
		return bt.NoHandle, false
	}
	kind, ok := bt.ParseKind(nd.Kind)
	if !ok {
		b.fail(id, fmt.Errorf("%w: %q", ErrUnknownKind, nd.Kind))
		return bt.NoHandle, false
	}

	var h bt.Handle
	switch kind {
	case bt.KindAction:
		h = b.tr.Add(kind, id)
		leaf, err := b.reg.NewAction(nd.Action, nd.Params)
		if err != nil {
			b.fail(id, err)
			break
		}
		n := b.tr.Node(h)
		n.SetUpdate(leaf.Update)
		n.OnEnter(leaf.Enter)
		n.OnExit(leaf.Exit)
	case bt.KindCondition:
		fn, err := b.reg.NewCondition(nd.Condition, nd.Params)
		if err != nil {
			b.fail(id, err)
		}
		h = b.tr.Condition(id, fn)
	default:
		h = b.tr.Add(kind, id)
	}
	b.handles[id] = h

	refs := nd.childRefs()
	switch kind {
	case bt.KindParallel, bt.KindMonitor:
		s, f := nd.SuccessThreshold, nd.FailureThreshold
		if s == 0 {
			s = len(refs)
		}
		if f == 0 {
			f = 1
		}
		_ = b.tr.SetThresholds(h, s, f)
	case bt.KindRepeat:
		_ = b.tr.SetLimit(h, nd.Limit)
	}

	for _, ref := range refs {
		c, ok := b.build(ref)
		if !ok {
			continue
		}
		if err := b.tr.AddChild(h, c); err != nil {
			b.errs = append(b.errs, err)
		}
	}
	return h, true
}
