package bt

import (
	"errors"
	"fmt"
)

// Validate checks the structure reachable from the root. All problems are
// reported at once, joined under ErrInvalidTree. Nodes detached from the root
// are ignored so that authoring tools can keep drafts in the arena.
func (t *Tree) Validate() error {
	errs := append([]error(nil), t.buildErrs...)
	if t.root == NoHandle {
		errs = append(errs, structural(nil, ErrNoRoot))
	} else {
		seen := make(map[Handle]bool, len(t.nodes))
		errs = t.validateNode(t.root, seen, errs)
	}
	roots := 0
	for _, n := range t.nodes {
		if n.root {
			roots++
		}
	}
	if roots > 1 {
		errs = append(errs, structural(nil, fmt.Errorf("%d roots: %w", roots, ErrMultipleRoots)))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w %q: %w", ErrInvalidTree, t.name, errors.Join(errs...))
	}
	t.validated = true
	return nil
}

func (t *Tree) validateNode(h Handle, seen map[Handle]bool, errs []error) []error {
	n := t.nodes[h]
	if seen[h] {
		return append(errs, structural(n, ErrCycle))
	}
	seen[h] = true

	switch {
	case n.kind.IsLeaf():
		if len(n.children) > 0 {
			errs = append(errs, structural(n, ErrLeafChildren))
		}
		if n.update == nil {
			errs = append(errs, structural(n, ErrMissingUpdate))
		}
	case n.kind.IsDecorator():
		if len(n.children) != 1 {
			errs = append(errs, structural(n, ErrDecoratorArity))
		}
		if n.limit <= 0 {
			errs = append(errs, structural(n, ErrRepeatLimit))
		}
	case n.kind.IsControl():
		if len(n.children) == 0 {
			errs = append(errs, structural(n, ErrNoChildren))
		}
		if n.kind == KindParallel || n.kind == KindMonitor {
			if err := checkThresholds(n); err != nil {
				errs = append(errs, structural(n, err))
			}
		}
	}

	for _, c := range n.children {
		errs = t.validateNode(c, seen, errs)
	}
	return errs
}

// checkThresholds requires both thresholds to be positive.
func checkThresholds(n *Node) error {
	s, f := n.successThreshold, n.failureThreshold
	if s < 1 || f < 1 {
		return fmt.Errorf("%w: success=%d failure=%d", ErrThreshold, s, f)
	}
	return nil
}

// Warnings lists threshold splits reachable from the root that are valid but
// may never settle: a threshold above the child count, or a pair where every
// child can finish without either threshold being met. Such a node keeps
// returning Running once its children are done.
func (t *Tree) Warnings() []error {
	if t.root == NoHandle {
		return nil
	}
	var out []error
	seen := make(map[Handle]bool, len(t.nodes))
	var walk func(h Handle)
	walk = func(h Handle) {
		if seen[h] {
			return
		}
		seen[h] = true
		n := t.nodes[h]
		if n.kind == KindParallel || n.kind == KindMonitor {
			size := len(n.children)
			s, f := n.successThreshold, n.failureThreshold
			switch {
			case s > size || f > size:
				out = append(out, structural(n, fmt.Errorf("%w: success=%d failure=%d children=%d", ErrThresholdUnreachable, s, f, size)))
			case s+f > size+1:
				out = append(out, structural(n, fmt.Errorf("%w: success=%d failure=%d can stall with %d children", ErrThresholdUnreachable, s, f, size)))
			}
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(t.root)
	return out
}
