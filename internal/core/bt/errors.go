package bt

import (
	"errors"
	"fmt"
)

// Structural errors, reported by Tree.Validate and Tree.AddChild.
var (
	ErrInvalidTree     = errors.New("invalid tree")
	ErrNoRoot          = errors.New("tree has no root")
	ErrUnknownNode     = errors.New("unknown node handle")
	ErrDuplicateID     = errors.New("duplicate node id")
	ErrCycle           = errors.New("edge would create a cycle")
	ErrMultipleParents = errors.New("node already has a parent")
	ErrRootAsChild     = errors.New("root node cannot be a child")
	ErrMultipleRoots   = errors.New("tree has more than one root")
	ErrNoChildren      = errors.New("control node has no children")
	ErrDecoratorArity  = errors.New("decorator must have exactly one child")
	ErrLeafChildren    = errors.New("leaf node cannot have children")
	ErrThreshold       = errors.New("invalid parallel threshold")
	ErrRepeatLimit     = errors.New("repeat limit must be positive")
	ErrMissingUpdate   = errors.New("leaf node has no update hook")
)

// ErrThresholdUnreachable marks the advisory problems reported by Tree.Warnings.
var ErrThresholdUnreachable = errors.New("parallel thresholds may never settle")

// Hook-contract violations. These are raised as panics carrying a *ContractError.
var (
	ErrUpdateUnset    = errors.New("update hook is not set")
	ErrIllegalOutcome = errors.New("update hook returned an illegal status")
	ErrBoundUpdate    = errors.New("update hook is bound by the node kind")
)

// StructuralError ties a structural problem to the node it was found on.
type StructuralError struct {
	Node string
	Err  error
}

func (e *StructuralError) Error() string {
	if e.Node == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("node %q: %v", e.Node, e.Err)
}

func (e *StructuralError) Unwrap() error { return e.Err }

func structural(n *Node, err error) error {
	if n == nil {
		return &StructuralError{Err: err}
	}
	return &StructuralError{Node: n.id, Err: err}
}

// ContractError is the panic value used when a node breaks the hook contract.
type ContractError struct {
	Node   string
	Kind   Kind
	Status Status
	Err    error
}

func (e *ContractError) Error() string {
	if errors.Is(e.Err, ErrIllegalOutcome) {
		return fmt.Sprintf("%s %q: %v (%s)", e.Kind, e.Node, e.Err, e.Status)
	}
	return fmt.Sprintf("%s %q: %v", e.Kind, e.Node, e.Err)
}

func (e *ContractError) Unwrap() error { return e.Err }
