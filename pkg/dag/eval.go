package dag

import (
	errs "github.com/matzehuels/fealgraph/pkg/errors"
	"github.com/matzehuels/fealgraph/pkg/feal"
)

// Evaluate computes the value of node id from the currently bound inputs.
//
// Evaluation is a pure function of the bound values. Within one call each
// reachable node is computed once and reused by every consumer; nothing is
// cached between calls, so rebinding an input and evaluating again always
// reflects the new value.
//
// Evaluate fails with [errs.ErrCodeEvaluation] wrapping [ErrUnbound] when a
// reachable input has no value. The arena is left unchanged and a later call
// after [Arena.Bind] succeeds.
func Evaluate(a *Arena, id NodeID) (uint64, error) {
	e := evaluator{arena: a, memo: make(map[NodeID]uint64)}
	return e.eval(id)
}

// EvaluateAll computes every node reachable from root and returns the values
// keyed by id.
func EvaluateAll(a *Arena, root NodeID) (map[NodeID]uint64, error) {
	e := evaluator{arena: a, memo: make(map[NodeID]uint64)}
	if _, err := e.eval(root); err != nil {
		return nil, err
	}
	return e.memo, nil
}

type evaluator struct {
	arena *Arena
	memo  map[NodeID]uint64
}

func (e *evaluator) eval(id NodeID) (uint64, error) {
	if v, ok := e.memo[id]; ok {
		return v, nil
	}
	n, ok := e.arena.Node(id)
	if !ok {
		return 0, errs.Wrap(errs.ErrCodeEvaluation, ErrUnknownNode, "evaluate node %d", id)
	}

	operands := make([]uint64, len(n.Operands))
	for i, op := range n.Operands {
		v, err := e.eval(op)
		if err != nil {
			return 0, err
		}
		operands[i] = v
	}

	v, err := e.apply(n, operands)
	if err != nil {
		return 0, err
	}
	e.memo[id] = v
	return v, nil
}

func (e *evaluator) width(id NodeID) int {
	return e.arena.nodes[id].Width
}

func (e *evaluator) apply(n *Node, v []uint64) (uint64, error) {
	switch n.Kind {
	case KindInput:
		if !n.bound {
			return 0, errs.Wrap(errs.ErrCodeEvaluation, ErrUnbound, "input %q (node %d)", n.Label, n.ID)
		}
		return n.value, nil
	case KindXOR:
		return v[0] ^ v[1], nil
	case KindLeft:
		return v[0] >> n.Width & mask(n.Width), nil
	case KindRight:
		return v[0] & mask(n.Width), nil
	case KindConcat:
		return v[0]<<e.width(n.Operands[1]) | v[1], nil
	case KindSwap:
		return v[1]<<e.width(n.Operands[0]) | v[0], nil
	case KindCopy:
		return v[0], nil
	case KindF:
		return uint64(feal.F(uint16(v[0]), uint32(v[1]))), nil
	default:
		return 0, errs.New(errs.ErrCodeInternal, "evaluate node %d: unknown kind %s", n.ID, n.Kind)
	}
}
