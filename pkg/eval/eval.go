// Package eval evaluates node graphs to values.
package eval

import (
	"errors"
	"fmt"

	"src.shadegraph.dev/pkg/graph"
	"src.shadegraph.dev/pkg/logutil"
	"src.shadegraph.dev/pkg/vals"
)

var logger = logutil.GetLogger("eval")

// DefaultMaxDepth is the default limit on the depth of nested node
// evaluations.
const DefaultMaxDepth = 10000

// DepthError is returned when nested node evaluations exceed the depth
// limit, which happens for cycles through nodes that are not cached.
type DepthError struct {
	Node  graph.NodeID
	Limit int
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("evaluation depth limit %d exceeded at node %s", e.Limit, e.Node)
}

var errNotRunning = errors.New("evaluator is not running")

type status uint8

const (
	notStarted status = iota
	processing
	done
)

type nodeState struct {
	status  status
	outputs []vals.Value
}

// Evaluator evaluates graphs. The state of one evaluation is discarded when it
// finishes. An Evaluator must not be used by concurrent evaluations.
type Evaluator struct {
	// MaxDepth limits the depth of nested node evaluations. Zero means
	// DefaultMaxDepth.
	MaxDepth int

	g      *graph.Graph
	states map[graph.NodeID]*nodeState
	visits map[graph.NodeID]int
	depth  int
}

// New returns a new Evaluator.
func New() *Evaluator { return &Evaluator{} }

// Evaluate evaluates g with a fresh Evaluator.
func Evaluate(g *graph.Graph) (vals.Value, error) {
	return New().Evaluate(g)
}

// Evaluate evaluates the designated output node of g and returns its first
// value.
func (e *Evaluator) Evaluate(g *graph.Graph) (vals.Value, error) {
	id, ok := g.Output()
	if !ok {
		return nil, graph.ErrMissingOutput
	}
	outs, err := e.EvalNode(g, id)
	if err != nil {
		return nil, err
	}
	if len(outs) == 0 {
		return nil, fmt.Errorf("output node %s produced no value", id)
	}
	return outs[0], nil
}

// EvalNode evaluates one node of g and all nodes it depends on.
func (e *Evaluator) EvalNode(g *graph.Graph, id graph.NodeID) ([]vals.Value, error) {
	e.g = g
	e.states = map[graph.NodeID]*nodeState{}
	e.visits = map[graph.NodeID]int{}
	e.depth = 0
	defer func() {
		e.g = nil
		e.states = nil
	}()
	logger.Printf("[DEBUG] evaluating node %s of %d nodes", id, g.Len())
	outs, err := e.evalNode(id)
	if err != nil {
		logger.Printf("[DEBUG] evaluation failed: %v", err)
	} else {
		logger.Printf("[DEBUG] evaluation finished")
	}
	return outs, err
}

// Visits returns how many times the logic of a node ran during the last
// evaluation.
func (e *Evaluator) Visits(id graph.NodeID) int { return e.visits[id] }

// EvalOutput implements graph.EvalContext.
func (e *Evaluator) EvalOutput(out graph.OutputID) (vals.Value, error) {
	outs, err := e.evalNode(out.Node)
	if err != nil {
		return nil, err
	}
	if int(out.Index) >= len(outs) {
		return nil, fmt.Errorf("node %s has no output %d", out.Node, out.Index)
	}
	return outs[out.Index], nil
}

func (e *Evaluator) evalNode(id graph.NodeID) ([]vals.Value, error) {
	if e.g == nil {
		return nil, errNotRunning
	}
	n, err := e.g.Get(id)
	if err != nil {
		return nil, err
	}
	limit := e.MaxDepth
	if limit <= 0 {
		limit = DefaultMaxDepth
	}
	if e.depth >= limit {
		return nil, &DepthError{Node: id, Limit: limit}
	}
	e.depth++
	defer func() { e.depth-- }()

	if !n.CacheOutput() {
		e.visits[id]++
		return n.Eval(e, id)
	}
	st := e.states[id]
	if st == nil {
		st = &nodeState{}
		e.states[id] = st
	}
	switch st.status {
	case processing:
		return nil, &graph.CycleError{Node: id}
	case done:
		return st.outputs, nil
	}
	st.status = processing
	e.visits[id]++
	outs, err := n.Eval(e, id)
	if err != nil {
		st.status = notStarted
		return nil, err
	}
	st.status, st.outputs = done, outs
	return outs, nil
}
