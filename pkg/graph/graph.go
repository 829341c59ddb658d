package graph

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/copystructure"
)

// Graph is an arena of nodes, an index of connections from inputs to
// outputs, and an optional designated output node.
//
// A Graph may be read by concurrent evaluations and compilations, but must
// not be modified concurrently with anything else.
type Graph struct {
	slots  []slot
	free   []uint32
	order  []NodeID
	conns  map[InputID]OutputID
	output NodeID
}

type slot struct {
	gen  uint32
	node Node
}

// Connection is one entry of the connection index.
type Connection struct {
	Input  InputID
	Output OutputID
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{conns: map[InputID]OutputID{}}
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.order) }

// Add inserts a node and returns its fresh id. Inputs the node already has
// connected are added to the connection index; those whose source node or
// output does not exist in g are disconnected.
func (g *Graph) Add(n Node) NodeID {
	var id NodeID
	if k := len(g.free); k > 0 {
		idx := g.free[k-1]
		g.free = g.free[:k-1]
		g.slots[idx].node = n
		id = NodeID{idx, g.slots[idx].gen}
	} else {
		g.slots = append(g.slots, slot{gen: 1, node: n})
		id = NodeID{uint32(len(g.slots) - 1), 1}
	}
	g.order = append(g.order, id)
	for i := range n.Def().Inputs {
		in, err := n.Input(Index(i))
		if err != nil || !in.IsConnected() {
			continue
		}
		if src, ok := g.lookup(in.Source.Node); ok && int(in.Source.Index) < len(src.Def().Outputs) {
			g.conns[InputID{id, uint32(i)}] = in.Source
			continue
		}
		logger.Printf("[WARN] disconnected %s of new node %s: no source %s", n.Def().Inputs[i].Name, id, in.Source)
		if _, _, err := n.SetInput(Index(i), Disconnected()); err != nil {
			logger.Printf("[WARN] failed to disconnect %s of new node %s: %v", n.Def().Inputs[i].Name, id, err)
		}
	}
	return id
}

func (g *Graph) lookup(id NodeID) (Node, bool) {
	if id.IsZero() || int(id.Index) >= len(g.slots) {
		return nil, false
	}
	s := g.slots[id.Index]
	if s.gen != id.Gen || s.node == nil {
		return nil, false
	}
	return s.node, true
}

// Contains reports whether id refers to a node of the graph.
func (g *Graph) Contains(id NodeID) bool {
	_, ok := g.lookup(id)
	return ok
}

// Get returns the node with the given id.
func (g *Graph) Get(id NodeID) (Node, error) {
	n, ok := g.lookup(id)
	if !ok {
		return nil, &MissingNodeError{id}
	}
	return n, nil
}

// Remove removes a node and returns it. Inputs of other nodes connected to
// the node are disconnected first, and the designated output is cleared if it
// was the removed node.
func (g *Graph) Remove(id NodeID) (Node, bool) {
	n, ok := g.lookup(id)
	if !ok {
		return nil, false
	}
	for _, in := range g.Dependents(id) {
		dep, ok := g.lookup(in.Node)
		if !ok {
			delete(g.conns, in)
			continue
		}
		if _, _, err := dep.SetInput(Index(int(in.Index)), Disconnected()); err != nil {
			logger.Printf("[WARN] failed to sever %s from removed node %s: %v", in, id, err)
		}
		delete(g.conns, in)
		logger.Printf("[DEBUG] severed %s from removed node %s", in, id)
	}
	for in := range g.conns {
		if in.Node == id {
			delete(g.conns, in)
		}
	}
	if g.output == id {
		g.output = NodeID{}
	}
	g.slots[id.Index] = slot{gen: id.Gen + 1}
	g.free = append(g.free, id.Index)
	for i, o := range g.order {
		if o == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	logger.Printf("[DEBUG] removed node %s (%s)", id, n.Def().Name)
	return n, true
}

// InputID resolves an input key of a node.
func (g *Graph) InputID(id NodeID, key InputKey) (InputID, error) {
	n, err := g.Get(id)
	if err != nil {
		return InputID{}, err
	}
	i, ok := n.Def().InputIndex(key)
	if !ok {
		return InputID{}, &PortError{Kind: n.Def().Name, Port: key.String(), Msg: "Unknown input"}
	}
	return InputID{id, uint32(i)}, nil
}

// OutputID resolves an output key of a node.
func (g *Graph) OutputID(id NodeID, key InputKey) (OutputID, error) {
	n, err := g.Get(id)
	if err != nil {
		return OutputID{}, err
	}
	i, ok := n.Def().OutputIndex(key)
	if !ok {
		return OutputID{}, &PortError{Kind: n.Def().Name, Port: key.String(), Msg: "Unknown output"}
	}
	return OutputID{id, uint32(i)}, nil
}

// NodeInput returns the state of an input of a node.
func (g *Graph) NodeInput(id NodeID, key InputKey) (Input, error) {
	n, err := g.Get(id)
	if err != nil {
		return Input{}, err
	}
	return n.Input(key)
}

// SetNodeInput sets the state of an input of a node and keeps the connection
// index in sync. It returns the output the input was previously connected
// to, if any. Connecting to a node that does not exist, or to an output it
// does not declare, fails. On error the graph is unchanged.
func (g *Graph) SetNodeInput(id NodeID, key InputKey, in Input) (OutputID, bool, error) {
	inID, err := g.InputID(id, key)
	if err != nil {
		return OutputID{}, false, err
	}
	if in.IsConnected() {
		src, err := g.Get(in.Source.Node)
		if err != nil {
			return OutputID{}, false, err
		}
		if int(in.Source.Index) >= len(src.Def().Outputs) {
			return OutputID{}, false, &PortError{Kind: src.Def().Name,
				Port: fmt.Sprint(in.Source.Index), Msg: "Unknown output"}
		}
	}
	n, _ := g.lookup(id)
	prev, hadPrev, err := n.SetInput(Index(int(inID.Index)), in)
	if err != nil {
		return OutputID{}, false, err
	}
	if in.IsConnected() {
		g.conns[inID] = in.Source
	} else {
		delete(g.conns, inID)
	}
	return prev, hadPrev, nil
}

// SetInput is like SetNodeInput, with the input addressed by an InputID.
func (g *Graph) SetInput(in InputID, v Input) (OutputID, bool, error) {
	return g.SetNodeInput(in.Node, Index(int(in.Index)), v)
}

// Connect connects an input to an output, checking that the declared type of
// the output is compatible with the input.
func (g *Graph) Connect(in InputID, out OutputID) error {
	src, err := g.Get(out.Node)
	if err != nil {
		return err
	}
	outputs := src.Def().Outputs
	if int(out.Index) >= len(outputs) {
		return &PortError{Kind: src.Def().Name, Port: fmt.Sprint(out.Index), Msg: "Unknown output"}
	}
	_, _, err = g.SetInput(in, Connected(out, outputs[out.Index].Type))
	return err
}

// Disconnect disconnects an input. The input falls back to its literal.
func (g *Graph) Disconnect(in InputID) error {
	_, _, err := g.SetInput(in, Disconnected())
	return err
}

// SetOutput designates the output node.
func (g *Graph) SetOutput(id NodeID) error {
	if !g.Contains(id) {
		return &MissingNodeError{id}
	}
	g.output = id
	return nil
}

// ClearOutput clears the designated output node.
func (g *Graph) ClearOutput() { g.output = NodeID{} }

// Output returns the designated output node.
func (g *Graph) Output() (NodeID, bool) {
	return g.output, !g.output.IsZero()
}

// NodeIDs returns the ids of all nodes in insertion order.
func (g *Graph) NodeIDs() []NodeID {
	return append([]NodeID(nil), g.order...)
}

// Connections returns the connection index sorted by input.
func (g *Graph) Connections() []Connection {
	conns := make([]Connection, 0, len(g.conns))
	for in, out := range g.conns {
		conns = append(conns, Connection{in, out})
	}
	sort.Slice(conns, func(i, j int) bool {
		a, b := conns[i].Input, conns[j].Input
		if a.Node != b.Node {
			return a.Node.Less(b.Node)
		}
		return a.Index < b.Index
	})
	return conns
}

// Dependents returns the inputs connected to any output of node id, sorted.
func (g *Graph) Dependents(id NodeID) []InputID {
	var deps []InputID
	for _, c := range g.Connections() {
		if c.Output.Node == id {
			deps = append(deps, c.Input)
		}
	}
	return deps
}

// Validate checks the invariants of the graph and returns every violation.
func (g *Graph) Validate() error {
	var result *multierror.Error
	for in, out := range g.conns {
		dst, ok := g.lookup(in.Node)
		if !ok {
			result = multierror.Append(result, fmt.Errorf("connection %s -> %s: %w", in, out, &MissingNodeError{in.Node}))
			continue
		}
		src, ok := g.lookup(out.Node)
		if !ok {
			result = multierror.Append(result, fmt.Errorf("connection %s -> %s: %w", in, out, &MissingNodeError{out.Node}))
			continue
		}
		if int(out.Index) >= len(src.Def().Outputs) {
			result = multierror.Append(result, fmt.Errorf("connection %s -> %s: node has no such output", in, out))
		}
		state, err := dst.Input(Index(int(in.Index)))
		if err != nil || !state.IsConnected() || state.Source != out {
			result = multierror.Append(result, fmt.Errorf("connection %s -> %s: node state is %v", in, out, state))
		}
	}
	for _, id := range g.order {
		n, _ := g.lookup(id)
		for i := range n.Def().Inputs {
			in, err := n.Input(Index(i))
			if err != nil || !in.IsConnected() {
				continue
			}
			inID := InputID{id, uint32(i)}
			if _, ok := g.conns[inID]; !ok {
				result = multierror.Append(result, fmt.Errorf("input %s is connected but not indexed", inID))
			}
		}
	}
	if !g.output.IsZero() && !g.Contains(g.output) {
		result = multierror.Append(result, fmt.Errorf("output: %w", &MissingNodeError{g.output}))
	}
	return result.ErrorOrNil()
}

// Clone returns a deep copy of the graph. Node ids stay valid in the copy.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		slots:  make([]slot, len(g.slots)),
		free:   append([]uint32(nil), g.free...),
		order:  append([]NodeID(nil), g.order...),
		conns:  copystructure.Must(copystructure.Copy(g.conns)).(map[InputID]OutputID),
		output: g.output,
	}
	for i, s := range g.slots {
		c.slots[i].gen = s.gen
		if s.node != nil {
			c.slots[i].node = s.node.Clone()
		}
	}
	return c
}
