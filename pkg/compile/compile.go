// Package compile generates shader source from node graphs.
//
// Code is generated into named blocks. Node kinds register their outputs as
// lazy code; an output is emitted as a local variable the first time a
// consumer resolves it, and every later consumer refers to the same variable.
package compile

import (
	"errors"
	"fmt"
	"strings"

	"src.shadegraph.dev/pkg/graph"
	"src.shadegraph.dev/pkg/logutil"
	"src.shadegraph.dev/pkg/vals"
)

var logger = logutil.GetLogger("compile")

// BlockID identifies a block. The zero value stands for no block.
type BlockID = graph.BlockID

// BlockStackError is returned when a block is popped that is not on top of
// the block stack.
type BlockStackError struct {
	Want, Got BlockID
}

func (e *BlockStackError) Error() string { return "Stack corruption detected." }

// UndefinedBlockError is returned when referring to a block by a name that
// was never defined.
type UndefinedBlockError struct {
	Name string
}

func (e *UndefinedBlockError) Error() string {
	return fmt.Sprintf("Undefined block: %q", e.Name)
}

var (
	errNoCurrentBlock = errors.New("No current block on stack")
	errNotRunning     = errors.New("compiler is not running")
)

type status uint8

const (
	notStarted status = iota
	processing
	done
)

// Compiler compiles graphs into blocks of code. A Compiler must not be used
// by concurrent compilations.
type Compiler struct {
	blocks []*Block
	names  map[string]BlockID
	stack  []BlockID

	g      *graph.Graph
	states map[graph.NodeID]status
	// Whether CompileGraph ran since the last Clear.
	ran bool
}

// New returns a Compiler without blocks.
func New() *Compiler {
	return &Compiler{names: map[string]BlockID{}}
}

// DefineBlock defines a block, or returns the id of the existing block with
// the same name.
func (c *Compiler) DefineBlock(name string) BlockID {
	if id, ok := c.names[name]; ok {
		return id
	}
	c.blocks = append(c.blocks, newBlock(name))
	id := BlockID(len(c.blocks))
	c.names[name] = id
	return id
}

// Push makes a block current.
func (c *Compiler) Push(id BlockID) { c.stack = append(c.stack, id) }

// PushNewBlock defines a block if needed and makes it current.
func (c *Compiler) PushNewBlock(name string) BlockID {
	id := c.DefineBlock(name)
	c.Push(id)
	return id
}

// Pop removes the current block from the block stack. It fails if the block
// is not expect; an expect of 0 means the stack is expected to be empty.
func (c *Compiler) Pop(expect BlockID) error {
	var got BlockID
	if n := len(c.stack); n > 0 {
		got = c.stack[n-1]
		c.stack = c.stack[:n-1]
	}
	if got != expect {
		return &BlockStackError{Want: expect, Got: got}
	}
	return nil
}

// CurrentBlock returns the block on top of the block stack.
func (c *Compiler) CurrentBlock() (*Block, error) {
	if len(c.stack) == 0 {
		return nil, errNoCurrentBlock
	}
	return c.BlockByID(c.stack[len(c.stack)-1])
}

// Block returns a block by name.
func (c *Compiler) Block(name string) (*Block, bool) {
	id, ok := c.names[name]
	if !ok {
		return nil, false
	}
	return c.blocks[id-1], true
}

// BlockByID returns a block by id.
func (c *Compiler) BlockByID(id BlockID) (*Block, error) {
	if id == 0 || int(id) > len(c.blocks) {
		return nil, fmt.Errorf("unknown block id %d", id)
	}
	return c.blocks[id-1], nil
}

// AppendCode appends code to the named block.
func (c *Compiler) AppendCode(name, code string) error {
	b, ok := c.Block(name)
	if !ok {
		return &UndefinedBlockError{name}
	}
	b.Append(code)
	return nil
}

// AddOutput implements graph.CompileContext.
func (c *Compiler) AddOutput(out graph.OutputID, prefix, code string, dt vals.DataType) error {
	b, err := c.CurrentBlock()
	if err != nil {
		return err
	}
	b.AddOutput(out, prefix, code, dt)
	return nil
}

// AddLocal implements graph.CompileContext.
func (c *Compiler) AddLocal(prefix, code string, dt vals.DataType) (vals.CompiledValue, error) {
	b, err := c.CurrentBlock()
	if err != nil {
		return vals.CompiledValue{}, err
	}
	return b.AddLocal(prefix, code, dt), nil
}

// AppendOutput implements graph.CompileContext.
func (c *Compiler) AppendOutput(id graph.NodeID, code string) error {
	b, err := c.CurrentBlock()
	if err != nil {
		return err
	}
	b.AppendOutput(id, code)
	return nil
}

// Dump concatenates the code of all blocks in the order they were defined.
func (c *Compiler) Dump() string {
	var sb strings.Builder
	for _, b := range c.blocks {
		sb.WriteString(b.Dump())
	}
	return sb.String()
}

// Clear drops the contents of all blocks and the compiled state of all nodes.
// Block definitions are kept.
func (c *Compiler) Clear() {
	for _, b := range c.blocks {
		b.Clear()
	}
	c.states = nil
	c.ran = false
}

// CompileGraph compiles the designated output node of g and everything it
// depends on into the current block. Every call after the first one since the
// last Clear clears the blocks first, so compiling twice yields the same code
// as compiling once.
func (c *Compiler) CompileGraph(g *graph.Graph) error {
	id, ok := g.Output()
	if !ok {
		return graph.ErrMissingOutput
	}
	if c.ran {
		c.Clear()
	}
	c.ran = true
	c.states = map[graph.NodeID]status{}
	logger.Printf("[DEBUG] compiling node %s of %d nodes", id, g.Len())
	err := c.CompileNode(g, id)
	if err != nil {
		logger.Printf("[DEBUG] compilation failed: %v", err)
	} else {
		logger.Printf("[DEBUG] compilation finished")
	}
	return err
}

// CompileNode compiles one node of g, unless it was already compiled since
// the last CompileGraph or Clear.
func (c *Compiler) CompileNode(g *graph.Graph, id graph.NodeID) error {
	prev := c.g
	c.g = g
	defer func() { c.g = prev }()
	return c.compileNode(id)
}

func (c *Compiler) compileNode(id graph.NodeID) error {
	if c.states == nil {
		c.states = map[graph.NodeID]status{}
	}
	switch c.states[id] {
	case processing:
		return &graph.CycleError{Node: id}
	case done:
		return nil
	}
	n, err := c.g.Get(id)
	if err != nil {
		return err
	}
	c.states[id] = processing
	if err := n.Compile(nodeContext{c}, id); err != nil {
		delete(c.states, id)
		return err
	}
	c.states[id] = done
	return nil
}

// ResolveOutput compiles the node of g owning out if needed, then resolves
// out in the current block, emitting its code on first use.
func (c *Compiler) ResolveOutput(g *graph.Graph, out graph.OutputID) (vals.CompiledValue, error) {
	prev := c.g
	c.g = g
	defer func() { c.g = prev }()
	return c.resolveOutput(out)
}

func (c *Compiler) resolveOutput(out graph.OutputID) (vals.CompiledValue, error) {
	if c.g == nil {
		return vals.CompiledValue{}, errNotRunning
	}
	if err := c.compileNode(out.Node); err != nil {
		return vals.CompiledValue{}, err
	}
	b, err := c.CurrentBlock()
	if err != nil {
		return vals.CompiledValue{}, err
	}
	return b.ResolveOutput(out)
}

// nodeContext is the graph.CompileContext node kinds compile with. It
// resolves outputs in the graph being compiled.
type nodeContext struct{ *Compiler }

var _ graph.CompileContext = nodeContext{}

func (nc nodeContext) ResolveOutput(out graph.OutputID) (vals.CompiledValue, error) {
	return nc.resolveOutput(out)
}

// Program compiles g with the given blocks defined in order, using current as
// the block the output node is compiled into, and returns the dumped code.
func Program(g *graph.Graph, blocks []string, current string) (string, error) {
	c := New()
	for _, name := range blocks {
		c.DefineBlock(name)
	}
	id := c.PushNewBlock(current)
	if err := c.CompileGraph(g); err != nil {
		return "", err
	}
	if err := c.Pop(id); err != nil {
		return "", err
	}
	return c.Dump(), nil
}
