package compile

import (
	"fmt"
	"strings"

	"src.shadegraph.dev/pkg/graph"
	"src.shadegraph.dev/pkg/vals"
)

// UnknownOutputError is returned when resolving an output that no node
// registered in the current block.
type UnknownOutputError struct {
	Output graph.OutputID
	Block  string
}

func (e *UnknownOutputError) Error() string {
	return fmt.Sprintf("Tried to resolve an unknown output: %s in block %q", e.Output, e.Block)
}

// Variable is a local variable emitted in a block.
type Variable struct {
	Name string
	Type vals.DataType
}

// Block is a named buffer of generated statements. Outputs registered in a
// block are emitted lazily, the first time they are resolved.
type Block struct {
	name    string
	code    []string
	vars    []Variable
	outputs map[graph.OutputID]*output
	counter int
}

type output struct {
	// Pending code; empty once the output has been emitted.
	prefix, code string
	lazy         bool
	value        vals.CompiledValue
}

func newBlock(name string) *Block {
	return &Block{name: name, outputs: map[graph.OutputID]*output{}}
}

// Name returns the name of the block.
func (b *Block) Name() string { return b.name }

// AddLocal emits "let {prefix}_{n} = {code};" with a fresh n and returns the
// variable.
func (b *Block) AddLocal(prefix, code string, dt vals.DataType) vals.CompiledValue {
	b.counter++
	name := fmt.Sprintf("%s_%d", prefix, b.counter)
	b.Append(fmt.Sprintf("\n  let %s = %s;", name, code))
	b.vars = append(b.vars, Variable{name, dt})
	return vals.CompiledValue{Code: name, Type: dt}
}

// AddOutput registers lazy code for an output. Nothing is emitted until the
// output is resolved.
func (b *Block) AddOutput(out graph.OutputID, prefix, code string, dt vals.DataType) {
	b.outputs[out] = &output{prefix: prefix, code: code, lazy: true,
		value: vals.CompiledValue{Type: dt}}
}

// ResolveOutput returns the variable holding an output, emitting it on first
// use.
func (b *Block) ResolveOutput(out graph.OutputID) (vals.CompiledValue, error) {
	o, ok := b.outputs[out]
	if !ok {
		return vals.CompiledValue{}, &UnknownOutputError{out, b.name}
	}
	if o.lazy {
		o.value = b.AddLocal(o.prefix, o.code, o.value.Type)
		o.lazy, o.prefix, o.code = false, "", ""
	}
	return o.value, nil
}

// AppendOutput emits code as an "out" Vec4 local and registers it as output 0
// of node id.
func (b *Block) AppendOutput(id graph.NodeID, code string) vals.CompiledValue {
	v := b.AddLocal("out", code, vals.TypeVec4)
	b.outputs[graph.OutputID{Node: id}] = &output{value: v}
	return v
}

// Append appends raw code.
func (b *Block) Append(code string) {
	b.code = append(b.code, code)
}

// Variables returns the locals emitted so far, in order.
func (b *Block) Variables() []Variable {
	return append([]Variable(nil), b.vars...)
}

// Clear drops everything emitted or registered and resets the counter.
func (b *Block) Clear() {
	b.code = nil
	b.vars = nil
	b.outputs = map[graph.OutputID]*output{}
	b.counter = 0
}

// Dump returns the code of the block.
func (b *Block) Dump() string {
	return strings.Join(b.code, "")
}
