package graph

import "src.shadegraph.dev/pkg/vals"

// Node is an instance of a node kind. It owns the state of its input ports
// and parameters; outputs are computed on demand by Eval and Compile.
type Node interface {
	Def() *Definition
	// CacheOutput reports whether the outputs may be reused within one
	// evaluation.
	CacheOutput() bool

	Input(key InputKey) (Input, error)
	// SetInput replaces the state of an input port, returning the output it
	// was connected to, if any. On error the state is unchanged.
	SetInput(key InputKey, in Input) (prev OutputID, hadPrev bool, err error)
	Param(name string) (ParamValue, error)
	SetParam(name string, v ParamValue) error
	// States returns the state of every input and parameter, in declaration
	// order.
	States() []PortState

	// Eval computes one value per declared output, or a single value for
	// nodes without outputs.
	Eval(ctx EvalContext, id NodeID) ([]vals.Value, error)
	// Compile registers code for the outputs of the node.
	Compile(ctx CompileContext, id NodeID) error

	Clone() Node
}

// EvalContext is implemented by the evaluator.
type EvalContext interface {
	EvalOutput(out OutputID) (vals.Value, error)
}

// BlockID identifies a block of generated code. The zero value stands for no
// block.
type BlockID uint32

// CompileContext is implemented by the compiler.
type CompileContext interface {
	// ResolveOutput compiles the node owning out if needed, and returns the
	// expression for out, materializing it on first use.
	ResolveOutput(out OutputID) (vals.CompiledValue, error)
	// AddOutput registers the lazy code for out in the current block.
	AddOutput(out OutputID, prefix, code string, dt vals.DataType) error
	// AddLocal emits a local variable in the current block and returns it.
	AddLocal(prefix, code string, dt vals.DataType) (vals.CompiledValue, error)
	// AppendOutput emits code as the Vec4 result of node id.
	AppendOutput(id NodeID, code string) error
	AppendCode(block, code string) error
	PushNewBlock(name string) BlockID
	Pop(expect BlockID) error
}

// PortKind distinguishes input states from parameter states.
type PortKind uint8

// Port kinds.
const (
	InputPort PortKind = iota
	ParamPort
)

// PortState is the persisted state of one input port or parameter.
type PortState struct {
	Kind  PortKind
	Name  string
	Input Input
	Param ParamValue
}
