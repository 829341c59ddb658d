package graph

import (
	"src.shadegraph.dev/pkg/vals"
)

// Node kinds used by the tests of this package.

// sumNode adds its two F32 inputs.
type sumNode struct{ PortSet }

var sumDef = func() *Definition {
	def := NewDefinition("Sum", func(def *Definition) Node { return &sumNode{NewPortSet(def)} })
	def.Categories = []string{"Math"}
	def.Inputs = []PortDecl{Port("a", vals.TypeF32), Port("b", vals.TypeF32)}
	def.Params = []ParamDecl{{Name: "Mode", Kind: SelectParam, Options: []string{"Fast", "Exact"}}}
	def.Outputs = []PortDecl{Port("out", vals.TypeF32)}
	return def
}()

func (n *sumNode) CacheOutput() bool { return true }

func (n *sumNode) Eval(ctx EvalContext, id NodeID) ([]vals.Value, error) {
	a, err := n.EvalInput(ctx, 0)
	if err != nil {
		return nil, err
	}
	b, err := n.EvalInput(ctx, 1)
	if err != nil {
		return nil, err
	}
	return []vals.Value{a.(vals.F32) + b.(vals.F32)}, nil
}

func (n *sumNode) Compile(ctx CompileContext, id NodeID) error {
	a, err := n.CompileInput(ctx, 0)
	if err != nil {
		return err
	}
	b, err := n.CompileInput(ctx, 1)
	if err != nil {
		return err
	}
	return ctx.AddOutput(OutputID{Node: id}, "sum", "("+a.Code+" + "+b.Code+")", vals.TypeF32)
}

func (n *sumNode) Clone() Node { return &sumNode{n.ClonePorts()} }

// matNode outputs the identity matrix.
type matNode struct{ PortSet }

var matDef = func() *Definition {
	def := NewDefinition("Identity Matrix", func(def *Definition) Node { return &matNode{NewPortSet(def)} })
	def.Categories = []string{"Input"}
	def.Outputs = []PortDecl{{Name: "Out", Type: vals.TypeMat4}}
	return def
}()

func (n *matNode) CacheOutput() bool { return false }

func (n *matNode) Eval(EvalContext, NodeID) ([]vals.Value, error) {
	return []vals.Value{vals.TypeMat4.DefaultValue()}, nil
}

func (n *matNode) Compile(ctx CompileContext, id NodeID) error {
	return ctx.AddOutput(OutputID{Node: id}, "mat", vals.Compile(vals.TypeMat4.DefaultValue()).Code, vals.TypeMat4)
}

func (n *matNode) Clone() Node { return &matNode{n.ClonePorts()} }

func newSum(a, b float32) Node {
	n := sumDef.Build(sumDef)
	n.SetInput(Index(0), Literal(vals.F32(a)))
	n.SetInput(Index(1), Literal(vals.F32(b)))
	return n
}

// evalCtx evaluates outputs of a graph without caching.
type evalCtx struct{ g *Graph }

func (c evalCtx) EvalOutput(out OutputID) (vals.Value, error) {
	n, err := c.g.Get(out.Node)
	if err != nil {
		return nil, err
	}
	outs, err := n.Eval(c, out.Node)
	if err != nil {
		return nil, err
	}
	return outs[out.Index], nil
}
