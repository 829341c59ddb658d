package nodes

import (
	"src.shadegraph.dev/pkg/graph"
	"src.shadegraph.dev/pkg/vals"
)

// exprNode is a node of a kind from the kind table.
type exprNode struct {
	base
	kind *exprKind
}

// outType returns the type of the output: the resolved type when the output
// is dynamic, the declared type otherwise.
func (n *exprNode) outType(resolved vals.DataType) vals.DataType {
	if dt := n.Def().Outputs[0].Type; !dt.IsDynamic() {
		return dt
	}
	return resolved
}

func (n *exprNode) Eval(ctx graph.EvalContext, id graph.NodeID) ([]vals.Value, error) {
	if n.kind.entry.Op == "const" {
		return []vals.Value{n.ParamAt(0)}, nil
	}
	args, dt, err := evalInputs(&n.PortSet, ctx)
	if err != nil {
		return nil, err
	}
	v, err := n.kind.op.apply(args)
	if err != nil {
		return nil, err
	}
	if v, err = vals.Convert(v, n.outType(dt)); err != nil {
		return nil, err
	}
	return []vals.Value{v}, nil
}

func (n *exprNode) Compile(ctx graph.CompileContext, id graph.NodeID) error {
	var args []vals.CompiledValue
	dt := n.Def().Outputs[0].Type
	if n.kind.entry.Op == "const" {
		args = []vals.CompiledValue{vals.Compile(n.ParamAt(0))}
	} else {
		var resolved vals.DataType
		var err error
		args, resolved, err = compileInputs(&n.PortSet, ctx)
		if err != nil {
			return err
		}
		dt = n.outType(resolved)
	}
	return ctx.AddOutput(outID(id, 0), n.kind.entry.Prefix, n.kind.expand(args), dt)
}

func (n *exprNode) Clone() graph.Node {
	return &exprNode{n.cloneBase(), n.kind}
}
