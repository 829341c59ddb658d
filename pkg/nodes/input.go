package nodes

import (
	"src.shadegraph.dev/pkg/graph"
	"src.shadegraph.dev/pkg/vals"
)

func booleanDef() *graph.Definition {
	def := graph.NewDefinition("Boolean", func(def *graph.Definition) graph.Node {
		return &booleanNode{newBase(def, false)}
	})
	def.Description = "A constant boolean, output as 0.0 or 1.0."
	def.Categories = []string{"Input", "Basic"}
	def.Params = []graph.ParamDecl{
		{Name: "Value", Kind: graph.SelectParam, Options: []string{"False", "True"}},
	}
	def.Outputs = []graph.PortDecl{graph.Port("out", vals.TypeF32)}
	return def
}

type booleanNode struct{ base }

func (n *booleanNode) value() vals.F32 {
	if n.Selected(0) == "True" {
		return 1
	}
	return 0
}

func (n *booleanNode) Eval(graph.EvalContext, graph.NodeID) ([]vals.Value, error) {
	return []vals.Value{n.value()}, nil
}

func (n *booleanNode) Compile(ctx graph.CompileContext, id graph.NodeID) error {
	code := "0.0"
	if n.value() == 1 {
		code = "1.0"
	}
	return ctx.AddOutput(outID(id, 0), "bool_node", code, vals.TypeF32)
}

func (n *booleanNode) Clone() graph.Node { return &booleanNode{n.cloneBase()} }
