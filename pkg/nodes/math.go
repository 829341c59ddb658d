package nodes

import (
	"fmt"

	"src.shadegraph.dev/pkg/graph"
	"src.shadegraph.dev/pkg/vals"
)

func multiplyDef() *graph.Definition {
	def := graph.NewDefinition("Multiply", func(def *graph.Definition) graph.Node {
		return &multiplyNode{newBase(def, false)}
	})
	def.Description = "Multiply two values. A matrix times a vector transforms the vector."
	def.Categories = []string{"Math", "Basic"}
	def.Inputs = []graph.PortDecl{
		graph.Port("a", vals.TypeDynamic),
		graph.Port("b", vals.TypeDynamic),
	}
	def.Outputs = []graph.PortDecl{graph.Port("out", vals.TypeDynamic)}
	return def
}

// multiplyNode multiplies its inputs without unifying their types. Vectors
// and scalars multiply element-wise, the scalar broadcast over the vector;
// matrices use the linear algebra product.
type multiplyNode struct{ base }

func (n *multiplyNode) Eval(ctx graph.EvalContext, id graph.NodeID) ([]vals.Value, error) {
	a, err := n.EvalInputRaw(ctx, 0)
	if err != nil {
		return nil, err
	}
	b, err := n.EvalInputRaw(ctx, 1)
	if err != nil {
		return nil, err
	}
	v, err := multiply(a, b)
	if err != nil {
		return nil, &graph.PortError{Kind: n.Def().Name, Port: "A", Msg: "Cannot multiply", Err: err}
	}
	return []vals.Value{v}, nil
}

func (n *multiplyNode) Compile(ctx graph.CompileContext, id graph.NodeID) error {
	a, err := n.CompileInputRaw(ctx, 0)
	if err != nil {
		return err
	}
	b, err := n.CompileInputRaw(ctx, 1)
	if err != nil {
		return err
	}
	code, dt := fmt.Sprintf("(%s * %s)", a, b), a.Type
	switch {
	case a.Type.Class() == vals.MatrixClass && b.Type.Class() == vals.VectorClass:
		code, dt = fmt.Sprintf("(%s * %s)", b, a), b.Type
	case a.Type.Class() == vals.ScalarClass:
		dt = b.Type
	}
	return ctx.AddOutput(outID(id, 0), "multiply_node", code, dt)
}

func (n *multiplyNode) Clone() graph.Node { return &multiplyNode{n.cloneBase()} }

func multiply(a, b vals.Value) (vals.Value, error) {
	ca, aVec := vals.Components(a)
	cb, bVec := vals.Components(b)
	ma, aMat := vals.Columns(a)
	mb, bMat := vals.Columns(b)
	switch {
	case aVec && bVec:
		return mulVectors(ca, cb)
	case aVec && len(ca) == 1 && bMat:
		return scaleMat(mb, ca[0]), nil
	case aMat && bVec && len(cb) == 1:
		return scaleMat(ma, cb[0]), nil
	case aMat && bVec:
		// Matches the compiled form, which puts the vector first.
		return vecTimesMat(cb, ma)
	case aVec && bMat:
		return vecTimesMat(ca, mb)
	case aMat && bMat:
		if len(ma) != len(mb) {
			return nil, fmt.Errorf("mismatched matrices %s and %s", a.DataType(), b.DataType())
		}
		// Column j of A*B is A times column j of B.
		out := make([][]float32, len(mb))
		for j, col := range mb {
			out[j] = matTimesVec(ma, col)
		}
		m, _ := vals.FromColumns(out)
		return m, nil
	}
	return nil, fmt.Errorf("cannot multiply %s by %s", a.DataType(), b.DataType())
}

func mulVectors(a, b []float32) (vals.Value, error) {
	switch {
	case len(a) == 1:
		a, b = b, a
		fallthrough
	case len(b) == 1:
		out := make([]float32, len(a))
		for i := range a {
			out[i] = a[i] * b[0]
		}
		v, _ := vals.FromComponents(out)
		return v, nil
	case len(a) != len(b):
		return nil, fmt.Errorf("mismatched widths %d and %d", len(a), len(b))
	}
	out := make([]float32, len(a))
	for i := range a {
		out[i] = a[i] * b[i]
	}
	v, _ := vals.FromComponents(out)
	return v, nil
}

func scaleMat(m [][]float32, s float32) vals.Value {
	out := make([][]float32, len(m))
	for j, col := range m {
		out[j] = make([]float32, len(col))
		for i, x := range col {
			out[j][i] = x * s
		}
	}
	v, _ := vals.FromColumns(out)
	return v
}

// vecTimesMat computes v * M, the dot products of v with the columns of M.
func vecTimesMat(v []float32, m [][]float32) (vals.Value, error) {
	if len(v) != len(m) {
		return nil, fmt.Errorf("cannot multiply Vec%d by Mat%d", len(v), len(m))
	}
	out := make([]float32, len(m))
	for j, col := range m {
		for i := range v {
			out[j] += v[i] * col[i]
		}
	}
	w, _ := vals.FromComponents(out)
	return w, nil
}

// matTimesVec computes M * v.
func matTimesVec(m [][]float32, v []float32) []float32 {
	out := make([]float32, len(v))
	for j, col := range m {
		for i := range col {
			out[i] += col[i] * v[j]
		}
	}
	return out
}
