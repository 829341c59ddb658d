package nodes

import (
	"fmt"
	"strings"

	"src.shadegraph.dev/pkg/graph"
	"src.shadegraph.dev/pkg/vals"
)

func splitDef() *graph.Definition {
	def := graph.NewDefinition("Split", func(def *graph.Definition) graph.Node {
		return &splitNode{newBase(def, false)}
	})
	def.Description = "Split a vector into its channels."
	def.Categories = []string{"Channel"}
	def.Inputs = []graph.PortDecl{graph.Port("input", vals.TypeDynamicVector)}
	for _, c := range []string{"r", "g", "b", "a"} {
		def.Outputs = append(def.Outputs, graph.Port(c, vals.TypeF32))
	}
	return def
}

type splitNode struct{ base }

var channelNames = [...]string{"r", "g", "b", "a"}

func (n *splitNode) Eval(ctx graph.EvalContext, id graph.NodeID) ([]vals.Value, error) {
	v, err := n.EvalInput(ctx, 0)
	if err != nil {
		return nil, err
	}
	comps, _ := vals.Components(v)
	outs := make([]vals.Value, 4)
	for i := range outs {
		outs[i] = vals.F32(0)
		if i < len(comps) {
			outs[i] = vals.F32(comps[i])
		}
	}
	return outs, nil
}

func (n *splitNode) Compile(ctx graph.CompileContext, id graph.NodeID) error {
	in, err := n.CompileInputRaw(ctx, 0)
	if err != nil {
		return err
	}
	width := in.Type.Width()
	if in.Type.Class() == vals.ScalarClass {
		in, err = in.Convert(vals.TypeF32)
		if err != nil {
			return err
		}
	} else if in.Type.Class() != vals.VectorClass || width == 0 {
		return &graph.PortError{Kind: n.Def().Name, Port: "Input",
			Msg: "Unsupported input data type " + in.Type.String()}
	}
	for i, c := range channelNames {
		code := "0."
		switch {
		case width == 1 && i == 0:
			code = in.Code
		case i < width && width > 1:
			code = in.Code + "." + c
		}
		if err := ctx.AddOutput(outID(id, i), "split_node_"+c, code, vals.TypeF32); err != nil {
			return err
		}
	}
	return nil
}

func (n *splitNode) Clone() graph.Node { return &splitNode{n.cloneBase()} }

// Swizzle masks, identity first, then every mask of 1 to 4 components in
// order of length.
var swizzleMasks = func() []string {
	masks := []string{"xyzw"}
	prev := []string{""}
	for length := 1; length <= 4; length++ {
		var next []string
		for _, p := range prev {
			for _, c := range "xyzw" {
				m := p + string(c)
				next = append(next, m)
				if m != "xyzw" {
					masks = append(masks, m)
				}
			}
		}
		prev = next
	}
	return masks
}()

func swizzleDef() *graph.Definition {
	def := graph.NewDefinition("Swizzle", func(def *graph.Definition) graph.Node {
		return &swizzleNode{newBase(def, false)}
	})
	def.Description = "Reorder, repeat or drop the components of a vector."
	def.Categories = []string{"Channel"}
	def.Inputs = []graph.PortDecl{graph.Port("input", vals.TypeDynamicVector)}
	def.Params = []graph.ParamDecl{{Name: "Mask", Kind: graph.SelectParam, Options: swizzleMasks}}
	def.Outputs = []graph.PortDecl{graph.Port("out", vals.TypeDynamicVector)}
	return def
}

type swizzleNode struct{ base }

// indices returns the component indices of the mask, checking them against
// the width of the input.
func (n *swizzleNode) indices(width int) ([]int, error) {
	mask := n.Selected(0)
	idx := make([]int, len(mask))
	for i, c := range mask {
		idx[i] = strings.IndexRune("xyzw", c)
		if idx[i] >= width {
			return nil, &graph.PortError{Kind: n.Def().Name, Port: "Mask",
				Msg: fmt.Sprintf("Mask %s out of range for input of width %d", mask, width)}
		}
	}
	return idx, nil
}

func (n *swizzleNode) Eval(ctx graph.EvalContext, id graph.NodeID) ([]vals.Value, error) {
	v, err := n.EvalInput(ctx, 0)
	if err != nil {
		return nil, err
	}
	comps, _ := vals.Components(v)
	idx, err := n.indices(len(comps))
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(idx))
	for i, j := range idx {
		out[i] = comps[j]
	}
	w, _ := vals.FromComponents(out)
	return []vals.Value{w}, nil
}

func (n *swizzleNode) Compile(ctx graph.CompileContext, id graph.NodeID) error {
	in, err := n.CompileInputRaw(ctx, 0)
	if err != nil {
		return err
	}
	width := in.Type.Width()
	if c := in.Type.Class(); (c != vals.ScalarClass && c != vals.VectorClass) || width == 0 {
		return &graph.PortError{Kind: n.Def().Name, Port: "Input",
			Msg: "Unsupported input data type " + in.Type.String()}
	}
	idx, err := n.indices(width)
	if err != nil {
		return err
	}
	var code string
	switch {
	case width > 1:
		code = in.Code + "." + n.Selected(0)
	case len(idx) == 1:
		code = in.Code
	default:
		// Scalars have no components to swizzle; repeat the value instead.
		code = fmt.Sprintf("vec%d<f32>(%s)", len(idx), in.Code)
	}
	return ctx.AddOutput(outID(id, 0), "swizzle_node", code, vals.VectorType(len(idx)))
}

func (n *swizzleNode) Clone() graph.Node { return &swizzleNode{n.cloneBase()} }

func combineDef() *graph.Definition {
	def := graph.NewDefinition("Combine", func(def *graph.Definition) graph.Node {
		return &combineNode{newBase(def, false)}
	})
	def.Description = "Combine channels into vectors."
	def.Categories = []string{"Channel"}
	for _, c := range channelNames {
		def.Inputs = append(def.Inputs, graph.Port(c, vals.TypeF32))
	}
	def.Outputs = []graph.PortDecl{
		{Name: "RGBA", Type: vals.TypeVec4},
		{Name: "RGB", Type: vals.TypeVec3},
		{Name: "RG", Type: vals.TypeVec2},
	}
	return def
}

type combineNode struct{ base }

func (n *combineNode) Eval(ctx graph.EvalContext, id graph.NodeID) ([]vals.Value, error) {
	var c [4]float32
	for i := range c {
		v, err := n.EvalInput(ctx, i)
		if err != nil {
			return nil, err
		}
		c[i] = float32(v.(vals.F32))
	}
	return []vals.Value{
		vals.Vec4{c[0], c[1], c[2], c[3]},
		vals.Vec3{c[0], c[1], c[2]},
		vals.Vec2{c[0], c[1]},
	}, nil
}

func (n *combineNode) Compile(ctx graph.CompileContext, id graph.NodeID) error {
	var c [4]string
	for i := range c {
		v, err := n.CompileInput(ctx, i)
		if err != nil {
			return err
		}
		c[i] = v.Code
	}
	outs := []struct {
		prefix, code string
		dt           vals.DataType
	}{
		{"combine_node_rgba", fmt.Sprintf("vec4<f32>(%s, %s, %s, %s)", c[0], c[1], c[2], c[3]), vals.TypeVec4},
		{"combine_node_rgb", fmt.Sprintf("vec3<f32>(%s, %s, %s)", c[0], c[1], c[2]), vals.TypeVec3},
		{"combine_node_rg", fmt.Sprintf("vec2<f32>(%s, %s)", c[0], c[1]), vals.TypeVec2},
	}
	for i, o := range outs {
		if err := ctx.AddOutput(outID(id, i), o.prefix, o.code, o.dt); err != nil {
			return err
		}
	}
	return nil
}

func (n *combineNode) Clone() graph.Node { return &combineNode{n.cloneBase()} }
