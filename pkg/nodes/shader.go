package nodes

import (
	"errors"
	"fmt"

	"src.shadegraph.dev/pkg/graph"
	"src.shadegraph.dev/pkg/vals"
)

// Names of the material bindings declared by the fragment output.
const (
	colorTexture = "material_color_texture"
	colorSampler = "material_color_sampler"
)

const materialBindings = `
@group(1) @binding(0) var<uniform> material_color: vec4<f32>;
@group(1) @binding(1) var ` + colorTexture + `: texture_2d<f32>;
@group(1) @binding(2) var ` + colorSampler + `: sampler;
`

// placeholderSample is what a texture sample evaluates to; textures are
// never read outside a shader.
var placeholderSample = vals.Vec4{0.5, 0.5, 0, 1}

func textureSampleDef() *graph.Definition {
	def := graph.NewDefinition("Texture Sample", func(def *graph.Definition) graph.Node {
		return &textureSampleNode{newBase(def, false)}
	})
	def.Description = "Sample the material color texture at a UV coordinate."
	def.Categories = []string{"Input"}
	def.Inputs = []graph.PortDecl{
		{Name: "UV", Type: vals.TypeVec2},
		graph.Port("tex", vals.TypeTexture2D),
	}
	def.Outputs = []graph.PortDecl{
		{Name: "RGB", Type: vals.TypeVec3, Color: &vals.White},
		{Name: "Red", Type: vals.TypeF32, Color: &vals.Red},
		{Name: "Green", Type: vals.TypeF32, Color: &vals.Green},
		{Name: "Blue", Type: vals.TypeF32, Color: &vals.Blue},
		{Name: "Alpha", Type: vals.TypeF32, Color: &vals.White},
		{Name: "RGBA", Type: vals.TypeVec4, Color: &vals.White},
	}
	return def
}

type textureSampleNode struct{ base }

// Swizzle applied to the sample for each output.
var sampleSwizzles = [...]string{".rgb", ".r", ".g", ".b", ".a", ""}

func (n *textureSampleNode) Eval(ctx graph.EvalContext, id graph.NodeID) ([]vals.Value, error) {
	if _, err := n.EvalInput(ctx, 0); err != nil {
		return nil, err
	}
	s := placeholderSample
	return []vals.Value{
		vals.Vec3{s[0], s[1], s[2]},
		vals.F32(s[0]), vals.F32(s[1]), vals.F32(s[2]), vals.F32(s[3]),
		s,
	}, nil
}

func (n *textureSampleNode) Compile(ctx graph.CompileContext, id graph.NodeID) error {
	uv, err := n.CompileInput(ctx, 0)
	if err != nil {
		return err
	}
	sample := fmt.Sprintf("textureSample(%s, %s, %s)", colorTexture, colorSampler, uv)
	for i, out := range n.Def().Outputs {
		err := ctx.AddOutput(outID(id, i), "texture_sample_node", sample+sampleSwizzles[i], out.Type)
		if err != nil {
			return err
		}
	}
	return nil
}

func (n *textureSampleNode) Clone() graph.Node { return &textureSampleNode{n.cloneBase()} }

// Vertex output field of each UV channel.
var uvChannels = []string{"UV0", "UV1", "UV2", "UV3"}

var uvFields = map[string]string{"UV0": "in.uv", "UV1": "in.uv_b", "UV2": "in.uv_c", "UV3": "in.uv_d"}

func uvDef() *graph.Definition {
	def := graph.NewDefinition("UV Node", func(def *graph.Definition) graph.Node {
		return &uvNode{newBase(def, false)}
	})
	def.Description = "The UV coordinate of the fragment."
	def.Categories = []string{"UV"}
	def.Params = []graph.ParamDecl{{Name: "Channel", Kind: graph.SelectParam, Options: uvChannels}}
	def.Outputs = []graph.PortDecl{{Name: "UV", Type: vals.TypeVec2}}
	return def
}

type uvNode struct{ base }

// Outside a shader there is no fragment, so the UV evaluates to the origin.
func (n *uvNode) Eval(graph.EvalContext, graph.NodeID) ([]vals.Value, error) {
	return []vals.Value{vals.Vec2{}}, nil
}

func (n *uvNode) Compile(ctx graph.CompileContext, id graph.NodeID) error {
	return ctx.AddOutput(outID(id, 0), "uv_node", uvFields[n.Selected(0)], vals.TypeVec2)
}

func (n *uvNode) Clone() graph.Node { return &uvNode{n.cloneBase()} }

// FragmentBlocks are the blocks a fragment output compiles into, in the
// order they appear in the generated program.
var FragmentBlocks = []string{"imports", "bindings", "fragment"}

func fragmentOutputDef() *graph.Definition {
	def := graph.NewDefinition("Fragment output", func(def *graph.Definition) graph.Node {
		return &fragmentOutputNode{newBase(def, false)}
	})
	def.Description = "The color output of a fragment shader."
	def.Categories = []string{"Output"}
	def.Inputs = []graph.PortDecl{graph.Port("color", vals.TypeVec4)}
	return def
}

// fragmentOutputNode has no outputs. It evaluates to its color, and compiles
// to the fragment entry point returning it.
type fragmentOutputNode struct{ base }

func (n *fragmentOutputNode) Eval(ctx graph.EvalContext, id graph.NodeID) ([]vals.Value, error) {
	color, err := n.EvalInput(ctx, 0)
	if err != nil {
		return nil, err
	}
	return []vals.Value{color}, nil
}

func (n *fragmentOutputNode) Compile(ctx graph.CompileContext, id graph.NodeID) (err error) {
	if err := ctx.AppendCode("bindings", materialBindings); err != nil {
		return err
	}
	block := ctx.PushNewBlock("fragment")
	defer func() { err = errors.Join(err, ctx.Pop(block)) }()
	err = ctx.AppendCode("fragment", `
@fragment
fn fragment(
    in: bevy_pbr::forward_io::VertexOutput,
) -> @location(0) vec4<f32> {`)
	if err != nil {
		return err
	}
	color, err := n.CompileInput(ctx, 0)
	if err != nil {
		return err
	}
	return ctx.AppendCode("fragment", fmt.Sprintf("\n  return %s;\n}\n", color))
}

func (n *fragmentOutputNode) Clone() graph.Node { return &fragmentOutputNode{n.cloneBase()} }
