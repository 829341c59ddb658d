package compile_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	. "src.shadegraph.dev/pkg/compile"
	"src.shadegraph.dev/pkg/graph"
	"src.shadegraph.dev/pkg/must"
	"src.shadegraph.dev/pkg/nodes"
	"src.shadegraph.dev/pkg/tt"
	"src.shadegraph.dev/pkg/vals"
)

var reg = must.OK1(nodes.NewRegistry())

func addNode(t *testing.T, g *graph.Graph, kind string, literals ...vals.Value) graph.NodeID {
	t.Helper()
	n := must.OK1(reg.NewByName(kind))
	for i, v := range literals {
		must.OK2(n.SetInput(graph.Index(i), graph.Literal(v)))
	}
	return g.Add(n)
}

func connect(t *testing.T, g *graph.Graph, from, to graph.NodeID, in string) {
	t.Helper()
	i := must.OK1(g.InputID(to, graph.Name(in)))
	if err := g.Connect(i, graph.OutputID{Node: from}); err != nil {
		t.Fatal(err)
	}
}

func TestCompileGraph_SharedNodeEmittedOnce(t *testing.T) {
	g := graph.New()
	bottom := addNode(t, g, "Scalar Math", vals.F32(1), vals.F32(1))
	left := addNode(t, g, "Scalar Math")
	right := addNode(t, g, "Scalar Math")
	top := addNode(t, g, "Scalar Math")
	for _, in := range []string{"A", "B"} {
		connect(t, g, bottom, left, in)
		connect(t, g, bottom, right, in)
	}
	connect(t, g, left, top, "A")
	connect(t, g, right, top, "B")
	must.OK(g.SetOutput(top))

	c := New()
	c.PushNewBlock("main")
	if err := c.CompileGraph(g); err != nil {
		t.Fatal(err)
	}
	b, _ := c.Block("main")
	v := must.OK1(b.ResolveOutput(graph.OutputID{Node: top}))
	if v != (vals.CompiledValue{Code: "scalar_math_node_4", Type: vals.TypeF32}) {
		t.Errorf("top resolved to %v", v)
	}
	// Resolving again refers to the same variable.
	if again := must.OK1(b.ResolveOutput(graph.OutputID{Node: top})); again != v {
		t.Errorf("second resolution got %v, want %v", again, v)
	}
	want := "\n  let scalar_math_node_1 = (1.0 + 1.0);" +
		"\n  let scalar_math_node_2 = (scalar_math_node_1 + scalar_math_node_1);" +
		"\n  let scalar_math_node_3 = (scalar_math_node_1 + scalar_math_node_1);" +
		"\n  let scalar_math_node_4 = (scalar_math_node_2 + scalar_math_node_3);"
	if diff := cmp.Diff(want, c.Dump()); diff != "" {
		t.Errorf("code (-want +got):\n%s", diff)
	}
	if vars := b.Variables(); len(vars) != 4 {
		t.Errorf("got %d variables, want 4", len(vars))
	}
}

func TestCompileGraph_Cycle(t *testing.T) {
	g := graph.New()
	a := addNode(t, g, "Scalar Math")
	b := addNode(t, g, "Add")
	connect(t, g, a, b, "A")
	connect(t, g, b, a, "A")
	must.OK(g.SetOutput(a))

	c := New()
	c.PushNewBlock("main")
	err := c.CompileGraph(g)
	var cycle *graph.CycleError
	if !errors.As(err, &cycle) || cycle.Node != a {
		t.Errorf("got error %v, want cycle at %s", err, a)
	}
}

func TestCompileGraph_Errors(t *testing.T) {
	g := graph.New()
	if err := New().CompileGraph(g); err != graph.ErrMissingOutput {
		t.Errorf("got error %v, want ErrMissingOutput", err)
	}
	if _, err := Program(g, nil, "main"); err != graph.ErrMissingOutput {
		t.Errorf("Program: got error %v, want ErrMissingOutput", err)
	}

	must.OK(g.SetOutput(addNode(t, g, "Float")))
	err := New().CompileGraph(g)
	if err == nil || err.Error() != "No current block on stack" {
		t.Errorf("got error %v, want no current block", err)
	}
}

func TestBlockStack(t *testing.T) {
	c := New()
	a := c.DefineBlock("a")
	b := c.DefineBlock("b")
	if again := c.DefineBlock("a"); again != a {
		t.Errorf("redefining a returned %d, want %d", again, a)
	}
	c.Push(a)
	c.Push(b)
	tt.Test(t, tt.Fn("Pop", c.Pop), tt.Table{
		tt.Args(a).Rets(&BlockStackError{Want: a, Got: b}),
		tt.Args(a).Rets(nil),
		tt.Args(BlockID(0)).Rets(nil),
		tt.Args(b).Rets(&BlockStackError{Want: b, Got: 0}),
	})
	if _, err := c.CurrentBlock(); err == nil {
		t.Errorf("CurrentBlock on empty stack: want error")
	}
}

func TestAppendCode(t *testing.T) {
	c := New()
	c.DefineBlock("header")
	c.PushNewBlock("body")
	must.OK(c.AppendCode("body", "B"))
	must.OK(c.AppendCode("header", "H"))
	var undefined *UndefinedBlockError
	if err := c.AppendCode("footer", "F"); !errors.As(err, &undefined) || undefined.Name != "footer" {
		t.Errorf("got error %v, want undefined footer", err)
	}
	if got := c.Dump(); got != "HB" {
		t.Errorf("Dump() = %q, want %q", got, "HB")
	}
	c.Clear()
	if got := c.Dump(); got != "" {
		t.Errorf("after Clear, Dump() = %q", got)
	}
}

func TestBlock_Locals(t *testing.T) {
	c := New()
	a := c.PushNewBlock("a")
	x1 := must.OK1(c.AddLocal("x", "1.0", vals.TypeF32))
	c.PushNewBlock("b")
	y1 := must.OK1(c.AddLocal("x", "2.0", vals.TypeF32))
	must.OK(c.Pop(c.DefineBlock("b")))
	x2 := must.OK1(c.AddLocal("x", "3.0", vals.TypeF32))
	must.OK(c.Pop(a))

	if x1.Code != "x_1" || y1.Code != "x_1" || x2.Code != "x_2" {
		t.Errorf("got names %s, %s, %s; want x_1, x_1, x_2", x1, y1, x2)
	}
	blk, _ := c.Block("a")
	want := []Variable{{"x_1", vals.TypeF32}, {"x_2", vals.TypeF32}}
	if diff := cmp.Diff(want, blk.Variables()); diff != "" {
		t.Errorf("variables (-want +got):\n%s", diff)
	}
	blk.Clear()
	if v := blk.AddLocal("x", "4.0", vals.TypeF32); v.Code != "x_1" {
		t.Errorf("after Clear, got %s, want x_1", v)
	}
}

func TestBlock_AppendOutput(t *testing.T) {
	c := New()
	c.PushNewBlock("main")
	id := graph.NodeID{Index: 0, Gen: 1}
	must.OK(c.AppendOutput(id, "in.uv"))
	b, _ := c.Block("main")
	got := must.OK1(b.ResolveOutput(graph.OutputID{Node: id}))
	if got != (vals.CompiledValue{Code: "out_1", Type: vals.TypeVec4}) {
		t.Errorf("got %v", got)
	}
	if c.Dump() != "\n  let out_1 = in.uv;" {
		t.Errorf("Dump() = %q", c.Dump())
	}
}

func TestResolveOutput_OtherBlock(t *testing.T) {
	g := graph.New()
	f := addNode(t, g, "Float")
	c := New()
	c.PushNewBlock("a")
	must.OK(c.CompileNode(g, f))
	c.PushNewBlock("b")
	b, _ := c.Block("b")
	_, err := b.ResolveOutput(graph.OutputID{Node: f})
	var unknown *UnknownOutputError
	if !errors.As(err, &unknown) || unknown.Block != "b" {
		t.Errorf("got error %v, want unknown output in block b", err)
	}
	if _, err := c.ResolveOutput(nil, graph.OutputID{Node: f}); err == nil {
		t.Errorf("ResolveOutput without a graph: want error")
	}
}

func TestResolveOutput_AfterCompileNode(t *testing.T) {
	g := graph.New()
	a := addNode(t, g, "Scalar Math", vals.F32(1), vals.F32(2))
	sum := addNode(t, g, "Scalar Math")
	connect(t, g, a, sum, "A")
	connect(t, g, a, sum, "B")

	c := New()
	c.PushNewBlock("main")
	must.OK(c.CompileNode(g, sum))
	v, err := c.ResolveOutput(g, graph.OutputID{Node: sum})
	if err != nil {
		t.Fatal(err)
	}
	if v != (vals.CompiledValue{Code: "scalar_math_node_2", Type: vals.TypeF32}) {
		t.Errorf("resolved to %v", v)
	}
	// Resolving an output of a node not compiled yet compiles it.
	other := addNode(t, g, "Float")
	if _, err := c.ResolveOutput(g, graph.OutputID{Node: other}); err != nil {
		t.Errorf("resolving an uncompiled node: %v", err)
	}
	want := "\n  let scalar_math_node_1 = (1.0 + 2.0);" +
		"\n  let scalar_math_node_2 = (scalar_math_node_1 + scalar_math_node_1);" +
		"\n  let float_node_3 = 0.0;"
	if diff := cmp.Diff(want, c.Dump()); diff != "" {
		t.Errorf("code (-want +got):\n%s", diff)
	}
}

func TestCompileGraph_Twice(t *testing.T) {
	g := graph.New()
	a := addNode(t, g, "Scalar Math", vals.F32(1), vals.F32(2))
	sum := addNode(t, g, "Scalar Math")
	connect(t, g, a, sum, "A")
	connect(t, g, a, sum, "B")
	must.OK(g.SetOutput(sum))

	c := New()
	c.PushNewBlock("main")
	must.OK(c.CompileGraph(g))
	b, _ := c.Block("main")
	first := must.OK1(b.ResolveOutput(graph.OutputID{Node: sum}))
	once := c.Dump()

	must.OK(c.CompileGraph(g))
	second := must.OK1(b.ResolveOutput(graph.OutputID{Node: sum}))
	if second != first {
		t.Errorf("second run resolved to %v, want %v", second, first)
	}
	if diff := cmp.Diff(once, c.Dump()); diff != "" {
		t.Errorf("second run changed the code (-once +twice):\n%s", diff)
	}
}

func TestProgram(t *testing.T) {
	g := graph.New()
	v := addNode(t, g, "Vector 4")
	out := addNode(t, g, "Fragment output")
	connect(t, g, v, out, "Color")
	must.OK(g.SetOutput(out))

	code, err := Program(g, nodes.FragmentBlocks, "fragment")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"@group(1) @binding(0) var<uniform> material_color: vec4<f32>;",
		"\n  let vector4_node_1 = vec4<f32>(0.0, 0.0, 0.0, 0.0);",
		"\n  return vector4_node_1;\n}\n",
	} {
		if !strings.Contains(code, want) {
			t.Errorf("program lacks %q:\n%s", want, code)
		}
	}
}
