package nodes

import (
	"fmt"
	"math"

	"src.shadegraph.dev/pkg/vals"
)

// op is the evaluation of an expression kind. Element-wise ops get the
// components of their arguments, all of the same width.
type op struct {
	// Number of inputs, or -1 for any.
	arity int
	fn    func(args ...float64) float64
}

var ops = map[string]op{
	"const": {arity: 0},

	"add": binary(func(a, b float64) float64 { return a + b }),
	"sub": binary(func(a, b float64) float64 { return a - b }),
	"div": binary(func(a, b float64) float64 { return a / b }),
	"pow": binary(math.Pow),
	"min": binary(math.Min),
	"max": binary(math.Max),

	"sqrt":  unary(math.Sqrt),
	"round": unary(math.RoundToEven),
	"floor": unary(math.Floor),
	"fract": unary(func(x float64) float64 { return x - math.Floor(x) }),
	"ceil":  unary(math.Ceil),
	"trunc": unary(math.Trunc),
	"abs":   unary(math.Abs),

	"mix":   {3, func(x ...float64) float64 { return x[0] + (x[1]-x[0])*x[2] }},
	"clamp": {3, func(x ...float64) float64 { return math.Min(math.Max(x[0], x[1]), x[2]) }},
}

func unary(f func(float64) float64) op {
	return op{1, func(x ...float64) float64 { return f(x[0]) }}
}

func binary(f func(a, b float64) float64) op {
	return op{2, func(x ...float64) float64 { return f(x[0], x[1]) }}
}

// apply runs an element-wise op over scalar or vector arguments of the same
// width.
func (o op) apply(args []vals.Value) (vals.Value, error) {
	comps := make([][]float32, len(args))
	width := -1
	for i, a := range args {
		c, ok := vals.Components(a)
		if !ok {
			return nil, fmt.Errorf("cannot apply element-wise operation to %s", a.DataType())
		}
		if width >= 0 && len(c) != width {
			return nil, fmt.Errorf("mismatched widths %d and %d", width, len(c))
		}
		comps[i], width = c, len(c)
	}
	out := make([]float32, width)
	x := make([]float64, len(args))
	for j := range out {
		for i := range args {
			x[i] = float64(comps[i][j])
		}
		out[j] = float32(o.fn(x...))
	}
	v, _ := vals.FromComponents(out)
	return v, nil
}
