package graphdoc

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"src.shadegraph.dev/pkg/graph"
	"src.shadegraph.dev/pkg/vals"
)

type connection struct {
	from   string
	output graph.InputKey
}

// parseConnection reports whether an input value is a connection, either
// {from: id, output: name|index} or the shorthand "@id" or "@id.Output".
func parseConnection(v any) (connection, bool, error) {
	switch v := v.(type) {
	case map[string]any:
		from, ok := v["from"].(string)
		if !ok {
			return connection{}, false, fmt.Errorf("connection needs a from node id")
		}
		c := connection{from: from, output: graph.Index(0)}
		switch out := v["output"].(type) {
		case nil:
		case string:
			c.output = graph.ParseKey(out)
		case int:
			c.output = graph.Index(out)
		default:
			return connection{}, false, fmt.Errorf("connection output must be a name or an index")
		}
		return c, true, nil
	case string:
		ref, ok := strings.CutPrefix(v, "@")
		if !ok {
			return connection{}, false, nil
		}
		from, out, hasOut := strings.Cut(ref, ".")
		c := connection{from: from, output: graph.Index(0)}
		if hasOut {
			c.output = graph.ParseKey(out)
		}
		return c, true, nil
	}
	return connection{}, false, nil
}

// decodeLiteral builds a value from a decoded YAML literal. The shape decides
// the value: a number is a scalar, a list of numbers a vector and a list of
// lists a matrix, given as columns. dt, the declared type of the port, picks
// integer scalars and texture kinds; any other coercion is left to the port.
func decodeLiteral(v any, dt vals.DataType) (vals.Value, error) {
	if f, ok := number(v); ok {
		if f == math.Trunc(f) {
			switch {
			case dt == vals.TypeI32 && f >= math.MinInt32 && f <= math.MaxInt32:
				return vals.I32(f), nil
			case dt == vals.TypeU32 && f >= 0 && f <= math.MaxUint32:
				return vals.U32(f), nil
			}
		}
		return vals.F32(f), nil
	}
	switch v := v.(type) {
	case string:
		if dt.Class() != vals.TextureClass {
			return nil, fmt.Errorf("string literal %q for %s input", v, dt)
		}
		return vals.Texture{Kind: dt, Ref: v}, nil
	case []any:
		if comps, ok := numbers(v); ok {
			if w, ok := vals.FromComponents(comps); ok {
				return w, nil
			}
			return nil, fmt.Errorf("vector literal needs 1 to 4 components, got %d", len(v))
		}
		cols := make([][]float32, len(v))
		for i, col := range v {
			list, ok := col.([]any)
			if !ok {
				return nil, fmt.Errorf("matrix literal needs a list of columns")
			}
			if cols[i], ok = numbers(list); !ok {
				return nil, fmt.Errorf("matrix column %d is not a list of numbers", i)
			}
		}
		if m, ok := vals.FromColumns(cols); ok {
			return m, nil
		}
		return nil, fmt.Errorf("matrix literal needs 2 to 4 columns of the same height")
	}
	return nil, fmt.Errorf("unsupported literal %v", v)
}

func number(v any) (float64, bool) {
	switch v := v.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

func numbers(list []any) ([]float32, bool) {
	out := make([]float32, len(list))
	for i, x := range list {
		f, ok := number(x)
		if !ok {
			return nil, false
		}
		out[i] = float32(f)
	}
	return out, true
}

// decodeParam builds a parameter value from a decoded YAML value.
func decodeParam(v any, decl graph.ParamDecl) (graph.ParamValue, error) {
	if decl.Kind == graph.SelectParam {
		switch v := v.(type) {
		case string:
			return graph.Selection(v), nil
		case bool:
			if v {
				return graph.Selection("True"), nil
			}
			return graph.Selection("False"), nil
		}
		return graph.ParamValue{}, fmt.Errorf("parameter %s needs one of %s", decl.Name, strings.Join(decl.Options, ", "))
	}
	val, err := decodeLiteral(v, decl.Type)
	if err != nil {
		return graph.ParamValue{}, err
	}
	return graph.ValueOf(val), nil
}

// encodeLiteral is the inverse of decodeLiteral.
func encodeLiteral(v vals.Value) any {
	switch v := v.(type) {
	case vals.I32:
		return int(v)
	case vals.U32:
		return uint64(v)
	case vals.F32:
		return shortFloat(float32(v))
	case vals.Texture:
		return v.Ref
	}
	if comps, ok := vals.Components(v); ok {
		return shortFloats(comps)
	}
	if cols, ok := vals.Columns(v); ok {
		out := make([]any, len(cols))
		for i, col := range cols {
			out[i] = shortFloats(col)
		}
		return out
	}
	return nil
}

// shortFloat widens f to the float64 with the shortest decimal form that
// reads back as f.
func shortFloat(f float32) float64 {
	x, _ := strconv.ParseFloat(strconv.FormatFloat(float64(f), 'g', -1, 32), 64)
	return x
}

func shortFloats(c []float32) []any {
	out := make([]any, len(c))
	for i, f := range c {
		out[i] = shortFloat(f)
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
