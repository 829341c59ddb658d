package nodes

import (
	"src.shadegraph.dev/pkg/dyntype"
	"src.shadegraph.dev/pkg/graph"
	"src.shadegraph.dev/pkg/vals"
)

// Dynamic inputs of a node are unified to one concrete type. If any of them
// is connected, only the connected ones decide the type, and the literals
// follow; otherwise the literals decide.
func countDynamic(ps *graph.PortSet, types []vals.DataType) *dyntype.Resolver {
	inputs := ps.Def().Inputs
	anyConnected := false
	for i, p := range inputs {
		if p.Type.IsDynamic() && ps.IsConnected(i) {
			anyConnected = true
			break
		}
	}
	var r dyntype.Resolver
	for i, p := range inputs {
		if p.Type.IsDynamic() && (!anyConnected || ps.IsConnected(i)) {
			r.Add(types[i])
		}
	}
	return &r
}

// evalInputs evaluates all inputs of a node. Dynamic inputs are converted to
// their resolved type, which is returned; other inputs to their declared
// type.
func evalInputs(ps *graph.PortSet, ctx graph.EvalContext) ([]vals.Value, vals.DataType, error) {
	inputs := ps.Def().Inputs
	args := make([]vals.Value, len(inputs))
	types := make([]vals.DataType, len(inputs))
	for i, p := range inputs {
		var err error
		if p.Type.IsDynamic() {
			args[i], err = ps.EvalInputRaw(ctx, i)
		} else {
			args[i], err = ps.EvalInput(ctx, i)
		}
		if err != nil {
			return nil, vals.TypeUnknown, err
		}
		types[i] = args[i].DataType()
	}
	r := countDynamic(ps, types)
	for i, p := range inputs {
		if !p.Type.IsDynamic() {
			continue
		}
		conv, err := r.ConvertValue(args[i])
		if err != nil {
			return nil, vals.TypeUnknown, &graph.PortError{Kind: ps.Def().Name, Port: p.Name,
				Msg: "Wrong value for input", Err: err}
		}
		args[i] = conv
	}
	return args, r.Concrete(), nil
}

// compileInputs is the compile-time counterpart of evalInputs.
func compileInputs(ps *graph.PortSet, ctx graph.CompileContext) ([]vals.CompiledValue, vals.DataType, error) {
	inputs := ps.Def().Inputs
	args := make([]vals.CompiledValue, len(inputs))
	types := make([]vals.DataType, len(inputs))
	for i, p := range inputs {
		var err error
		if p.Type.IsDynamic() {
			args[i], err = ps.CompileInputRaw(ctx, i)
		} else {
			args[i], err = ps.CompileInput(ctx, i)
		}
		if err != nil {
			return nil, vals.TypeUnknown, err
		}
		types[i] = args[i].Type
	}
	r := countDynamic(ps, types)
	for i, p := range inputs {
		if !p.Type.IsDynamic() {
			continue
		}
		conv, err := r.Convert(args[i])
		if err != nil {
			return nil, vals.TypeUnknown, err
		}
		args[i] = conv
	}
	return args, r.Concrete(), nil
}
