package graph

import "src.shadegraph.dev/pkg/vals"

// PortSet keeps the input and parameter state of a node according to its
// definition. Node kinds embed it to implement the port methods of Node.
//
// A connected input remembers its literal, which becomes the input's value
// again when it is disconnected. Literals are coerced to the declared type
// of the port when set.
type PortSet struct {
	def    *Definition
	inputs []portState
	params []ParamValue
}

type portState struct {
	connected  bool
	source     OutputID
	sourceType vals.DataType
	literal    vals.Value
}

// NewPortSet returns a PortSet with every input set to the default of its type
// and every parameter to its default.
func NewPortSet(def *Definition) PortSet {
	ps := PortSet{
		def:    def,
		inputs: make([]portState, len(def.Inputs)),
		params: make([]ParamValue, len(def.Params)),
	}
	for i, p := range def.Inputs {
		ps.inputs[i].literal = p.Type.DefaultValue()
	}
	for i, p := range def.Params {
		ps.params[i] = p.Default()
	}
	return ps
}

// Def returns the definition.
func (ps *PortSet) Def() *Definition { return ps.def }

func (ps *PortSet) inputIndex(key InputKey) (int, error) {
	i, ok := ps.def.InputIndex(key)
	if !ok {
		return -1, &PortError{Kind: ps.def.Name, Port: key.String(), Msg: "Unknown input"}
	}
	return i, nil
}

// Input returns the state of an input: Connected, or Literal with the current
// literal.
func (ps *PortSet) Input(key InputKey) (Input, error) {
	i, err := ps.inputIndex(key)
	if err != nil {
		return Input{}, err
	}
	return ps.input(i), nil
}

func (ps *PortSet) input(i int) Input {
	p := ps.inputs[i]
	if p.connected {
		return Connected(p.source, p.sourceType)
	}
	return Literal(p.literal)
}

// SetInput implements Node.SetInput.
func (ps *PortSet) SetInput(key InputKey, in Input) (OutputID, bool, error) {
	i, err := ps.inputIndex(key)
	if err != nil {
		return OutputID{}, false, err
	}
	decl := ps.def.Inputs[i]
	next := ps.inputs[i]
	switch in.State {
	case StateDisconnected:
		next.connected = false
	case StateConnected:
		if in.SourceType != vals.TypeUnknown && !decl.Type.IsCompatible(in.SourceType) {
			return OutputID{}, false, &PortError{Kind: ps.def.Name, Port: decl.Name,
				Msg: "Incompatible output " + in.SourceType.String() + " for input"}
		}
		next.connected, next.source, next.sourceType = true, in.Source, in.SourceType
	case StateLiteral:
		v, err := vals.Convert(in.Value, decl.Type)
		if err != nil {
			return OutputID{}, false, &PortError{Kind: ps.def.Name, Port: decl.Name,
				Msg: "Wrong literal for input", Err: err}
		}
		next.connected, next.literal = false, v
	}
	prev := ps.inputs[i]
	ps.inputs[i] = next
	return prev.source, prev.connected, nil
}

// Param implements Node.Param.
func (ps *PortSet) Param(name string) (ParamValue, error) {
	i, ok := ps.def.ParamIndex(name)
	if !ok {
		return ParamValue{}, &PortError{Kind: ps.def.Name, Port: name, Msg: "Unknown parameter"}
	}
	return ps.params[i], nil
}

// SetParam implements Node.SetParam.
func (ps *PortSet) SetParam(name string, v ParamValue) error {
	i, ok := ps.def.ParamIndex(name)
	if !ok {
		return &PortError{Kind: ps.def.Name, Port: name, Msg: "Unknown parameter"}
	}
	checked, err := ps.def.Params[i].check(v)
	if err != nil {
		err.(*PortError).Kind = ps.def.Name
		return err
	}
	ps.params[i] = checked
	return nil
}

// States implements Node.States.
func (ps *PortSet) States() []PortState {
	states := make([]PortState, 0, len(ps.inputs)+len(ps.params))
	for i, p := range ps.def.Inputs {
		states = append(states, PortState{Kind: InputPort, Name: p.Name, Input: ps.input(i)})
	}
	for i, p := range ps.def.Params {
		states = append(states, PortState{Kind: ParamPort, Name: p.Name, Param: ps.params[i]})
	}
	return states
}

// ClonePorts returns a deep copy.
func (ps *PortSet) ClonePorts() PortSet {
	return PortSet{
		def:    ps.def,
		inputs: append([]portState(nil), ps.inputs...),
		params: append([]ParamValue(nil), ps.params...),
	}
}

// IsConnected reports whether input i is connected.
func (ps *PortSet) IsConnected(i int) bool { return ps.inputs[i].connected }

// Selected returns the selected option of parameter i.
func (ps *PortSet) Selected(i int) string { return ps.params[i].Selected }

// ParamAt returns the value of parameter i.
func (ps *PortSet) ParamAt(i int) vals.Value { return ps.params[i].Value }

// EvalInputRaw returns the value of input i: the value of its source when
// connected, its literal otherwise. The value is not coerced.
func (ps *PortSet) EvalInputRaw(ctx EvalContext, i int) (vals.Value, error) {
	p := ps.inputs[i]
	if !p.connected {
		return p.literal, nil
	}
	return ctx.EvalOutput(p.source)
}

// EvalInput is like EvalInputRaw, but coerces the value to the declared type
// of the input.
func (ps *PortSet) EvalInput(ctx EvalContext, i int) (vals.Value, error) {
	v, err := ps.EvalInputRaw(ctx, i)
	if err != nil {
		return nil, err
	}
	conv, err := vals.Convert(v, ps.def.Inputs[i].Type)
	if err != nil {
		return nil, &PortError{Kind: ps.def.Name, Port: ps.def.Inputs[i].Name,
			Msg: "Wrong value for input", Err: err}
	}
	return conv, nil
}

// CompileInputRaw returns the expression for input i: the resolved source
// output when connected, the compiled literal otherwise.
func (ps *PortSet) CompileInputRaw(ctx CompileContext, i int) (vals.CompiledValue, error) {
	p := ps.inputs[i]
	if !p.connected {
		return vals.Compile(p.literal), nil
	}
	return ctx.ResolveOutput(p.source)
}

// CompileInput is like CompileInputRaw, but converts the expression to the
// declared type of the input. Dynamic inputs keep their concrete type.
func (ps *PortSet) CompileInput(ctx CompileContext, i int) (vals.CompiledValue, error) {
	c, err := ps.CompileInputRaw(ctx, i)
	if err != nil {
		return vals.CompiledValue{}, err
	}
	return c.Convert(ps.def.Inputs[i].Type)
}
