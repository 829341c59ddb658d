package graph

import (
	"fmt"

	"src.shadegraph.dev/pkg/vals"
)

// InputState is the state of an input port.
type InputState uint8

// Input states.
const (
	StateDisconnected InputState = iota
	StateConnected
	StateLiteral
)

func (s InputState) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateConnected:
		return "Connected"
	case StateLiteral:
		return "Literal"
	}
	return fmt.Sprintf("InputState(%d)", uint8(s))
}

// Input is the state of one input port: disconnected, connected to an output
// of another node, or holding a literal value. Use the constructors; only the
// fields matching State are meaningful.
type Input struct {
	State InputState
	// Source and SourceType are set for connected inputs. SourceType is the
	// declared type of the source output, or TypeUnknown when not known.
	Source     OutputID
	SourceType vals.DataType
	// Value is set for literal inputs.
	Value vals.Value
}

// Disconnected returns a disconnected Input.
func Disconnected() Input { return Input{} }

// Connected returns an Input connected to out. dt is the declared type of
// out, or vals.TypeUnknown to skip the compatibility check.
func Connected(out OutputID, dt vals.DataType) Input {
	return Input{State: StateConnected, Source: out, SourceType: dt}
}

// Literal returns an Input holding v.
func Literal(v vals.Value) Input {
	return Input{State: StateLiteral, Value: v}
}

// IsConnected reports whether the input is connected.
func (in Input) IsConnected() bool { return in.State == StateConnected }

func (in Input) String() string {
	switch in.State {
	case StateConnected:
		return "Connected(" + in.Source.String() + ")"
	case StateLiteral:
		return "Literal(" + vals.Repr(in.Value) + ")"
	}
	return "Disconnected"
}
