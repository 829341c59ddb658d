package graph

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"src.shadegraph.dev/pkg/vals"
)

// KindNamespace is the UUID namespace stable kind ids are derived in.
var KindNamespace = uuid.MustParse("9dee91a8-5af8-11ee-948b-5364d73b1803")

// KindID returns the stable id of the kind with the given name.
func KindID(name string) uuid.UUID {
	return uuid.NewSHA1(KindNamespace, []byte(name))
}

// Definition is the immutable description of a node kind.
type Definition struct {
	ID          uuid.UUID
	Name        string
	Description string
	Categories  []string
	Params      []ParamDecl
	Inputs      []PortDecl
	Outputs     []PortDecl
	Custom      map[string]string
	// Build returns a fresh node of this kind.
	Build func(def *Definition) Node
}

// NewDefinition returns a definition with its stable id derived from name.
func NewDefinition(name string, build func(*Definition) Node) *Definition {
	return &Definition{ID: KindID(name), Name: name, Build: build}
}

// PortDecl declares an input or output port.
type PortDecl struct {
	Name string
	Type vals.DataType
	// Color overrides the display color of the type when not nil.
	Color *vals.Color
}

// Port declares a port whose name is derived from a field name.
func Port(field string, dt vals.DataType) PortDecl {
	return PortDecl{Name: PortName(field), Type: dt}
}

// DisplayColor returns the color the port is drawn with.
func (p PortDecl) DisplayColor() vals.Color {
	if p.Color != nil {
		return *p.Color
	}
	return p.Type.Color()
}

// PortName derives a port name from a field name: underscores become spaces
// and words are title-cased, so "color" becomes "Color" and "min_value"
// becomes "Min Value".
func PortName(field string) string {
	return cases.Title(language.Und).String(strings.ReplaceAll(field, "_", " "))
}

// ParamKind distinguishes value parameters from selections.
type ParamKind uint8

// Parameter kinds.
const (
	ValueParam ParamKind = iota
	SelectParam
)

// ParamDecl declares a parameter.
type ParamDecl struct {
	Name string
	Kind ParamKind
	// Type of a value parameter.
	Type vals.DataType
	// Options of a selection.
	Options []string
}

// Default returns the initial value of the parameter: the type's default
// value, or the first option of a selection.
func (p ParamDecl) Default() ParamValue {
	if p.Kind == SelectParam {
		if len(p.Options) == 0 {
			return ParamValue{}
		}
		return Selection(p.Options[0])
	}
	return ParamValue{Value: p.Type.DefaultValue()}
}

// check returns the value to store for v, or an error message.
func (p ParamDecl) check(v ParamValue) (ParamValue, error) {
	if p.Kind == SelectParam {
		for _, opt := range p.Options {
			if opt == v.Selected {
				return v, nil
			}
		}
		return ParamValue{}, &PortError{Port: p.Name,
			Msg: "invalid selection " + v.Selected + " for parameter"}
	}
	if v.Value == nil {
		return ParamValue{}, &PortError{Port: p.Name, Msg: "missing value for parameter"}
	}
	conv, err := vals.Convert(v.Value, p.Type)
	if err != nil {
		return ParamValue{}, &PortError{Port: p.Name, Msg: "wrong type for parameter", Err: err}
	}
	return ParamValue{Value: conv}, nil
}

// ParamValue is the value of a parameter: a Value for value parameters, or
// the selected option for selections.
type ParamValue struct {
	Value    vals.Value
	Selected string
}

// Selection returns a ParamValue selecting opt.
func Selection(opt string) ParamValue { return ParamValue{Selected: opt} }

// ValueOf returns a ParamValue holding v.
func ValueOf(v vals.Value) ParamValue { return ParamValue{Value: v} }

func (v ParamValue) String() string {
	if v.Value != nil {
		return vals.Repr(v.Value)
	}
	return v.Selected
}

// InputIndex resolves an input key.
func (d *Definition) InputIndex(key InputKey) (int, bool) { return key.resolve(d.Inputs) }

// OutputIndex resolves an output key.
func (d *Definition) OutputIndex(key InputKey) (int, bool) { return key.resolve(d.Outputs) }

// ParamIndex finds a parameter by name.
func (d *Definition) ParamIndex(name string) (int, bool) {
	for i, p := range d.Params {
		if p.Name == name {
			return i, true
		}
	}
	return -1, false
}

// HasCategory reports whether the definition is in category c, ignoring case.
func (d *Definition) HasCategory(c string) bool {
	for _, cat := range d.Categories {
		if strings.EqualFold(cat, c) {
			return true
		}
	}
	return false
}

// Matches reports whether the name contains query, ignoring case.
func (d *Definition) Matches(query string) bool {
	return strings.Contains(strings.ToLower(d.Name), strings.ToLower(query))
}
