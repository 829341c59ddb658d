package nodes

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"src.shadegraph.dev/pkg/graph"
	"src.shadegraph.dev/pkg/vals"
)

//go:embed kinds.yaml
var kindsYAML []byte

type kindTable struct {
	Kinds []kindEntry `yaml:"kinds"`
}

type kindEntry struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Categories  []string   `yaml:"categories"`
	Prefix      string     `yaml:"prefix"`
	Cache       bool       `yaml:"cache"`
	Params      []portSpec `yaml:"params"`
	Inputs      []portSpec `yaml:"inputs"`
	Outputs     []portSpec `yaml:"outputs"`
	Code        string     `yaml:"code"`
	Op          string     `yaml:"op"`
}

type portSpec struct {
	Field string        `yaml:"field"`
	Name  string        `yaml:"name"`
	Type  vals.DataType `yaml:"type"`
	Color string        `yaml:"color"`
}

func (p portSpec) decl() (graph.PortDecl, error) {
	d := graph.Port(p.Field, p.Type)
	if p.Name != "" {
		d.Name = p.Name
	}
	if p.Color != "" {
		c, err := vals.DecodeColor(p.Color)
		if err != nil {
			return graph.PortDecl{}, err
		}
		d.Color = &c
	}
	return d, nil
}

// exprKind is a kind from the table, ready to build nodes.
type exprKind struct {
	entry kindEntry
	op   op
	// Placeholder for each input, then for the Value parameter if any.
	holders []string
}

func tableDefinitions() ([]*graph.Definition, error) {
	return parseTable(kindsYAML)
}

func parseTable(src []byte) ([]*graph.Definition, error) {
	var table kindTable
	if err := yaml.Unmarshal(src, &table); err != nil {
		return nil, fmt.Errorf("parse kind table: %w", err)
	}
	defs := make([]*graph.Definition, 0, len(table.Kinds))
	for _, entry := range table.Kinds {
		def, err := entry.definition()
		if err != nil {
			return nil, fmt.Errorf("kind %q: %w", entry.Name, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func (entry kindEntry) definition() (*graph.Definition, error) {
	o, ok := ops[entry.Op]
	if !ok {
		return nil, fmt.Errorf("unknown op %q", entry.Op)
	}
	if len(entry.Outputs) != 1 {
		return nil, fmt.Errorf("need exactly one output, got %d", len(entry.Outputs))
	}
	if o.arity >= 0 && o.arity != len(entry.Inputs) {
		return nil, fmt.Errorf("op %s needs %d inputs, got %d", entry.Op, o.arity, len(entry.Inputs))
	}
	if entry.Op == "const" && len(entry.Params) != 1 {
		return nil, fmt.Errorf("constant needs exactly one parameter")
	}
	k := &exprKind{entry: entry, op: o}
	def := &graph.Definition{
		ID:          graph.KindID(entry.Name),
		Name:        entry.Name,
		Description: entry.Description,
		Categories:  entry.Categories,
		Custom:      map[string]string{"prefix": entry.Prefix, "code": entry.Code},
		Build:       k.build,
	}
	for _, p := range entry.Inputs {
		d, err := p.decl()
		if err != nil {
			return nil, err
		}
		def.Inputs = append(def.Inputs, d)
		k.holders = append(k.holders, "{"+p.Field+"}")
	}
	for _, p := range entry.Params {
		def.Params = append(def.Params, graph.ParamDecl{
			Name: graph.PortName(p.Field), Kind: graph.ValueParam, Type: p.Type})
		k.holders = append(k.holders, "{"+p.Field+"}")
	}
	out, err := entry.Outputs[0].decl()
	if err != nil {
		return nil, err
	}
	def.Outputs = []graph.PortDecl{out}
	for _, h := range k.holders {
		if !strings.Contains(entry.Code, h) {
			return nil, fmt.Errorf("code %q does not use %s", entry.Code, h)
		}
	}
	return def, nil
}

func (k *exprKind) build(def *graph.Definition) graph.Node {
	return &exprNode{newBase(def, k.entry.Cache), k}
}

// expand substitutes the placeholders of the code template.
func (k *exprKind) expand(args []vals.CompiledValue) string {
	pairs := make([]string, 0, 2*len(args))
	for i, a := range args {
		pairs = append(pairs, k.holders[i], a.Code)
	}
	return strings.NewReplacer(pairs...).Replace(k.entry.Code)
}
