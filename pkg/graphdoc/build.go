package graphdoc

import (
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"src.shadegraph.dev/pkg/graph"
)

// Build instantiates the document as a graph. It returns the graph and the
// node id assigned to each document id. Unknown kinds, ports and parameters,
// bad literals and incompatible connections are all reported together.
func (d *Doc) Build() (*graph.Graph, map[string]graph.NodeID, error) {
	g := graph.New()
	ids := make(map[string]graph.NodeID, len(d.Nodes))
	var result *multierror.Error

	for _, dn := range d.Nodes {
		def, err := d.lookupKind(dn)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		n := def.Build(def)
		for _, key := range sortedKeys(dn.Inputs) {
			v := dn.Inputs[key]
			if _, isConn, _ := parseConnection(v); isConn {
				continue
			}
			if err := setLiteral(n, key, v); err != nil {
				result = multierror.Append(result, d.errorAt(dn.Pos["inputs."+key], "input error", "%v", err))
			}
		}
		for _, key := range sortedKeys(dn.Params) {
			if err := setParam(n, key, dn.Params[key]); err != nil {
				result = multierror.Append(result, d.errorAt(dn.Pos["params."+key], "param error", "%v", err))
			}
		}
		ids[dn.ID] = g.Add(n)
	}

	for _, dn := range d.Nodes {
		dst, ok := ids[dn.ID]
		if !ok {
			continue
		}
		for _, key := range sortedKeys(dn.Inputs) {
			c, isConn, err := parseConnection(dn.Inputs[key])
			if err != nil || !isConn {
				continue
			}
			src, ok := ids[c.from]
			if !ok {
				// Either undefined, reported by Parse, or of an unknown kind.
				continue
			}
			if err := connect(g, dst, graph.ParseKey(key), src, c.output); err != nil {
				result = multierror.Append(result, d.errorAt(dn.Pos["inputs."+key], "connection error", "%v", err))
			}
		}
	}

	if out, ok := ids[d.Output]; ok {
		if err := g.SetOutput(out); err != nil {
			result = multierror.Append(result, d.errorAt(d.Pos["output"], "graph error", "%v", err))
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, nil, err
	}
	logger.Printf("[DEBUG] built %s: %d nodes, %d connections", d.Name, g.Len(), len(g.Connections()))
	return g, ids, nil
}

// lookupKind resolves the kind of a node. A kind_id takes precedence over the
// kind name.
func (d *Doc) lookupKind(dn *Node) (*graph.Definition, error) {
	if d.reg == nil {
		return nil, d.errorAt(dn.Pos[""], "graph error", "no node registry")
	}
	if dn.KindID != "" {
		id, err := uuid.Parse(dn.KindID)
		if err != nil {
			return nil, d.errorAt(dn.Pos["kind_id"], "graph error", "bad kind_id %q: %v", dn.KindID, err)
		}
		def, err := d.reg.Lookup(id)
		if err != nil {
			return nil, d.errorAt(dn.Pos["kind_id"], "graph error", "%v", err)
		}
		if dn.Kind != "" && dn.Kind != def.Name {
			logger.Printf("[WARN] %s: node %q names kind %q but kind_id is %q", d.Name, dn.ID, dn.Kind, def.Name)
		}
		return def, nil
	}
	def, err := d.reg.LookupName(dn.Kind)
	if err != nil {
		return nil, d.errorAt(dn.Pos["kind"], "graph error", "%v", err)
	}
	return def, nil
}

func setLiteral(n graph.Node, key string, raw any) error {
	def := n.Def()
	i, ok := def.InputIndex(graph.ParseKey(key))
	if !ok {
		return &graph.PortError{Kind: def.Name, Port: key, Msg: "Unknown input"}
	}
	v, err := decodeLiteral(raw, def.Inputs[i].Type)
	if err != nil {
		return &graph.PortError{Kind: def.Name, Port: key, Msg: "Bad literal", Err: err}
	}
	_, _, err = n.SetInput(graph.Index(i), graph.Literal(v))
	return err
}

func setParam(n graph.Node, name string, raw any) error {
	def := n.Def()
	i, ok := def.ParamIndex(name)
	if !ok {
		return &graph.PortError{Kind: def.Name, Port: name, Msg: "Unknown parameter"}
	}
	pv, err := decodeParam(raw, def.Params[i])
	if err != nil {
		return &graph.PortError{Kind: def.Name, Port: name, Msg: "Bad parameter", Err: err}
	}
	return n.SetParam(name, pv)
}

func connect(g *graph.Graph, dst graph.NodeID, in graph.InputKey, src graph.NodeID, out graph.InputKey) error {
	inID, err := g.InputID(dst, in)
	if err != nil {
		return err
	}
	outID, err := g.OutputID(src, out)
	if err != nil {
		return err
	}
	return g.Connect(inID, outID)
}

// Check parses and builds a document, returning every problem found.
func Check(name, src string, reg *graph.Registry) error {
	d, err := Parse(name, src, reg)
	if err != nil {
		return err
	}
	_, _, err = d.Build()
	return err
}

// BuildSource is a shorthand for Parse followed by Build.
func BuildSource(name, src string, reg *graph.Registry) (*Doc, *graph.Graph, map[string]graph.NodeID, error) {
	d, err := Parse(name, src, reg)
	if err != nil {
		return nil, nil, nil, err
	}
	g, ids, err := d.Build()
	if err != nil {
		return d, nil, nil, err
	}
	return d, g, ids, nil
}
