package graphdoc

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
	"gopkg.in/yaml.v3"

	"src.shadegraph.dev/pkg/graph"
)

type docYAML struct {
	Format string     `yaml:"format"`
	Output string     `yaml:"output,omitempty"`
	Nodes  []nodeYAML `yaml:"nodes"`
}

type nodeYAML struct {
	ID     string         `yaml:"id"`
	Kind   string         `yaml:"kind"`
	KindID string         `yaml:"kind_id"`
	Inputs map[string]any `yaml:"inputs,omitempty"`
	Params map[string]any `yaml:"params,omitempty"`
}

// Encode writes a graph as a document. names gives the document id of each
// node, as returned by Build; other nodes are named after their arena index.
// Disconnected inputs are omitted. Connected inputs are written as
// connections, dropping their literal fallback.
func Encode(g *graph.Graph, names map[string]graph.NodeID) ([]byte, error) {
	byID := make(map[graph.NodeID]string, len(names))
	for name, id := range names {
		byID[id] = name
	}
	nameOf := func(id graph.NodeID) string {
		if name, ok := byID[id]; ok {
			return name
		}
		return fmt.Sprintf("n%d", id.Index)
	}

	out := docYAML{Format: CurrentFormat}
	if id, ok := g.Output(); ok {
		out.Output = nameOf(id)
	}
	for _, id := range g.NodeIDs() {
		n, err := g.Get(id)
		if err != nil {
			return nil, err
		}
		def := n.Def()
		ny := nodeYAML{ID: nameOf(id), Kind: def.Name, KindID: def.ID.String()}
		for _, st := range n.States() {
			switch st.Kind {
			case graph.InputPort:
				switch st.Input.State {
				case graph.StateConnected:
					src, err := g.Get(st.Input.Source.Node)
					if err != nil {
						return nil, err
					}
					setEntry(&ny.Inputs, st.Name, map[string]any{
						"from":   nameOf(st.Input.Source.Node),
						"output": src.Def().Outputs[st.Input.Source.Index].Name,
					})
				case graph.StateLiteral:
					setEntry(&ny.Inputs, st.Name, encodeLiteral(st.Input.Value))
				}
			case graph.ParamPort:
				if st.Param.Value != nil {
					setEntry(&ny.Params, st.Name, encodeLiteral(st.Param.Value))
				} else {
					setEntry(&ny.Params, st.Name, st.Param.Selected)
				}
			}
		}
		out.Nodes = append(out.Nodes, ny)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setEntry(m *map[string]any, k string, v any) {
	if *m == nil {
		*m = map[string]any{}
	}
	(*m)[k] = v
}

var canonicalMode = func() cbor.EncMode {
	mode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return mode
}()

// Canonical returns the canonical CBOR encoding of the document content.
// Formatting, comments and the order of map keys do not affect it.
func (d *Doc) Canonical() ([]byte, error) {
	return canonicalMode.Marshal(d)
}

// Digest returns the hex-encoded BLAKE2b-256 hash of the canonical encoding.
func (d *Doc) Digest() (string, error) {
	b, err := d.Canonical()
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// Format re-encodes a document source in the normal layout. The source must
// parse and build.
func Format(name, src string, reg *graph.Registry) ([]byte, error) {
	_, g, ids, err := BuildSource(name, src, reg)
	if err != nil {
		return nil, err
	}
	return Encode(g, ids)
}
