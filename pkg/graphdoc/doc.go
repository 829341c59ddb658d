// Package graphdoc reads and writes graph documents, the YAML form of a node
// graph.
//
// A document lists nodes by a document-local id and kind, with their input
// literals, connections and parameters:
//
//	format: "1.0"
//	output: sum
//	nodes:
//	  - id: a
//	    kind: Scalar Math
//	    inputs: {A: 1.0, B: 2.0}
//	  - id: sum
//	    kind: Scalar Math
//	    inputs: {A: "@a", B: {from: a, output: Out}}
//
// Problems are reported as *diag.Error values pointing into the source, all
// of them at once.
package graphdoc

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/go-version"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"src.shadegraph.dev/pkg/diag"
	"src.shadegraph.dev/pkg/graph"
	"src.shadegraph.dev/pkg/logutil"
)

var logger = logutil.GetLogger("graphdoc")

// CurrentFormat is the format version written by Encode.
const CurrentFormat = "1.0"

// Document formats this package understands.
var supportedFormats = version.MustConstraints(version.NewConstraint(">= 1.0, < 2.0"))

// Doc is a parsed graph document.
type Doc struct {
	// Name and Source of the document, used in error messages.
	Name   string `cbor:"-"`
	Source string `cbor:"-"`

	Format string  `cbor:"format"`
	Output string  `cbor:"output,omitempty"`
	Nodes  []*Node `cbor:"nodes"`
	// Positions of the top-level fields.
	Pos map[string]Pos `cbor:"-"`

	reg *graph.Registry
}

// Node is one entry of the nodes list.
type Node struct {
	ID     string `cbor:"id"`
	Kind   string `cbor:"kind,omitempty"`
	KindID string `cbor:"kind_id,omitempty"`
	// Inputs and Params hold the YAML values as decoded: numbers, strings,
	// lists and, for connections, maps.
	Inputs map[string]any `cbor:"inputs,omitempty"`
	Params map[string]any `cbor:"params,omitempty"`
	// Positions of the fields. The entry "" is the node itself; inputs and
	// params are keyed "inputs.NAME" and "params.NAME".
	Pos map[string]Pos `cbor:"-"`
}

// Pos is a 1-based line and column in the source of a document.
type Pos struct {
	Line, Col int
}

func posOf(n *yaml.Node) Pos {
	if n == nil {
		return Pos{}
	}
	return Pos{n.Line, n.Column}
}

// Parse parses a document, validating it against the document schema and
// checking its format version, node ids and references. The registry is used
// by Build. All problems found are returned together as a *multierror.Error
// of *diag.Error values.
func Parse(name, src string, reg *graph.Registry) (*Doc, error) {
	d := &Doc{Name: name, Source: src, Pos: map[string]Pos{}, reg: reg}
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(src), &root); err != nil {
		return nil, multierror.Append(nil, d.syntaxError(err))
	}
	if errs := d.validateSchema(&root); len(errs) > 0 {
		return nil, multierror.Append(nil, errs...)
	}
	body := root.Content[0]

	var result *multierror.Error
	for i := 0; i+1 < len(body.Content); i += 2 {
		key, val := body.Content[i], body.Content[i+1]
		d.Pos[key.Value] = posOf(val)
		switch key.Value {
		case "format":
			d.Format = val.Value
		case "output":
			d.Output = val.Value
		case "nodes":
			for _, item := range val.Content {
				n, err := d.parseNode(item)
				if err != nil {
					result = multierror.Append(result, err)
				}
				d.Nodes = append(d.Nodes, n)
			}
		}
	}
	if err := d.checkFormat(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := d.checkRefs(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	logger.Printf("[DEBUG] parsed %s: %d nodes", name, len(d.Nodes))
	return d, nil
}

// Load reads and parses a document from a filesystem.
func Load(fs afero.Fs, path string, reg *graph.Registry) (*Doc, error) {
	src, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	return Parse(path, string(src), reg)
}

// Registry returns the registry the document resolves kinds in.
func (d *Doc) Registry() *graph.Registry { return d.reg }

func (d *Doc) parseNode(item *yaml.Node) (*Node, error) {
	n := &Node{Pos: map[string]Pos{"": posOf(item)}}
	var result *multierror.Error
	for i := 0; i+1 < len(item.Content); i += 2 {
		key, val := item.Content[i], item.Content[i+1]
		n.Pos[key.Value] = posOf(val)
		switch key.Value {
		case "id":
			n.ID = val.Value
		case "kind":
			n.Kind = val.Value
		case "kind_id":
			n.KindID = val.Value
		case "inputs", "params":
			m := map[string]any{}
			for j := 0; j+1 < len(val.Content); j += 2 {
				k, v := val.Content[j], val.Content[j+1]
				var decoded any
				if err := v.Decode(&decoded); err != nil {
					result = multierror.Append(result, d.errorAt(posOf(v), "syntax error", "%v", err))
					continue
				}
				m[k.Value] = decoded
				n.Pos[key.Value+"."+k.Value] = posOf(v)
			}
			if key.Value == "inputs" {
				n.Inputs = m
			} else {
				n.Params = m
			}
		}
	}
	return n, result.ErrorOrNil()
}

func (d *Doc) checkFormat() error {
	v, err := version.NewVersion(d.Format)
	if err != nil {
		return d.errorAt(d.Pos["format"], "format error", "invalid format version %q", d.Format)
	}
	if !supportedFormats.Check(v) {
		return d.errorAt(d.Pos["format"], "format error",
			"unsupported format version %s, want %s", d.Format, supportedFormats)
	}
	return nil
}

// checkRefs checks that node ids are unique and that connections and the
// output refer to existing nodes.
func (d *Doc) checkRefs() error {
	var result *multierror.Error
	ids := map[string]bool{}
	for _, n := range d.Nodes {
		if ids[n.ID] {
			result = multierror.Append(result, d.errorAt(n.Pos["id"], "graph error", "duplicate node id %q", n.ID))
		}
		ids[n.ID] = true
	}
	for _, n := range d.Nodes {
		for _, key := range sortedKeys(n.Inputs) {
			conn, ok, err := parseConnection(n.Inputs[key])
			if err != nil {
				result = multierror.Append(result, d.errorAt(n.Pos["inputs."+key], "graph error", "%v", err))
				continue
			}
			if ok && !ids[conn.from] {
				result = multierror.Append(result, d.errorAt(n.Pos["inputs."+key], "graph error",
					"input %s of node %q refers to unknown node %q", key, n.ID, conn.from))
			}
		}
	}
	if d.Output != "" && !ids[d.Output] {
		result = multierror.Append(result, d.errorAt(d.Pos["output"], "graph error",
			"output refers to unknown node %q", d.Output))
	}
	return result.ErrorOrNil()
}

// Node returns the node with the given id.
func (d *Doc) Node(id string) (*Node, bool) {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return nil, false
}

func (d *Doc) errorAt(p Pos, typ, format string, args ...any) *diag.Error {
	return &diag.Error{
		Type:    typ,
		Message: fmt.Sprintf(format, args...),
		Context: *diag.NewContext(d.Name, d.Source, diag.TokenRanging(d.Source, p.Line, p.Col)),
	}
}

var yamlLine = regexp.MustCompile(`line (\d+)`)

func (d *Doc) syntaxError(err error) *diag.Error {
	line := 0
	if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
		line, _ = strconv.Atoi(m[1])
	}
	return d.errorAt(Pos{line, 1}, "syntax error", "%v", err)
}
