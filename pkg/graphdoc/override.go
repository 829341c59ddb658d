package graphdoc

import (
	"fmt"
	"strings"

	"github.com/mitchellh/copystructure"
	"gopkg.in/yaml.v3"
)

// WithOverrides returns a copy of the document with input values replaced.
// overrides maps node ids to input keys to values, in the same form as the
// inputs of a parsed document. The receiver is not modified.
func (d *Doc) WithOverrides(overrides map[string]map[string]any) (*Doc, error) {
	copied, err := copystructure.Copy(d.Nodes)
	if err != nil {
		return nil, err
	}
	c := *d
	c.Nodes = copied.([]*Node)
	for _, id := range sortedKeys(anyMap(overrides)) {
		n, ok := c.Node(id)
		if !ok {
			return nil, fmt.Errorf("override of unknown node %q", id)
		}
		for key, v := range overrides[id] {
			if n.Inputs == nil {
				n.Inputs = map[string]any{}
			}
			n.Inputs[key] = v
			// Errors in the new value point at the node.
			n.Pos["inputs."+key] = n.Pos[""]
		}
	}
	if err := c.checkRefs(); err != nil {
		return nil, err
	}
	return &c, nil
}

func anyMap(m map[string]map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ParseSet parses an override of the form "node.Input=value", where the value
// is YAML, and adds it to overrides.
func ParseSet(overrides map[string]map[string]any, s string) error {
	target, value, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("bad override %q, want node.Input=value", s)
	}
	node, input, ok := strings.Cut(target, ".")
	if !ok || node == "" || input == "" {
		return fmt.Errorf("bad override target %q, want node.Input", target)
	}
	var v any
	if err := yaml.Unmarshal([]byte(value), &v); err != nil {
		return fmt.Errorf("bad override value %q: %w", value, err)
	}
	if overrides[node] == nil {
		overrides[node] = map[string]any{}
	}
	overrides[node][input] = v
	return nil
}
