package graphdoc

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"src.shadegraph.dev/pkg/must"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "https://src.shadegraph.dev/schema/graph.json"

var schema = func() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	must.OK(c.AddResource(schemaURL, bytes.NewReader(schemaJSON)))
	return must.OK1(c.Compile(schemaURL))
}()

// validateSchema validates the decoded document against the schema. Each
// violation is reported at the YAML node it concerns.
func (d *Doc) validateSchema(root *yaml.Node) []error {
	var raw any
	if err := root.Decode(&raw); err != nil {
		return []error{d.errorAt(posOf(root), "syntax error", "%v", err)}
	}
	// The validator wants the values encoding/json produces.
	buf, err := json.Marshal(raw)
	if err != nil {
		return []error{d.errorAt(posOf(root), "schema error", "document is not representable as JSON: %v", err)}
	}
	var inst any
	dec := json.NewDecoder(bytes.NewReader(buf))
	dec.UseNumber()
	if err := dec.Decode(&inst); err != nil {
		return []error{d.errorAt(posOf(root), "schema error", "%v", err)}
	}
	err = schema.Validate(inst)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []error{d.errorAt(posOf(root), "schema error", "%v", err)}
	}
	leaves := map[string]string{}
	collectLeaves(ve, leaves)
	locs := make([]string, 0, len(leaves))
	for loc := range leaves {
		locs = append(locs, loc)
	}
	sort.Strings(locs)
	var errs []error
	for _, loc := range locs {
		n := lookupPointer(root, loc)
		errs = append(errs, d.errorAt(posOf(n), "schema error", "%s: %s", displayPointer(loc), leaves[loc]))
	}
	return errs
}

// collectLeaves gathers the innermost violations, keeping the first message
// for each instance location.
func collectLeaves(ve *jsonschema.ValidationError, leaves map[string]string) {
	if len(ve.Causes) == 0 {
		loc := strings.TrimPrefix(ve.InstanceLocation, "#")
		if _, ok := leaves[loc]; !ok {
			leaves[loc] = ve.Message
		}
		return
	}
	for _, c := range ve.Causes {
		collectLeaves(c, leaves)
	}
}

// lookupPointer finds the YAML node a JSON pointer refers to, or the closest
// ancestor that exists.
func lookupPointer(root *yaml.Node, ptr string) *yaml.Node {
	n := root
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	if ptr == "" {
		return n
	}
	for _, tok := range strings.Split(strings.TrimPrefix(ptr, "/"), "/") {
		tok = strings.NewReplacer("~1", "/", "~0", "~").Replace(tok)
		next := child(n, tok)
		if next == nil {
			return n
		}
		n = next
	}
	return n
}

// child returns the value for key in a mapping, or the element at an index in
// a sequence.
func child(n *yaml.Node, tok string) *yaml.Node {
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			if n.Content[i].Value == tok {
				return n.Content[i+1]
			}
		}
	case yaml.SequenceNode:
		if i, err := strconv.Atoi(tok); err == nil && i >= 0 && i < len(n.Content) {
			return n.Content[i]
		}
	}
	return nil
}

func displayPointer(ptr string) string {
	if ptr == "" {
		return "document"
	}
	return fmt.Sprintf("at %s", ptr)
}
