// Package nodes is the library of built-in node kinds.
//
// Most kinds are expressions over their inputs and are described by the
// embedded kind table, kinds.yaml. The kinds whose logic does not fit an
// expression template are implemented in Go.
package nodes

import (
	"src.shadegraph.dev/pkg/graph"
	"src.shadegraph.dev/pkg/logutil"
)

var logger = logutil.GetLogger("nodes")

// Definitions returns the definitions of all built-in kinds.
func Definitions() ([]*graph.Definition, error) {
	defs, err := tableDefinitions()
	if err != nil {
		return nil, err
	}
	return append(defs,
		booleanDef(),
		multiplyDef(),
		splitDef(),
		swizzleDef(),
		combineDef(),
		textureSampleDef(),
		uvDef(),
		fragmentOutputDef(),
	), nil
}

// NewRegistry returns a registry holding all built-in kinds. It fails if two
// kinds share a stable id.
func NewRegistry() (*graph.Registry, error) {
	defs, err := Definitions()
	if err != nil {
		return nil, err
	}
	reg := graph.NewRegistry()
	if err := reg.RegisterAll(defs...); err != nil {
		return nil, err
	}
	logger.Printf("[DEBUG] registered %d built-in node kinds", len(defs))
	return reg, nil
}

// base implements the port methods of graph.Node for the kinds in this
// package.
type base struct {
	graph.PortSet
	cache bool
}

func newBase(def *graph.Definition, cache bool) base {
	return base{graph.NewPortSet(def), cache}
}

func (b *base) CacheOutput() bool { return b.cache }

func (b *base) cloneBase() base { return base{b.ClonePorts(), b.cache} }

// outID returns output i of node id.
func outID(id graph.NodeID, i int) graph.OutputID {
	return graph.OutputID{Node: id, Index: uint32(i)}
}
