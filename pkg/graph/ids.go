package graph

import (
	"fmt"
	"strconv"
)

// NodeID identifies a node within one Graph. It is an arena index tagged with
// the generation of its slot; removing a node bumps the generation, so ids of
// removed nodes are rejected instead of aliasing a later node. The zero value
// is never a valid id.
type NodeID struct {
	Index uint32
	Gen   uint32
}

// IsZero reports whether id is the zero NodeID.
func (id NodeID) IsZero() bool { return id.Gen == 0 }

func (id NodeID) String() string {
	return fmt.Sprintf("%dv%d", id.Index, id.Gen)
}

// Less orders ids by index, then generation.
func (id NodeID) Less(other NodeID) bool {
	if id.Index != other.Index {
		return id.Index < other.Index
	}
	return id.Gen < other.Gen
}

// InputID addresses one declared input port of a node.
type InputID struct {
	Node  NodeID
	Index uint32
}

func (id InputID) String() string { return fmt.Sprintf("%s.in%d", id.Node, id.Index) }

// OutputID addresses one declared output port of a node.
type OutputID struct {
	Node  NodeID
	Index uint32
}

func (id OutputID) String() string { return fmt.Sprintf("%s.out%d", id.Node, id.Index) }

// InputKey selects a port either by its position or by its declared name.
type InputKey struct {
	name   string
	index  int
	byName bool
}

// Index returns an InputKey that selects a port by position.
func Index(i int) InputKey { return InputKey{index: i} }

// Name returns an InputKey that selects a port by name.
func Name(s string) InputKey { return InputKey{name: s, byName: true} }

// ParseKey returns a name key for s, or an index key when s is a decimal
// number.
func ParseKey(s string) InputKey {
	if i, err := strconv.Atoi(s); err == nil && i >= 0 {
		return Index(i)
	}
	return Name(s)
}

// ByName reports whether the key selects by name, and returns the name.
func (k InputKey) ByName() (string, bool) { return k.name, k.byName }

func (k InputKey) String() string {
	if k.byName {
		return k.name
	}
	return strconv.Itoa(k.index)
}

func (k InputKey) resolve(ports []PortDecl) (int, bool) {
	if !k.byName {
		return k.index, k.index >= 0 && k.index < len(ports)
	}
	for i, p := range ports {
		if p.Name == k.name {
			return i, true
		}
	}
	return -1, false
}
