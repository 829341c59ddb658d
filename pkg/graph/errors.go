package graph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrMissingOutput is returned when evaluating or compiling a graph without a
// designated output node.
var ErrMissingOutput = errors.New("Graph missing output node")

// MissingNodeError is returned when a NodeID does not refer to a node of the
// graph.
type MissingNodeError struct {
	ID NodeID
}

func (e *MissingNodeError) Error() string {
	return "Missing node: " + e.ID.String()
}

// PortError is returned for invalid port operations: unknown input, output
// or parameter keys, literals of the wrong type, incompatible connections and
// invalid selections.
type PortError struct {
	Kind string
	Port string
	Msg  string
	// Err is the underlying error, if any.
	Err error
}

func (e *PortError) Error() string {
	var sb strings.Builder
	if e.Kind != "" {
		sb.WriteString(e.Kind)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Msg)
	if e.Port != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Port)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *PortError) Unwrap() error { return e.Err }

// CycleError is returned when a node is reached from itself while it is still
// being processed.
type CycleError struct {
	Node NodeID
}

func (e *CycleError) Error() string {
	return "Recursive node connection at node " + e.Node.String()
}

// DuplicateKindError is returned when registering a definition whose stable
// id is already registered.
type DuplicateKindError struct {
	Name string
	ID   uuid.UUID
}

func (e *DuplicateKindError) Error() string {
	return fmt.Sprintf("Node %q re-defined (id %s)", e.Name, e.ID)
}

// UnknownKindError is returned when looking up a definition that is not
// registered.
type UnknownKindError struct {
	// Either Name or ID is set.
	Name string
	ID   uuid.UUID
	// Registered names close to Name, best first.
	Suggestions []string
}

func (e *UnknownKindError) Error() string {
	var sb strings.Builder
	sb.WriteString("Missing Node definition: ")
	if e.Name != "" {
		fmt.Fprintf(&sb, "%q", e.Name)
	} else {
		sb.WriteString(e.ID.String())
	}
	if len(e.Suggestions) > 0 {
		sb.WriteString(" (did you mean ")
		for i, s := range e.Suggestions {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%q", s)
		}
		sb.WriteString("?)")
	}
	return sb.String()
}
