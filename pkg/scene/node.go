package scene

import (
	"strconv"
	"strings"
)

// NodeID identifies a node within one scene. The zero value is never assigned.
type NodeID uint32

// ZeroID is the unassigned node ID.
const ZeroID NodeID = 0

// IsZero reports whether id is unassigned.
func (id NodeID) IsZero() bool { return id == ZeroID }

// String returns a short printable form, e.g. "n12".
func (id NodeID) String() string { return "n" + strconv.FormatUint(uint64(id), 10) }

// NodeKind enumerates the kinds of scene nodes.
type NodeKind int

const (
	NodeFace     NodeKind = iota // planar face bounded by loops
	NodeEdge                     // line segment, possibly bounding faces
	NodeGroup                    // container with its own transform and children
	NodeInstance                 // placement of a shared definition
	NodeText                     // free-floating text annotation
)

func (k NodeKind) String() string {
	switch k {
	case NodeFace:
		return "face"
	case NodeEdge:
		return "edge"
	case NodeGroup:
		return "group"
	case NodeInstance:
		return "instance"
	case NodeText:
		return "text"
	default:
		return "unknown"
	}
}

// IsContainer reports whether nodes of this kind have children.
func (k NodeKind) IsContainer() bool {
	return k == NodeGroup || k == NodeInstance
}

// Node is the fundamental element of the scene graph.
type Node struct {
	ID       NodeID   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Name     string   `json:"name,omitempty"`
	Hidden   bool     `json:"hidden,omitempty"`
	Children []NodeID `json:"children,omitempty"` // groups only; instances resolve through their definition
	Data     NodeData `json:"data"`
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}

// Ref addresses one occurrence of a node: the node itself plus the chain of
// containers (outermost first) through which it was reached. A face inside a
// definition placed by two instances has two distinct refs.
type Ref struct {
	ID   NodeID
	Path []NodeID
}

// Child returns the ref of child id reached through the container r.
func (r Ref) Child(id NodeID) Ref {
	path := make([]NodeID, len(r.Path)+1)
	copy(path, r.Path)
	path[len(r.Path)] = r.ID
	return Ref{ID: id, Path: path}
}

// Sibling returns the ref of id in the same context as r.
func (r Ref) Sibling(id NodeID) Ref {
	return Ref{ID: id, Path: r.Path}
}

// Key returns a comparable string encoding of the occurrence.
func (r Ref) Key() string {
	var sb strings.Builder
	for _, p := range r.Path {
		sb.WriteString(strconv.FormatUint(uint64(p), 10))
		sb.WriteByte('/')
	}
	sb.WriteString(strconv.FormatUint(uint64(r.ID), 10))
	return sb.String()
}

// SameContext reports whether r and o were reached through the same containers.
func (r Ref) SameContext(o Ref) bool {
	if len(r.Path) != len(o.Path) {
		return false
	}
	for i := range r.Path {
		if r.Path[i] != o.Path[i] {
			return false
		}
	}
	return true
}

func (r Ref) String() string {
	if len(r.Path) == 0 {
		return r.ID.String()
	}
	parts := make([]string, 0, len(r.Path)+1)
	for _, p := range r.Path {
		parts = append(parts, p.String())
	}
	parts = append(parts, r.ID.String())
	return strings.Join(parts, "/")
}
