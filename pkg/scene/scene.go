package scene

import (
	"math"

	"github.com/chazu/facecut/pkg/kernel"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Scene is an immutable snapshot of a model produced by a Builder. It answers
// the queries the flattening pipeline needs and is never mutated after Build.
type Scene struct {
	Nodes       map[NodeID]*Node             `json:"nodes"`
	Roots       []NodeID                     `json:"roots"`
	Definitions map[DefinitionID]*Definition `json:"definitions"`
	Selected    []Ref                        `json:"selected"`
	Unit        Unit                         `json:"unit"`

	regions map[NodeID]*faceRegion
}

// faceRegion caches the in-plane frame and kernel region of a face.
type faceRegion struct {
	origin v3.Vec
	normal v3.Vec
	x, y   v3.Vec
	verts  []v2.Vec
	region kernel.Region // nil when the kernel rejected the loops
}

// Node returns the node with the given ID, or nil.
func (s *Scene) Node(id NodeID) *Node {
	return s.Nodes[id]
}

// Definition returns the definition with the given ID, or nil.
func (s *Scene) Definition(id DefinitionID) *Definition {
	return s.Definitions[id]
}

// Children returns the ordered children of a container. Instances resolve
// through their definition; leaves have none.
func (s *Scene) Children(n *Node) []NodeID {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case NodeGroup:
		return n.Children
	case NodeInstance:
		d, ok := n.Data.(InstanceData)
		if !ok {
			return nil
		}
		if def := s.Definitions[d.Definition]; def != nil {
			return def.Children
		}
	}
	return nil
}

// TopLevel returns the root node IDs in creation order.
func (s *Scene) TopLevel() []NodeID {
	return s.Roots
}

// Selection returns the ordered selection.
func (s *Scene) Selection() []Ref {
	return s.Selected
}

// Units returns the unit scene coordinates are expressed in.
func (s *Scene) Units() Unit {
	if s.Unit == "" {
		return UnitMillimeter
	}
	return s.Unit
}

// Face returns the face payload of id, or false when id is not a face.
func (s *Scene) Face(id NodeID) (FaceData, bool) {
	n := s.Nodes[id]
	if n == nil || n.Kind != NodeFace {
		return FaceData{}, false
	}
	f, ok := n.Data.(FaceData)
	return f, ok
}

// Edge returns the edge payload of id, or false when id is not an edge.
func (s *Scene) Edge(id NodeID) (EdgeData, bool) {
	n := s.Nodes[id]
	if n == nil || n.Kind != NodeEdge {
		return EdgeData{}, false
	}
	e, ok := n.Data.(EdgeData)
	return e, ok
}

// Connected returns every face reachable from face through shared edges,
// breadth first with face itself at index 0. The returned refs share the
// context of face.
func (s *Scene) Connected(face Ref) []Ref {
	if _, ok := s.Face(face.ID); !ok {
		return nil
	}
	seen := map[NodeID]bool{face.ID: true}
	queue := []NodeID{face.ID}
	var out []Ref
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		out = append(out, face.Sibling(id))

		f, _ := s.Face(id)
		for _, loop := range f.Loops {
			for _, eid := range loop.Edges {
				e, ok := s.Edge(eid)
				if !ok {
					continue
				}
				for _, fid := range e.Faces {
					if !seen[fid] {
						seen[fid] = true
						queue = append(queue, fid)
					}
				}
			}
		}
	}
	return out
}

// ClassifyPoint classifies p, given in the face's own coordinate space,
// against the face's region.
func (s *Scene) ClassifyPoint(face NodeID, p v3.Vec) kernel.PointClass {
	fr := s.regions[face]
	if fr == nil || !Finite(p) {
		return kernel.PointUnknown
	}
	if !OnPlane(p, fr.origin, fr.normal) {
		return kernel.PointNotOnPlane
	}

	d := p.Sub(fr.origin)
	q := v2.Vec{X: d.Dot(fr.x), Y: d.Dot(fr.y)}
	for _, v := range fr.verts {
		if math.Hypot(q.X-v.X, q.Y-v.Y) <= Tolerance {
			return kernel.PointOnVertex
		}
	}
	if fr.region == nil {
		return kernel.PointOutside
	}
	dist := fr.region.Distance(q)
	switch {
	case math.Abs(dist) <= Tolerance:
		return kernel.PointOnEdge
	case dist < 0:
		return kernel.PointInside
	default:
		return kernel.PointOutside
	}
}

// buildRegions computes the cached frame and kernel region of every face.
func (s *Scene) buildRegions(k kernel.Kernel) {
	s.regions = make(map[NodeID]*faceRegion)
	for id, n := range s.Nodes {
		if n.Kind != NodeFace {
			continue
		}
		f, ok := n.Data.(FaceData)
		if !ok || !Valid(f.Normal) {
			continue
		}
		x, y := f.Axes()
		fr := &faceRegion{origin: f.Origin(), normal: f.Normal, x: x, y: y}

		loops := make([][]v2.Vec, len(f.Loops))
		for i, l := range f.Loops {
			loops[i] = make([]v2.Vec, len(l.Vertices))
			for j, v := range l.Vertices {
				d := v.Sub(fr.origin)
				loops[i][j] = v2.Vec{X: d.Dot(x), Y: d.Dot(y)}
				fr.verts = append(fr.verts, loops[i][j])
			}
		}
		if k != nil && len(loops) > 0 {
			if r, err := k.Region(loops[0], loops[1:]); err == nil {
				fr.region = r
			}
		}
		s.regions[id] = fr
	}
}
