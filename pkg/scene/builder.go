package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/facecut/pkg/kernel"
	"github.com/chazu/facecut/pkg/kernel/sdfx"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrBuilt is returned when a Builder is used after Build.
var ErrBuilt = errors.New("scene: builder already built")

// Option configures a Builder.
type Option func(*Builder)

// WithKernel sets the geometry kernel used for point classification.
func WithKernel(k kernel.Kernel) Option {
	return func(b *Builder) { b.kernel = k }
}

// Builder assembles a Scene. Nodes not placed in a group or definition
// become roots. Face boundary edges are derived at Build time: within one
// container, coincident segments collapse into a single edge shared by all
// faces using it, and a free edge with the same endpoints is reused.
type Builder struct {
	nodes    map[NodeID]*Node
	order    []NodeID
	owner    map[NodeID]string
	defs     map[DefinitionID]*Definition
	defOrder []DefinitionID
	nextID   NodeID
	nextDef  DefinitionID
	unit     Unit
	selected []Ref
	kernel   kernel.Kernel
	built    bool
}

// NewBuilder returns an empty builder using the sdfx kernel by default.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		nodes:  make(map[NodeID]*Node),
		owner:  make(map[NodeID]string),
		defs:   make(map[DefinitionID]*Definition),
		unit:   UnitMillimeter,
		kernel: sdfx.New(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Builder) add(kind NodeKind, data NodeData) NodeID {
	b.nextID++
	id := b.nextID
	b.nodes[id] = &Node{ID: id, Kind: kind, Data: data}
	b.order = append(b.order, id)
	return id
}

// SetUnit sets the model unit.
func (b *Builder) SetUnit(u Unit) error {
	if !u.Valid() {
		return fmt.Errorf("scene: unknown unit %q", u)
	}
	b.unit = u
	return nil
}

// Face adds a planar face with an outer loop and optional holes.
func (b *Builder) Face(outer []v3.Vec, holes ...[]v3.Vec) NodeID {
	loops := make([]Loop, 0, 1+len(holes))
	for _, vs := range append([][]v3.Vec{outer}, holes...) {
		loops = append(loops, Loop{Vertices: append([]v3.Vec(nil), vs...)})
	}
	return b.add(NodeFace, FaceData{Loops: loops})
}

// Edge adds a free edge between a and c.
func (b *Builder) Edge(a, c v3.Vec) NodeID {
	return b.add(NodeEdge, EdgeData{Start: a, End: c})
}

// Text adds a text annotation anchored at p with leader direction dir.
func (b *Builder) Text(s string, p, dir v3.Vec) NodeID {
	return b.add(NodeText, TextData{Text: s, Point: p, Vector: dir})
}

// claim marks children as owned by a container.
func (b *Builder) claim(by string, children []NodeID) error {
	for _, c := range children {
		if _, ok := b.nodes[c]; !ok {
			return fmt.Errorf("scene: %s: unknown node %s", by, c)
		}
		if o, ok := b.owner[c]; ok {
			return fmt.Errorf("scene: %s: node %s already placed in %s", by, c, o)
		}
	}
	for _, c := range children {
		b.owner[c] = by
	}
	return nil
}

// Group adds a group with transform m owning children.
func (b *Builder) Group(name string, m sdf.M44, children ...NodeID) (NodeID, error) {
	if b.built {
		return ZeroID, ErrBuilt
	}
	id := b.add(NodeGroup, GroupData{Transform: m})
	if err := b.claim("group "+id.String(), children); err != nil {
		delete(b.nodes, id)
		b.order = b.order[:len(b.order)-1]
		b.nextID--
		return ZeroID, err
	}
	n := b.nodes[id]
	n.Name = name
	n.Children = append([]NodeID(nil), children...)
	return id, nil
}

// Define adds a shared definition owning children.
func (b *Builder) Define(name string, children ...NodeID) (DefinitionID, error) {
	if b.built {
		return 0, ErrBuilt
	}
	if err := b.claim(fmt.Sprintf("definition %q", name), children); err != nil {
		return 0, err
	}
	b.nextDef++
	d := &Definition{ID: b.nextDef, Name: name, Children: append([]NodeID(nil), children...)}
	b.defs[d.ID] = d
	b.defOrder = append(b.defOrder, d.ID)
	return d.ID, nil
}

// Instance places definition def with transform m.
func (b *Builder) Instance(def DefinitionID, m sdf.M44) (NodeID, error) {
	if b.built {
		return ZeroID, ErrBuilt
	}
	d, ok := b.defs[def]
	if !ok {
		return ZeroID, fmt.Errorf("scene: unknown definition %d", def)
	}
	id := b.add(NodeInstance, InstanceData{Definition: def, Transform: m})
	b.nodes[id].Name = d.Name
	return id, nil
}

// Name sets the display name of a node.
func (b *Builder) Name(id NodeID, name string) error {
	n, ok := b.nodes[id]
	if !ok {
		return fmt.Errorf("scene: unknown node %s", id)
	}
	n.Name = name
	return nil
}

// Hide marks nodes hidden.
func (b *Builder) Hide(ids ...NodeID) error {
	for _, id := range ids {
		n, ok := b.nodes[id]
		if !ok {
			return fmt.Errorf("scene: hide: unknown node %s", id)
		}
		n.Hidden = true
	}
	return nil
}

// Select appends top-level nodes to the selection. Every selected node
// must still be a root when Build runs.
func (b *Builder) Select(ids ...NodeID) error {
	for _, id := range ids {
		if _, ok := b.nodes[id]; !ok {
			return fmt.Errorf("scene: select: unknown node %s", id)
		}
		b.selected = append(b.selected, Ref{ID: id})
	}
	return nil
}

// SelectRef appends an arbitrary occurrence to the selection.
func (b *Builder) SelectRef(r Ref) {
	b.selected = append(b.selected, r)
}

// Build finalizes the scene: derives shared boundary edges, computes
// face normals and caches point classification regions. An empty
// selection defaults to every root.
func (b *Builder) Build() (*Scene, error) {
	if b.built {
		return nil, ErrBuilt
	}
	b.built = true

	s := &Scene{
		Nodes:       b.nodes,
		Definitions: b.defs,
		Unit:        b.unit,
	}
	for _, id := range b.order {
		if _, owned := b.owner[id]; !owned {
			s.Roots = append(s.Roots, id)
		}
	}

	s.Roots = b.mergeTopology(s.Roots)
	for _, id := range b.order {
		n := b.nodes[id]
		if n.Kind == NodeGroup {
			n.Children = b.mergeTopology(n.Children)
		}
	}
	for _, did := range b.defOrder {
		d := b.defs[did]
		d.Children = b.mergeTopology(d.Children)
	}

	for _, n := range b.nodes {
		if f, ok := n.Data.(FaceData); ok {
			if len(f.Loops) > 0 {
				f.Normal = newellNormal(f.Loops[0].Vertices)
			}
			n.Data = f
		}
	}

	if len(b.selected) == 0 {
		for _, id := range s.Roots {
			s.Selected = append(s.Selected, Ref{ID: id})
		}
	} else {
		for _, r := range b.selected {
			if !s.resolves(r) {
				return nil, fmt.Errorf("scene: selected %s is not reachable from a root", r)
			}
		}
		s.Selected = b.selected
	}

	s.buildRegions(b.kernel)
	return s, nil
}

type posKey [3]int64

type segKey [2]posKey

func keyOf(v v3.Vec) posKey {
	return posKey{
		int64(math.Round(v.X / Tolerance)),
		int64(math.Round(v.Y / Tolerance)),
		int64(math.Round(v.Z / Tolerance)),
	}
}

func less(a, c posKey) bool {
	for i := range a {
		if a[i] != c[i] {
			return a[i] < c[i]
		}
	}
	return false
}

func segmentKey(a, c v3.Vec) segKey {
	ka, kc := keyOf(a), keyOf(c)
	if less(kc, ka) {
		ka, kc = kc, ka
	}
	return segKey{ka, kc}
}

// mergeTopology assigns boundary edges to every face in one container's
// child list and returns the list extended by the edges it created.
func (b *Builder) mergeTopology(children []NodeID) []NodeID {
	edges := make(map[segKey]NodeID)
	for _, id := range children {
		n := b.nodes[id]
		if e, ok := n.Data.(EdgeData); ok && len(e.Faces) == 0 {
			k := segmentKey(e.Start, e.End)
			if _, dup := edges[k]; !dup {
				edges[k] = id
			}
		}
	}

	out := append([]NodeID(nil), children...)
	for _, id := range children {
		n := b.nodes[id]
		f, ok := n.Data.(FaceData)
		if !ok {
			continue
		}
		for li := range f.Loops {
			vs := f.Loops[li].Vertices
			f.Loops[li].Edges = make([]NodeID, len(vs))
			for k := range vs {
				a, c := vs[k], vs[(k+1)%len(vs)]
				key := segmentKey(a, c)
				eid, ok := edges[key]
				if !ok {
					eid = b.add(NodeEdge, EdgeData{Start: a, End: c})
					b.owner[eid] = "topology"
					edges[key] = eid
					out = append(out, eid)
				}
				en := b.nodes[eid]
				e := en.Data.(EdgeData)
				if !containsID(e.Faces, id) {
					e.Faces = append(e.Faces, id)
				}
				en.Data = e
				f.Loops[li].Edges[k] = eid
			}
		}
		n.Data = f
	}
	return out
}

func containsID(ids []NodeID, id NodeID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
