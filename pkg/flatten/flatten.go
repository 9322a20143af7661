package flatten

import (
	"math"

	"github.com/chazu/facecut/pkg/scene"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Tag classifies the segment starting at a point.
type Tag int

const (
	TagDrop     Tag = iota // not emitted
	TagBoundary            // outer cut line
	TagEtch                // interior score line between two group members
	TagOrphan              // free edge lying on a group face
)

func (t Tag) String() string {
	switch t {
	case TagDrop:
		return "drop"
	case TagBoundary:
		return "boundary"
	case TagEtch:
		return "etch"
	case TagOrphan:
		return "orphan"
	default:
		return "unknown"
	}
}

// Point is a projected vertex. The tag describes the segment from this
// point to the next one in its loop.
type Point struct {
	X, Y float64
	Tag  Tag
}

// Loop is a projected point sequence. Closed loops also have a segment from
// the last point back to the first.
type Loop struct {
	Points []Point
	Closed bool
}

// Member is one flattened group member.
type Member struct {
	Ref   scene.Ref
	Kind  scene.NodeKind
	Loops []Loop
}

// BBox is an axis-aligned bounding box. The zero value is empty.
type BBox struct {
	MinX, MinY, MaxX, MaxY float64
	n                      int
}

// Empty reports whether no point was added.
func (b BBox) Empty() bool { return b.n == 0 }

// Width returns MaxX - MinX.
func (b BBox) Width() float64 { return b.MaxX - b.MinX }

// Height returns MaxY - MinY.
func (b BBox) Height() float64 { return b.MaxY - b.MinY }

func (b *BBox) add(x, y float64) {
	if b.n == 0 {
		b.MinX, b.MaxX, b.MinY, b.MaxY = x, x, y, y
	} else {
		b.MinX = math.Min(b.MinX, x)
		b.MaxX = math.Max(b.MaxX, x)
		b.MinY = math.Min(b.MinY, y)
		b.MaxY = math.Max(b.MaxY, y)
	}
	b.n++
}

// FlatGroup is a face group projected into its own 2D frame. Coordinates
// are millimeters until Layout converts them.
type FlatGroup struct {
	Members []Member
	BBox    BBox
}

// Flatten projects every member of g with the basis of g's reference face
// and tags every segment. Faces must precede edges in g.Members.
func Flatten(h Host, g FaceGroup, opts Options) FlatGroup {
	var out FlatGroup
	if len(g.Members) == 0 {
		return out
	}
	refRef := g.Members[0]
	refFace, _ := faceOf(h, refRef.ID)
	unit := h.Units()

	index := make(map[string]int, len(g.Members))
	for i, m := range g.Members {
		index[m.Key()] = i
	}

	emit := func(p v2.Vec, tag Tag) Point {
		pt := Point{X: unit.ToMM(p.X), Y: unit.ToMM(p.Y), Tag: tag}
		out.BBox.add(pt.X, pt.Y)
		return pt
	}

	for mi, m := range g.Members {
		n := h.Node(m.ID)
		if n == nil {
			continue
		}
		t := relocate(h, m, refRef)

		switch d := n.Data.(type) {
		case scene.FaceData:
			mem := Member{Ref: m, Kind: scene.NodeFace}
			for _, l := range d.Loops {
				loop := Loop{Closed: true, Points: make([]Point, 0, len(l.Vertices))}
				for k, v := range l.Vertices {
					if t != nil {
						v = t.MulPosition(v)
					}
					tag := TagBoundary
					if k < len(l.Edges) {
						tag = classifyEdge(h, m, mi, l.Edges[k], index, opts)
					}
					loop.Points = append(loop.Points, emit(Project(v, refFace), tag))
				}
				mem.Loops = append(mem.Loops, loop)
			}
			out.Members = append(out.Members, mem)

		case scene.EdgeData:
			a, b := d.Start, d.End
			if t != nil {
				a, b = t.MulPosition(a), t.MulPosition(b)
			}
			loop := Loop{Points: []Point{
				emit(Project(a, refFace), TagOrphan),
				emit(Project(b, refFace), TagOrphan),
			}}
			out.Members = append(out.Members, Member{Ref: m, Kind: scene.NodeEdge, Loops: []Loop{loop}})
		}
	}
	return out
}

// classifyEdge tags the segment along edge eid of member m at index mi. An
// edge shared with another member is an etch line, dropped on the later of
// the two. Hidden edges are dropped unless hidden export is on.
func classifyEdge(h Host, m scene.Ref, mi int, eid scene.NodeID, index map[string]int, opts Options) Tag {
	n := h.Node(eid)
	if n == nil {
		return TagBoundary
	}
	if n.Hidden && !opts.ExportHidden {
		return TagDrop
	}
	e, ok := n.Data.(scene.EdgeData)
	if !ok {
		return TagBoundary
	}
	tag := TagBoundary
	for _, fid := range e.Faces {
		if fid == m.ID {
			continue
		}
		j, ok := index[m.Sibling(fid).Key()]
		if !ok {
			continue
		}
		if j < mi {
			return TagDrop
		}
		tag = TagEtch
	}
	return tag
}
