package scene

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ---------------------------------------------------------------------------
// Units
// ---------------------------------------------------------------------------

// Unit is the length unit scene coordinates are expressed in.
type Unit string

const (
	UnitMillimeter Unit = "mm"
	UnitInch       Unit = "in"
)

// mmPerInch converts inches to millimeters.
const mmPerInch = 25.4

// ToMM converts a length in unit u to millimeters.
func (u Unit) ToMM(v float64) float64 {
	if u == UnitInch {
		return v * mmPerInch
	}
	return v
}

// Valid reports whether u is a known unit.
func (u Unit) Valid() bool {
	return u == UnitMillimeter || u == UnitInch
}

// ---------------------------------------------------------------------------
// Face
// ---------------------------------------------------------------------------

// Loop is one closed boundary of a face. Edges[k] joins Vertices[k] to
// Vertices[(k+1) % len(Vertices)].
type Loop struct {
	Vertices []v3.Vec `json:"vertices"`
	Edges    []NodeID `json:"edges"`
}

// FaceData is a planar face. Loops[0] is the outer loop, the rest are holes.
type FaceData struct {
	Loops  []Loop `json:"loops"`
	Normal v3.Vec `json:"normal"` // unit normal, zero when degenerate
}

func (FaceData) nodeData() {}

// Origin returns the first vertex of the outer loop.
func (f FaceData) Origin() v3.Vec {
	if len(f.Loops) == 0 || len(f.Loops[0].Vertices) == 0 {
		return v3.Vec{}
	}
	return f.Loops[0].Vertices[0]
}

// Axes returns the two in-plane basis axes of the face.
func (f FaceData) Axes() (x, y v3.Vec) {
	return Axes(f.Normal)
}

// ---------------------------------------------------------------------------
// Edge
// ---------------------------------------------------------------------------

// EdgeData is a straight segment. Faces lists every face using it as a
// boundary; a free-floating edge has none.
type EdgeData struct {
	Start v3.Vec   `json:"start"`
	End   v3.Vec   `json:"end"`
	Faces []NodeID `json:"faces,omitempty"`
}

func (EdgeData) nodeData() {}

// ---------------------------------------------------------------------------
// Containers
// ---------------------------------------------------------------------------

// GroupData is a container owning its children.
type GroupData struct {
	Transform sdf.M44 `json:"-"`
}

func (GroupData) nodeData() {}

// DefinitionID identifies a shared component definition.
type DefinitionID uint32

// Definition is a named child list shared by every instance placing it.
type Definition struct {
	ID       DefinitionID `json:"id"`
	Name     string       `json:"name"`
	Children []NodeID     `json:"children"`
}

// InstanceData places a definition with a transform. The definition is a
// back-reference resolved through Scene.Definitions, never owned.
type InstanceData struct {
	Definition DefinitionID `json:"definition"`
	Transform  sdf.M44      `json:"-"`
}

func (InstanceData) nodeData() {}

// ---------------------------------------------------------------------------
// Text
// ---------------------------------------------------------------------------

// TextData is a free-floating annotation anchored at Point.
type TextData struct {
	Text   string `json:"text"`
	Point  v3.Vec `json:"point"`
	Vector v3.Vec `json:"vector"` // leader orientation
}

func (TextData) nodeData() {}
