package scene

import (
	"errors"
	"testing"

	"github.com/chazu/facecut/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// squareLoop returns a counter-clockwise square in the z=0 plane.
func squareLoop(x0, y0, side float64) []v3.Vec {
	return []v3.Vec{
		{X: x0, Y: y0},
		{X: x0 + side, Y: y0},
		{X: x0 + side, Y: y0 + side},
		{X: x0, Y: y0 + side},
	}
}

func mustBuild(t *testing.T, b *Builder) *Scene {
	t.Helper()
	s, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return s
}

// twoTriangles builds two coplanar triangles sharing the diagonal of a unit
// square.
func twoTriangles(t *testing.T) (*Scene, NodeID, NodeID) {
	t.Helper()
	b := NewBuilder()
	a := b.Face([]v3.Vec{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}})
	c := b.Face([]v3.Vec{{X: 0, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}})
	return mustBuild(t, b), a, c
}

// ---------------------------------------------------------------------------
// Builder
// ---------------------------------------------------------------------------

func TestBuildSharedEdge(t *testing.T) {
	s, a, c := twoTriangles(t)

	edges := 0
	var shared []NodeID
	for _, n := range s.Nodes {
		if e, ok := n.Data.(EdgeData); ok {
			edges++
			if len(e.Faces) == 2 {
				shared = append(shared, n.ID)
			}
		}
	}
	if edges != 5 {
		t.Errorf("edge count = %d, want 5", edges)
	}
	if len(shared) != 1 {
		t.Fatalf("shared edges = %d, want 1", len(shared))
	}

	fa, _ := s.Face(a)
	fc, _ := s.Face(c)
	if fa.Loops[0].Edges[2] != shared[0] {
		t.Errorf("face a edge 2 = %s, want shared %s", fa.Loops[0].Edges[2], shared[0])
	}
	if fc.Loops[0].Edges[0] != shared[0] {
		t.Errorf("face c edge 0 = %s, want shared %s", fc.Loops[0].Edges[0], shared[0])
	}
	if len(s.Roots) != 7 {
		t.Errorf("root count = %d, want 2 faces + 5 edges", len(s.Roots))
	}
}

func TestBuildReusesFreeEdge(t *testing.T) {
	b := NewBuilder()
	f := b.Face(squareLoop(0, 0, 10))
	e := b.Edge(v3.Vec{X: 10}, v3.Vec{})
	if err := b.Hide(e); err != nil {
		t.Fatal(err)
	}
	s := mustBuild(t, b)

	fd, _ := s.Face(f)
	if fd.Loops[0].Edges[0] != e {
		t.Errorf("face edge 0 = %s, want reused %s", fd.Loops[0].Edges[0], e)
	}
	ed, _ := s.Edge(e)
	if len(ed.Faces) != 1 || ed.Faces[0] != f {
		t.Errorf("reused edge faces = %v, want [%s]", ed.Faces, f)
	}
	if !s.Node(e).Hidden {
		t.Error("reused edge lost its hidden flag")
	}
}

func TestBuildNormals(t *testing.T) {
	b := NewBuilder()
	f := b.Face(squareLoop(0, 0, 10))
	s := mustBuild(t, b)
	fd, _ := s.Face(f)
	if !vecNear(fd.Normal, v3.Vec{Z: 1}) {
		t.Errorf("normal = %v, want +z", fd.Normal)
	}
}

func TestBuildDefaultSelection(t *testing.T) {
	b := NewBuilder()
	f := b.Face(squareLoop(0, 0, 10))
	g, err := b.Group("g", sdf.Identity3d(), b.Face(squareLoop(20, 0, 10)))
	if err != nil {
		t.Fatal(err)
	}
	s := mustBuild(t, b)
	sel := s.Selection()
	if len(sel) < 2 || sel[0].ID != f || sel[1].ID != g {
		t.Errorf("selection = %v, want roots starting [%s %s]", sel, f, g)
	}
}

func TestBuildExplicitSelection(t *testing.T) {
	b := NewBuilder()
	b.Face(squareLoop(0, 0, 10))
	f := b.Face(squareLoop(20, 0, 10))
	if err := b.Select(f); err != nil {
		t.Fatal(err)
	}
	s := mustBuild(t, b)
	if got := s.Selection(); len(got) != 1 || got[0].ID != f {
		t.Errorf("selection = %v, want [%s]", got, f)
	}
}

func TestBuildSelectionMustBeRoot(t *testing.T) {
	b := NewBuilder()
	f := b.Face(squareLoop(0, 0, 10))
	if err := b.Select(f); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Group("g", sdf.Identity3d(), f); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Build(); err == nil {
		t.Fatal("expected error selecting a node that is no longer a root")
	}
}

func TestGroupClaimsOnce(t *testing.T) {
	b := NewBuilder()
	f := b.Face(squareLoop(0, 0, 10))
	if _, err := b.Group("a", sdf.Identity3d(), f); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Group("b", sdf.Identity3d(), f); err == nil {
		t.Fatal("expected error placing a node in two groups")
	}
	if _, err := b.Define("d", f); err == nil {
		t.Fatal("expected error placing a grouped node in a definition")
	}
}

func TestBuildTwice(t *testing.T) {
	b := NewBuilder()
	mustBuild(t, b)
	if _, err := b.Build(); !errors.Is(err, ErrBuilt) {
		t.Errorf("second Build error = %v, want ErrBuilt", err)
	}
}

func TestInstanceChildren(t *testing.T) {
	b := NewBuilder()
	f := b.Face(squareLoop(0, 0, 10))
	def, err := b.Define("panel", f)
	if err != nil {
		t.Fatal(err)
	}
	i1, _ := b.Instance(def, sdf.Identity3d())
	i2, _ := b.Instance(def, sdf.Translate3d(v3.Vec{X: 50}))
	s := mustBuild(t, b)

	c1 := s.Children(s.Node(i1))
	c2 := s.Children(s.Node(i2))
	if len(c1) != 5 || len(c2) != 5 {
		t.Fatalf("instance children = %d, %d, want face + 4 edges each", len(c1), len(c2))
	}
	if c1[0] != f || c2[0] != f {
		t.Errorf("instances do not share the definition face")
	}
	if s.Node(i1).Name != "panel" {
		t.Errorf("instance name = %q, want panel", s.Node(i1).Name)
	}
	if _, err := b.Instance(99, sdf.Identity3d()); err == nil {
		t.Error("expected error for unknown definition")
	}
}

func TestSetUnit(t *testing.T) {
	b := NewBuilder()
	if err := b.SetUnit("cubit"); err == nil {
		t.Error("expected error for unknown unit")
	}
	if err := b.SetUnit(UnitInch); err != nil {
		t.Fatal(err)
	}
	if s := mustBuild(t, b); s.Units() != UnitInch {
		t.Errorf("Units() = %q, want in", s.Units())
	}
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

func TestConnected(t *testing.T) {
	s, a, c := twoTriangles(t)
	got := s.Connected(Ref{ID: c})
	if len(got) != 2 || got[0].ID != c || got[1].ID != a {
		t.Errorf("Connected(c) = %v, want [%s %s]", got, c, a)
	}

	path := []NodeID{100}
	got = s.Connected(Ref{ID: a, Path: path})
	for _, r := range got {
		if len(r.Path) != 1 || r.Path[0] != 100 {
			t.Errorf("connected ref %v lost its context", r)
		}
	}
	if s.Connected(Ref{ID: 999}) != nil {
		t.Error("Connected of unknown face should be nil")
	}
}

func TestClassifyPoint(t *testing.T) {
	b := NewBuilder()
	f := b.Face(squareLoop(0, 0, 10), []v3.Vec{{X: 4, Y: 4}, {X: 4, Y: 6}, {X: 6, Y: 6}, {X: 6, Y: 4}})
	s := mustBuild(t, b)

	tests := []struct {
		name string
		p    v3.Vec
		want kernel.PointClass
	}{
		{"inside", v3.Vec{X: 2, Y: 2}, kernel.PointInside},
		{"vertex", v3.Vec{X: 10, Y: 10}, kernel.PointOnVertex},
		{"hole vertex", v3.Vec{X: 4, Y: 6}, kernel.PointOnVertex},
		{"edge", v3.Vec{X: 5, Y: 0}, kernel.PointOnEdge},
		{"hole edge", v3.Vec{X: 5, Y: 4}, kernel.PointOnEdge},
		{"in hole", v3.Vec{X: 5, Y: 5}, kernel.PointOutside},
		{"outside", v3.Vec{X: 20, Y: 5}, kernel.PointOutside},
		{"above", v3.Vec{X: 2, Y: 2, Z: 1}, kernel.PointNotOnPlane},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.ClassifyPoint(f, tt.p); got != tt.want {
				t.Errorf("ClassifyPoint(%v) = %s, want %s", tt.p, got, tt.want)
			}
		})
	}

	if got := s.ClassifyPoint(999, v3.Vec{}); got != kernel.PointUnknown {
		t.Errorf("unknown face class = %s, want unknown", got)
	}
}

func TestClassifyPointTiltedFace(t *testing.T) {
	b := NewBuilder()
	// Square standing in the x=5 plane.
	f := b.Face([]v3.Vec{{X: 5, Y: 0, Z: 0}, {X: 5, Y: 10, Z: 0}, {X: 5, Y: 10, Z: 10}, {X: 5, Y: 0, Z: 10}})
	s := mustBuild(t, b)
	if got := s.ClassifyPoint(f, v3.Vec{X: 5, Y: 3, Z: 3}); got != kernel.PointInside {
		t.Errorf("class = %s, want inside", got)
	}
	if got := s.ClassifyPoint(f, v3.Vec{X: 5, Y: 30, Z: 3}); got != kernel.PointOutside {
		t.Errorf("class = %s, want outside", got)
	}
}
