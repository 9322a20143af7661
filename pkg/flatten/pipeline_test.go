package flatten

import (
	"testing"

	"github.com/chazu/facecut/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func TestRunSummary(t *testing.T) {
	b := scene.NewBuilder()
	b.Face(square(0, 0, 10))
	b.Edge(v3.Vec{X: 1, Y: 1}, v3.Vec{X: 9, Y: 9})
	b.Edge(v3.Vec{X: 50, Y: 1}, v3.Vec{X: 60, Y: 9})
	b.Text("a", v3.Vec{X: 5, Y: 2}, v3.Vec{Z: 1})
	b.Text("b", v3.Vec{X: 500, Y: 2}, v3.Vec{Z: 1})
	s := build(t, b)

	res := Run(s, Options{ExportOrphans: true, Unit: scene.UnitMillimeter, Border: 10})
	if len(res.Groups) != 1 {
		t.Errorf("groups = %d, want 1", len(res.Groups))
	}
	if res.Orphans() != 1 || len(res.Unresolved) != 1 {
		t.Errorf("orphans = %d attached, %d unresolved, want 1 and 1", res.Orphans(), len(res.Unresolved))
	}
	if res.Annotations != 2 || res.Claimed() != 1 {
		t.Errorf("annotations = %d collected, %d claimed, want 2 and 1", res.Annotations, res.Claimed())
	}
}

func TestRunDoesNotMutateScene(t *testing.T) {
	s, a, _ := triangles(t)
	before, _ := s.Face(a)
	first := before.Loops[0].Vertices[1]
	Run(s, Options{Unit: scene.UnitInch, Border: 10})
	after, _ := s.Face(a)
	if after.Loops[0].Vertices[1] != first {
		t.Errorf("scene vertex changed from %v to %v", first, after.Loops[0].Vertices[1])
	}
}
