package flatten

import (
	"testing"

	"github.com/chazu/facecut/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func TestLayoutSquarePage(t *testing.T) {
	b := scene.NewBuilder()
	b.Face(square(0, 0, 40))
	s := build(t, b)
	opts := Options{Unit: scene.UnitMillimeter, Border: 10}

	page := Layout(flattenAll(t, s, opts), nil, opts)
	if !near(page.Width, 60) || !near(page.Height, 60) {
		t.Errorf("page = %v x %v, want 60 x 60", page.Width, page.Height)
	}
	bb := page.Groups[0].BBox
	if !near(bb.MinX, 10) || !near(bb.MinY, 10) {
		t.Errorf("group origin = (%v, %v), want (10, 10)", bb.MinX, bb.MinY)
	}
}

func TestLayoutStacksVertically(t *testing.T) {
	b := scene.NewBuilder()
	b.Face(square(0, 0, 10))
	b.Face(square(100, 100, 30))
	s := build(t, b)
	opts := Options{Unit: scene.UnitMillimeter, Border: 5}

	page := Layout(flattenAll(t, s, opts), nil, opts)
	g0, g1 := page.Groups[0].BBox, page.Groups[1].BBox
	if !near(g0.MinY, 5) || !near(g0.MaxY, 15) {
		t.Errorf("first group y range = [%v, %v], want [5, 15]", g0.MinY, g0.MaxY)
	}
	if !near(g1.MinX, 5) || !near(g1.MinY, 20) || !near(g1.MaxY, 50) {
		t.Errorf("second group = %+v, want x from 5, y in [20, 50]", g1)
	}
	if !near(page.Width, 40) || !near(page.Height, 55) {
		t.Errorf("page = %v x %v, want 40 x 55", page.Width, page.Height)
	}
}

func TestLayoutEmpty(t *testing.T) {
	page := Layout(nil, nil, Options{Unit: scene.UnitMillimeter, Border: 10})
	if page.Width != 10 || page.Height != 10 {
		t.Errorf("empty page = %v x %v, want border only", page.Width, page.Height)
	}
}

func TestLayoutInchConsistency(t *testing.T) {
	b := scene.NewBuilder()
	b.Face(square(0, 0, 10))
	b.Face([]v3.Vec{{X: 0, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 10}, {X: 10, Y: 0, Z: 10}, {X: 10, Y: 0, Z: 0}})
	b.Edge(v3.Vec{X: 2, Y: 2}, v3.Vec{X: 7, Y: 3})
	b.Text("note", v3.Vec{X: 3, Y: 6}, v3.Vec{Z: 1})
	s := build(t, b)

	run := func(u scene.Unit) *Page {
		opts := Options{ExportOrphans: true, Unit: u, Border: 10}
		return Run(s, opts).Page
	}
	mm, in := run(scene.UnitMillimeter), run(scene.UnitInch)

	const tol = 1e-9
	check := func(what string, a, b float64) {
		t.Helper()
		if d := a*MMToInch - b; d > tol || d < -tol {
			t.Errorf("%s: mm %v scaled = %v, inch layout has %v", what, a, a*MMToInch, b)
		}
	}
	check("width", mm.Width, in.Width)
	check("height", mm.Height, in.Height)
	check("border", mm.Border, in.Border)
	for gi := range mm.Groups {
		for mi := range mm.Groups[gi].Members {
			for li, l := range mm.Groups[gi].Members[mi].Loops {
				for k, p := range l.Points {
					q := in.Groups[gi].Members[mi].Loops[li].Points[k]
					check("x", p.X, q.X)
					check("y", p.Y, q.Y)
					if p.Tag != q.Tag {
						t.Errorf("tag changed with unit: %s vs %s", p.Tag, q.Tag)
					}
				}
			}
		}
	}
	if len(mm.Text) != 1 || len(in.Text) != 1 {
		t.Fatalf("claimed text = %d, %d, want 1", len(mm.Text), len(in.Text))
	}
	check("text x", mm.Text[0].X, in.Text[0].X)
	check("text y", mm.Text[0].Y, in.Text[0].Y)
	if in.Unit != scene.UnitInch || mm.Unit != scene.UnitMillimeter {
		t.Errorf("units = %q, %q", mm.Unit, in.Unit)
	}
}

func TestLayoutMovesClaimedText(t *testing.T) {
	b := scene.NewBuilder()
	b.Face(square(0, 0, 10))
	b.Face(square(0, 50, 10))
	b.Text("second", v3.Vec{X: 5, Y: 55}, v3.Vec{Z: 1})
	s := build(t, b)

	page := Run(s, Options{Unit: scene.UnitMillimeter, Border: 10}).Page
	if len(page.Text) != 1 {
		t.Fatalf("claimed = %d, want 1", len(page.Text))
	}
	rec := page.Text[0]
	g1 := page.Groups[1].BBox
	if rec.Group != 1 || rec.X < g1.MinX || rec.X > g1.MaxX || rec.Y < g1.MinY || rec.Y > g1.MaxY {
		t.Errorf("text at (%v, %v) outside its group %+v", rec.X, rec.Y, g1)
	}
}

func TestPageLength(t *testing.T) {
	p := &Page{Scale: MMToInch}
	if got := p.Length(25.4); !near(got, 25.4*MMToInch) {
		t.Errorf("Length(25.4) = %v", got)
	}
}
