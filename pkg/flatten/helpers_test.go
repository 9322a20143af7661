package flatten

import (
	"math"
	"testing"

	"github.com/chazu/facecut/pkg/scene"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// square returns a counter-clockwise square in the z=0 plane.
func square(x0, y0, side float64) []v3.Vec {
	return []v3.Vec{
		{X: x0, Y: y0},
		{X: x0 + side, Y: y0},
		{X: x0 + side, Y: y0 + side},
		{X: x0, Y: y0 + side},
	}
}

func build(t *testing.T, b *scene.Builder) *scene.Scene {
	t.Helper()
	s, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return s
}

// triangles builds two coplanar triangles sharing the diagonal of a square.
func triangles(t *testing.T) (*scene.Scene, scene.NodeID, scene.NodeID) {
	t.Helper()
	b := scene.NewBuilder()
	a := b.Face([]v3.Vec{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}})
	c := b.Face([]v3.Vec{{X: 0, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}})
	return build(t, b), a, c
}

// unproject inverts Project for a point on the face's plane.
func unproject(q v2.Vec, face scene.FaceData) v3.Vec {
	ref := face.Origin()
	_, axis2 := face.Axes()
	perp := face.Normal.Cross(axis2)
	dx, dy := q.X-ref.X, q.Y-ref.Y
	mag := math.Hypot(dx, dy)
	phi := -math.Atan2(dy, dx)
	return ref.Add(axis2.MulScalar(mag * math.Cos(phi))).Add(perp.MulScalar(mag * math.Sin(phi)))
}

func keys(groups []FaceGroup) [][]string {
	out := make([][]string, len(groups))
	for i, g := range groups {
		for _, m := range g.Members {
			out[i] = append(out[i], m.Key())
		}
	}
	return out
}

// tagCounts counts segment tags over a flattened group.
func tagCounts(g FlatGroup) map[Tag]int {
	counts := make(map[Tag]int)
	for _, m := range g.Members {
		for _, l := range m.Loops {
			for _, p := range l.Points {
				counts[p.Tag]++
			}
		}
	}
	return counts
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
