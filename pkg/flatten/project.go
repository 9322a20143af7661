package flatten

import (
	"math"

	"github.com/chazu/facecut/pkg/scene"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Project maps p, given in the face's own space, into the 2D frame shared by
// every member of the face's group. The face's first vertex keeps its x and
// y; every other point is placed at its distance from that vertex, rotated
// by its signed angle to the face's second in-plane axis. Degenerate input
// gives zero rotation. Results are rounded to 4 decimals so coincident 3D
// points map to identical 2D points.
func Project(p v3.Vec, face scene.FaceData) v2.Vec {
	ref := face.Origin()
	_, axis2 := face.Axes()

	v1 := p.Sub(ref)
	if !scene.Finite(v1) {
		return v2.Vec{X: round4(ref.X), Y: round4(ref.Y)}
	}
	angle := signedAngle(v1, axis2, face.Normal)
	mag := v1.Length()

	return v2.Vec{
		X: round4(ref.X + mag*math.Cos(angle)),
		Y: round4(ref.Y + mag*math.Sin(angle)),
	}
}

// signedAngle is the angle between v and axis, negated when v x axis does
// not point along n.
func signedAngle(v, axis, n v3.Vec) float64 {
	switch {
	case !scene.Valid(v) || !scene.Valid(axis):
		return 0
	case scene.SameDirection(v, axis):
		return 0
	case scene.Parallel(v, axis):
		return math.Pi
	}
	a := scene.AngleBetween(v, axis)
	if !scene.SameDirection(v.Cross(axis), n) {
		a = -a
	}
	return a
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
