package scene

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Tolerance is the distance below which two positions are considered equal.
const Tolerance = 1e-6

// angularTolerance bounds |a x b| / (|a||b|) for parallel directions.
const angularTolerance = 1e-6

// arbitraryAxisLimit selects the world axis used by the arbitrary axis
// algorithm.
const arbitraryAxisLimit = 1.0 / 64.0

// Finite reports whether every component of v is a finite number.
func Finite(v v3.Vec) bool {
	for _, c := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Valid reports whether v is a usable direction: finite and non-zero.
func Valid(v v3.Vec) bool {
	return Finite(v) && v.Length() > 0
}

// Parallel reports whether a and b point along the same line, in either sense.
func Parallel(a, b v3.Vec) bool {
	if !Valid(a) || !Valid(b) {
		return false
	}
	return a.Cross(b).Length()/(a.Length()*b.Length()) <= angularTolerance
}

// SameDirection reports whether a and b are parallel and point the same way.
func SameDirection(a, b v3.Vec) bool {
	return Parallel(a, b) && a.Dot(b) > 0
}

// AngleBetween returns the unsigned angle between a and b in [0, pi].
func AngleBetween(a, b v3.Vec) float64 {
	if !Valid(a) || !Valid(b) {
		return 0
	}
	c := a.Dot(b) / (a.Length() * b.Length())
	return math.Acos(math.Max(-1, math.Min(1, c)))
}

// OnPlane reports whether p lies on the plane through origin with normal n.
func OnPlane(p, origin, n v3.Vec) bool {
	if !Valid(n) {
		return false
	}
	return math.Abs(p.Sub(origin).Dot(n.Normalize())) <= Tolerance
}

// Axes returns the in-plane x and y axes for normal n using the arbitrary
// axis algorithm. Both are zero when n is degenerate.
func Axes(n v3.Vec) (x, y v3.Vec) {
	if !Valid(n) {
		return v3.Vec{}, v3.Vec{}
	}
	n = n.Normalize()
	if math.Abs(n.X) < arbitraryAxisLimit && math.Abs(n.Y) < arbitraryAxisLimit {
		x = v3.Vec{Y: 1}.Cross(n)
	} else {
		x = v3.Vec{Z: 1}.Cross(n)
	}
	x = x.Normalize()
	y = n.Cross(x).Normalize()
	return x, y
}

// newellNormal computes the unit normal of a polygon with Newell's method.
// Counter-clockwise loops (seen from the normal) give a positive normal.
func newellNormal(vs []v3.Vec) v3.Vec {
	var n v3.Vec
	for i := range vs {
		a := vs[i]
		b := vs[(i+1)%len(vs)]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	if n.Length() < Tolerance*Tolerance || !Finite(n) {
		return v3.Vec{}
	}
	return n.Normalize()
}
