// Package kernel defines the abstract geometry kernel interface used to
// classify points against planar face regions. Implementations (sdfx)
// provide the in-plane region queries behind this interface so the scene
// package never depends on a particular geometry backend.
package kernel

import v2 "github.com/deadsy/sdfx/vec/v2"

// PointClass is the result of classifying a point against a face.
type PointClass int

const (
	PointUnknown    PointClass = iota // classification failed
	PointInside                       // strictly inside the face region
	PointOnVertex                     // coincident with a loop vertex
	PointOnEdge                       // on a loop edge
	PointOutside                      // coplanar but outside the region
	PointNotOnPlane                   // off the face's plane
)

func (c PointClass) String() string {
	switch c {
	case PointUnknown:
		return "unknown"
	case PointInside:
		return "inside"
	case PointOnVertex:
		return "vertex"
	case PointOnEdge:
		return "edge"
	case PointOutside:
		return "outside"
	case PointNotOnPlane:
		return "not-on-plane"
	default:
		return "unknown"
	}
}

// OnFace reports whether the class places the point on the face: a vertex,
// an edge or the interior.
func (c PointClass) OnFace() bool {
	return c == PointInside || c == PointOnVertex || c == PointOnEdge
}

// Region is an opaque handle to a planar region (an outer loop minus holes)
// expressed in the face's own 2D frame.
type Region interface {
	// Distance returns the signed distance from p to the region boundary:
	// negative inside, positive outside, zero on the boundary.
	Distance(p v2.Vec) float64
}

// Kernel builds regions from polygon loops.
type Kernel interface {
	Region(outer []v2.Vec, holes [][]v2.Vec) (Region, error)
}
