// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"fmt"

	"github.com/chazu/facecut/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// sdfxRegion wraps an sdf.SDF2 to implement kernel.Region.
type sdfxRegion struct {
	s sdf.SDF2
}

// Distance evaluates the signed distance field at p.
func (r *sdfxRegion) Distance(p v2.Vec) float64 {
	return r.s.Evaluate(p)
}

// SdfxKernel implements kernel.Kernel using sdfx 2D polygons.
type SdfxKernel struct{}

// New returns a new SdfxKernel.
func New() *SdfxKernel {
	return &SdfxKernel{}
}

// Region builds the outer polygon and subtracts the union of the holes.
func (k *SdfxKernel) Region(outer []v2.Vec, holes [][]v2.Vec) (kernel.Region, error) {
	if len(outer) < 3 {
		return nil, fmt.Errorf("sdfx: outer loop has %d vertices, need at least 3", len(outer))
	}
	s, err := sdf.Polygon2D(outer)
	if err != nil {
		return nil, fmt.Errorf("sdfx.Polygon2D: %w", err)
	}

	var cut []sdf.SDF2
	for i, h := range holes {
		if len(h) < 3 {
			continue
		}
		hs, err := sdf.Polygon2D(h)
		if err != nil {
			return nil, fmt.Errorf("sdfx.Polygon2D hole %d: %w", i, err)
		}
		cut = append(cut, hs)
	}
	if len(cut) > 0 {
		s = sdf.Difference2D(s, sdf.Union2D(cut...))
	}
	return &sdfxRegion{s: s}, nil
}
