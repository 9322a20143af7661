// Package flatten turns the selected faces of a scene into 2D outlines.
//
// The pipeline runs in fixed stages: Group finds connected coplanar faces
// and attaches orphan edges, Flatten projects each group into the frame of
// its reference face and tags every segment, Locate assigns text
// annotations to the faces they sit on, and Layout converts units and
// stacks the groups on one page.
//
// All traversal orders are significant. Selection order decides group
// order, group order and member order decide which face claims an orphan
// edge or an annotation first.
package flatten

import (
	"github.com/chazu/facecut/pkg/kernel"
	"github.com/chazu/facecut/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Host is the read-only scene query surface the pipeline consumes.
// *scene.Scene implements it.
type Host interface {
	Node(id scene.NodeID) *scene.Node
	Children(n *scene.Node) []scene.NodeID
	TopLevel() []scene.NodeID
	Selection() []scene.Ref
	// Connected returns the faces reachable from face through shared edges,
	// face itself first.
	Connected(face scene.Ref) []scene.Ref
	// ClassifyPoint classifies p, in the face's own space, against the face.
	ClassifyPoint(face scene.NodeID, p v3.Vec) kernel.PointClass
	Units() scene.Unit
}

var _ Host = (*scene.Scene)(nil)

// Options controls which entities take part in flattening and how the page
// is laid out.
type Options struct {
	ExportHidden  bool       // include hidden entities and hidden edges
	ExportOrphans bool       // attach free edges lying on grouped faces
	Unit          scene.Unit // output unit
	Border        float64    // page border and group spacing, mm
}

func faceOf(h Host, id scene.NodeID) (scene.FaceData, bool) {
	n := h.Node(id)
	if n == nil || n.Kind != scene.NodeFace {
		return scene.FaceData{}, false
	}
	f, ok := n.Data.(scene.FaceData)
	return f, ok
}

func edgeOf(h Host, id scene.NodeID) (scene.EdgeData, bool) {
	n := h.Node(id)
	if n == nil || n.Kind != scene.NodeEdge {
		return scene.EdgeData{}, false
	}
	e, ok := n.Data.(scene.EdgeData)
	return e, ok
}
