package flatten

import (
	"github.com/chazu/facecut/pkg/scene"
	"github.com/deadsy/sdfx/sdf"
)

// ComposeToRoot returns the product of the transforms of every container on
// r's path, outermost on the left. The node's own transform is not
// included. Identity when no container carries one.
func ComposeToRoot(h Host, r scene.Ref) sdf.M44 {
	m := sdf.Identity3d()
	for _, id := range r.Path {
		if t, ok := localTransform(h.Node(id)); ok {
			m = m.Mul(t)
		}
	}
	return m
}

// localTransform returns the transform a container applies to its
// children. A zero matrix counts as no transform.
func localTransform(n *scene.Node) (sdf.M44, bool) {
	if n == nil {
		return sdf.M44{}, false
	}
	var t sdf.M44
	switch d := n.Data.(type) {
	case scene.GroupData:
		t = d.Transform
	case scene.InstanceData:
		t = d.Transform
	default:
		return sdf.M44{}, false
	}
	if t == (sdf.M44{}) {
		return sdf.M44{}, false
	}
	return t, true
}

// relocate returns the matrix mapping coordinates in from's space into
// to's space. Nil when both share a context.
func relocate(h Host, from, to scene.Ref) *sdf.M44 {
	if from.SameContext(to) {
		return nil
	}
	m := ComposeToRoot(h, to).Inverse().Mul(ComposeToRoot(h, from))
	return &m
}
