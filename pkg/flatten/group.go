package flatten

import (
	"slices"

	"github.com/chazu/facecut/pkg/scene"
)

// FaceGroup is an ordered set of connected coplanar selected faces followed
// by the orphan edges attached to them. Members[0] is the reference face.
type FaceGroup struct {
	Members []scene.Ref
}

// selection is the flattened view of the user's selection.
type selection struct {
	faces   []scene.Ref
	orphans []scene.Ref
	faceSet map[string]bool
}

// collectSelection walks the selection in order, descending into groups and
// instances. Hidden nodes are skipped unless opts.ExportHidden is set. A
// container already on a ref's own path is not entered again.
func collectSelection(h Host, opts Options) selection {
	sel := selection{faceSet: make(map[string]bool)}
	visit(h, h.Selection(), opts, func(r scene.Ref, n *scene.Node) {
		switch n.Kind {
		case scene.NodeFace:
			if !sel.faceSet[r.Key()] {
				sel.faceSet[r.Key()] = true
				sel.faces = append(sel.faces, r)
			}
		case scene.NodeEdge:
			if e, ok := n.Data.(scene.EdgeData); ok && len(e.Faces) == 0 {
				sel.orphans = append(sel.orphans, r)
			}
		}
	})
	return sel
}

// visit calls fn for every leaf reachable from refs, depth first in order.
func visit(h Host, refs []scene.Ref, opts Options, fn func(scene.Ref, *scene.Node)) {
	stack := make([]scene.Ref, 0, len(refs))
	for i := len(refs) - 1; i >= 0; i-- {
		stack = append(stack, refs[i])
	}
	for len(stack) > 0 {
		r := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := h.Node(r.ID)
		if n == nil || (n.Hidden && !opts.ExportHidden) {
			continue
		}
		if !n.Kind.IsContainer() {
			fn(r, n)
			continue
		}
		if slices.Contains(r.Path, r.ID) {
			continue
		}
		children := h.Children(n)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, r.Child(children[i]))
		}
	}
}

// ContainsFace reports whether the selection reaches at least one face.
func ContainsFace(h Host, opts Options) bool {
	return len(collectSelection(h, opts).faces) > 0
}

// Group partitions the selected faces into face groups and attaches orphan
// edges when opts.ExportOrphans is set. Orphan edges that lie on no grouped
// face are returned as unresolved.
func Group(h Host, opts Options) ([]FaceGroup, []scene.Ref) {
	sel := collectSelection(h, opts)

	var groups []FaceGroup
	grouped := make(map[string]bool)
	for _, f := range sel.faces {
		if grouped[f.Key()] {
			continue
		}
		grouped[f.Key()] = true
		g := FaceGroup{Members: []scene.Ref{f}}

		ref, ok := faceOf(h, f.ID)
		if ok {
			for _, c := range h.Connected(f) {
				k := c.Key()
				if grouped[k] || !sel.faceSet[k] {
					continue
				}
				cf, ok := faceOf(h, c.ID)
				if !ok || !scene.Parallel(cf.Normal, ref.Normal) || !scene.OnPlane(cf.Origin(), ref.Origin(), ref.Normal) {
					continue
				}
				grouped[k] = true
				g.Members = append(g.Members, c)
			}
		}
		groups = append(groups, g)
	}

	if !opts.ExportOrphans {
		return groups, nil
	}

	var unresolved []scene.Ref
	for _, e := range sel.orphans {
		if !attachOrphan(h, groups, e) {
			unresolved = append(unresolved, e)
		}
	}
	return groups, unresolved
}

// attachOrphan appends e to the first group owning a face that both of e's
// endpoints lie on.
func attachOrphan(h Host, groups []FaceGroup, e scene.Ref) bool {
	ed, ok := edgeOf(h, e.ID)
	if !ok {
		return false
	}
	for gi := range groups {
		for _, m := range groups[gi].Members {
			if _, ok := faceOf(h, m.ID); !ok {
				continue
			}
			a, b := ed.Start, ed.End
			if t := relocate(h, e, m); t != nil {
				a, b = t.MulPosition(a), t.MulPosition(b)
			}
			if h.ClassifyPoint(m.ID, a).OnFace() && h.ClassifyPoint(m.ID, b).OnFace() {
				groups[gi].Members = append(groups[gi].Members, e)
				return true
			}
		}
	}
	return false
}
