package flatten

import "github.com/chazu/facecut/pkg/scene"

// Result summarizes one pipeline run.
type Result struct {
	Page        *Page
	Groups      []FaceGroup
	Unresolved  []scene.Ref // orphan edges lying on no grouped face
	Annotations int         // text records collected
}

// Claimed returns the number of annotations placed on a face.
func (r *Result) Claimed() int {
	return len(r.Page.Text)
}

// Orphans returns the number of attached orphan edges.
func (r *Result) Orphans() int {
	n := 0
	for _, g := range r.Page.Groups {
		for _, m := range g.Members {
			if m.Kind == scene.NodeEdge {
				n++
			}
		}
	}
	return n
}

// Run executes the whole pipeline: group, flatten, locate text and lay out
// the page. The scene is never modified.
func Run(h Host, opts Options) *Result {
	groups, unresolved := Group(h, opts)

	flat := make([]FlatGroup, len(groups))
	for i, g := range groups {
		flat[i] = Flatten(h, g, opts)
	}

	claims := CollectText(h, opts)
	Locate(h, claims, groups)

	return &Result{
		Page:        Layout(flat, claims, opts),
		Groups:      groups,
		Unresolved:  unresolved,
		Annotations: len(claims),
	}
}
