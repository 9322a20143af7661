package flatten

import (
	"github.com/chazu/facecut/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// TextRecord is one text annotation and its claim state. A record is
// claimed at most once.
type TextRecord struct {
	Ref    scene.Ref
	Text   string
	Anchor v3.Vec // world space
	Vector v3.Vec // world space leader direction

	Used   bool
	Group  int     // owning group index once used
	Member int     // owning member index once used
	X, Y   float64 // insertion point once used
}

// Claims is the ordered claim table passed through the pipeline.
type Claims []*TextRecord

// Claimed returns the used records in table order.
func (c Claims) Claimed() []*TextRecord {
	var out []*TextRecord
	for _, r := range c {
		if r.Used {
			out = append(out, r)
		}
	}
	return out
}

// CollectText builds the claim table from every text node reachable from
// the scene roots, not only the selection. Hidden text and text under hidden
// containers is collected too.
func CollectText(h Host, opts Options) Claims {
	opts.ExportHidden = true
	roots := h.TopLevel()
	refs := make([]scene.Ref, len(roots))
	for i, id := range roots {
		refs[i] = scene.Ref{ID: id}
	}

	var claims Claims
	visit(h, refs, opts, func(r scene.Ref, n *scene.Node) {
		d, ok := n.Data.(scene.TextData)
		if !ok {
			return
		}
		m := ComposeToRoot(h, r)
		anchor := m.MulPosition(d.Point)
		claims = append(claims, &TextRecord{
			Ref:    r,
			Text:   d.Text,
			Anchor: anchor,
			Vector: m.MulPosition(d.Point.Add(d.Vector)).Sub(anchor),
		})
	})
	return claims
}

// Locate lets every face member of every group, in order, claim the unused
// records whose anchors lie on it. The insertion point is projected with
// the group's reference face and stored in millimeters.
func Locate(h Host, claims Claims, groups []FaceGroup) {
	unit := h.Units()
	for gi, g := range groups {
		if len(g.Members) == 0 {
			continue
		}
		refRef := g.Members[0]
		refFace, _ := faceOf(h, refRef.ID)

		for mi, m := range g.Members {
			if _, ok := faceOf(h, m.ID); !ok {
				continue
			}
			inv := ComposeToRoot(h, m).Inverse()
			toRef := relocate(h, m, refRef)

			for _, rec := range claims {
				if rec.Used {
					continue
				}
				local := inv.MulPosition(rec.Anchor)
				if !h.ClassifyPoint(m.ID, local).OnFace() {
					continue
				}
				if toRef != nil {
					local = toRef.MulPosition(local)
				}
				p := Project(local, refFace)
				rec.Used = true
				rec.Group, rec.Member = gi, mi
				rec.X, rec.Y = unit.ToMM(p.X), unit.ToMM(p.Y)
			}
		}
	}
}
