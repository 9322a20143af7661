package flatten

import "github.com/chazu/facecut/pkg/scene"

// MMToInch converts millimeters to inches.
const MMToInch = 0.0393700787

// Page is the laid out drawing in output units.
type Page struct {
	Unit   scene.Unit
	Scale  float64 // output units per millimeter
	Border float64 // output units
	Width  float64
	Height float64
	Groups []FlatGroup
	Text   []*TextRecord // claimed records, insertion points in page space
}

// Length converts a millimeter length to output units.
func (p *Page) Length(mm float64) float64 {
	return mm * p.Scale
}

// Layout converts units and stacks groups vertically in order, each offset
// so its bounding box starts one border from the left edge and one border
// below the previous group. Groups and claimed records are updated in
// place.
func Layout(groups []FlatGroup, claims Claims, opts Options) *Page {
	page := &Page{Unit: opts.Unit, Scale: 1}
	if opts.Unit == scene.UnitInch {
		page.Scale = MMToInch
	} else {
		page.Unit = scene.UnitMillimeter
	}
	s := page.Scale
	border := opts.Border * s
	page.Border = border

	var running, maxX, maxY float64
	for gi := range groups {
		g := &groups[gi]
		if g.BBox.Empty() {
			continue
		}

		if s != 1 {
			for mi := range g.Members {
				for li := range g.Members[mi].Loops {
					pts := g.Members[mi].Loops[li].Points
					for k := range pts {
						pts[k].X *= s
						pts[k].Y *= s
					}
				}
			}
			g.BBox.MinX *= s
			g.BBox.MinY *= s
			g.BBox.MaxX *= s
			g.BBox.MaxY *= s
		}

		dx := border - g.BBox.MinX
		dy := border - g.BBox.MinY + running
		for mi := range g.Members {
			for li := range g.Members[mi].Loops {
				pts := g.Members[mi].Loops[li].Points
				for k := range pts {
					pts[k].X += dx
					pts[k].Y += dy
				}
			}
		}
		for _, rec := range claims {
			if rec.Used && rec.Group == gi {
				rec.X = rec.X*s + dx
				rec.Y = rec.Y*s + dy
			}
		}

		running += g.BBox.Height() + border
		g.BBox.MinX += dx
		g.BBox.MaxX += dx
		g.BBox.MinY += dy
		g.BBox.MaxY += dy
		if g.BBox.MaxX > maxX {
			maxX = g.BBox.MaxX
		}
		if g.BBox.MaxY > maxY {
			maxY = g.BBox.MaxY
		}
	}

	page.Width = maxX + border
	page.Height = maxY + border
	page.Groups = groups
	page.Text = claims.Claimed()
	return page
}
