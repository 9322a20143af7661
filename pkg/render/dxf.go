package render

import (
	"fmt"

	"github.com/chazu/facecut/pkg/flatten"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	dxfdrawing "github.com/yofu/dxf/drawing"
)

// lineSink is the part of a DXF drawing the serializer writes to.
type lineSink interface {
	AddLayer(name string, c color.ColorNumber) error
	ChangeLayer(name string) error
	Line(x1, y1, x2, y2 float64) error
}

// drawing adapts a yofu/dxf drawing to lineSink.
type drawing struct {
	d *dxfdrawing.Drawing
}

func (w drawing) AddLayer(name string, c color.ColorNumber) error {
	_, err := w.d.AddLayer(name, c, dxf.DefaultLineType, false)
	return err
}

func (w drawing) ChangeLayer(name string) error {
	return w.d.ChangeLayer(name)
}

func (w drawing) Line(x1, y1, x2, y2 float64) error {
	_, err := w.d.Line(x1, y1, 0, x2, y2, 0)
	return err
}

// layerColor maps the SVG layers to AutoCAD color indices.
var layerColor = map[flatten.Tag]color.ColorNumber{
	flatten.TagBoundary: color.Blue,
	flatten.TagEtch:     color.Red,
	flatten.TagOrphan:   color.Green,
}

// DXF writes page as a DXF drawing at path with one layer per enabled line
// kind. The y axis is flipped so the drawing reads the same as the SVG.
// Annotations are not written.
func DXF(path string, page *flatten.Page, opts Options) error {
	d := dxf.NewDrawing()
	if err := writeDXF(drawing{d}, page, opts); err != nil {
		return err
	}
	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("render: dxf: %w", err)
	}
	return nil
}

func writeDXF(sink lineSink, page *flatten.Page, opts Options) error {
	for _, l := range opts.layers() {
		if err := sink.AddLayer(l.dxf, layerColor[l.tag]); err != nil {
			return fmt.Errorf("render: dxf layer %s: %w", l.dxf, err)
		}
	}

	current := ""
	var werr error
	for _, g := range page.Groups {
		for _, m := range g.Members {
			for _, loop := range m.Loops {
				eachSegment(loop, func(a, b flatten.Point) {
					if werr != nil {
						return
					}
					l, ok := opts.layerFor(a.Tag)
					if !ok {
						return
					}
					if l.dxf != current {
						if werr = sink.ChangeLayer(l.dxf); werr != nil {
							return
						}
						current = l.dxf
					}
					werr = sink.Line(a.X, page.Height-a.Y, b.X, page.Height-b.Y)
				})
			}
		}
	}
	if werr != nil {
		return fmt.Errorf("render: dxf: %w", werr)
	}
	return nil
}
