// Package render serializes a laid out page as SVG or DXF.
package render

import (
	"errors"
	"io"
	"math"
	"strconv"

	"github.com/chazu/facecut/pkg/config"
	"github.com/chazu/facecut/pkg/flatten"
)

// ErrNoFont is returned when vector annotations are requested without a
// font renderer.
var ErrNoFont = errors.New("render: laser annotations need a font")

// FontRenderer turns text into path data drawn at a reference height.
// *laserfont.Font implements it.
type FontRenderer interface {
	RenderText(s string) (path string, refHeight float64, err error)
}

// Options selects layers and styles. Lengths are millimeters.
type Options struct {
	ShapeMode        string // config.ShapeLines or config.ShapePaths
	Outlines         bool
	Internal         bool
	Orphans          bool
	Annotations      bool
	AnnotationMode   string  // config.AnnotationSVG or config.AnnotationLaser
	AnnotationHeight float64 // mm
	Styles           config.Styles
	Font             FontRenderer
	Description      string
}

// FromConfig copies the rendering settings out of cfg.
func FromConfig(cfg config.Config) Options {
	return Options{
		ShapeMode:        cfg.ShapeMode,
		Outlines:         cfg.ExportOutlines,
		Internal:         cfg.ExportInternal,
		Orphans:          cfg.ExportOrphans,
		Annotations:      cfg.ExportAnnotations,
		AnnotationMode:   cfg.AnnotationMode,
		AnnotationHeight: cfg.AnnotationHeight,
		Styles:           cfg.Styles,
	}
}

// layer is one output layer: the segments of a single tag.
type layer struct {
	tag    flatten.Tag
	suffix string // path id suffix
	dxf    string // DXF layer name
	stroke config.Stroke
}

// layers returns the enabled layers in output order.
func (o Options) layers() []layer {
	var out []layer
	if o.Outlines {
		out = append(out, layer{flatten.TagBoundary, "cut", "CUT", o.Styles.Outline})
	}
	if o.Internal {
		out = append(out, layer{flatten.TagEtch, "interior", "ETCH", o.Styles.Etch})
	}
	if o.Orphans {
		out = append(out, layer{flatten.TagOrphan, "orphan", "ORPHAN", o.Styles.Orphan})
	}
	return out
}

func (o Options) layerFor(tag flatten.Tag) (layer, bool) {
	for _, l := range o.layers() {
		if l.tag == tag {
			return l, true
		}
	}
	return layer{}, false
}

// eachSegment calls fn for every segment of a loop: consecutive point
// pairs, plus last to first when the loop is closed.
func eachSegment(l flatten.Loop, fn func(a, b flatten.Point)) {
	n := len(l.Points)
	for k := 0; k+1 < n; k++ {
		fn(l.Points[k], l.Points[k+1])
	}
	if l.Closed && n > 1 {
		fn(l.Points[n-1], l.Points[0])
	}
}

func num(v float64) string {
	v = math.Round(v*1e4) / 1e4
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// errWriter remembers the first write error.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}
