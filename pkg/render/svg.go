package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/chazu/facecut/pkg/config"
	"github.com/chazu/facecut/pkg/flatten"
	"zappem.net/pub/graphics/svgof"
)

var textEscaper = strings.NewReplacer(`&`, "&amp;", `"`, "&quot;", `<`, "&lt;", `>`, "&gt;")

// EscapeText escapes the characters that may not appear raw in SVG text.
func EscapeText(s string) string {
	return textEscaper.Replace(s)
}

// SVG writes page as an SVG document sized in the page unit.
func SVG(w io.Writer, page *flatten.Page, opts Options) error {
	if opts.Annotations && opts.AnnotationMode == config.AnnotationLaser && opts.Font == nil {
		return ErrNoFont
	}

	ew := &errWriter{w: w}
	canvas := svgof.New(ew)
	canvas.Decimals = 4
	canvas.StartviewUnit(page.Width, page.Height, string(page.Unit), 0, 0, page.Width, page.Height)
	if opts.Description != "" {
		canvas.Desc(opts.Description)
	}

	face := 0
	for _, g := range page.Groups {
		for _, m := range g.Members {
			if opts.ShapeMode == config.ShapeLines {
				writeLines(canvas, page, m, face, opts)
			} else {
				writePaths(canvas, page, m, face, opts)
			}
			face++
		}
	}

	if opts.Annotations && len(page.Text) > 0 {
		var err error
		if opts.AnnotationMode == config.AnnotationLaser {
			err = writeVectorText(canvas, page, opts)
		} else {
			writeLiteralText(ew, page, opts)
		}
		if err != nil {
			return err
		}
	}

	canvas.End()
	if ew.err != nil {
		return fmt.Errorf("render: svg: %w", ew.err)
	}
	return nil
}

func strokeAttrs(page *flatten.Page, s config.Stroke) []string {
	return []string{
		`fill="none"`,
		fmt.Sprintf(`stroke="%s"`, s.Hex()),
		fmt.Sprintf(`stroke-width="%s"`, num(page.Length(s.Width))),
	}
}

// writeLines emits one line element per enabled, non-dropped segment.
func writeLines(canvas *svgof.SVG, page *flatten.Page, m flatten.Member, face int, opts Options) {
	type seg struct {
		a, b flatten.Point
		l    layer
	}
	var segs []seg
	for _, loop := range m.Loops {
		eachSegment(loop, func(a, b flatten.Point) {
			if l, ok := opts.layerFor(a.Tag); ok {
				segs = append(segs, seg{a, b, l})
			}
		})
	}
	if len(segs) == 0 {
		return
	}
	canvas.Group(fmt.Sprintf(`id="face%d"`, face), `fill="none"`)
	for _, s := range segs {
		canvas.Line(s.a.X, s.a.Y, s.b.X, s.b.Y, strokeAttrs(page, s.l.stroke)[1:]...)
	}
	canvas.Gend()
}

// writePaths emits one path per enabled layer. Segments of other tags
// become move commands, so a path may be broken into pieces.
func writePaths(canvas *svgof.SVG, page *flatten.Page, m flatten.Member, face int, opts Options) {
	for _, l := range opts.layers() {
		d, ok := pathData(m, l.tag)
		if !ok {
			continue
		}
		attrs := append([]string{fmt.Sprintf(`id="face%d-%s"`, face, l.suffix)}, strokeAttrs(page, l.stroke)...)
		canvas.Path(d, attrs...)
	}
}

// pathData builds the path for segments tagged tag. ok is false when no
// segment is drawn.
func pathData(m flatten.Member, tag flatten.Tag) (string, bool) {
	var sb strings.Builder
	drew := false
	cmd := func(c string, p flatten.Point) {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(c)
		sb.WriteByte(' ')
		sb.WriteString(num(p.X))
		sb.WriteByte(' ')
		sb.WriteString(num(p.Y))
	}
	for _, loop := range m.Loops {
		pts := loop.Points
		if len(pts) == 0 {
			continue
		}
		cmd("M", pts[0])
		for j := 1; j < len(pts); j++ {
			if pts[j-1].Tag == tag {
				cmd("L", pts[j])
				drew = true
			} else {
				cmd("M", pts[j])
			}
		}
		if loop.Closed && len(pts) > 1 && pts[len(pts)-1].Tag == tag {
			cmd("L", pts[0])
			drew = true
		}
	}
	return sb.String(), drew
}

// writeLiteralText emits text elements with one tspan per line.
func writeLiteralText(w io.Writer, page *flatten.Page, opts Options) {
	h := num(page.Length(opts.AnnotationHeight))
	s := opts.Styles.Annotation
	fmt.Fprintf(w, `<g id="text_annotations" font-size="%s" stroke="%s" stroke-width="%s">`+"\n",
		h, s.Hex(), num(page.Length(s.Width)))
	for _, rec := range page.Text {
		x, y := num(rec.X), num(rec.Y)
		fmt.Fprintf(w, `<text style="fill:none" x="%s" y="%s">`, x, y)
		for i, line := range strings.Split(rec.Text, "\n") {
			if i == 0 {
				fmt.Fprintf(w, `<tspan dy="%s">%s</tspan>`, h, EscapeText(line))
			} else {
				fmt.Fprintf(w, `<tspan x="%s" dy="%s">%s</tspan>`, x, h, EscapeText(line))
			}
		}
		fmt.Fprint(w, "</text>\n")
	}
	fmt.Fprint(w, "</g>\n")
}

// writeVectorText emits each annotation as font outlines scaled so the
// font's reference height matches the annotation height.
func writeVectorText(canvas *svgof.SVG, page *flatten.Page, opts Options) error {
	h := page.Length(opts.AnnotationHeight)
	s := opts.Styles.Annotation
	canvas.Group(`id="text_annotations"`)
	for i, rec := range page.Text {
		d, ref, err := opts.Font.RenderText(rec.Text)
		if err != nil {
			return fmt.Errorf("render: annotation %d: %w", i, err)
		}
		if d == "" || ref <= 0 {
			continue
		}
		scale := h / ref
		canvas.Path(d,
			fmt.Sprintf(`transform="translate(%s,%s) scale(%s)"`, num(rec.X), num(rec.Y), formatScale(scale)),
			`fill="none"`,
			fmt.Sprintf(`stroke="%s"`, s.Hex()),
			fmt.Sprintf(`stroke-width="%s"`, formatScale(page.Length(s.Width)/scale)),
		)
	}
	canvas.Gend()
	return nil
}

// formatScale formats scale factors with more precision than
// coordinates.
func formatScale(v float64) string {
	return fmt.Sprintf("%.6g", v)
}
