// Package laserfont renders text as vector path outlines for cutters that
// cannot rasterize fonts. Outlines come from TrueType glyphs via
// golang.org/x/image/font/sfnt; the Go fonts are built in.
package laserfont

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// emSize is the size, in path units, of one em.
const emSize = 100

// ErrUnknownFont is returned by New for names that are not built in.
var ErrUnknownFont = errors.New("laserfont: unknown font")

var builtin = map[string][]byte{
	"goregular": goregular.TTF,
	"gomono":    gomono.TTF,
	"gobold":    gobold.TTF,
}

// Builtin reports whether name is a built-in font.
func Builtin(name string) bool {
	_, ok := builtin[name]
	return ok
}

// Font renders strings as SVG path data. A Font is not safe for concurrent
// use.
type Font struct {
	f          *sfnt.Font
	buf        sfnt.Buffer
	ppem       fixed.Int26_6
	refHeight  float64
	lineHeight float64
}

// New returns one of the built-in fonts: goregular, gomono or gobold.
func New(name string) (*Font, error) {
	data, ok := builtin[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFont, name)
	}
	return Load(data)
}

// Load parses a TrueType or OpenType font.
func Load(data []byte) (*Font, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("laserfont: parse: %w", err)
	}
	lf := &Font{f: f, ppem: fixed.I(emSize)}

	m, err := f.Metrics(&lf.buf, lf.ppem, font.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("laserfont: metrics: %w", err)
	}
	lf.refHeight = fixedToFloat(m.CapHeight)
	if lf.refHeight <= 0 {
		lf.refHeight = fixedToFloat(m.Ascent)
	}
	lf.lineHeight = fixedToFloat(m.Height)
	if lf.lineHeight <= 0 {
		lf.lineHeight = lf.refHeight * 1.2
	}
	return lf, nil
}

// ReferenceHeight returns the capital letter height in path units.
func (lf *Font) ReferenceHeight() float64 { return lf.refHeight }

// RenderText returns path data for s and the reference height the path is
// drawn at. The path origin is the top left corner: the first baseline
// sits one reference height down and each newline starts a new baseline
// one line height further.
func (lf *Font) RenderText(s string) (string, float64, error) {
	var sb strings.Builder
	for i, line := range strings.Split(s, "\n") {
		baseline := lf.refHeight + float64(i)*lf.lineHeight
		if err := lf.renderLine(&sb, line, baseline); err != nil {
			return "", 0, err
		}
	}
	return strings.TrimSpace(sb.String()), lf.refHeight, nil
}

func (lf *Font) renderLine(sb *strings.Builder, line string, baseline float64) error {
	var x float64
	var prev sfnt.GlyphIndex
	for i, r := range line {
		if r == '\t' {
			r = ' '
		}
		idx, err := lf.f.GlyphIndex(&lf.buf, r)
		if err != nil {
			return fmt.Errorf("laserfont: glyph %q: %w", r, err)
		}
		if i > 0 {
			if k, err := lf.f.Kern(&lf.buf, prev, idx, lf.ppem, font.HintingNone); err == nil {
				x += fixedToFloat(k)
			}
		}

		segs, err := lf.f.LoadGlyph(&lf.buf, idx, lf.ppem, nil)
		if err != nil {
			return fmt.Errorf("laserfont: load glyph %q: %w", r, err)
		}
		writeSegments(sb, segs, x, baseline)

		adv, err := lf.f.GlyphAdvance(&lf.buf, idx, lf.ppem, font.HintingNone)
		if err != nil {
			return fmt.Errorf("laserfont: advance %q: %w", r, err)
		}
		x += fixedToFloat(adv)
		prev = idx
	}
	return nil
}

// writeSegments appends one glyph's contours, offset to (dx, dy). Every
// contour is closed.
func writeSegments(sb *strings.Builder, segs sfnt.Segments, dx, dy float64) {
	open := false
	pt := func(p fixed.Point26_6) {
		sb.WriteString(num(dx + fixedToFloat(p.X)))
		sb.WriteByte(' ')
		sb.WriteString(num(dy + fixedToFloat(p.Y)))
		sb.WriteByte(' ')
	}
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			if open {
				sb.WriteString("Z ")
			}
			sb.WriteString("M ")
			pt(seg.Args[0])
			open = true
		case sfnt.SegmentOpLineTo:
			sb.WriteString("L ")
			pt(seg.Args[0])
		case sfnt.SegmentOpQuadTo:
			sb.WriteString("Q ")
			pt(seg.Args[0])
			pt(seg.Args[1])
		case sfnt.SegmentOpCubeTo:
			sb.WriteString("C ")
			pt(seg.Args[0])
			pt(seg.Args[1])
			pt(seg.Args[2])
		}
	}
	if open {
		sb.WriteString("Z ")
	}
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e4)/1e4, 'f', -1, 64)
}
