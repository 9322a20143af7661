// Package config holds the export settings, their defaults and TOML loading.
//
// All lengths are millimeters regardless of the output unit; the page
// layout converts them together with the geometry.
package config

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// Output formats.
const (
	FormatSVG = "svg"
	FormatDXF = "dxf"
)

// Shape modes.
const (
	ShapeLines = "lines" // one line element per segment
	ShapePaths = "paths" // one path per face and layer
)

// Annotation modes.
const (
	AnnotationSVG   = "svg"   // literal text elements
	AnnotationLaser = "laser" // single stroke vector outlines
)

// Stroke is the style of one output layer.
type Stroke struct {
	Color string  `toml:"color"` // RRGGBB, optional leading #
	Width float64 `toml:"width"` // mm
}

// Hex returns the color with a leading #.
func (s Stroke) Hex() string {
	return "#" + strings.TrimPrefix(s.Color, "#")
}

// Styles groups the per-layer strokes.
type Styles struct {
	Outline    Stroke `toml:"outline"`
	Etch       Stroke `toml:"etch"`
	Orphan     Stroke `toml:"orphan"`
	Annotation Stroke `toml:"annotation"`
}

// Config is the complete export configuration.
type Config struct {
	Output            string  `toml:"output"`
	Format            string  `toml:"format"` // svg, dxf, or empty to follow the output extension
	Border            float64 `toml:"border"` // mm
	Unit              string  `toml:"unit"`   // mm or in
	ExportHidden      bool    `toml:"export_hidden"`
	ExportOutlines    bool    `toml:"export_outlines"`
	ExportInternal    bool    `toml:"export_internal"`
	ExportOrphans     bool    `toml:"export_orphans"`
	ExportAnnotations bool    `toml:"export_annotations"`
	AnnotationHeight  float64 `toml:"annotation_height"` // mm
	AnnotationMode    string  `toml:"annotation_mode"`
	ShapeMode         string  `toml:"shape_mode"`
	Font              string  `toml:"font"`
	Editor            string  `toml:"editor"`
	Styles            Styles  `toml:"style"`

	// Force allows replacing an existing output file. Never read from files.
	Force bool `toml:"-"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Output:            "facecut.svg",
		Border:            10,
		Unit:              "in",
		ExportHidden:      false,
		ExportOutlines:    true,
		ExportInternal:    true,
		ExportOrphans:     true,
		ExportAnnotations: false,
		AnnotationHeight:  10,
		AnnotationMode:    AnnotationSVG,
		ShapeMode:         ShapePaths,
		Font:              "goregular",
		Styles: Styles{
			Outline:    Stroke{Color: "0000FF", Width: 1},
			Etch:       Stroke{Color: "FF0000", Width: 1},
			Orphan:     Stroke{Color: "00FF00", Width: 1},
			Annotation: Stroke{Color: "000000", Width: 1},
		},
	}
}

// Load reads a TOML file over the defaults. Unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("config: %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// Encode writes cfg as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// ResolvedFormat returns the output format, derived from the output file
// extension when Format is empty.
func (c Config) ResolvedFormat() string {
	if c.Format != "" {
		return strings.ToLower(c.Format)
	}
	if strings.EqualFold(filepath.Ext(c.Output), ".dxf") {
		return FormatDXF
	}
	return FormatSVG
}

var hexColor = regexp.MustCompile(`^#?[0-9A-Fa-f]{6}$`)

// Validate checks enumerations and lengths and reports every problem found.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Output != "", "output file is empty")
	check(slices.Contains([]string{FormatSVG, FormatDXF}, c.ResolvedFormat()), "format %q: must be svg or dxf", c.Format)
	check(c.Unit == "mm" || c.Unit == "in", "unit %q: must be mm or in", c.Unit)
	check(c.Border >= 0, "border %v: must not be negative", c.Border)
	check(c.AnnotationHeight > 0, "annotation height %v: must be positive", c.AnnotationHeight)
	check(c.AnnotationMode == AnnotationSVG || c.AnnotationMode == AnnotationLaser,
		"annotation mode %q: must be svg or laser", c.AnnotationMode)
	check(c.ShapeMode == ShapeLines || c.ShapeMode == ShapePaths,
		"shape mode %q: must be lines or paths", c.ShapeMode)

	for _, s := range []struct {
		name string
		st   Stroke
	}{
		{"outline", c.Styles.Outline},
		{"etch", c.Styles.Etch},
		{"orphan", c.Styles.Orphan},
		{"annotation", c.Styles.Annotation},
	} {
		check(hexColor.MatchString(s.st.Color), "%s color %q: must be RRGGBB", s.name, s.st.Color)
		check(s.st.Width > 0, "%s width %v: must be positive", s.name, s.st.Width)
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
