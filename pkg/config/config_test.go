package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "facecut.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Unit != "in" || cfg.Border != 10 || cfg.ShapeMode != ShapePaths {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if !cfg.ExportOutlines || !cfg.ExportInternal || !cfg.ExportOrphans || cfg.ExportAnnotations || cfg.ExportHidden {
		t.Errorf("unexpected default flags: %+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
output = "out.dxf"
unit = "mm"
border = 5.5
export_orphans = false

[style.etch]
color = "#00AA00"
width = 0.2
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Output != "out.dxf" || cfg.Unit != "mm" || cfg.Border != 5.5 || cfg.ExportOrphans {
		t.Errorf("values not loaded: %+v", cfg)
	}
	if cfg.Styles.Etch.Hex() != "#00AA00" || cfg.Styles.Etch.Width != 0.2 {
		t.Errorf("etch style = %+v", cfg.Styles.Etch)
	}
	if cfg.Styles.Outline.Hex() != "#0000FF" {
		t.Errorf("untouched outline style lost its default: %+v", cfg.Styles.Outline)
	}
	if cfg.ResolvedFormat() != FormatDXF {
		t.Errorf("format = %q, want dxf from extension", cfg.ResolvedFormat())
	}
}

func TestLoadUnknownKey(t *testing.T) {
	path := writeFile(t, "bordr = 3\n")
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "bordr") {
		t.Errorf("error = %v, want unknown key bordr", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Unit = "mm"
	cfg.ShapeMode = ShapeLines
	cfg.Styles.Orphan.Width = 0.35
	cfg.Force = true

	var buf bytes.Buffer
	if err := cfg.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "Force") || strings.Contains(buf.String(), "force") {
		t.Errorf("force flag must not be written:\n%s", buf.String())
	}

	got, err := Load(writeFile(t, buf.String()))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cfg.Force = false
	if got != cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unit", func(c *Config) { c.Unit = "ft" }, "unit"},
		{"shape", func(c *Config) { c.ShapeMode = "arcs" }, "shape mode"},
		{"annotation mode", func(c *Config) { c.AnnotationMode = "braille" }, "annotation mode"},
		{"height", func(c *Config) { c.AnnotationHeight = 0 }, "annotation height"},
		{"border", func(c *Config) { c.Border = -1 }, "border"},
		{"format", func(c *Config) { c.Format = "pdf" }, "format"},
		{"color", func(c *Config) { c.Styles.Outline.Color = "blue" }, "outline color"},
		{"width", func(c *Config) { c.Styles.Annotation.Width = 0 }, "annotation width"},
		{"output", func(c *Config) { c.Output = "" }, "output"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestResolvedFormat(t *testing.T) {
	tests := []struct {
		output, format, want string
	}{
		{"a.svg", "", FormatSVG},
		{"a.DXF", "", FormatDXF},
		{"a.txt", "", FormatSVG},
		{"a.svg", "DXF", FormatDXF},
	}
	for _, tt := range tests {
		c := Config{Output: tt.output, Format: tt.format}
		if got := c.ResolvedFormat(); got != tt.want {
			t.Errorf("ResolvedFormat(%q, %q) = %q, want %q", tt.output, tt.format, got, tt.want)
		}
	}
}
