package export

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/chazu/facecut/pkg/config"
	"github.com/chazu/facecut/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func squareScene(t *testing.T) *scene.Scene {
	t.Helper()
	b := scene.NewBuilder()
	b.SetUnit(scene.UnitMillimeter)
	b.Face([]v3.Vec{{X: 0}, {X: 40}, {X: 40, Y: 40}, {Y: 40}})
	s, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return s
}

func testConfig(t *testing.T, name string) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Unit = "mm"
	cfg.Output = filepath.Join(t.TempDir(), name)
	return cfg
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return string(data)
}

// entries lists the files in dir.
func entries(t *testing.T, dir string) []string {
	t.Helper()
	des, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, de := range des {
		names = append(names, de.Name())
	}
	return names
}

// ---------------------------------------------------------------------------
// Export
// ---------------------------------------------------------------------------

func TestExportSVG(t *testing.T) {
	cfg := testConfig(t, "out.svg")
	res, err := New(cfg, quietLogger()).Export(context.Background(), squareScene(t))
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if res.Groups != 1 || res.Format != config.FormatSVG || res.Path != cfg.Output {
		t.Errorf("result = %+v", res)
	}
	if res.Page.Width != 60 || res.Page.Height != 60 {
		t.Errorf("page = %v x %v, want 60 x 60", res.Page.Width, res.Page.Height)
	}
	out := readFile(t, cfg.Output)
	if !strings.Contains(out, `id="face0-cut"`) || !strings.Contains(out, "</svg>") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if names := entries(t, filepath.Dir(cfg.Output)); len(names) != 1 {
		t.Errorf("directory holds %v, want only the output", names)
	}
}

func TestExportDXFByExtension(t *testing.T) {
	cfg := testConfig(t, "out.dxf")
	res, err := New(cfg, quietLogger()).Export(context.Background(), squareScene(t))
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if res.Format != config.FormatDXF {
		t.Errorf("format = %q, want dxf", res.Format)
	}
	if out := readFile(t, cfg.Output); !strings.Contains(out, "CUT") {
		t.Error("dxf output lacks the CUT layer")
	}
}

func TestExportRefusesOverwrite(t *testing.T) {
	cfg := testConfig(t, "out.svg")
	if err := os.WriteFile(cfg.Output, []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := New(cfg, quietLogger()).Export(context.Background(), squareScene(t))
	if !errors.Is(err, ErrOutputExists) {
		t.Fatalf("error = %v, want ErrOutputExists", err)
	}
	if got := readFile(t, cfg.Output); got != "keep" {
		t.Errorf("existing file changed to %q", got)
	}

	cfg.Force = true
	if _, err := New(cfg, quietLogger()).Export(context.Background(), squareScene(t)); err != nil {
		t.Fatalf("forced Export failed: %v", err)
	}
	if got := readFile(t, cfg.Output); !strings.Contains(got, "<svg") {
		t.Errorf("forced export did not replace the file: %q", got)
	}
}

func TestExportEmptySelection(t *testing.T) {
	b := scene.NewBuilder()
	b.Edge(v3.Vec{}, v3.Vec{X: 1})
	s, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	cfg := testConfig(t, "out.svg")
	if _, err := New(cfg, quietLogger()).Export(context.Background(), s); !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("error = %v, want ErrEmptySelection", err)
	}
	if _, err := os.Stat(cfg.Output); !errors.Is(err, os.ErrNotExist) {
		t.Error("output written for an empty selection")
	}
}

func TestExportInvalidScene(t *testing.T) {
	b := scene.NewBuilder()
	b.Face([]v3.Vec{{X: 0}, {X: 1}})
	s, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	cfg := testConfig(t, "out.svg")
	_, err = New(cfg, quietLogger()).Export(context.Background(), s)
	if !errors.Is(err, ErrInvalidScene) {
		t.Fatalf("error = %v, want ErrInvalidScene", err)
	}
	if !strings.Contains(err.Error(), "fewer than 3 vertices") {
		t.Errorf("error %q does not carry the finding", err)
	}
}

func TestExportInvalidConfig(t *testing.T) {
	cfg := testConfig(t, "out.svg")
	cfg.Unit = "ft"
	if _, err := New(cfg, quietLogger()).Export(context.Background(), squareScene(t)); err == nil {
		t.Fatal("expected config error")
	}
}

func TestExportCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := testConfig(t, "out.svg")
	if _, err := New(cfg, quietLogger()).Export(ctx, squareScene(t)); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestExportUnknownFont(t *testing.T) {
	cfg := testConfig(t, "out.svg")
	cfg.ExportAnnotations = true
	cfg.AnnotationMode = config.AnnotationLaser
	cfg.Font = filepath.Join(t.TempDir(), "missing.ttf")
	if _, err := New(cfg, quietLogger()).Export(context.Background(), squareScene(t)); err == nil {
		t.Fatal("expected font error")
	}
	if _, err := os.Stat(cfg.Output); !errors.Is(err, os.ErrNotExist) {
		t.Error("output written despite the font error")
	}
}

func TestExportLaserAnnotations(t *testing.T) {
	b := scene.NewBuilder()
	b.SetUnit(scene.UnitMillimeter)
	b.Face([]v3.Vec{{X: 0}, {X: 40}, {X: 40, Y: 40}, {Y: 40}})
	b.Text("A", v3.Vec{X: 20, Y: 20}, v3.Vec{Z: 1})
	s, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	cfg := testConfig(t, "out.svg")
	cfg.ExportAnnotations = true
	cfg.AnnotationMode = config.AnnotationLaser
	res, err := New(cfg, quietLogger()).Export(context.Background(), s)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if res.Claimed != 1 {
		t.Errorf("claimed = %d, want 1", res.Claimed)
	}
	if out := readFile(t, cfg.Output); !strings.Contains(out, `transform="translate(`) {
		t.Errorf("no vector annotation in output:\n%s", out)
	}
}

func TestExportLaunchesEditor(t *testing.T) {
	cfg := testConfig(t, "out.svg")
	cfg.Editor = "inkscape --with-gui"

	var gotName string
	var gotArgs []string
	e := New(cfg, quietLogger())
	e.launch = func(name string, args ...string) error {
		gotName, gotArgs = name, args
		return nil
	}
	if _, err := e.Export(context.Background(), squareScene(t)); err != nil {
		t.Fatal(err)
	}
	if gotName != "inkscape" || len(gotArgs) != 2 || gotArgs[0] != "--with-gui" || gotArgs[1] != cfg.Output {
		t.Errorf("launched %q %v", gotName, gotArgs)
	}
}

func TestExportEditorFailureIsNotFatal(t *testing.T) {
	cfg := testConfig(t, "out.svg")
	cfg.Editor = "missing-editor"
	e := New(cfg, quietLogger())
	e.launch = func(string, ...string) error { return errors.New("not found") }
	if _, err := e.Export(context.Background(), squareScene(t)); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Atomic writes
// ---------------------------------------------------------------------------

func TestWriteAtomicFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.svg")
	err := writeAtomic(path, func(tmp *os.File) error {
		tmp.WriteString("partial")
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if names := entries(t, dir); len(names) != 0 {
		t.Errorf("directory holds %v after a failed write", names)
	}
}

func TestWriteAtomicMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "out.svg")
	if err := writeAtomic(path, func(*os.File) error { return nil }); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestLoadFont(t *testing.T) {
	if _, err := LoadFont("gomono"); err != nil {
		t.Errorf("LoadFont(gomono): %v", err)
	}
	garbage := filepath.Join(t.TempDir(), "bad.ttf")
	if err := os.WriteFile(garbage, []byte("not a font"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFont(garbage); err == nil {
		t.Error("LoadFont accepted garbage")
	}
}
