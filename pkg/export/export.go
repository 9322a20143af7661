// Package export runs a scene through flattening and writes the result to
// disk.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/chazu/facecut/pkg/config"
	"github.com/chazu/facecut/pkg/flatten"
	"github.com/chazu/facecut/pkg/laserfont"
	"github.com/chazu/facecut/pkg/render"
	"github.com/chazu/facecut/pkg/scene"
)

var (
	ErrEmptySelection = errors.New("export: selection contains no faces")
	ErrOutputExists   = errors.New("export: output file exists")
	ErrInvalidScene   = errors.New("export: scene is invalid")
)

// Result describes a finished export.
type Result struct {
	Path        string
	Format      string
	Page        *flatten.Page
	Groups      int
	Orphans     int
	Unresolved  int // orphan edges left out
	Claimed     int // annotations placed on the page
	Annotations int // annotations collected
	Warnings    []scene.ValidationError
}

// Exporter writes scenes using one configuration.
type Exporter struct {
	cfg    config.Config
	logger *log.Logger

	// launch starts the post-export editor. Replaced in tests.
	launch func(name string, args ...string) error
}

// New returns an exporter for cfg. A nil logger uses log.Default().
func New(cfg config.Config, logger *log.Logger) *Exporter {
	if logger == nil {
		logger = log.Default()
	}
	return &Exporter{cfg: cfg, logger: logger, launch: startProcess}
}

// Options returns the flattening options derived from the configuration.
func (e *Exporter) Options() flatten.Options {
	return flatten.Options{
		ExportHidden:  e.cfg.ExportHidden,
		ExportOrphans: e.cfg.ExportOrphans,
		Unit:          scene.Unit(e.cfg.Unit),
		Border:        e.cfg.Border,
	}
}

// Export validates s, flattens its selection and writes the drawing to the
// configured output. The output is replaced atomically; on failure nothing
// is left behind.
func (e *Exporter) Export(ctx context.Context, s *scene.Scene) (*Result, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("export: config: %w", err)
	}

	issues := scene.Validate(s)
	var warnings []scene.ValidationError
	var errs []error
	for _, v := range issues {
		if v.Severity == scene.SeverityError {
			errs = append(errs, v)
			continue
		}
		warnings = append(warnings, v)
		e.logger.Warn(v.Message, "node", v.NodeID)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScene, errors.Join(errs...))
	}

	opts := e.Options()
	if !flatten.ContainsFace(s, opts) {
		return nil, ErrEmptySelection
	}

	path := e.cfg.Output
	if !e.cfg.Force {
		if _, err := os.Stat(path); err == nil {
			return nil, fmt.Errorf("%w: %s", ErrOutputExists, path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("export: %w", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	run := flatten.Run(s, opts)
	res := &Result{
		Path:        path,
		Format:      e.cfg.ResolvedFormat(),
		Page:        run.Page,
		Groups:      len(run.Groups),
		Orphans:     run.Orphans(),
		Unresolved:  len(run.Unresolved),
		Claimed:     run.Claimed(),
		Annotations: run.Annotations,
		Warnings:    warnings,
	}
	e.logger.Info("flattened",
		"groups", res.Groups,
		"orphans", res.Orphans,
		"annotations", fmt.Sprintf("%d/%d", res.Claimed, res.Annotations),
	)
	for _, r := range run.Unresolved {
		e.logger.Debug("orphan edge lies on no grouped face", "edge", r)
	}
	if n := res.Annotations - res.Claimed; n > 0 {
		e.logger.Debug("annotations outside every face", "count", n)
	}

	ropts, err := e.renderOptions()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := writeAtomic(path, func(tmp *os.File) error {
		if res.Format == config.FormatDXF {
			return render.DXF(tmp.Name(), run.Page, ropts)
		}
		var buf bytes.Buffer
		if err := render.SVG(&buf, run.Page, ropts); err != nil {
			return err
		}
		_, err := tmp.Write(buf.Bytes())
		return err
	}); err != nil {
		return nil, err
	}
	e.logger.Info("wrote drawing", "path", path, "format", res.Format,
		"size", fmt.Sprintf("%.4gx%.4g%s", run.Page.Width, run.Page.Height, run.Page.Unit))

	e.openEditor(path)
	return res, nil
}

func (e *Exporter) renderOptions() (render.Options, error) {
	ropts := render.FromConfig(e.cfg)
	ropts.Description = "facecut " + filepath.Base(e.cfg.Output)
	if e.cfg.ExportAnnotations && e.cfg.AnnotationMode == config.AnnotationLaser {
		f, err := LoadFont(e.cfg.Font)
		if err != nil {
			return render.Options{}, err
		}
		ropts.Font = f
	}
	return ropts, nil
}

// LoadFont returns a built-in font by name, or reads a font file.
func LoadFont(name string) (*laserfont.Font, error) {
	if laserfont.Builtin(name) {
		return laserfont.New(name)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("export: font: %w", err)
	}
	f, err := laserfont.Load(data)
	if err != nil {
		return nil, fmt.Errorf("export: font %s: %w", name, err)
	}
	return f, nil
}

// writeAtomic lets write fill a temporary file next to path and renames it
// over path once it is complete.
func writeAtomic(path string, write func(tmp *os.File) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	name := tmp.Name()
	fail := func(err error) error {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("export: write %s: %w", path, err)
	}

	if err := write(tmp); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return fmt.Errorf("export: %w", err)
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("export: rename: %w", err)
	}
	return nil
}

// openEditor starts the configured editor on path without waiting for it.
// The editor setting may carry arguments.
func (e *Exporter) openEditor(path string) {
	fields := strings.Fields(e.cfg.Editor)
	if len(fields) == 0 {
		return
	}
	args := append(fields[1:], path)
	if err := e.launch(fields[0], args...); err != nil {
		e.logger.Warn("could not start editor", "editor", fields[0], "err", err)
		return
	}
	e.logger.Debug("started editor", "editor", fields[0])
}
