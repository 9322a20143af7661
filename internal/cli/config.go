package cli

import (
	"errors"
	"io/fs"
	"os"

	"github.com/chazu/facecut/pkg/config"
	"github.com/spf13/cobra"
)

// defaultConfigFile is read from the working directory when --config is not
// given.
const defaultConfigFile = "facecut.toml"

// configFlags binds every configuration setting to a flag. Flags the user
// sets override values from the configuration file.
type configFlags struct {
	path   string
	values config.Config
	// apply copies one flag's value into a configuration.
	apply map[string]func(dst *config.Config)
}

func addConfigFlags(cmd *cobra.Command) *configFlags {
	cf := &configFlags{values: config.Default()}
	v := &cf.values
	f := cmd.Flags()

	f.StringVarP(&cf.path, "config", "c", "", "TOML configuration file (default ./"+defaultConfigFile+" when present)")
	f.StringVarP(&v.Output, "output", "o", v.Output, "output file")
	f.StringVarP(&v.Format, "format", "f", v.Format, "output format: svg, dxf (default: from the output extension)")
	f.Float64Var(&v.Border, "border", v.Border, "page border and group spacing in mm")
	f.StringVarP(&v.Unit, "unit", "u", v.Unit, "output unit: mm, in")
	f.BoolVar(&v.ExportHidden, "hidden", v.ExportHidden, "include hidden entities")
	f.BoolVar(&v.ExportOutlines, "outlines", v.ExportOutlines, "draw face outlines")
	f.BoolVar(&v.ExportInternal, "internal", v.ExportInternal, "draw interior edges between coplanar faces")
	f.BoolVar(&v.ExportOrphans, "orphans", v.ExportOrphans, "draw free edges lying on faces")
	f.BoolVar(&v.ExportAnnotations, "annotations", v.ExportAnnotations, "draw text annotations")
	f.Float64Var(&v.AnnotationHeight, "annotation-height", v.AnnotationHeight, "annotation text height in mm")
	f.StringVar(&v.AnnotationMode, "annotation-mode", v.AnnotationMode, "annotation mode: svg (text elements), laser (outlines)")
	f.StringVar(&v.ShapeMode, "shape-mode", v.ShapeMode, "shape mode: paths, lines")
	f.StringVar(&v.Font, "font", v.Font, "laser font: goregular, gomono, gobold or a TrueType file")
	f.StringVar(&v.Editor, "editor", v.Editor, "command started on the output after export")
	f.BoolVar(&v.Force, "force", false, "overwrite an existing output file")

	cf.apply = map[string]func(dst *config.Config){
		"output":            func(d *config.Config) { d.Output = v.Output },
		"format":            func(d *config.Config) { d.Format = v.Format },
		"border":            func(d *config.Config) { d.Border = v.Border },
		"unit":              func(d *config.Config) { d.Unit = v.Unit },
		"hidden":            func(d *config.Config) { d.ExportHidden = v.ExportHidden },
		"outlines":          func(d *config.Config) { d.ExportOutlines = v.ExportOutlines },
		"internal":          func(d *config.Config) { d.ExportInternal = v.ExportInternal },
		"orphans":           func(d *config.Config) { d.ExportOrphans = v.ExportOrphans },
		"annotations":       func(d *config.Config) { d.ExportAnnotations = v.ExportAnnotations },
		"annotation-height": func(d *config.Config) { d.AnnotationHeight = v.AnnotationHeight },
		"annotation-mode":   func(d *config.Config) { d.AnnotationMode = v.AnnotationMode },
		"shape-mode":        func(d *config.Config) { d.ShapeMode = v.ShapeMode },
		"font":              func(d *config.Config) { d.Font = v.Font },
		"editor":            func(d *config.Config) { d.Editor = v.Editor },
		"force":             func(d *config.Config) { d.Force = v.Force },
	}
	return cf
}

// resolve loads the configuration file, applies the flags that were set
// and validates the result.
func (cf *configFlags) resolve(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	path := cf.path
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		} else if !errors.Is(err, fs.ErrNotExist) {
			return config.Config{}, err
		}
	}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
		loggerFromContext(cmd.Context()).Debug("loaded config", "path", path)
	}

	for name, apply := range cf.apply {
		if cmd.Flags().Changed(name) {
			apply(&cfg)
		}
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Long:  `Print the configuration export would use, after reading the configuration file and applying flags. Redirect the output to create a facecut.toml.`,
		Args:  cobra.NoArgs,
	}
	cf := addConfigFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := cf.resolve(cmd)
		if err != nil {
			return err
		}
		return cfg.Encode(cmd.OutOrStdout())
	}
	return cmd
}
