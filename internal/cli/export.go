package cli

import (
	"context"
	"fmt"

	"github.com/chazu/facecut/pkg/config"
	"github.com/chazu/facecut/pkg/export"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [scene.lisp]",
		Short: "Flatten a scene into an SVG or DXF drawing",
		Long: `Flatten the selected faces of a scene into a 2D drawing.

Connected coplanar faces are laid out together; each group is stacked
below the previous one. Outlines, interior edges and free edges on faces
become separate layers.`,
		Args: cobra.ExactArgs(1),
	}
	cf := addConfigFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := cf.resolve(cmd)
		if err != nil {
			return err
		}
		return runExport(cmd.Context(), args[0], cfg)
	}
	return cmd
}

func runExport(ctx context.Context, path string, cfg config.Config) error {
	logger := loggerFromContext(ctx)

	s, err := loadScene(ctx, path)
	if err != nil {
		return err
	}

	prog := newProgress(logger)
	res, err := export.New(cfg, logger).Export(ctx, s)
	if err != nil {
		return err
	}
	if res.Unresolved > 0 {
		logger.Warnf("%d free edges lie on no selected face and were left out", res.Unresolved)
	}
	prog.done(fmt.Sprintf("Exported %s: %d groups", res.Path, res.Groups))
	return nil
}
