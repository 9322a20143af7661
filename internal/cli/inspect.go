package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/chazu/facecut/pkg/config"
	"github.com/chazu/facecut/pkg/export"
	"github.com/chazu/facecut/pkg/flatten"
	"github.com/chazu/facecut/pkg/scene"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [scene.lisp]",
		Short: "List the face groups a scene flattens into",
		Long:  `Run the flattening pipeline without writing a drawing and print each face group with its members and laid out bounds.`,
		Args:  cobra.ExactArgs(1),
	}
	cf := addConfigFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := cf.resolve(cmd)
		if err != nil {
			return err
		}
		return runInspect(cmd.Context(), cmd.OutOrStdout(), args[0], cfg)
	}
	return cmd
}

func runInspect(ctx context.Context, w io.Writer, path string, cfg config.Config) error {
	s, err := loadScene(ctx, path)
	if err != nil {
		return err
	}
	opts := export.New(cfg, loggerFromContext(ctx)).Options()
	if !flatten.ContainsFace(s, opts) {
		return export.ErrEmptySelection
	}
	res := flatten.Run(s, opts)
	page := res.Page

	fmt.Fprintf(w, "page %s x %s %s, %d groups\n", fmtLen(page.Width), fmtLen(page.Height), page.Unit, len(page.Groups))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "GROUP\tFACES\tORPHANS\tX\tY\tWIDTH\tHEIGHT\tREFERENCE")
	for i, g := range page.Groups {
		faces, orphans := 0, 0
		for _, m := range g.Members {
			if m.Kind == scene.NodeEdge {
				orphans++
			} else {
				faces++
			}
		}
		ref := ""
		if len(g.Members) > 0 {
			ref = describe(s, g.Members[0].Ref)
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t%s\t%s\t%s\t%s\n", i, faces, orphans,
			fmtLen(g.BBox.MinX), fmtLen(g.BBox.MinY), fmtLen(g.BBox.Width()), fmtLen(g.BBox.Height()), ref)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "annotations %d/%d placed, %d free edges left out\n", res.Claimed(), res.Annotations, len(res.Unresolved))
	return nil
}

// describe names an occurrence by its path of node names, falling back to
// ids for unnamed nodes.
func describe(s *scene.Scene, r scene.Ref) string {
	label := func(id scene.NodeID) string {
		if n := s.Node(id); n != nil && n.Name != "" {
			return n.Name
		}
		return id.String()
	}
	out := ""
	for _, p := range r.Path {
		out += label(p) + "/"
	}
	return out + label(r.ID)
}

func fmtLen(v float64) string {
	return fmt.Sprintf("%.4g", v)
}
