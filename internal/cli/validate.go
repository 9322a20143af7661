package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/chazu/facecut/pkg/scene"
	"github.com/spf13/cobra"
)

// errInvalid is returned by the validate command when errors were found.
var errInvalid = errors.New("scene has errors")

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [scene.lisp]",
		Short: "Check a scene for dangling references, cycles and degenerate faces",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), cmd, args[0])
		},
	}
}

func runValidate(ctx context.Context, cmd *cobra.Command, path string) error {
	s, err := loadScene(ctx, path)
	if err != nil {
		return err
	}
	findings := scene.Validate(s)
	out := cmd.OutOrStdout()
	for _, f := range findings {
		fmt.Fprintln(out, f.Error())
	}
	if scene.HasErrors(findings) {
		return fmt.Errorf("%s: %w", path, errInvalid)
	}
	if len(findings) == 0 {
		fmt.Fprintf(out, "%s: ok\n", path)
	}
	return nil
}
