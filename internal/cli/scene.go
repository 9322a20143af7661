package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/chazu/facecut/pkg/engine"
	"github.com/chazu/facecut/pkg/scene"
)

// loadScene reads and evaluates a scene file. Evaluation errors are joined
// and prefixed with the file name.
func loadScene(ctx context.Context, path string) (*scene.Scene, error) {
	logger := loggerFromContext(ctx)

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	prog := newProgress(logger)
	s, evalErrs, err := engine.NewEngine().Evaluate(string(src))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(evalErrs) > 0 {
		errs := make([]error, len(evalErrs))
		for i, e := range evalErrs {
			errs[i] = fmt.Errorf("%s: %w", path, e)
		}
		return nil, errors.Join(errs...)
	}
	prog.done(fmt.Sprintf("Loaded %s: %d nodes, %d selected", path, len(s.Nodes), len(s.Selection())))
	return s, nil
}
