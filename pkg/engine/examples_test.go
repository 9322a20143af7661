package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/facecut/pkg/scene"
)

func TestExamplesEvaluate(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "..", "examples", "*.lisp"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Skip("no examples found")
	}
	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			src, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			s := mustEval(t, string(src))
			if findings := scene.Validate(s); scene.HasErrors(findings) {
				t.Errorf("validation errors: %v", findings)
			}
			if len(s.Selection()) == 0 {
				t.Error("empty selection")
			}
		})
	}
}
