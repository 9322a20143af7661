// Package engine evaluates the scene description language. It wraps zygomys
// in a sandboxed environment and produces a scene from user source code.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/chazu/facecut/pkg/scene"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine wraps the zygomys interpreter.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	opts       []scene.Option
}

// NewEngine creates a new Engine. The options are passed to the scene
// builder of every evaluation.
func NewEngine(opts ...scene.Option) *Engine {
	return &Engine{opts: opts}
}

// Evaluate takes Lisp source code and produces a new Scene.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns scene + nil errors + nil error
//   - On parse/eval failure: returns nil scene + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*scene.Scene, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		s, evalErrs, err := e.evaluate(source)
		ch <- evalResult{scene: s, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*scene.Scene, []EvalError, error) {
	b := scene.NewBuilder(e.opts...)

	// Empty source is a valid program that produces an empty scene.
	if strings.TrimSpace(source) != "" {
		// Sandbox mode prevents user code from accessing the filesystem or syscalls.
		env := zygo.NewZlispSandbox()
		defer env.Stop()
		registerBuiltins(env, b)

		if err := env.LoadString(preprocessSource(source)); err != nil {
			return nil, parseZygomysError(err), nil
		}
		if _, err := env.Run(); err != nil {
			return nil, parseZygomysError(err), nil
		}
	}

	s, err := b.Build()
	if err != nil {
		return nil, []EvalError{{Message: err.Error()}}, nil
	}
	return s, nil, nil
}

// linePattern matches the location marker zygomys puts in its errors,
// "Error on line N:" for parse errors and "line N:" elsewhere.
var linePattern = regexp.MustCompile(`(?i)\b(?:error )?(?:on )?line (\d+):\s*`)

// parseZygomysError converts a zygomys error into EvalError values, pulling
// out the line number when the message carries one. The rest of the message
// is kept whole so errors raised by scene forms survive.
func parseZygomysError(err error) []EvalError {
	msg := strings.TrimSpace(err.Error())
	loc := linePattern.FindStringSubmatchIndex(msg)
	if loc == nil {
		return []EvalError{{Message: msg}}
	}
	line, _ := strconv.Atoi(msg[loc[2]:loc[3]])
	detail := strings.TrimSpace(msg[:loc[0]] + " " + msg[loc[1]:])
	return []EvalError{{Line: line, Message: detail}}
}
