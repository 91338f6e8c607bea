package runner

import (
	"fmt"
	"io"
	"log/slog"
	"monkey/internal/ast"
	"monkey/internal/evaluator"
	"monkey/internal/lexer"
	"monkey/internal/object"
	"monkey/internal/parser"
	"monkey/internal/util"
	"os"
)

// Runner takes source text through lexing, parsing and evaluation.
type Runner struct {
	Config *util.Configuration
	Output io.Writer // print and println
	Trace  io.Writer // parser trace, when Config.TraceParser is set

	registry *evaluator.Registry
}

func New(cfg *util.Configuration, out io.Writer, extensions ...map[string]*object.Builtin) *Runner {
	return &Runner{
		Config:   cfg,
		Output:   out,
		Trace:    os.Stderr,
		registry: evaluator.NewRegistry(extensions...),
	}
}

// Builtins lists every builtin name the runner resolves.
func (r *Runner) Builtins() []string {
	return r.registry.Names()
}

// Parse returns the program, or *ParseErrors listing every syntax error.
func (r *Runner) Parse(src string) (*ast.Program, error) {
	p := parser.New(lexer.New(src))
	if r.Config.TraceParser {
		p.SetTrace(r.Trace)
	}

	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		slog.Debug("parse failed", slog.Int("errors", len(errs)))
		return nil, &ParseErrors{Errors: errs}
	}

	if r.Config.DebugAST != "" {
		if err := parser.WriteASTToJSON(program, r.Config.DebugAST); err != nil {
			slog.Warn("failed to write AST", slog.String("file", r.Config.DebugAST), slog.Any("error", err))
		}
	}
	return program, nil
}

// Run evaluates src in a fresh global environment.
func (r *Runner) Run(src string) (object.Object, error) {
	return r.RunIn(src, object.NewEnvironment())
}

// RunIn evaluates src with env as the global scope, so bindings persist
// across calls that share env.
func (r *Runner) RunIn(src string, env *object.Environment) (object.Object, error) {
	program, err := r.Parse(src)
	if err != nil {
		return nil, err
	}

	e := evaluator.New(evaluator.Config{
		Output:       r.Output,
		MaxCallDepth: r.Config.MaxCallDepth,
		Builtins:     r.registry,
	})

	result := e.EvalProgram(program, env)
	if errObj, ok := result.(*object.Error); ok {
		return nil, &RuntimeError{Message: errObj.Message}
	}
	return result, nil
}

func (r *Runner) RunFile(path string) (object.Object, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	slog.Info("running file", slog.String("path", path))
	return r.Run(string(src))
}
