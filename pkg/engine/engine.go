// Package engine is the embedding facade (§6's embedding API): it wires
// the Value Model, Host Registry, Compile Context, Front-End, and
// Execution components behind a small surface an embedding application
// actually calls — Compile once, then Execute many times against a
// cloned runtime frame.
package engine

import (
	"fmt"

	"github.com/glint-lang/glint/internal/obslog"
	"github.com/glint-lang/glint/pkg/compile"
	"github.com/glint-lang/glint/pkg/exec"
	"github.com/glint-lang/glint/pkg/frontend"
	"github.com/glint-lang/glint/pkg/registry"
	"github.com/glint-lang/glint/pkg/value"
)

// Engine owns one Host Registry and compiles source against it. A single
// Engine is reused across many independent compilations, the way an
// embedding application registers its host functions once at startup.
type Engine struct {
	registry *registry.Registry
}

// New constructs an Engine with the built-in operators and functions
// already registered.
func New() *Engine {
	return &Engine{registry: registry.New()}
}

// AddConstant registers a named constant value resolvable during
// compilation, per §4.2.
func (e *Engine) AddConstant(name string, v value.Value, declaredType string) {
	e.registry.AddConstant(name, v, declaredType)
}

// AddFunction registers a host function, operator overload, or
// associated method/getter/setter, per §4.2.
func (e *Engine) AddFunction(def registry.FuncDef) {
	e.registry.AddFunction(def)
}

// Compile parses and constant-folds source against ctx, producing a
// reusable AST. A fresh compile.Context should be used per compilation
// unless an embedder deliberately wants to carry forward prior
// declarations (§3's ContextBuilder lifecycle).
func (e *Engine) Compile(source string, ctx *compile.Context) (*AST, error) {
	compileID := obslog.NewCorrelationID()
	log := obslog.GetDefaultLogger().WithCompileID(compileID).WithField("source_bytes", len(source))
	log.Debug("compiling")

	prog, err := frontend.Compile(source, ctx, e.registry)
	if err != nil {
		log.Warn("compile failed: " + err.Error())
		return nil, err
	}
	log.Info(fmt.Sprintf("compiled, %d parameterized input(s)", len(prog.ParameterizedVariables)))
	return &AST{compiled: prog}, nil
}

// AST is the compiled, reusable program returned by Compile. It may be
// executed many times via Executor, or converted once to its
// flattened-arena form via ToOptimized for repeated low-overhead runs.
type AST struct {
	compiled *frontend.CompiledProgram
}

// Executor returns a fresh tree-walking executor over a cloned runtime
// frame, ready to accept input variables via PushVariable.
func (a *AST) Executor() *exec.TreeExecutor {
	return exec.NewTreeExecutor(a.compiled)
}

// ToOptimized flattens the AST into its arena representation, per §4.5's
// "AST::to_optimized" embedding operation. Callers that execute the same
// program many times should convert once and reuse the result.
func (a *AST) ToOptimized() *exec.Program {
	return exec.Flatten(a.compiled)
}

// ParameterizedVariables lists the input variable names the compiled
// program expects via PushVariable, along with their dense frame index.
func (a *AST) ParameterizedVariables() map[string]int {
	return a.compiled.ParameterizedVariables
}
