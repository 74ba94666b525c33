// Package exec implements the Execution (X) component: two interchangeable
// evaluators over the same compiled semantics — a direct tree walker
// (this file) and a flattened-arena walker (arena.go) — plus the
// tree-to-arena conversion (flatten.go).
//
// Grounded on pkg/interpreter/evaluator.go's recursive eval-with-frame
// shape for the tree walker, and on
// original_source/src/execution/optimized_ast.rs's
// OptimizedASTExecutor::execute/execute_stack for the arena walker, which
// this package follows almost index-for-index.
package exec

import (
	"fmt"

	"github.com/glint-lang/glint/internal/engineconfig"
	"github.com/glint-lang/glint/pkg/frontend"
	"github.com/glint-lang/glint/pkg/registry"
	"github.com/glint-lang/glint/pkg/value"
)

// RuntimeError is the structured runtime-error taxonomy of §7, reusing
// the registry's RuntimeError shape since most runtime failures already
// originate from a Callable.
type RuntimeError = registry.RuntimeError

// TreeExecutor walks a CompiledProgram's nominal statement list directly,
// holding one mutable runtime frame (a clone of the program's initial
// frame per §3's execution lifecycle: "each execution clones the AST's
// initial runtime frame into its own mutable context").
type TreeExecutor struct {
	program   *frontend.CompiledProgram
	frame     []value.Value
	callDepth int
}

// NewTreeExecutor clones prog's initial frame into a fresh mutable copy.
func NewTreeExecutor(prog *frontend.CompiledProgram) *TreeExecutor {
	frame := make([]value.Value, len(prog.InitialFrame))
	copy(frame, prog.InitialFrame)
	return &TreeExecutor{program: prog, frame: frame}
}

// PushVariable binds a named parameterized variable (a scope-0 input that
// survived compaction) to v, per the Executor.push_variable API of §6.
func (e *TreeExecutor) PushVariable(name string, v value.Value) *TreeExecutor {
	if idx, ok := e.program.ParameterizedVariables[name]; ok {
		e.frame[idx] = v
	}
	return e
}

// returnSignal unwinds the statement-execution loop without allocating
// an error for the common, non-exceptional "return" path.
type returnSignal struct {
	value value.Value
}

// Execute runs every statement in source order and yields the program's
// return value, or a runtime error.
func (e *TreeExecutor) Execute() (result value.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if sig, ok := r.(returnSignal); ok {
				result, err = sig.value, nil
				return
			}
			panic(r)
		}
	}()

	if err := e.execStatements(e.program.Statements); err != nil {
		return value.Value{}, err
	}
	return value.Null(), nil
}

func (e *TreeExecutor) execStatements(stmts []frontend.Statement) error {
	for _, s := range stmts {
		if err := e.execStatement(s); err != nil {
			return err
		}
	}
	return nil
}

func (e *TreeExecutor) execStatement(s frontend.Statement) error {
	switch st := s.(type) {
	case *frontend.WhileStmt:
		for {
			cond, err := e.Resolve(st.Cond)
			if err != nil {
				return err
			}
			truthy, err := value.ToBool(cond)
			if err != nil {
				return &RuntimeError{Kind: "PredicateNotBoolean", Message: err.Error()}
			}
			if !truthy {
				return nil
			}
			if err := e.execStatements(st.Body); err != nil {
				return err
			}
		}
	case *frontend.IfElseStmt:
		for _, clause := range st.Clauses {
			cond, err := e.Resolve(clause.Cond)
			if err != nil {
				return err
			}
			truthy, err := value.ToBool(cond)
			if err != nil {
				return &RuntimeError{Kind: "PredicateNotBoolean", Message: err.Error()}
			}
			if truthy {
				return e.execStatements(clause.Body)
			}
		}
		return nil
	case *frontend.DirectAssignStmt:
		resolved, err := e.Resolve(st.Expr)
		if err != nil {
			return err
		}
		e.frame[st.Index] = resolved
		return nil
	case *frontend.ExprStmt:
		_, err := e.Resolve(st.Expr)
		return err
	case *frontend.ReturnStmt:
		resolved, err := e.Resolve(st.Expr)
		if err != nil {
			return err
		}
		panic(returnSignal{value: resolved})
	default:
		return nil
	}
}

// Resolve implements §4.5's resolve(value): simple scalars return
// themselves; Arrays recurse element-wise; function calls invoke their
// bound callable over a lazily-resolved argument sequence; a direct
// variable reference resolves its cell's stored value, memoizes the
// resolved form back into the cell, and returns it. A scoped variable
// reference reaching here is an invariant violation.
func (e *TreeExecutor) Resolve(v value.Value) (value.Value, error) {
	switch v.Kind {
	case value.KindNull, value.KindBoolean, value.KindInteger, value.KindDecimal, value.KindString:
		return v, nil
	case value.KindArray:
		items := v.Items()
		out := make([]value.Value, len(items))
		for i, item := range items {
			resolved, err := e.Resolve(item)
			if err != nil {
				return value.Value{}, err
			}
			out[i] = resolved
		}
		return value.Arr(out), nil
	case value.KindFunctionCall:
		e.callDepth++
		if e.callDepth > engineconfig.DefaultMaxCallDepth {
			e.callDepth--
			return value.Value{}, &RuntimeError{Kind: "StackDepthExceeded", Message: fmt.Sprintf("nested function-call depth exceeded %d", engineconfig.DefaultMaxCallDepth)}
		}
		call := v.Call()
		resolved, ok := call.Callable.(*registry.Resolved)
		if !ok {
			e.callDepth--
			return value.Value{}, &RuntimeError{Kind: "UnresolvedFunction", Message: "function call node carries no resolved callable"}
		}
		result, err := resolved.Call(newLazyArgs(e, call.Args))
		e.callDepth--
		return result, err
	case value.KindDirectVariable:
		idx := v.VarIndex()
		resolved, err := e.Resolve(e.frame[idx])
		if err != nil {
			return value.Value{}, err
		}
		e.frame[idx] = resolved
		return resolved, nil
	case value.KindScopedVariable:
		return value.Value{}, &RuntimeError{Kind: "InvariantViolation", Message: "scoped variable reference survived compaction"}
	default:
		return value.Value{}, &RuntimeError{Kind: "InvariantViolation", Message: "unknown AST value kind"}
	}
}

// lazyArgs resolves each argument only as the callable asks for it, so a
// callable sees argument errors as they arise rather than all up front.
type lazyArgs struct {
	exec *TreeExecutor
	args []value.Value
	pos  int
}

func newLazyArgs(exec *TreeExecutor, args []value.Value) registry.ArgIter {
	return &lazyArgs{exec: exec, args: args}
}

func (a *lazyArgs) Next() (value.Value, bool, error) {
	if a.pos >= len(a.args) {
		return value.Value{}, false, nil
	}
	v, err := a.exec.Resolve(a.args[a.pos])
	a.pos++
	if err != nil {
		return value.Value{}, true, err
	}
	return v, true, nil
}

func (a *lazyArgs) Len() int { return len(a.args) }
