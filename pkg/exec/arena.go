package exec

import (
	"fmt"

	"github.com/glint-lang/glint/internal/engineconfig"
	"github.com/glint-lang/glint/pkg/registry"
	"github.com/glint-lang/glint/pkg/value"
)

// ArenaExecutor walks a flattened Program. It offers both a recursive
// form (Execute) and an explicit-stack form (ExecuteStack, preferred when
// deep nesting risks overflowing the native call stack), matching
// original_source/src/execution/optimized_ast.rs's
// OptimizedASTExecutor::execute / execute_stack. Semantics are identical
// to TreeExecutor; only the traversal representation differs.
type ArenaExecutor struct {
	program   *Program
	frame     []value.Value
	callDepth int
}

func NewArenaExecutor(prog *Program) *ArenaExecutor {
	frame := make([]value.Value, len(prog.InitialFrame))
	copy(frame, prog.InitialFrame)
	return &ArenaExecutor{program: prog, frame: frame}
}

func (e *ArenaExecutor) PushVariable(name string, v value.Value) *ArenaExecutor {
	if idx, ok := e.program.ParameterizedVariables[name]; ok {
		e.frame[idx] = v
	}
	return e
}

// Resolve is identical to TreeExecutor.Resolve — the value representation
// was not pooled (see flatten.go), so resolution logic does not change
// between the nominal and arena forms.
func (e *ArenaExecutor) Resolve(v value.Value) (value.Value, error) {
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
		result, err := resolved.Call(newArenaLazyArgs(e, call.Args))
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
	default:
		return value.Value{}, &RuntimeError{Kind: "InvariantViolation", Message: "unresolvable AST value kind in arena executor"}
	}
}

// Execute runs the program's top-level statement range recursively.
func (e *ArenaExecutor) Execute() (value.Value, error) {
	return e.execRange(e.program.Statements)
}

func (e *ArenaExecutor) execRange(stmtIndices []int) (value.Value, error) {
	for _, blockIdx := range stmtIndices {
		halted, result, err := e.execBlock(blockIdx)
		if err != nil || halted {
			return result, err
		}
	}
	return value.Null(), nil
}

// execBlock runs one pooled block and reports whether execution halted
// (a return was hit).
func (e *ArenaExecutor) execBlock(blockIdx int) (halted bool, result value.Value, err error) {
	b := e.program.Blocks[blockIdx]
	switch b.Kind {
	case BlockWhile:
		for {
			cond, err := e.Resolve(b.Cond)
			if err != nil {
				return false, value.Value{}, err
			}
			truthy, err := value.ToBool(cond)
			if err != nil {
				return false, value.Value{}, &RuntimeError{Kind: "PredicateNotBoolean", Message: err.Error()}
			}
			if !truthy {
				return false, value.Value{}, nil
			}
			body := e.program.Statements[b.BodyStart : b.BodyStart+b.BodyLen]
			halted, result, err := e.execRangeHalting(body)
			if err != nil || halted {
				return halted, result, err
			}
		}
	case BlockIfElse:
		for ci := b.ClauseStart; ci < b.ClauseStart+b.ClauseLen; ci++ {
			clause := e.program.Blocks[ci]
			cond, err := e.Resolve(clause.Cond)
			if err != nil {
				return false, value.Value{}, err
			}
			truthy, err := value.ToBool(cond)
			if err != nil {
				return false, value.Value{}, &RuntimeError{Kind: "PredicateNotBoolean", Message: err.Error()}
			}
			if truthy {
				body := e.program.Statements[clause.BodyStart : clause.BodyStart+clause.BodyLen]
				return e.execRangeHalting(body)
			}
		}
		return false, value.Value{}, nil
	case BlockAssign:
		resolved, err := e.Resolve(b.Value)
		if err != nil {
			return false, value.Value{}, err
		}
		e.frame[b.Index] = resolved
		return false, value.Value{}, nil
	case BlockExprStmt:
		_, err := e.Resolve(b.Value)
		return false, value.Value{}, err
	case BlockReturn:
		resolved, err := e.Resolve(b.Value)
		if err != nil {
			return false, value.Value{}, err
		}
		return true, resolved, nil
	default:
		return false, value.Value{}, nil
	}
}

// execRangeHalting runs a statement range, returning as soon as a block
// halts (a return was hit).
func (e *ArenaExecutor) execRangeHalting(stmtIndices []int) (bool, value.Value, error) {
	for _, blockIdx := range stmtIndices {
		halted, result, err := e.execBlock(blockIdx)
		if err != nil || halted {
			return halted, result, err
		}
	}
	return false, value.Value{}, nil
}

// frame for the explicit-stack walker: a pending statement range plus a
// cursor into it.
type stackFrame struct {
	stmts []int
	pos   int
}

// ExecuteStack runs the program using an explicit work-stack of pending
// statement ranges instead of Go call-stack recursion, for scripts whose
// nesting depth risks exhausting the native stack — the preference
// stated in §4.5 and §9 ("prefer the explicit-stack walker ... when
// running user input of unbounded nesting depth").
func (e *ArenaExecutor) ExecuteStack() (value.Value, error) {
	stack := []stackFrame{{stmts: e.program.Statements}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.pos >= len(top.stmts) {
			stack = stack[:len(stack)-1]
			continue
		}
		blockIdx := top.stmts[top.pos]
		top.pos++

		b := e.program.Blocks[blockIdx]
		switch b.Kind {
		case BlockWhile:
			cond, err := e.Resolve(b.Cond)
			if err != nil {
				return value.Value{}, err
			}
			truthy, err := value.ToBool(cond)
			if err != nil {
				return value.Value{}, &RuntimeError{Kind: "PredicateNotBoolean", Message: err.Error()}
			}
			if truthy {
				top.pos-- // re-visit this while block after its body runs
				stack = append(stack, stackFrame{stmts: e.program.Statements[b.BodyStart : b.BodyStart+b.BodyLen]})
			}
		case BlockIfElse:
			matched := false
			for ci := b.ClauseStart; ci < b.ClauseStart+b.ClauseLen; ci++ {
				clause := e.program.Blocks[ci]
				cond, err := e.Resolve(clause.Cond)
				if err != nil {
					return value.Value{}, err
				}
				truthy, err := value.ToBool(cond)
				if err != nil {
					return value.Value{}, &RuntimeError{Kind: "PredicateNotBoolean", Message: err.Error()}
				}
				if truthy {
					stack = append(stack, stackFrame{stmts: e.program.Statements[clause.BodyStart : clause.BodyStart+clause.BodyLen]})
					matched = true
					break
				}
			}
			_ = matched
		case BlockAssign:
			resolved, err := e.Resolve(b.Value)
			if err != nil {
				return value.Value{}, err
			}
			e.frame[b.Index] = resolved
		case BlockExprStmt:
			if _, err := e.Resolve(b.Value); err != nil {
				return value.Value{}, err
			}
		case BlockReturn:
			return e.Resolve(b.Value)
		}
	}
	return value.Null(), nil
}

type arenaLazyArgs struct {
	exec *ArenaExecutor
	args []value.Value
	pos  int
}

func newArenaLazyArgs(exec *ArenaExecutor, args []value.Value) registry.ArgIter {
	return &arenaLazyArgs{exec: exec, args: args}
}

func (a *arenaLazyArgs) Next() (value.Value, bool, error) {
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

func (a *arenaLazyArgs) Len() int { return len(a.args) }
