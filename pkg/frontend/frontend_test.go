package frontend

import (
	"testing"

	"github.com/glint-lang/glint/pkg/compile"
	"github.com/glint-lang/glint/pkg/registry"
	"github.com/glint-lang/glint/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileSource(t *testing.T, source string, reg *registry.Registry) *CompiledProgram {
	t.Helper()
	if reg == nil {
		reg = registry.New()
	}
	ctx := compile.New()
	prog, err := Compile(source, ctx, reg)
	require.NoError(t, err)
	return prog
}

func onlyReturn(t *testing.T, prog *CompiledProgram) value.Value {
	t.Helper()
	require.Len(t, prog.Statements, 1)
	ret, ok := prog.Statements[0].(*ReturnStmt)
	require.True(t, ok)
	return ret.Expr
}

func TestNestedArrayIndexingFoldsToConstant(t *testing.T) {
	prog := compileSource(t, `let a = [[4 2 5] [3 9 1] [6 8 7]]; a[1][2]`, nil)
	got := onlyReturn(t, prog)
	assert.True(t, value.Equal(value.IntFromInt64(1), got))
}

func TestPrecedenceTableScenarios(t *testing.T) {
	prog := compileSource(t, `2 * 3 + 5 > 4 && true`, nil)
	assert.True(t, value.Equal(value.Bool(true), onlyReturn(t, prog)))

	prog2 := compileSource(t, `true && 4 < 5 + 3 * 2`, nil)
	assert.True(t, value.Equal(value.Bool(true), onlyReturn(t, prog2)))
}

func TestConstantFoldingCollapsesIfAndWhile(t *testing.T) {
	reg := registry.New()
	reg.AddConstant("ONE_AS_CONSTANT", value.IntFromInt64(1), "Integer")
	reg.AddFunction(registry.FuncDef{
		Name:       "constant_fn_get_two",
		Inlineable: true,
		Callable:   func(registry.ArgIter) (value.Value, error) { return value.IntFromInt64(2), nil },
	})
	reg.AddFunction(registry.FuncDef{
		Name: "print",
		Callable: func(args registry.ArgIter) (value.Value, error) {
			_, _, _ = args.Next()
			return value.Null(), nil
		},
	})

	source := `let three = ONE_AS_CONSTANT + constant_fn_get_two(); if three == 3 { print("A"); } else { print("X"); } while three == 3 { print("loop"); }`
	prog := compileSource(t, source, reg)

	// The if/else folds to its true branch only (print("A")); the while
	// condition folds to constant true.
	require.Len(t, prog.Statements, 2)

	_, isExprOrIf := prog.Statements[0].(*IfElseStmt)
	assert.True(t, isExprOrIf)

	whileStmt, ok := prog.Statements[1].(*WhileStmt)
	require.True(t, ok)
	assert.True(t, whileStmt.Cond.IsConstantTrue())
}

func TestInputVariableReadBack(t *testing.T) {
	reg := registry.New()
	ctx := compile.New()
	ctx.PushVariable(&compile.Variable{Name: "user_name", CanInline: false}, false)

	prog, err := Compile(`return user_name;`, ctx, reg)
	require.NoError(t, err)

	idx, ok := prog.ParameterizedVariables["user_name"]
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	ret := onlyReturn(t, prog)
	assert.Equal(t, value.KindDirectVariable, ret.Kind)
	assert.Equal(t, idx, ret.VarIndex())
}

func TestCouldntInlineFunctionDiagnostic(t *testing.T) {
	reg := registry.New()
	reg.AddFunction(registry.FuncDef{
		Name:       "sum_two",
		Inlineable: true,
		Callable: func(args registry.ArgIter) (value.Value, error) {
			return value.Value{}, &registry.RuntimeError{Kind: "CannotApplyOperator", Message: "overflow in checked_add"}
		},
	})
	ctx := compile.New()
	_, err := Compile(`sum_two(100, 200)`, ctx, reg)
	require.Error(t, err)
	compileErr, ok := err.(*CompileError)
	require.True(t, ok)
	require.Len(t, compileErr.Diagnostics, 1)
	assert.Equal(t, DiagCouldntInlineFunction, compileErr.Diagnostics[0].Kind)
	assert.Contains(t, compileErr.Diagnostics[0].Message, "overflow")
}

func TestAssociatedPropertyResolvesToRuntimeCall(t *testing.T) {
	reg := registry.New()
	reg.AddFunction(registry.FuncDef{
		Name:           "alt",
		AssociatedType: "agent",
		Callable:       func(registry.ArgIter) (value.Value, error) { return value.IntFromInt64(3), nil },
	})
	ctx := compile.New()
	ctx.PushVariable(&compile.Variable{Name: "agent", DeclaredType: "agent", HasDeclaredType: true}, false)

	prog, err := Compile(`agent.alt % 2 == 1`, ctx, reg)
	require.NoError(t, err)
	got := onlyReturn(t, prog)
	assert.Equal(t, value.KindFunctionCall, got.Kind)
}
