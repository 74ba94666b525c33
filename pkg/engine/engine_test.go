package engine

import (
	"testing"
	"time"

	"github.com/glint-lang/glint/pkg/compile"
	"github.com/glint-lang/glint/pkg/exec"
	"github.com/glint-lang/glint/pkg/registry"
	"github.com/glint-lang/glint/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineCompileAndExecuteTreeWalker(t *testing.T) {
	e := New()
	ast, err := e.Compile(`let x = 3; let y = 4; x * y`, compile.New())
	require.NoError(t, err)

	result, err := ast.Executor().Execute()
	require.NoError(t, err)
	assert.True(t, value.Equal(value.IntFromInt64(12), result))
}

func TestEngineCompileAndExecuteOptimizedArena(t *testing.T) {
	e := New()
	ast, err := e.Compile(`let n = 0; while n < 4 { n = n + 1; } n`, compile.New())
	require.NoError(t, err)

	opt := ast.ToOptimized()
	result, err := exec.NewArenaExecutor(opt).Execute()
	require.NoError(t, err)
	assert.True(t, value.Equal(value.IntFromInt64(4), result))
}

func TestEngineAddConstantAndFunction(t *testing.T) {
	e := New()
	e.AddConstant("GREETING", value.Str("hi"), "String")
	e.AddFunction(registry.FuncDef{
		Name:       "shout",
		Inlineable: true,
		Callable: func(args registry.ArgIter) (value.Value, error) {
			v, _, err := args.Next()
			if err != nil {
				return value.Value{}, err
			}
			return value.Str(v.Text() + "!"), nil
		},
	})

	ast, err := e.Compile(`shout(GREETING)`, compile.New())
	require.NoError(t, err)

	result, err := ast.Executor().Execute()
	require.NoError(t, err)
	assert.True(t, value.Equal(value.Str("hi!"), result))
}

func TestEngineParameterizedVariablesReportsInputs(t *testing.T) {
	e := New()
	ctx := compile.New()
	ctx.PushVariable(&compile.Variable{Name: "user_name", CanInline: false}, false)

	ast, err := e.Compile(`return user_name;`, ctx)
	require.NoError(t, err)

	idx, ok := ast.ParameterizedVariables()["user_name"]
	require.True(t, ok)

	result, err := ast.Executor().PushVariable("user_name", value.Str("ada")).Execute()
	require.NoError(t, err)
	assert.True(t, value.Equal(value.Str("ada"), result))
	assert.Equal(t, 0, idx)
}

func TestLogExecutionReturnsExecutorResultAndError(t *testing.T) {
	e := New()
	ast, err := e.Compile(`let x = 3; let y = 4; x * y`, compile.New())
	require.NoError(t, err)

	result, err := LogExecution(NewExecutionID(), ast.Executor().Execute)
	require.NoError(t, err)
	assert.True(t, value.Equal(value.IntFromInt64(12), result))

	failingAST, err := e.Compile(`let n = "not a boolean"; while n { n = 1; }`, compile.New())
	require.NoError(t, err)
	_, err = LogExecution(NewExecutionID(), failingAST.Executor().Execute)
	assert.Error(t, err)
}

func TestMetricsObserveCompileAndExecution(t *testing.T) {
	m := NewMetrics(DefaultMetricsConfig())
	m.ObserveCompile(true, 2*time.Millisecond)
	m.ObserveCompile(false, time.Millisecond)
	m.ObserveExecution(true, "", 5*time.Millisecond)
	m.ObserveExecution(false, "PredicateNotBoolean", time.Millisecond)

	metricFamilies, err := m.Registry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, metricFamilies)
}
