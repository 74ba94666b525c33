package exec

import (
	"strings"
	"testing"

	"github.com/glint-lang/glint/internal/engineconfig"
	"github.com/glint-lang/glint/pkg/compile"
	"github.com/glint-lang/glint/pkg/frontend"
	"github.com/glint-lang/glint/pkg/registry"
	"github.com/glint-lang/glint/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileSource(t *testing.T, source string, reg *registry.Registry) *frontend.CompiledProgram {
	t.Helper()
	if reg == nil {
		reg = registry.New()
	}
	ctx := compile.New()
	prog, err := frontend.Compile(source, ctx, reg)
	require.NoError(t, err)
	return prog
}

// runAllForms executes prog via the tree walker and both arena forms,
// asserting all three agree — the "optimization equivalence" law: the
// same compiled program executed via either walker on equal inputs
// yields equal results.
func runAllForms(t *testing.T, prog *frontend.CompiledProgram) value.Value {
	t.Helper()

	treeResult, err := NewTreeExecutor(prog).Execute()
	require.NoError(t, err)

	arenaProg := Flatten(prog)

	recResult, err := NewArenaExecutor(arenaProg).Execute()
	require.NoError(t, err)
	assert.True(t, value.Equal(treeResult, recResult), "recursive arena walker diverged from tree walker")

	stackResult, err := NewArenaExecutor(arenaProg).ExecuteStack()
	require.NoError(t, err)
	assert.True(t, value.Equal(treeResult, stackResult), "explicit-stack arena walker diverged from tree walker")

	return treeResult
}

func TestArithmeticAgreesAcrossWalkers(t *testing.T) {
	prog := compileSource(t, `let x = 2; let y = 3; x * y + 1`, nil)
	result := runAllForms(t, prog)
	assert.True(t, value.Equal(value.IntFromInt64(7), result))
}

func TestWhileLoopAgreesAcrossWalkers(t *testing.T) {
	prog := compileSource(t, `let n = 0; while n < 5 { n = n + 1; } n`, nil)
	result := runAllForms(t, prog)
	assert.True(t, value.Equal(value.IntFromInt64(5), result))
}

func TestIfElseAgreesAcrossWalkers(t *testing.T) {
	prog := compileSource(t, `let n = 7; if n > 3 { n = 1; } else { n = 2; } n`, nil)
	result := runAllForms(t, prog)
	assert.True(t, value.Equal(value.IntFromInt64(1), result))
}

func TestNestedLoopsAgreeAcrossWalkers(t *testing.T) {
	prog := compileSource(t, `
		let total = 0;
		let i = 0;
		while i < 3 {
			let j = 0;
			while j < 3 {
				total = total + 1;
				j = j + 1;
			}
			i = i + 1;
		}
		total
	`, nil)
	result := runAllForms(t, prog)
	assert.True(t, value.Equal(value.IntFromInt64(9), result))
}

func TestEarlyReturnHaltsBothWalkers(t *testing.T) {
	prog := compileSource(t, `
		let n = 0;
		while n < 10 {
			if n == 3 {
				return n;
			}
			n = n + 1;
		}
		n
	`, nil)
	result := runAllForms(t, prog)
	assert.True(t, value.Equal(value.IntFromInt64(3), result))
}

func TestPushVariableBindsParameterizedInputOnBothWalkers(t *testing.T) {
	ctx := compile.New()
	reg := registry.New()
	ctx.PushVariable(&compile.Variable{Name: "user_name", CanInline: false}, false)
	prog, err := frontend.Compile(`return user_name;`, ctx, reg)
	require.NoError(t, err)

	treeResult, err := NewTreeExecutor(prog).PushVariable("user_name", value.Str("ada")).Execute()
	require.NoError(t, err)
	assert.True(t, value.Equal(value.Str("ada"), treeResult))

	arenaProg := Flatten(prog)
	arenaResult, err := NewArenaExecutor(arenaProg).PushVariable("user_name", value.Str("ada")).Execute()
	require.NoError(t, err)
	assert.True(t, value.Equal(value.Str("ada"), arenaResult))
}

func TestArrayIndexingAgreesAcrossWalkers(t *testing.T) {
	prog := compileSource(t, `let a = [10 20 30]; a[2]`, nil)
	result := runAllForms(t, prog)
	assert.True(t, value.Equal(value.IntFromInt64(30), result))
}

func TestDeeplyNestedCallsReportStackDepthExceeded(t *testing.T) {
	// x is a non-inlineable input variable, not a compile-time constant, so
	// each unary "-" stays an uninlined function-call node instead of
	// folding away.
	ctx := compile.New()
	ctx.PushVariable(&compile.Variable{Name: "x", FirstValue: value.IntFromInt64(1), CanInline: false}, false)
	source := strings.Repeat("-", engineconfig.DefaultMaxCallDepth*2) + "x"
	prog, err := frontend.Compile(source, ctx, registry.New())
	require.NoError(t, err)

	_, err = NewTreeExecutor(prog).Execute()
	require.Error(t, err)
	rerr, ok := err.(*RuntimeError)
	require.True(t, ok)
	assert.Equal(t, "StackDepthExceeded", rerr.Kind)

	arenaProg := Flatten(prog)
	_, err = NewArenaExecutor(arenaProg).Execute()
	require.Error(t, err)
	rerr, ok = err.(*RuntimeError)
	require.True(t, ok)
	assert.Equal(t, "StackDepthExceeded", rerr.Kind)
}
