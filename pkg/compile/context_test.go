package compile

import (
	"testing"

	"github.com/glint-lang/glint/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushVariableOverwritesScopeZeroDuringInputPhase(t *testing.T) {
	c := New()
	c.PushVariable(&Variable{Name: "x", CurrentKnownValue: value.IntFromInt64(1), HasKnownValue: true, CanInline: true}, false)
	c.PushVariable(&Variable{Name: "x", CurrentKnownValue: value.IntFromInt64(2), HasKnownValue: true, CanInline: true}, false)

	_, _, v, ok := c.FindVariable("x")
	require.True(t, ok)
	assert.True(t, value.Equal(value.IntFromInt64(2), v.CurrentKnownValue))
}

func TestPushVariableAfterStatementsAppendsFresh(t *testing.T) {
	c := New()
	c.PushVariable(&Variable{Name: "x", CurrentKnownValue: value.IntFromInt64(1), HasKnownValue: true, CanInline: true}, false)
	c.BeginStatements()
	c.PushVariable(&Variable{Name: "x", CurrentKnownValue: value.IntFromInt64(9), HasKnownValue: true, CanInline: true}, true)

	_, idx, v, ok := c.FindVariable("x")
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.True(t, value.Equal(value.IntFromInt64(9), v.CurrentKnownValue))
}

func TestPopBlockInvalidatesKnownValueBeyondDepth(t *testing.T) {
	c := New()
	c.PushVariable(&Variable{Name: "x", CurrentKnownValue: value.IntFromInt64(1), HasKnownValue: true, CanInline: true}, false)
	c.BeginStatements()

	c.PushBlock()
	// Simulate an assignment inside the nested block: the variable's
	// value is only valid as long as this deeper scope remains pushed.
	_, idx, v, _ := c.FindVariable("x")
	v.ValueValidUpToDepth = c.CurrentDepth()
	c.PopBlock()

	_, _, v2, ok := c.FindVariable("x")
	require.True(t, ok)
	assert.False(t, v2.HasKnownValue)
	_ = idx
}

func TestFindVariableSearchesDeepestScopeFirst(t *testing.T) {
	c := New()
	c.BeginStatements()
	c.PushVariable(&Variable{Name: "x", CurrentKnownValue: value.IntFromInt64(1), HasKnownValue: true}, true)
	c.PushBlock()
	c.PushVariable(&Variable{Name: "x", CurrentKnownValue: value.IntFromInt64(2), HasKnownValue: true}, true)

	_, _, v, ok := c.FindVariable("x")
	require.True(t, ok)
	assert.True(t, value.Equal(value.IntFromInt64(2), v.CurrentKnownValue))
}

func TestSuspendInliningForcesCanInlineFalse(t *testing.T) {
	c := New()
	c.BeginStatements()
	c.PushVariable(&Variable{Name: "x", CurrentKnownValue: value.IntFromInt64(1), HasKnownValue: true, CanInline: true}, true)

	restore := c.SuspendInlining()
	_, _, v, ok := c.FindVariable("x")
	require.True(t, ok)
	assert.False(t, v.CanInline)
	restore()

	_, _, v2, ok := c.FindVariable("x")
	require.True(t, ok)
	assert.True(t, v2.CanInline)
}

func TestRemapPositionAppliesColumnOffsetOnlyOnFirstLineUnlessFixed(t *testing.T) {
	c := New()
	c.SetStartPositionOffset(10, 5)

	line, col := c.RemapPosition(1, 3)
	assert.Equal(t, 11, line)
	assert.Equal(t, 8, col)

	line, col = c.RemapPosition(2, 3)
	assert.Equal(t, 12, line)
	assert.Equal(t, 3, col)

	c.SetColumnOffsetFixed(true)
	line, col = c.RemapPosition(2, 3)
	assert.Equal(t, 12, line)
	assert.Equal(t, 8, col)
}

func TestTakeAllVariablesDrainsLiveAndPastScopes(t *testing.T) {
	c := New()
	c.BeginStatements()
	c.PushVariable(&Variable{Name: "x"}, true)
	c.PushBlock()
	c.PushVariable(&Variable{Name: "y"}, true)
	c.PopBlock()

	entries := c.TakeAllVariables()
	total := 0
	for _, e := range entries {
		total += len(e.Vars)
	}
	assert.Equal(t, 2, total)
}
