package registry

import (
	"testing"

	"github.com/glint-lang/glint/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFunctionResolutionOrder(t *testing.T) {
	r := New()
	r.AddFunction(FuncDef{Name: "len", Callable: func(ArgIter) (value.Value, error) { return value.IntFromInt64(0), nil }})
	r.AddFunction(FuncDef{Name: "len", Module: "strings", Callable: func(ArgIter) (value.Value, error) { return value.IntFromInt64(1), nil }})
	r.AddFunction(FuncDef{Name: "trim", AssociatedType: "String", Callable: func(ArgIter) (value.Value, error) { return value.Str("assoc"), nil }})
	r.AddFunction(FuncDef{Name: "trim", Module: "strings", AssociatedType: "String", Callable: func(ArgIter) (value.Value, error) { return value.Str("module-assoc"), nil }})

	fn, ok := r.FindFunction("", "", "len")
	require.True(t, ok)
	v, err := fn.Call(NewArgIter(nil))
	require.NoError(t, err)
	assert.True(t, value.Equal(value.IntFromInt64(0), v))

	fn, ok = r.FindFunction("", "", "trim")
	assert.False(t, ok)

	fn, ok = r.FindFunction("String", "", "trim")
	require.True(t, ok)
	v, err = fn.Call(NewArgIter(nil))
	require.NoError(t, err)
	assert.True(t, value.Equal(value.Str("assoc"), v))

	fn, ok = r.FindFunction("String", "strings", "trim")
	require.True(t, ok)
	v, err = fn.Call(NewArgIter(nil))
	require.NoError(t, err)
	assert.True(t, value.Equal(value.Str("module-assoc"), v))
}

func TestFindFunctionFallsBackToModuleBareWhenBareMissing(t *testing.T) {
	r := New()
	r.AddFunction(FuncDef{Name: "now", Module: "time", Callable: func(ArgIter) (value.Value, error) { return value.IntFromInt64(42), nil }})

	fn, ok := r.FindFunction("", "", "now")
	require.True(t, ok)
	v, err := fn.Call(NewArgIter(nil))
	require.NoError(t, err)
	assert.True(t, value.Equal(value.IntFromInt64(42), v))
}

func TestConstantRoundTrip(t *testing.T) {
	r := New()
	r.AddConstant("PI", value.Decimal(3.25), "Decimal")
	v, declType, ok := r.FindConstant("PI")
	require.True(t, ok)
	assert.Equal(t, "Decimal", declType)
	assert.True(t, value.Equal(value.Decimal(3.25), v))
}

func TestBinaryOperatorsAreInlineable(t *testing.T) {
	r := New()
	for _, sym := range []string{"+", "-", "*", "/", "%", "==", "!=", "<", "<=", ">", ">=", "&&", "||", "^", "<<", ">>"} {
		fn, ok := r.FindBinaryOperator(sym)
		require.True(t, ok, "missing operator %s", sym)
		assert.True(t, fn.Inlineable())
	}
}

func TestAddOperatorArithmetic(t *testing.T) {
	r := New()
	fn, _ := r.FindBinaryOperator("+")
	v, err := fn.Call(NewArgIter([]value.Value{value.IntFromInt64(2), value.IntFromInt64(3)}))
	require.NoError(t, err)
	assert.True(t, value.Equal(value.IntFromInt64(5), v))

	v, err = fn.Call(NewArgIter([]value.Value{value.Str("a"), value.IntFromInt64(1)}))
	require.NoError(t, err)
	assert.True(t, value.Equal(value.Str(`"a"1`), v))
}

func TestModOperatorTakesSignOfDividendOnDecimals(t *testing.T) {
	r := New()
	fn, _ := r.FindBinaryOperator("%")

	v, err := fn.Call(NewArgIter([]value.Value{value.Decimal(5.5), value.Decimal(-2.0)}))
	require.NoError(t, err)
	assert.True(t, value.Equal(value.Decimal(1.5), v))

	v, err = fn.Call(NewArgIter([]value.Value{value.Decimal(-5.5), value.Decimal(2.0)}))
	require.NoError(t, err)
	assert.True(t, value.Equal(value.Decimal(-1.5), v))
}

func TestDivAndModRejectBooleanOperands(t *testing.T) {
	r := New()
	for _, sym := range []string{"/", "%"} {
		fn, _ := r.FindBinaryOperator(sym)
		_, err := fn.Call(NewArgIter([]value.Value{value.Bool(true), value.Bool(false)}))
		require.Error(t, err, "operator %s should reject Boolean operands", sym)
		rerr, ok := err.(*RuntimeError)
		require.True(t, ok)
		assert.Equal(t, "CannotApplyOperator", rerr.Kind)
	}
}

func TestUnaryNegate(t *testing.T) {
	r := New()
	fn, ok := r.FindUnaryOperator("-")
	require.True(t, ok)
	v, err := fn.Call(NewArgIter([]value.Value{value.IntFromInt64(5)}))
	require.NoError(t, err)
	assert.True(t, value.Equal(value.IntFromInt64(-5), v))
}

func TestBindConvertsArgumentsAndWrapsResult(t *testing.T) {
	callable, err := Bind(func(a int64, b string) (string, error) {
		return b + ":" + value.Display(value.IntFromInt64(a)), nil
	})
	require.NoError(t, err)

	v, err := callable(NewArgIter([]value.Value{value.IntFromInt64(7), value.Str("tag")}))
	require.NoError(t, err)
	assert.True(t, value.Equal(value.Str("tag:7"), v))
}

func TestBindRejectsArityMismatch(t *testing.T) {
	callable, err := Bind(func(a int64) (int64, error) { return a, nil })
	require.NoError(t, err)

	_, err = callable(NewArgIter([]value.Value{}))
	assert.Error(t, err)
}
