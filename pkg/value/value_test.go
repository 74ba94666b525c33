package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayForm(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want string
	}{
		{"null", Null(), "null"},
		{"true", Bool(true), "true"},
		{"false", Bool(false), "false"},
		{"integer", IntFromInt64(42), "42"},
		{"string", Str("hi"), `"hi"`},
		{"array", Arr([]Value{IntFromInt64(1), IntFromInt64(2)}), "[1, 2]"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Display(c.v))
		})
	}
}

func TestEqualityIsStructural(t *testing.T) {
	a := Arr([]Value{IntFromInt64(1), Str("x")})
	b := Arr([]Value{IntFromInt64(1), Str("x")})
	c := Arr([]Value{IntFromInt64(1), Str("y")})
	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))
}

func TestRoundTripScalarAndAstValue(t *testing.T) {
	for _, v := range []Value{Null(), Bool(true), IntFromInt64(7), Decimal(1.5), Str("s"), Arr([]Value{IntFromInt64(1)})} {
		host, err := FromHost(v)
		require.NoError(t, err)
		assert.True(t, Equal(v, host))
	}
}

func TestToBoolStringLiterals(t *testing.T) {
	for _, s := range []string{"true", "yes", "TRUE"} {
		got, err := ToBool(Str(s))
		require.NoError(t, err)
		assert.True(t, got)
	}
	for _, s := range []string{"false", "no"} {
		got, err := ToBool(Str(s))
		require.NoError(t, err)
		assert.False(t, got)
	}
	got, err := ToBool(Str("5"))
	require.NoError(t, err)
	assert.True(t, got)
}

func TestIsSimpleRecursesThroughArrays(t *testing.T) {
	assert.True(t, Arr([]Value{IntFromInt64(1), Str("a")}).IsSimple())
	assert.False(t, Arr([]Value{ScopedVar(0, 0)}).IsSimple())
	assert.False(t, ScopedVar(1, 2).IsSimple())
	assert.False(t, DirectVar(3).IsSimple())
}

func TestInt128SaturatesOnOverflow(t *testing.T) {
	sum := Int128Max.Add(Int128FromInt64(1))
	assert.Equal(t, 0, sum.Cmp(Int128Max))
}

func TestInt128DivisionByZeroSaturates(t *testing.T) {
	got := IntFromInt64(10).Int().Div(Int128Zero)
	assert.Equal(t, 0, got.Cmp(Int128Max))
}

func TestInt128ModuloByZeroIsZero(t *testing.T) {
	got := IntFromInt64(10).Int().Mod(Int128Zero)
	assert.Equal(t, 0, got.Cmp(Int128Zero))
}
