package frontend

import (
	"testing"

	"github.com/glint-lang/glint/pkg/compile"
	"github.com/glint-lang/glint/pkg/registry"
	"github.com/glint-lang/glint/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNearestNameFindsCloseTypo(t *testing.T) {
	near, found := nearestName("retrun", []string{"return", "length", "upper"})
	require.True(t, found)
	assert.Equal(t, "return", near)
}

func TestNearestNameRejectsDistantCandidates(t *testing.T) {
	_, found := nearestName("zzz", []string{"return", "length", "upper"})
	assert.False(t, found)
}

func TestUnknownIdentifierSuggestsClosestVariable(t *testing.T) {
	_, err := Compile(`let total = 0; totl`, compile.New(), registry.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "total"?`)
}

func TestUnknownFunctionSuggestsClosestName(t *testing.T) {
	reg := registry.New()
	reg.AddFunction(registry.FuncDef{
		Name: "length",
		Callable: func(args registry.ArgIter) (value.Value, error) {
			return value.IntFromInt64(0), nil
		},
	})
	_, err := Compile(`lenght("hi")`, compile.New(), reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "length"?`)
}
