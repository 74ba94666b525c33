package rowstore

import (
	"context"
	"testing"
	"time"

	"github.com/glint-lang/glint/pkg/registry"
	"github.com/glint-lang/glint/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordCompileAndExecution(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, "")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.RecordCompile(ctx, "compile-1", 42, true, 0))
	require.NoError(t, store.RecordExecution(ctx, "exec-1", "compile-1", true, "7", 5*time.Millisecond))

	count, err := store.ExecutionCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRecordEventAccumulatesInOrder(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, "")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.RecordEvent(ctx, "exec-1", "first"))
	require.NoError(t, store.RecordEvent(ctx, "exec-1", "second"))

	events, err := store.EventsFor(ctx, "exec-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, events)
}

func TestRegisterExposesRecordEventToScripts(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, "")
	require.NoError(t, err)
	defer store.Close()

	reg := registry.New()
	store.Register(reg, "audit", "exec-9")

	fn, ok := reg.FindFunction("", "audit", "record_event")
	require.True(t, ok)

	result, err := fn.Call(registry.NewArgIter([]value.Value{value.Str("loop started")}))
	require.NoError(t, err)
	assert.True(t, value.Equal(value.Bool(true), result))

	events, err := store.EventsFor(ctx, "exec-9")
	require.NoError(t, err)
	assert.Equal(t, []string{"loop started"}, events)
}
