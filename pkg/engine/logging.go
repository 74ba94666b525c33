package engine

import (
	"fmt"
	"time"

	"github.com/glint-lang/glint/internal/obslog"
	"github.com/glint-lang/glint/pkg/value"
)

// NewExecutionID mints a fresh correlation ID for one Execute call, so an
// embedder can thread the same ID through LogExecution and whatever other
// telemetry it attaches to that run.
func NewExecutionID() string {
	return obslog.NewCorrelationID()
}

// LogExecution wraps fn — an Executor's Execute call — with structured
// logging under executionID, mirroring TraceExecution's span-wrapping shape
// for obslog instead of OpenTelemetry spans.
func LogExecution(executionID string, fn func() (value.Value, error)) (value.Value, error) {
	log := obslog.GetDefaultLogger().WithExecutionID(executionID)
	log.Debug("executing")

	start := time.Now()
	result, err := fn()
	elapsed := time.Since(start)
	if err != nil {
		log.Warn(fmt.Sprintf("execution failed after %s: %s", elapsed, err.Error()))
		return value.Value{}, err
	}
	log.Info(fmt.Sprintf("executed in %s", elapsed))
	return result, nil
}
