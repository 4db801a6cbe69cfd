package engine

import (
	"context"
	"math/rand"

	"github.com/grussorusso/stepflow/internal/asl"
)

// TaskExecutor is the external collaborator invoked by Task states. The
// resource URI is opaque to the engine. An error carrying a
// *asl.StateError is used verbatim; any other error becomes
// States.TaskFailed.
type TaskExecutor interface {
	Execute(ctx context.Context, resource string, input interface{}, credentials interface{}) (interface{}, error)
}

// TaskExecutorFunc adapts a plain function to the TaskExecutor interface.
type TaskExecutorFunc func(ctx context.Context, resource string, input interface{}, credentials interface{}) (interface{}, error)

func (f TaskExecutorFunc) Execute(ctx context.Context, resource string, input interface{}, credentials interface{}) (interface{}, error) {
	return f(ctx, resource, input, credentials)
}

// ExecContext carries the per-execution collaborators. It is shared
// read-only between an execution and all of its Parallel branch
// sub-executions.
type ExecContext struct {
	TaskExecutor TaskExecutor
	Credentials  interface{}
	// Rand seeds States.UUID and States.MathRandom for deterministic
	// runs; nil uses the global PRNG.
	Rand *rand.Rand
	// MaxSteps bounds the number of dispatcher transitions;
	// 0 falls back to the engine.maxsteps configuration (0 = unbounded).
	MaxSteps int
}

func (c *ExecContext) intrinsicEnv() *asl.IntrinsicEnv {
	return &asl.IntrinsicEnv{Rand: c.Rand}
}
