package engine

import (
	"context"
	"errors"
	"time"

	"github.com/grussorusso/stepflow/internal/asl"
)

// executeTask invokes the task executor on the state's resource, under
// the state's timeout, Retry and Catch lists.
func (e *Execution) executeTask(ctx context.Context, s *asl.TaskState) (stateOutcome, error) {
	env := e.execCtx.intrinsicEnv()
	raw := e.output

	body := func(ctx context.Context) (interface{}, error) {
		eff, err := effectiveInput(s.IO, raw, env)
		if err != nil {
			return nil, err
		}
		executor := e.execCtx.TaskExecutor
		if executor == nil {
			return nil, asl.NewStateError(asl.StatesTaskFailed, "no task executor configured for resource '%s'", s.Resource)
		}

		taskCtx := ctx
		if s.TimeoutSeconds > 0 {
			var cancel context.CancelFunc
			taskCtx, cancel = context.WithTimeout(ctx, time.Duration(s.TimeoutSeconds)*time.Second)
			defer cancel()
		}
		result, err := executor.Execute(taskCtx, s.Resource, eff, e.execCtx.Credentials)
		if err != nil {
			// a state-level timeout is a protocol error, not a cancellation
			if errors.Is(taskCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
				return nil, asl.NewStateError(asl.StatesTimeout, "task '%s' did not complete within %d seconds", s.Resource, s.TimeoutSeconds)
			}
			return nil, asStateError(err, asl.StatesTaskFailed)
		}
		return finishPipeline(s.IO, raw, result, env)
	}

	return e.runProtected(ctx, s.Retry, s.Catch, s.Transition, raw, body)
}
