package engine

import (
	"context"
	"time"

	"github.com/grussorusso/stepflow/internal/asl"
)

// executeWait sleeps until the wait condition elapses, honouring
// cancellation. Only InputPath and OutputPath apply.
func (e *Execution) executeWait(ctx context.Context, s *asl.WaitState) (stateOutcome, error) {
	raw := e.output
	selected, err := applyInputPath(s.IO.InputPath, raw)
	if err != nil {
		return stateOutcome{}, err
	}

	duration, err := waitDuration(s, selected)
	if err != nil {
		return stateOutcome{}, err
	}
	if duration > 0 {
		timer := time.NewTimer(duration)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return stateOutcome{}, cancellationError(ctx)
		}
	}

	output, err := applyOutputPath(s.IO.OutputPath, selected)
	if err != nil {
		return stateOutcome{}, err
	}
	return outcomeForTransition(s.Transition, output), nil
}

// waitDuration computes how long the state sleeps. A timestamp already in
// the past waits zero.
func waitDuration(s *asl.WaitState, scope interface{}) (time.Duration, error) {
	switch {
	case s.HasSeconds:
		return time.Duration(s.Seconds) * time.Second, nil
	case s.SecondsPath != "":
		v, err := s.SecondsPath.Resolve(scope)
		if err != nil {
			return 0, asl.NewStateError(asl.StatesParameterPathFailure, "SecondsPath: %v", err)
		}
		seconds, ok := asl.ToInt(v)
		if !ok || seconds < 0 {
			return 0, asl.NewStateError(asl.StatesParameterPathFailure, "SecondsPath must resolve to a non-negative integer, got %v", v)
		}
		return time.Duration(seconds) * time.Second, nil
	case s.Timestamp != nil:
		return time.Until(*s.Timestamp), nil
	case s.TimestampPath != "":
		v, err := s.TimestampPath.Resolve(scope)
		if err != nil {
			return 0, asl.NewStateError(asl.StatesParameterPathFailure, "TimestampPath: %v", err)
		}
		ts, ok := asl.ToTimestamp(v)
		if !ok {
			return 0, asl.NewStateError(asl.StatesParameterPathFailure, "TimestampPath must resolve to an ISO-8601 timestamp, got %v", v)
		}
		return time.Until(ts), nil
	default:
		// unreachable after parsing
		return 0, nil
	}
}
