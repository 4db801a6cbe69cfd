package engine

import (
	"context"
	"math"
	"time"

	"github.com/grussorusso/stepflow/internal/asl"
)

// runProtected executes a state body under its Retry and Catch lists.
// On an error the first matching retrier re-enters the body after the
// backoff sleep; attempt counts are kept per retrier. Once retries are
// exhausted (or none match), the first matching catcher injects the error
// record at its ResultPath and redirects the transition. An unmatched
// error is returned and fails the whole execution.
func (e *Execution) runProtected(ctx context.Context, retriers []asl.Retrier, catchers []asl.Catcher,
	transition asl.Transition, raw interface{}, body func(context.Context) (interface{}, error)) (stateOutcome, error) {

	attempts := make([]int, len(retriers))
	var serr *asl.StateError
	for {
		output, err := body(ctx)
		if err == nil {
			return outcomeForTransition(transition, output), nil
		}
		serr = asStateError(err, asl.StatesTaskFailed)

		// a cancelled execution neither retries nor catches
		if ctx.Err() != nil {
			return stateOutcome{}, cancellationError(ctx)
		}

		idx := matchRetrier(retriers, serr.Name)
		if idx < 0 || attempts[idx] >= retriers[idx].MaxAttempts {
			break
		}
		attempts[idx]++
		if err := sleepBackoff(ctx, retriers[idx], attempts[idx]); err != nil {
			return stateOutcome{}, cancellationError(ctx)
		}
	}

	catcher := matchCatcher(catchers, serr.Name)
	if catcher == nil {
		return stateOutcome{}, serr
	}
	combined, err := applyResultPath(catcher.ResultPath, raw, serr.Record())
	if err != nil {
		return stateOutcome{}, err
	}
	return stateOutcome{output: combined, next: catcher.Next}, nil
}

// matchRetrier returns the index of the first retrier whose ErrorEquals
// matches the error name. States.ALL matches any name, but matches
// States.Timeout only when it is the state's only retrier or the timeout
// is listed explicitly.
func matchRetrier(retriers []asl.Retrier, name string) int {
	for i, r := range retriers {
		for _, candidate := range r.ErrorEquals {
			if candidate == name {
				return i
			}
			if candidate == asl.StatesALL && (name != asl.StatesTimeout || len(retriers) == 1) {
				return i
			}
		}
	}
	return -1
}

// matchCatcher returns the first catcher matching the error name;
// a catcher's States.ALL matches every error.
func matchCatcher(catchers []asl.Catcher, name string) *asl.Catcher {
	for i, c := range catchers {
		for _, candidate := range c.ErrorEquals {
			if candidate == name || candidate == asl.StatesALL {
				return &catchers[i]
			}
		}
	}
	return nil
}

// sleepBackoff sleeps IntervalSeconds * BackoffRate^(attempt-1) seconds,
// honouring cancellation.
func sleepBackoff(ctx context.Context, r asl.Retrier, attempt int) error {
	delay := backoffDelay(r, attempt)
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// backoffDelay is the sleep before the given retry attempt (1-based).
func backoffDelay(r asl.Retrier, attempt int) time.Duration {
	seconds := float64(r.IntervalSeconds) * math.Pow(r.BackoffRate, float64(attempt-1))
	return time.Duration(seconds * float64(time.Second))
}

func outcomeForTransition(t asl.Transition, output interface{}) stateOutcome {
	if t.End {
		return stateOutcome{output: output, terminal: true}
	}
	return stateOutcome{output: output, next: t.Next}
}
