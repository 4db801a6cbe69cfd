package engine

import (
	"context"
	"errors"

	"github.com/grussorusso/stepflow/internal/asl"
)

// CancelledError is the implementation-defined name surfaced when an
// execution is cancelled by its caller rather than by a timeout.
const CancelledError = "Stepflow.Cancelled"

// RuntimeError names engine-level failures that are not part of the
// protocol's reserved set, e.g. exceeding the step bound.
const RuntimeError = "Stepflow.Runtime"

// asStateError normalizes any error into a protocol error record, using
// fallback as the error name for plain errors.
func asStateError(err error, fallback string) *asl.StateError {
	var serr *asl.StateError
	if errors.As(err, &serr) {
		return serr
	}
	return &asl.StateError{Name: fallback, Cause: err.Error()}
}

// cancellationError maps a done context onto the protocol: a deadline is a
// States.Timeout, an explicit cancellation gets the implementation name.
func cancellationError(ctx context.Context) *asl.StateError {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &asl.StateError{Name: asl.StatesTimeout, Cause: "execution deadline exceeded"}
	}
	return &asl.StateError{Name: CancelledError, Cause: "execution cancelled"}
}
