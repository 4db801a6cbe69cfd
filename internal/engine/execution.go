package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/grussorusso/stepflow/internal/asl"
	"github.com/grussorusso/stepflow/internal/config"
	"github.com/grussorusso/stepflow/internal/metrics"
	"github.com/grussorusso/stepflow/utils"
)

type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// HistoryEntry records one dispatcher transition. History is append-only
// and ordered by the transition sequence.
type HistoryEntry struct {
	StateName string      `json:"StateName"`
	EnteredAt time.Time   `json:"EnteredAt"`
	ExitedAt  time.Time   `json:"ExitedAt"`
	Output    interface{} `json:"Output"`
}

// Execution drives a single input document through the machine. It is
// mutated only by its own dispatcher and must not be shared between
// goroutines while running.
type Execution struct {
	machine      *Machine
	name         string
	status       Status
	currentState string
	input        interface{}
	output       interface{}
	err          *asl.StateError
	history      []HistoryEntry
	execCtx      *ExecContext
	startTime    time.Time
	endTime      time.Time
	steps        int
}

func (e *Execution) Name() string            { return e.name }
func (e *Execution) Status() Status          { return e.status }
func (e *Execution) Input() interface{}      { return e.input }
func (e *Execution) Output() interface{}     { return e.output }
func (e *Execution) Err() *asl.StateError    { return e.err }
func (e *Execution) History() []HistoryEntry { return e.history }
func (e *Execution) CurrentState() string    { return e.currentState }
func (e *Execution) StartTime() time.Time    { return e.startTime }
func (e *Execution) EndTime() time.Time      { return e.endTime }

// ExecutionTime is the elapsed wall-clock time; for a running execution,
// the time elapsed so far.
func (e *Execution) ExecutionTime() time.Duration {
	if e.status == StatusRunning {
		return time.Since(e.startTime)
	}
	return e.endTime.Sub(e.startTime)
}

// stateOutcome is what a state handler yields: a transition with an
// output document, or a terminal status.
type stateOutcome struct {
	output   interface{}
	next     string
	terminal bool
	failure  *asl.StateError // terminal failure (Fail state)
}

// Step performs one transition. It is a no-op once the execution is
// terminal. An unrecovered state error transitions the execution to
// failed; Step itself returns nil in that case, since the failure is part
// of the execution outcome, not of the stepping machinery.
func (e *Execution) Step(ctx context.Context) error {
	if e.status != StatusRunning {
		return nil
	}
	if ctx.Err() != nil {
		e.fail(cancellationError(ctx))
		return nil
	}

	spec, ok := e.machine.sm.States[e.currentState]
	if !ok {
		// unreachable after validation
		e.fail(asl.NewStateError(RuntimeError, "unknown state '%s'", e.currentState))
		return nil
	}

	entered := time.Now()
	outcome, err := e.executeState(ctx, spec)
	if err != nil {
		serr := asStateError(err, RuntimeError)
		e.appendHistory(e.currentState, entered, e.output)
		e.fail(serr)
		return nil
	}

	e.output = outcome.output
	e.appendHistory(e.currentState, entered, e.output)
	e.steps++
	metrics.RecordStateTransition(string(spec.GetType()))

	switch {
	case outcome.failure != nil:
		e.fail(outcome.failure)
	case outcome.terminal:
		e.succeed()
	default:
		e.currentState = outcome.next
	}
	return nil
}

// RunAll repeats Step until the execution is terminal. The machine's
// TimeoutSeconds bounds the whole run; the optional max-steps bound turns
// a runaway Next cycle into a failed execution.
func (e *Execution) RunAll(ctx context.Context) error {
	if e.machine.sm.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(e.machine.sm.TimeoutSeconds)*time.Second)
		defer cancel()
	}
	maxSteps := e.execCtx.MaxSteps
	if maxSteps == 0 {
		maxSteps = config.GetInt(config.ENGINE_MAX_STEPS, 0)
	}
	for e.status == StatusRunning {
		if maxSteps > 0 && e.steps >= maxSteps {
			e.fail(asl.NewStateError(RuntimeError, "exceeded maximum number of steps (%d)", maxSteps))
			break
		}
		if err := e.Step(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (e *Execution) appendHistory(stateName string, entered time.Time, output interface{}) {
	e.history = append(e.history, HistoryEntry{
		StateName: stateName,
		EnteredAt: entered,
		ExitedAt:  time.Now(),
		Output:    utils.DeepCopyJSON(output),
	})
}

func (e *Execution) fail(serr *asl.StateError) {
	e.status = StatusFailed
	e.err = serr
	e.currentState = ""
	e.endTime = time.Now()
}

func (e *Execution) succeed() {
	e.status = StatusSucceeded
	e.currentState = ""
	e.endTime = time.Now()
}

// executeState dispatches on the state kind.
func (e *Execution) executeState(ctx context.Context, spec asl.State) (stateOutcome, error) {
	switch s := spec.(type) {
	case *asl.PassState:
		return e.executePass(s)
	case *asl.TaskState:
		return e.executeTask(ctx, s)
	case *asl.ChoiceState:
		return e.executeChoice(s)
	case *asl.WaitState:
		return e.executeWait(ctx, s)
	case *asl.ParallelState:
		return e.executeParallel(ctx, s)
	case *asl.SucceedState:
		return e.executeSucceed(s)
	case *asl.FailState:
		return e.executeFail(s)
	default:
		return stateOutcome{}, fmt.Errorf("unsupported state type %s", spec.GetType())
	}
}
