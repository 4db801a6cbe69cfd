package engine

import (
	"github.com/grussorusso/stepflow/internal/asl"
)

// executeSucceed ends the execution with status succeeded. Succeed
// applies InputPath and OutputPath only.
func (e *Execution) executeSucceed(s *asl.SucceedState) (stateOutcome, error) {
	selected, err := applyInputPath(s.IO.InputPath, e.output)
	if err != nil {
		return stateOutcome{}, err
	}
	output, err := applyOutputPath(s.IO.OutputPath, selected)
	if err != nil {
		return stateOutcome{}, err
	}
	return stateOutcome{output: output, terminal: true}, nil
}

// executeFail ends the execution with status failed and the state's
// error record. No filters apply.
func (e *Execution) executeFail(s *asl.FailState) (stateOutcome, error) {
	return stateOutcome{
		output:  e.output,
		failure: &asl.StateError{Name: s.Error, Cause: s.Cause},
	}, nil
}
