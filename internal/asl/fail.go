package asl

import "github.com/grussorusso/stepflow/utils"

// FailState ends the execution with status failed and the given error
// record. No filters apply.
type FailState struct {
	Error string
	Cause string
}

func (f *FailState) GetType() StateType {
	return Fail
}

func parseFailState(data []byte) (*FailState, error) {
	return &FailState{
		Error: utils.JsonExtractStringOrDefault(data, "Error", ""),
		Cause: utils.JsonExtractStringOrDefault(data, "Cause", ""),
	}, nil
}
