package asl

import (
	"fmt"

	"github.com/buger/jsonparser"
	"github.com/grussorusso/stepflow/utils"
)

// ParallelState runs its branches concurrently, each branch being a full
// state machine interpreted recursively. MaxConcurrency bounds how many
// branches run at once; 0 means "number of branches".
type ParallelState struct {
	Branches       []*StateMachine
	MaxConcurrency int
	Transition     Transition
	IO             IOFilter
	Retry          []Retrier
	Catch          []Catcher
}

func (p *ParallelState) GetType() StateType {
	return Parallel
}

func parseParallelState(data []byte) (*ParallelState, error) {
	transition, err := parseTransition(data, Parallel)
	if err != nil {
		return nil, err
	}
	io, err := parseIOFilter(data, true, true)
	if err != nil {
		return nil, err
	}
	retriers, err := parseRetriers(data)
	if err != nil {
		return nil, err
	}
	catchers, err := parseCatchers(data)
	if err != nil {
		return nil, err
	}

	raw, dataType, _, err := jsonparser.Get(data, "Branches")
	if err != nil || dataType != jsonparser.Array {
		return nil, fmt.Errorf("branches field is mandatory for a parallel state")
	}
	var branches []*StateMachine
	var parseErr error
	_, err = jsonparser.ArrayEach(raw, func(value []byte, dataType jsonparser.ValueType, offset int, e error) {
		if parseErr != nil {
			return
		}
		branch, errBranch := parseStateMachine(value)
		if errBranch != nil {
			parseErr = fmt.Errorf("invalid branch: %v", errBranch)
			return
		}
		branches = append(branches, branch)
	})
	if err != nil {
		return nil, err
	}
	if parseErr != nil {
		return nil, parseErr
	}
	if len(branches) == 0 {
		return nil, fmt.Errorf("a parallel state requires at least one branch")
	}

	maxConcurrency := utils.JsonExtractIntOrDefault(data, "MaxConcurrency", 0)
	if utils.JsonHasKey(data, "MaxConcurrency") && maxConcurrency < 1 {
		return nil, fmt.Errorf("MaxConcurrency must be at least 1")
	}

	return &ParallelState{
		Branches:       branches,
		MaxConcurrency: maxConcurrency,
		Transition:     transition,
		IO:             io,
		Retry:          retriers,
		Catch:          catchers,
	}, nil
}
