package engine

import (
	"github.com/grussorusso/stepflow/internal/asl"
)

// executeChoice evaluates the rules in order and routes to the first
// match, or to Default. Choice applies only InputPath and OutputPath and
// leaves the document unchanged.
func (e *Execution) executeChoice(s *asl.ChoiceState) (stateOutcome, error) {
	raw := e.output
	selected, err := applyInputPath(s.IO.InputPath, raw)
	if err != nil {
		return stateOutcome{}, err
	}

	next := s.Default
	for _, rule := range s.Choices {
		matched, err := rule.Match(selected)
		if err != nil {
			return stateOutcome{}, asl.NewStateError(RuntimeError, "choice rule: %v", err)
		}
		if matched {
			next = rule.GetNextState()
			break
		}
	}
	if next == "" {
		return stateOutcome{}, asl.NewStateError(asl.StatesNoChoiceMatched, "no choice rule matched and no Default is set")
	}

	output, err := applyOutputPath(s.IO.OutputPath, selected)
	if err != nil {
		return stateOutcome{}, err
	}
	return stateOutcome{output: output, next: next}, nil
}
