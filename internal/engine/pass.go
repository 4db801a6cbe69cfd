package engine

import (
	"github.com/grussorusso/stepflow/internal/asl"
	"github.com/grussorusso/stepflow/utils"
)

// executePass runs the Pass work step: the raw result is the Result
// literal when present, otherwise the effective input.
func (e *Execution) executePass(s *asl.PassState) (stateOutcome, error) {
	env := e.execCtx.intrinsicEnv()
	raw := e.output

	eff, err := effectiveInput(s.IO, raw, env)
	if err != nil {
		return stateOutcome{}, err
	}
	result := eff
	if s.HasResult {
		result = utils.DeepCopyJSON(s.Result)
	}
	output, err := finishPipeline(s.IO, raw, result, env)
	if err != nil {
		return stateOutcome{}, err
	}
	return outcomeForTransition(s.Transition, output), nil
}
