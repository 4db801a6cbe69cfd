package engine

import (
	"github.com/grussorusso/stepflow/internal/asl"
)

// The six-stage filter pipeline wrapped around a state's work step:
// InputPath -> Parameters -> work -> ResultSelector -> ResultPath ->
// OutputPath. Each stage produces a new value; the raw input at pipeline
// entry is never mutated.

// applyInputPath selects the working sub-document. An explicit null
// replaces the input with an empty object; a path that does not resolve
// fails with States.ParameterPathFailure.
func applyInputPath(op asl.OptionalPath, raw interface{}) (interface{}, error) {
	if op.IsNull {
		return map[string]interface{}{}, nil
	}
	selected, err := op.Effective().Resolve(raw)
	if err != nil {
		return nil, asl.NewStateError(asl.StatesParameterPathFailure, "InputPath: %v", err)
	}
	return selected, nil
}

// applyParameters instantiates the Parameters template against the
// selected input to produce the effective input.
func applyParameters(t *asl.PayloadTemplate, scope interface{}, env *asl.IntrinsicEnv) (interface{}, error) {
	if t == nil {
		return scope, nil
	}
	return t.Evaluate(scope, env)
}

// applyResultSelector instantiates the ResultSelector template against
// the raw result.
func applyResultSelector(t *asl.PayloadTemplate, result interface{}, env *asl.IntrinsicEnv) (interface{}, error) {
	if t == nil {
		return result, nil
	}
	return t.Evaluate(result, env)
}

// applyResultPath inserts the result into the raw input. An explicit null
// discards the result; a path that cannot be placed fails with
// States.ResultPathMatchFailure.
func applyResultPath(op asl.OptionalPath, raw interface{}, result interface{}) (interface{}, error) {
	if op.IsNull {
		return raw, nil
	}
	combined, err := op.Effective().Insert(raw, result)
	if err != nil {
		return nil, asl.NewStateError(asl.StatesResultPathMatchFailure, "ResultPath: %v", err)
	}
	return combined, nil
}

// applyOutputPath selects the state's final output out of the combined
// document. An explicit null yields an empty object.
func applyOutputPath(op asl.OptionalPath, combined interface{}) (interface{}, error) {
	if op.IsNull {
		return map[string]interface{}{}, nil
	}
	selected, err := op.Effective().Resolve(combined)
	if err != nil {
		return nil, asl.NewStateError(asl.StatesParameterPathFailure, "OutputPath: %v", err)
	}
	return selected, nil
}

// effectiveInput runs stages (1) and (2) for states that take Parameters.
func effectiveInput(io asl.IOFilter, raw interface{}, env *asl.IntrinsicEnv) (interface{}, error) {
	selected, err := applyInputPath(io.InputPath, raw)
	if err != nil {
		return nil, err
	}
	return applyParameters(io.Parameters, selected, env)
}

// finishPipeline runs stages (4) to (6) around a raw result.
func finishPipeline(io asl.IOFilter, raw interface{}, result interface{}, env *asl.IntrinsicEnv) (interface{}, error) {
	selected, err := applyResultSelector(io.ResultSelector, result, env)
	if err != nil {
		return nil, err
	}
	combined, err := applyResultPath(io.ResultPath, raw, selected)
	if err != nil {
		return nil, err
	}
	return applyOutputPath(io.OutputPath, combined)
}
