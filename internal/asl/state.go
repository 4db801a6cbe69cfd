package asl

import (
	"fmt"

	"github.com/grussorusso/stepflow/utils"
)

// State is the common interface for ASL states. StateTypes are Task,
// Parallel, Pass, Wait, Choice, Succeed and Fail. The Map state of the
// language is not supported.
type State interface {
	GetType() StateType
}

// StateType for ASL states
type StateType string

const (
	Task     StateType = "Task"
	Parallel StateType = "Parallel"
	Pass     StateType = "Pass"
	Wait     StateType = "Wait"
	Choice   StateType = "Choice"
	Succeed  StateType = "Succeed"
	Fail     StateType = "Fail"
)

// Transition holds the exactly-one-of Next/End pair every non-terminal
// state (except Choice) carries.
type Transition struct {
	Next string
	End  bool
}

func parseTransition(data []byte, stateType StateType) (Transition, error) {
	t := Transition{End: utils.JsonExtractBool(data, "End")}
	next := utils.JsonExtractStringOrDefault(data, "Next", "")
	if t.End && next != "" {
		return t, fmt.Errorf("a %s state must have exactly one of Next and End", stateType)
	}
	if !t.End {
		if next == "" {
			return t, fmt.Errorf("a non-terminal %s state requires a Next field", stateType)
		}
		t.Next = next
	}
	return t, nil
}

// IOFilter bundles the filter pipeline fields a state declares. Absent
// paths default to "$"; Parameters and ResultSelector stay nil when not
// present.
type IOFilter struct {
	InputPath      OptionalPath
	OutputPath     OptionalPath
	ResultPath     OptionalPath
	Parameters     *PayloadTemplate
	ResultSelector *PayloadTemplate
}

// parseIOFilter extracts the pipeline fields. InputPath and OutputPath are
// always read; withResult adds ResultPath and Parameters, withSelector adds
// ResultSelector. Each state kind passes the subset the language grants it.
func parseIOFilter(data []byte, withResult bool, withSelector bool) (IOFilter, error) {
	var io IOFilter
	var err error
	if io.InputPath, err = jsonExtractOptionalPath(data, "InputPath"); err != nil {
		return io, err
	}
	if io.OutputPath, err = jsonExtractOptionalPath(data, "OutputPath"); err != nil {
		return io, err
	}
	if withResult {
		if io.ResultPath, err = jsonExtractOptionalPath(data, "ResultPath"); err != nil {
			return io, err
		}
		if raw := jsonExtractRaw(data, "Parameters"); raw != nil {
			if io.Parameters, err = ParsePayloadTemplate(raw); err != nil {
				return io, err
			}
		}
	}
	if withSelector {
		if raw := jsonExtractRaw(data, "ResultSelector"); raw != nil {
			if io.ResultSelector, err = ParsePayloadTemplate(raw); err != nil {
				return io, err
			}
		}
	}
	return io, nil
}

// parseState dispatches on the Type field.
func parseState(data []byte) (State, error) {
	typeName, err := utils.JsonExtractString(data, "Type")
	if err != nil {
		return nil, fmt.Errorf("state has no Type field")
	}
	switch StateType(typeName) {
	case Task:
		return parseTaskState(data)
	case Parallel:
		return parseParallelState(data)
	case Pass:
		return parsePassState(data)
	case Wait:
		return parseWaitState(data)
	case Choice:
		return parseChoiceState(data)
	case Succeed:
		return parseSucceedState(data)
	case Fail:
		return parseFailState(data)
	default:
		return nil, fmt.Errorf("unknown state type '%s'", typeName)
	}
}
