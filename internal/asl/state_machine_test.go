package asl

import (
	"testing"

	"github.com/grussorusso/stepflow/utils"
)

const fullDefinition = `{
	"Comment": "order processing",
	"Version": "1.0",
	"StartAt": "Validate",
	"TimeoutSeconds": 120,
	"States": {
		"Validate": {
			"Type": "Task",
			"Resource": "fn:validate",
			"InputPath": "$.order",
			"Parameters": {"id.$": "$.id", "static": 1},
			"ResultSelector": {"valid.$": "$.ok"},
			"ResultPath": "$.validation",
			"TimeoutSeconds": 10,
			"HeartbeatSeconds": 5,
			"Retry": [
				{"ErrorEquals": ["States.Timeout"], "IntervalSeconds": 2, "MaxAttempts": 2, "BackoffRate": 1.5},
				{"ErrorEquals": ["States.ALL"]}
			],
			"Catch": [
				{"ErrorEquals": ["States.ALL"], "ResultPath": "$.error", "Next": "Failed"}
			],
			"Next": "Route"
		},
		"Route": {
			"Type": "Choice",
			"Choices": [
				{"Variable": "$.validation.valid", "BooleanEquals": true, "Next": "Hold"}
			],
			"Default": "Failed"
		},
		"Hold": {
			"Type": "Wait",
			"SecondsPath": "$.delay",
			"Next": "Work"
		},
		"Work": {
			"Type": "Parallel",
			"MaxConcurrency": 2,
			"Branches": [
				{"StartAt": "A", "States": {"A": {"Type": "Pass", "End": true}}},
				{"StartAt": "B", "States": {"B": {"Type": "Succeed"}}}
			],
			"Next": "Done"
		},
		"Done": {
			"Type": "Pass",
			"Result": {"done": true},
			"End": true
		},
		"Failed": {
			"Type": "Fail",
			"Error": "OrderRejected",
			"Cause": "validation failed"
		}
	}
}`

func TestParseFullDefinition(t *testing.T) {
	sm, err := Parse([]byte(fullDefinition))
	utils.AssertNil(t, err)
	utils.AssertEquals(t, "Validate", sm.StartAt)
	utils.AssertEquals(t, 120, sm.TimeoutSeconds)
	utils.AssertEquals(t, 6, len(sm.States))

	task := sm.States["Validate"].(*TaskState)
	utils.AssertEquals(t, "fn:validate", task.Resource)
	utils.AssertEquals(t, "Route", task.Transition.Next)
	utils.AssertEquals(t, Path("$.order"), task.IO.InputPath.Path)
	utils.AssertEquals(t, Path("$.validation"), task.IO.ResultPath.Path)
	utils.AssertNonNil(t, task.IO.Parameters)
	utils.AssertNonNil(t, task.IO.ResultSelector)
	utils.AssertEquals(t, 10, task.TimeoutSeconds)
	utils.AssertEquals(t, 5, task.HeartbeatSeconds)

	utils.AssertEquals(t, 2, len(task.Retry))
	utils.AssertEquals(t, 2, task.Retry[0].IntervalSeconds)
	utils.AssertEquals(t, 2, task.Retry[0].MaxAttempts)
	utils.AssertEquals(t, 1.5, task.Retry[0].BackoffRate)
	// defaults
	utils.AssertEquals(t, 1, task.Retry[1].IntervalSeconds)
	utils.AssertEquals(t, 3, task.Retry[1].MaxAttempts)
	utils.AssertEquals(t, 2.0, task.Retry[1].BackoffRate)

	utils.AssertEquals(t, 1, len(task.Catch))
	utils.AssertEquals(t, "Failed", task.Catch[0].Next)
	utils.AssertEquals(t, Path("$.error"), task.Catch[0].ResultPath.Path)

	choice := sm.States["Route"].(*ChoiceState)
	utils.AssertEquals(t, 1, len(choice.Choices))
	utils.AssertEquals(t, "Failed", choice.Default)

	wait := sm.States["Hold"].(*WaitState)
	utils.AssertEquals(t, Path("$.delay"), wait.SecondsPath)

	parallel := sm.States["Work"].(*ParallelState)
	utils.AssertEquals(t, 2, len(parallel.Branches))
	utils.AssertEquals(t, 2, parallel.MaxConcurrency)

	pass := sm.States["Done"].(*PassState)
	utils.AssertTrue(t, pass.HasResult)
	utils.AssertTrue(t, pass.Transition.End)

	fail := sm.States["Failed"].(*FailState)
	utils.AssertEquals(t, "OrderRejected", fail.Error)
}

func TestParseNullPaths(t *testing.T) {
	def := `{
		"StartAt": "A",
		"States": {
			"A": {"Type": "Pass", "InputPath": null, "ResultPath": null, "OutputPath": null, "End": true}
		}
	}`
	sm, err := Parse([]byte(def))
	utils.AssertNil(t, err)
	pass := sm.States["A"].(*PassState)
	utils.AssertTrue(t, pass.IO.InputPath.IsNull)
	utils.AssertTrue(t, pass.IO.ResultPath.IsNull)
	utils.AssertTrue(t, pass.IO.OutputPath.IsNull)
}

func TestDefinitionErrors(t *testing.T) {
	cases := map[string]string{
		"missing StartAt": `{
			"States": {"A": {"Type": "Pass", "End": true}}
		}`,
		"StartAt not in States": `{
			"StartAt": "X",
			"States": {"A": {"Type": "Pass", "End": true}}
		}`,
		"unknown Next target": `{
			"StartAt": "A",
			"States": {"A": {"Type": "Pass", "Next": "Ghost"}, "B": {"Type": "Succeed"}}
		}`,
		"unknown catcher target": `{
			"StartAt": "A",
			"States": {"A": {
				"Type": "Task", "Resource": "fn:x", "End": true,
				"Catch": [{"ErrorEquals": ["States.ALL"], "Next": "Ghost"}]
			}}
		}`,
		"no terminal state": `{
			"StartAt": "A",
			"States": {"A": {"Type": "Pass", "Next": "B"}, "B": {"Type": "Pass", "Next": "A"}}
		}`,
		"non-terminal without Next": `{
			"StartAt": "A",
			"States": {"A": {"Type": "Pass"}}
		}`,
		"both Next and End": `{
			"StartAt": "A",
			"States": {"A": {"Type": "Pass", "Next": "B", "End": true}, "B": {"Type": "Succeed"}}
		}`,
		"task without Resource": `{
			"StartAt": "A",
			"States": {"A": {"Type": "Task", "End": true}}
		}`,
		"wait with two conditions": `{
			"StartAt": "A",
			"States": {"A": {"Type": "Wait", "Seconds": 1, "Timestamp": "2030-01-01T00:00:00Z", "End": true}}
		}`,
		"wait with no condition": `{
			"StartAt": "A",
			"States": {"A": {"Type": "Wait", "End": true}}
		}`,
		"parallel without branches": `{
			"StartAt": "A",
			"States": {"A": {"Type": "Parallel", "Branches": [], "End": true}}
		}`,
		"parallel MaxConcurrency zero": `{
			"StartAt": "A",
			"States": {"A": {
				"Type": "Parallel", "MaxConcurrency": 0, "End": true,
				"Branches": [{"StartAt": "B", "States": {"B": {"Type": "Succeed"}}}]
			}}
		}`,
		"invalid branch": `{
			"StartAt": "A",
			"States": {"A": {
				"Type": "Parallel", "End": true,
				"Branches": [{"StartAt": "Ghost", "States": {"B": {"Type": "Succeed"}}}]
			}}
		}`,
		"choice without choices": `{
			"StartAt": "A",
			"States": {"A": {"Type": "Choice", "Default": "B"}, "B": {"Type": "Succeed"}}
		}`,
		"unknown state type": `{
			"StartAt": "A",
			"States": {"A": {"Type": "Map", "End": true}}
		}`,
	}
	for name, def := range cases {
		_, err := Parse([]byte(def))
		utils.AssertNonNilMsg(t, err, name)
	}
}
