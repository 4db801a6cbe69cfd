package engine

import (
	"context"
	"testing"

	"github.com/grussorusso/stepflow/utils"
)

// shared test helpers

func buildTestMachine(t *testing.T, def string) *Machine {
	m, err := BuildMachine([]byte(def), Options{})
	utils.AssertNilMsg(t, err, "definition should build")
	return m
}

func docFromJson(t *testing.T, data string) interface{} {
	doc, err := utils.DecodeJSON([]byte(data))
	utils.AssertNilMsg(t, err, "test document should be valid JSON")
	return doc
}

func runToCompletion(t *testing.T, def string, input string, execCtx *ExecContext) *Execution {
	m := buildTestMachine(t, def)
	execution := m.StartExecution(docFromJson(t, input), "test-exec", execCtx)
	err := execution.RunAll(context.Background())
	utils.AssertNil(t, err)
	return execution
}

func TestPassIdentity(t *testing.T) {
	def := `{"StartAt": "A", "States": {"A": {"Type": "Pass", "End": true}}}`
	execution := runToCompletion(t, def, `{"x": 1}`, nil)

	utils.AssertEquals(t, StatusSucceeded, execution.Status())
	utils.AssertDeepEquals(t, docFromJson(t, `{"x": 1}`), execution.Output())
	utils.AssertEquals(t, 1, len(execution.History()))
	utils.AssertEquals(t, "A", execution.History()[0].StateName)
}

func TestPassResultLiteral(t *testing.T) {
	def := `{
		"StartAt": "A",
		"States": {"A": {"Type": "Pass", "Result": {"fixed": true}, "ResultPath": "$.r", "End": true}}
	}`
	execution := runToCompletion(t, def, `{"x": 1}`, nil)

	utils.AssertEquals(t, StatusSucceeded, execution.Status())
	utils.AssertDeepEquals(t, docFromJson(t, `{"x": 1, "r": {"fixed": true}}`), execution.Output())
}

func TestPassParameters(t *testing.T) {
	def := `{
		"StartAt": "A",
		"States": {"A": {
			"Type": "Pass",
			"Parameters": {"renamed.$": "$.x", "sum.$": "States.MathAdd($.x, 10)"},
			"End": true
		}}
	}`
	execution := runToCompletion(t, def, `{"x": 5}`, nil)

	utils.AssertEquals(t, StatusSucceeded, execution.Status())
	utils.AssertDeepEquals(t, docFromJson(t, `{"renamed": 5, "sum": 15}`), execution.Output())
}

func TestResultPathNullDiscards(t *testing.T) {
	def := `{
		"StartAt": "A",
		"States": {"A": {"Type": "Pass", "Result": {"ignored": 1}, "ResultPath": null, "End": true}}
	}`
	execution := runToCompletion(t, def, `{"x": 1}`, nil)

	utils.AssertDeepEquals(t, docFromJson(t, `{"x": 1}`), execution.Output())
}

func TestOutputPathNullYieldsEmptyObject(t *testing.T) {
	def := `{"StartAt": "A", "States": {"A": {"Type": "Pass", "OutputPath": null, "End": true}}}`
	execution := runToCompletion(t, def, `{"x": 1}`, nil)

	utils.AssertDeepEquals(t, docFromJson(t, `{}`), execution.Output())
}

func TestInputPathNullYieldsEmptyObject(t *testing.T) {
	def := `{"StartAt": "A", "States": {"A": {"Type": "Pass", "InputPath": null, "End": true}}}`
	execution := runToCompletion(t, def, `{"x": 1}`, nil)

	utils.AssertDeepEquals(t, docFromJson(t, `{}`), execution.Output())
}

func TestInputPathFailureFailsExecution(t *testing.T) {
	def := `{"StartAt": "A", "States": {"A": {"Type": "Pass", "InputPath": "$.missing", "End": true}}}`
	execution := runToCompletion(t, def, `{"x": 1}`, nil)

	utils.AssertEquals(t, StatusFailed, execution.Status())
	utils.AssertEquals(t, "States.ParameterPathFailure", execution.Err().Name)
}

func TestStepIsNoOpWhenTerminal(t *testing.T) {
	def := `{"StartAt": "A", "States": {"A": {"Type": "Pass", "End": true}}}`
	m := buildTestMachine(t, def)
	execution := m.StartExecution(docFromJson(t, `{}`), "", nil)

	utils.AssertNil(t, execution.Step(context.Background()))
	utils.AssertEquals(t, StatusSucceeded, execution.Status())
	historyLen := len(execution.History())

	utils.AssertNil(t, execution.Step(context.Background()))
	utils.AssertEquals(t, historyLen, len(execution.History()))
}

func TestMaxStepsBound(t *testing.T) {
	def := `{
		"StartAt": "A",
		"States": {
			"A": {"Type": "Pass", "Next": "B"},
			"B": {"Type": "Pass", "Next": "A"},
			"C": {"Type": "Succeed"}
		}
	}`
	m := buildTestMachine(t, def)
	execution := m.StartExecution(docFromJson(t, `{}`), "", &ExecContext{MaxSteps: 10})
	utils.AssertNil(t, execution.RunAll(context.Background()))

	utils.AssertEquals(t, StatusFailed, execution.Status())
	utils.AssertEquals(t, RuntimeError, execution.Err().Name)
}

func TestHistoryOrdering(t *testing.T) {
	def := `{
		"StartAt": "A",
		"States": {
			"A": {"Type": "Pass", "Next": "B"},
			"B": {"Type": "Pass", "Next": "C"},
			"C": {"Type": "Succeed"}
		}
	}`
	execution := runToCompletion(t, def, `{}`, nil)

	history := execution.History()
	utils.AssertEquals(t, 3, len(history))
	utils.AssertSliceEquals(t, []string{"A", "B", "C"},
		[]string{history[0].StateName, history[1].StateName, history[2].StateName})
	for i := 1; i < len(history); i++ {
		utils.AssertFalse(t, history[i].ExitedAt.Before(history[i-1].ExitedAt))
	}
	for _, h := range history {
		_, known := execution.machine.sm.States[h.StateName]
		utils.AssertTrue(t, known)
	}
}

func TestSucceedAndFailStates(t *testing.T) {
	def := `{
		"StartAt": "S",
		"States": {"S": {"Type": "Succeed", "OutputPath": "$.keep"}}
	}`
	execution := runToCompletion(t, def, `{"keep": {"v": 1}, "drop": 2}`, nil)
	utils.AssertEquals(t, StatusSucceeded, execution.Status())
	utils.AssertDeepEquals(t, docFromJson(t, `{"v": 1}`), execution.Output())

	def = `{
		"StartAt": "F",
		"States": {"F": {"Type": "Fail", "Error": "Boom", "Cause": "it broke"}}
	}`
	execution = runToCompletion(t, def, `{}`, nil)
	utils.AssertEquals(t, StatusFailed, execution.Status())
	utils.AssertEquals(t, "Boom", execution.Err().Name)
	utils.AssertEquals(t, "it broke", execution.Err().Cause)
}

func TestExecutionTimeAndRunAllAfterFailure(t *testing.T) {
	def := `{"StartAt": "F", "States": {"F": {"Type": "Fail", "Error": "E"}}}`
	m := buildTestMachine(t, def)
	execution := m.StartExecution(docFromJson(t, `{}`), "", nil)
	utils.AssertNil(t, execution.RunAll(context.Background()))
	utils.AssertEquals(t, StatusFailed, execution.Status())
	utils.AssertTrue(t, execution.ExecutionTime() >= 0)

	// subsequent runs are no-ops
	historyLen := len(execution.History())
	utils.AssertNil(t, execution.RunAll(context.Background()))
	utils.AssertEquals(t, historyLen, len(execution.History()))
}
