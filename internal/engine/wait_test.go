package engine

import (
	"context"
	"testing"
	"time"

	"github.com/grussorusso/stepflow/utils"
)

func TestWaitSecondsPath(t *testing.T) {
	def := `{
		"StartAt": "W",
		"States": {"W": {"Type": "Wait", "SecondsPath": "$.delay", "End": true}}
	}`
	start := time.Now()
	execution := runToCompletion(t, def, `{"delay": 0}`, nil)
	utils.AssertEquals(t, StatusSucceeded, execution.Status())
	utils.AssertTrue(t, time.Since(start) < time.Second)
	utils.AssertDeepEquals(t, docFromJson(t, `{"delay": 0}`), execution.Output())
}

func TestWaitPastTimestampIsImmediate(t *testing.T) {
	def := `{
		"StartAt": "W",
		"States": {"W": {"Type": "Wait", "Timestamp": "2000-01-01T00:00:00Z", "End": true}}
	}`
	start := time.Now()
	execution := runToCompletion(t, def, `{}`, nil)
	utils.AssertEquals(t, StatusSucceeded, execution.Status())
	utils.AssertTrue(t, time.Since(start) < time.Second)
}

func TestWaitTimestampPath(t *testing.T) {
	def := `{
		"StartAt": "W",
		"States": {"W": {"Type": "Wait", "TimestampPath": "$.until", "End": true}}
	}`
	execution := runToCompletion(t, def, `{"until": "2000-01-01T00:00:00Z"}`, nil)
	utils.AssertEquals(t, StatusSucceeded, execution.Status())
}

func TestWaitBadSecondsPath(t *testing.T) {
	def := `{
		"StartAt": "W",
		"States": {"W": {"Type": "Wait", "SecondsPath": "$.delay", "End": true}}
	}`
	execution := runToCompletion(t, def, `{"delay": "soon"}`, nil)
	utils.AssertEquals(t, StatusFailed, execution.Status())
	utils.AssertEquals(t, "States.ParameterPathFailure", execution.Err().Name)
}

func TestWaitCancellation(t *testing.T) {
	def := `{
		"StartAt": "W",
		"States": {"W": {"Type": "Wait", "Seconds": 60, "End": true}}
	}`
	m := buildTestMachine(t, def)
	execution := m.StartExecution(docFromJson(t, `{}`), "", nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		execution.RunAll(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("wait did not honour cancellation")
	}
	utils.AssertEquals(t, StatusFailed, execution.Status())
	utils.AssertEquals(t, CancelledError, execution.Err().Name)
}

func TestWaitDeadlineSurfacesTimeout(t *testing.T) {
	def := `{
		"StartAt": "W",
		"States": {"W": {"Type": "Wait", "Seconds": 60, "End": true}}
	}`
	m := buildTestMachine(t, def)
	execution := m.StartExecution(docFromJson(t, `{}`), "", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	utils.AssertNil(t, execution.RunAll(ctx))
	utils.AssertEquals(t, StatusFailed, execution.Status())
	utils.AssertEquals(t, "States.Timeout", execution.Err().Name)
}
