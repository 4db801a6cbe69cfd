package asl

import "fmt"

// Reserved error names of the States Language. Any other name is
// user-defined. States.ALL is only ever used for matching, never surfaced.
const (
	StatesALL                    = "States.ALL"
	StatesTimeout                = "States.Timeout"
	StatesTaskFailed             = "States.TaskFailed"
	StatesPermissions            = "States.Permissions"
	StatesResultPathMatchFailure = "States.ResultPathMatchFailure"
	StatesParameterPathFailure   = "States.ParameterPathFailure"
	StatesBranchFailed           = "States.BranchFailed"
	StatesNoChoiceMatched        = "States.NoChoiceMatched"
	StatesIntrinsicFailure       = "States.IntrinsicFailure"
)

// StateError is the error record of the protocol: a name, which Retry and
// Catch lists match against, and a human-readable cause.
type StateError struct {
	Name  string
	Cause string
}

func (e *StateError) Error() string {
	if e.Cause == "" {
		return e.Name
	}
	return fmt.Sprintf("%s: %s", e.Name, e.Cause)
}

// Record returns the JSON payload injected by a matching catcher.
func (e *StateError) Record() map[string]interface{} {
	return map[string]interface{}{
		"Error": e.Name,
		"Cause": e.Cause,
	}
}

func NewStateError(name string, format string, args ...interface{}) *StateError {
	return &StateError{Name: name, Cause: fmt.Sprintf(format, args...)}
}
