package asl

import (
	"fmt"

	"github.com/grussorusso/stepflow/utils"
)

// TaskState invokes the task executor on an opaque resource URI. The
// engine does not interpret the resource; the executor does.
type TaskState struct {
	Resource         string
	Transition       Transition
	IO               IOFilter
	Retry            []Retrier
	Catch            []Catcher
	TimeoutSeconds   int // 0 = no timeout
	HeartbeatSeconds int // accepted and round-tripped; enforcement is a host concern
}

func (t *TaskState) GetType() StateType {
	return Task
}

func parseTaskState(data []byte) (*TaskState, error) {
	resource, err := utils.JsonExtractString(data, "Resource")
	if err != nil {
		return nil, fmt.Errorf("resource field is mandatory for a task state, but it is not defined")
	}
	transition, err := parseTransition(data, Task)
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
	t := &TaskState{
		Resource:         resource,
		Transition:       transition,
		IO:               io,
		Retry:            retriers,
		Catch:            catchers,
		TimeoutSeconds:   utils.JsonExtractIntOrDefault(data, "TimeoutSeconds", 0),
		HeartbeatSeconds: utils.JsonExtractIntOrDefault(data, "HeartbeatSeconds", 0),
	}
	if t.TimeoutSeconds < 0 || t.HeartbeatSeconds < 0 {
		return nil, fmt.Errorf("TimeoutSeconds and HeartbeatSeconds must be non-negative")
	}
	if t.HeartbeatSeconds > 0 && t.TimeoutSeconds > 0 && t.HeartbeatSeconds > t.TimeoutSeconds {
		return nil, fmt.Errorf("HeartbeatSeconds %d exceeds timeout %d", t.HeartbeatSeconds, t.TimeoutSeconds)
	}
	return t, nil
}
