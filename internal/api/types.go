package api

import "encoding/json"

// CreateMachineRequest registers a state machine definition under a name.
type CreateMachineRequest struct {
	Name       string
	Definition json.RawMessage
}

// InvocationRequest starts an execution of a registered machine. Input is
// kept raw so that numbers survive without a float64 detour.
type InvocationRequest struct {
	Input         json.RawMessage
	Async         bool
	ExecutionName string
	Credentials   string
}

// InvocationResponse is the outcome of a synchronous invocation.
type InvocationResponse struct {
	ExecutionId   string
	Status        string
	Output        interface{} `json:",omitempty"`
	Error         string      `json:",omitempty"`
	Cause         string      `json:",omitempty"`
	ExecutionTime float64
}

// AsyncResponse acknowledges an asynchronous invocation.
type AsyncResponse struct {
	ExecutionId string
}
