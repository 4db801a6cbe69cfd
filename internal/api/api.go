package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/grussorusso/stepflow/internal/config"
	"github.com/grussorusso/stepflow/internal/engine"
	"github.com/grussorusso/stepflow/internal/executor"
	"github.com/grussorusso/stepflow/internal/metrics"
	"github.com/grussorusso/stepflow/internal/registry"
	"github.com/grussorusso/stepflow/utils"
	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid"
)

// DefaultExecutor serves every Task state of machines invoked over the
// API. Hosts may register in-process fn: handlers on its Registry.
var DefaultExecutor = executor.NewDispatcher()

// CreateMachine handles the registration of a state machine definition.
// Invalid definitions are rejected with the validation error.
func CreateMachine(c echo.Context) error {
	var req CreateMachineRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return c.String(http.StatusBadRequest, "could not parse request")
	}
	if req.Name == "" || len(req.Definition) == 0 {
		return c.String(http.StatusBadRequest, "Name and Definition are required")
	}
	if _, ok := registry.GetMachine(req.Name); ok {
		return c.String(http.StatusConflict, "a machine with this name already exists")
	}
	record, err := registry.SaveMachine(req.Name, req.Definition)
	if err != nil {
		log.Printf("Machine creation failed: %v", err)
		return c.String(http.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(http.StatusOK, record)
}

// DeleteMachine removes a registered machine.
func DeleteMachine(c echo.Context) error {
	var req CreateMachineRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return c.String(http.StatusBadRequest, "could not parse request")
	}
	if err := registry.DeleteMachine(req.Name); err != nil {
		return c.String(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, req.Name)
}

// GetMachines handles a request to list the registered machines.
func GetMachines(c echo.Context) error {
	list, err := registry.GetAllMachines()
	if err != nil {
		return c.String(http.StatusServiceUnavailable, "")
	}
	return c.JSON(http.StatusOK, list)
}

// InvokeMachine starts an execution of a registered machine, either
// synchronously or, with Async, in the background with the result
// published for polling.
func InvokeMachine(c echo.Context) error {
	machineName := c.Param("machine")
	record, ok := registry.GetMachine(machineName)
	if !ok {
		log.Printf("Dropping request for unknown machine '%s'", machineName)
		return c.JSON(http.StatusNotFound, "")
	}

	var req InvocationRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return c.String(http.StatusBadRequest, "could not parse request")
	}
	var input interface{}
	if len(req.Input) > 0 {
		var err error
		input, err = utils.DecodeJSON(req.Input)
		if err != nil {
			return c.String(http.StatusBadRequest, "Input is not valid JSON")
		}
	}

	m, err := engine.BuildMachine(record.Definition, engine.OptionsFromConfig())
	if err != nil {
		// a stored definition no longer building is a server-side problem
		log.Printf("Stored machine '%s' failed to build: %v", machineName, err)
		return c.String(http.StatusInternalServerError, "")
	}

	name := req.ExecutionName
	if name == "" {
		name = shortuuid.New()
	}
	execCtx := &engine.ExecContext{
		TaskExecutor: DefaultExecutor,
		Credentials:  req.Credentials,
	}
	execution := m.StartExecution(input, name, execCtx)
	metrics.RecordExecutionStarted()

	if req.Async {
		go runAsync(machineName, execution)
		return c.JSON(http.StatusOK, AsyncResponse{ExecutionId: execution.Name()})
	}

	execution.RunAll(c.Request().Context())
	metrics.RecordExecutionCompleted(string(execution.Status()), execution.ExecutionTime())
	return c.JSON(http.StatusOK, invocationResponse(execution))
}

func runAsync(machineName string, execution *engine.Execution) {
	execution.RunAll(context.Background())
	metrics.RecordExecutionCompleted(string(execution.Status()), execution.ExecutionTime())

	result := &registry.ExecutionResult{
		ExecutionId:   execution.Name(),
		Machine:       machineName,
		Status:        string(execution.Status()),
		Output:        execution.Output(),
		ExecutionTime: execution.ExecutionTime().Seconds(),
	}
	if serr := execution.Err(); serr != nil {
		result.Error = serr.Name
		result.Cause = serr.Cause
		result.Output = nil
	}
	ttl := time.Duration(config.GetInt(config.RESULT_TTL, 600)) * time.Second
	if err := registry.PublishResult(result, ttl); err != nil {
		log.Printf("Could not publish result for execution %s: %v", execution.Name(), err)
	}
}

func invocationResponse(execution *engine.Execution) InvocationResponse {
	resp := InvocationResponse{
		ExecutionId:   execution.Name(),
		Status:        string(execution.Status()),
		Output:        execution.Output(),
		ExecutionTime: execution.ExecutionTime().Seconds(),
	}
	if serr := execution.Err(); serr != nil {
		resp.Error = serr.Name
		resp.Cause = serr.Cause
		resp.Output = nil
	}
	return resp
}

// PollResult checks for the result of an asynchronous invocation.
func PollResult(c echo.Context) error {
	executionId := c.Param("execution")
	result, found, err := registry.PollResult(executionId)
	if err != nil {
		log.Println(err)
		return c.JSON(http.StatusInternalServerError, "")
	}
	if !found {
		return c.JSON(http.StatusNotFound, "")
	}
	return c.JSON(http.StatusOK, result)
}

// GetServerStatus reports a minimal liveness document.
func GetServerStatus(c echo.Context) error {
	machines, err := registry.GetAllMachines()
	count := -1
	if err == nil {
		count = len(machines)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"Status":   "ok",
		"Machines": count,
	})
}
