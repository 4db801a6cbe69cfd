// Package executor provides the task-executor collaborators consumed by
// Task states: an in-process handler registry for fn: resources and an
// HTTP executor POSTing the effective input to http(s) resources.
package executor

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/grussorusso/stepflow/internal/asl"
	"github.com/grussorusso/stepflow/utils"
)

// Handler is an in-process task implementation. Returning a
// *asl.StateError surfaces that record verbatim; any other error becomes
// States.TaskFailed.
type Handler func(ctx context.Context, input interface{}, credentials interface{}) (interface{}, error)

// Registry resolves fn:<name> resources to registered handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

func (r *Registry) Register(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

func (r *Registry) Execute(ctx context.Context, resource string, input interface{}, credentials interface{}) (interface{}, error) {
	name := strings.TrimPrefix(resource, "fn:")
	r.mu.RLock()
	h, ok := r.handlers[name]
	r.mu.RUnlock()
	if !ok {
		return nil, asl.NewStateError(asl.StatesTaskFailed, "no handler registered for resource '%s'", resource)
	}
	return h(ctx, input, credentials)
}

// HTTPExecutor invokes http(s) resources with a JSON POST of the
// effective input. The response body must be a JSON document.
type HTTPExecutor struct {
	Client *http.Client
}

func (h *HTTPExecutor) Execute(ctx context.Context, resource string, input interface{}, credentials interface{}) (interface{}, error) {
	payload, err := utils.EncodeJSON(input)
	if err != nil {
		return nil, asl.NewStateError(asl.StatesTaskFailed, "could not marshal task input: %v", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, resource, bytes.NewReader(payload))
	if err != nil {
		return nil, asl.NewStateError(asl.StatesTaskFailed, "invalid resource '%s': %v", resource, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token, ok := credentials.(string); ok && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, asl.NewStateError(asl.StatesTaskFailed, "could not read task response: %v", err)
	}
	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized {
		return nil, asl.NewStateError(asl.StatesPermissions, "task endpoint responded %s", resp.Status)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, asl.NewStateError(asl.StatesTaskFailed, "task endpoint responded %s: %s", resp.Status, string(body))
	}
	result, err := utils.DecodeJSON(body)
	if err != nil {
		return nil, asl.NewStateError(asl.StatesTaskFailed, "task response is not valid JSON: %v", err)
	}
	return result, nil
}

// Dispatcher routes resources by scheme: fn: to the registry, http(s) to
// the HTTP executor. It is the default executor wired by the server.
type Dispatcher struct {
	Registry *Registry
	HTTP     *HTTPExecutor
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{Registry: NewRegistry(), HTTP: &HTTPExecutor{}}
}

func (d *Dispatcher) Execute(ctx context.Context, resource string, input interface{}, credentials interface{}) (interface{}, error) {
	switch {
	case strings.HasPrefix(resource, "http://"), strings.HasPrefix(resource, "https://"):
		return d.HTTP.Execute(ctx, resource, input, credentials)
	case strings.HasPrefix(resource, "fn:"):
		return d.Registry.Execute(ctx, resource, input, credentials)
	default:
		return nil, asl.NewStateError(asl.StatesTaskFailed, "unsupported resource '%s'", resource)
	}
}
