package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/invopop/jsonschema"

	"github.com/souschef/voice-core/core/live"
)

const (
	toolNameNavigate   = "navigate-to-step"
	toolNameSetTimer   = "set-timer"
	toolNameSubstitute = "get-ingredient-substitute"

	// defaultToolPayload is returned when a handler has no data of its own.
	defaultToolPayload = "OK"

	defaultToolTimeout = 10 * time.Second
)

// Tool is one named handler the remote model can invoke. Parameters are
// declared as a JSON schema reflected from the handler's typed argument
// struct.
type Tool struct {
	name        string
	description string
	parameters  *jsonschema.Schema
	async       bool

	execute func(ctx context.Context, argsJSON []byte) (string, error)
}

// NewTool builds a synchronous tool. The handler's parameter struct is
// reflected into the schema advertised during the session handshake.
func NewTool[T any](name, description string, handler func(ctx context.Context, params T) (string, error)) Tool {
	reflector := jsonschema.Reflector{DoNotReference: true}
	var zero T
	schema := reflector.Reflect(zero)
	schema.Version = ""

	return Tool{
		name:        name,
		description: description,
		parameters:  schema,
		execute: func(ctx context.Context, argsJSON []byte) (string, error) {
			var params T
			if len(argsJSON) > 0 {
				if err := json.Unmarshal(argsJSON, &params); err != nil {
					return "", fmt.Errorf("invalid arguments: %w", err)
				}
			}
			return handler(ctx, params)
		},
	}
}

// NewAsyncTool builds a tool whose handler may block on an external
// collaborator. The dispatcher runs it off the event loop and reports its
// result when it completes; other inbound messages keep flowing meanwhile.
func NewAsyncTool[T any](name, description string, handler func(ctx context.Context, params T) (string, error)) Tool {
	tool := NewTool(name, description, handler)
	tool.async = true
	return tool
}

// Name returns the tool's registry name.
func (t Tool) Name() string { return t.name }

// Descriptor returns the handshake declaration for the tool.
func (t Tool) Descriptor() live.ToolDescriptor {
	return live.ToolDescriptor{
		Name:        t.name,
		Description: t.description,
		Parameters:  t.parameters,
	}
}

// toolDispatcher holds the fixed registry of named handlers and executes
// remotely requested actions. Failures are isolated per call: every call id
// produces exactly one result regardless of handler outcome.
type toolDispatcher struct {
	order   []string
	tools   map[string]Tool
	timeout time.Duration
}

func newToolDispatcher(timeout time.Duration) *toolDispatcher {
	if timeout <= 0 {
		timeout = defaultToolTimeout
	}
	return &toolDispatcher{tools: map[string]Tool{}, timeout: timeout}
}

func (d *toolDispatcher) register(tool Tool) {
	if _, ok := d.tools[tool.name]; !ok {
		d.order = append(d.order, tool.name)
	}
	d.tools[tool.name] = tool
}

func (d *toolDispatcher) lookup(name string) (Tool, bool) {
	tool, ok := d.tools[name]
	return tool, ok
}

// descriptors returns handshake declarations in registration order.
func (d *toolDispatcher) descriptors() []live.ToolDescriptor {
	descriptors := make([]live.ToolDescriptor, 0, len(d.order))
	for _, name := range d.order {
		descriptors = append(descriptors, d.tools[name].Descriptor())
	}
	return descriptors
}

// execute runs one call to completion and always returns a result tagged
// with the originating call id. Handler errors and panics become
// error-describing payloads instead of tearing the session down.
func (d *toolDispatcher) execute(ctx context.Context, call live.ToolCall) (result live.ToolResult, execErr error) {
	result = live.ToolResult{ID: call.ID, Name: call.Name, Payload: defaultToolPayload}

	tool, ok := d.tools[call.Name]
	if !ok {
		execErr = &ToolExecutionError{ID: call.ID, Name: call.Name, Err: fmt.Errorf("tool not found")}
		result.Payload = "error: " + execErr.Error()
		return result, execErr
	}

	argsJSON, err := json.Marshal(call.Args)
	if err != nil {
		execErr = &ToolExecutionError{ID: call.ID, Name: call.Name, Err: err}
		result.Payload = "error: " + execErr.Error()
		return result, execErr
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	payload, err := runToolSafely(ctx, tool, argsJSON)
	if err != nil {
		execErr = &ToolExecutionError{ID: call.ID, Name: call.Name, Err: err}
		result.Payload = "error: " + execErr.Error()
		return result, execErr
	}
	if payload != "" {
		result.Payload = payload
	}
	return result, nil
}

func runToolSafely(ctx context.Context, tool Tool, argsJSON []byte) (payload string, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("tool handler panicked: %v", recovered)
		}
	}()

	return tool.execute(ctx, argsJSON)
}
