package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/souschef/voice-core/core/live"
)

func echoTool() Tool {
	return NewTool("echo", "Echoes its input.",
		func(_ context.Context, params struct {
			Text string `json:"text"`
		}) (string, error) {
			return params.Text, nil
		})
}

func TestToolDescriptorCarriesSchema(t *testing.T) {
	descriptor := echoTool().Descriptor()
	if descriptor.Name != "echo" || descriptor.Description == "" {
		t.Fatalf("unexpected descriptor: %+v", descriptor)
	}

	raw, err := json.Marshal(descriptor.Parameters)
	if err != nil {
		t.Fatalf("expected the parameter schema to marshal, got %v", err)
	}
	if !strings.Contains(string(raw), `"text"`) {
		t.Errorf("expected the reflected schema to declare the text parameter, got %s", raw)
	}
}

func TestDispatcherDescriptorsKeepRegistrationOrder(t *testing.T) {
	d := newToolDispatcher(time.Second)
	d.register(NewTool("b", "", func(_ context.Context, _ struct{}) (string, error) { return "", nil }))
	d.register(NewTool("a", "", func(_ context.Context, _ struct{}) (string, error) { return "", nil }))
	d.register(echoTool())

	descriptors := d.descriptors()
	if len(descriptors) != 3 {
		t.Fatalf("expected 3 descriptors, got %d", len(descriptors))
	}
	if descriptors[0].Name != "b" || descriptors[1].Name != "a" || descriptors[2].Name != "echo" {
		t.Errorf("unexpected order: %v", descriptors)
	}
}

func TestDispatcherExecutesAndTagsResults(t *testing.T) {
	d := newToolDispatcher(time.Second)
	d.register(echoTool())

	result, err := d.execute(context.Background(), live.ToolCall{
		ID:   "call-7",
		Name: "echo",
		Args: map[string]any{"text": "hello"},
	})
	if err != nil {
		t.Fatalf("unexpected execution error: %v", err)
	}
	if result.ID != "call-7" || result.Name != "echo" || result.Payload != "hello" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestDispatcherDefaultsEmptyPayloads(t *testing.T) {
	d := newToolDispatcher(time.Second)
	d.register(NewTool("quiet", "", func(_ context.Context, _ struct{}) (string, error) { return "", nil }))

	result, err := d.execute(context.Background(), live.ToolCall{ID: "call-1", Name: "quiet"})
	if err != nil {
		t.Fatalf("unexpected execution error: %v", err)
	}
	if result.Payload != "OK" {
		t.Errorf("expected the default acknowledgement payload, got %q", result.Payload)
	}
}

func TestDispatcherReportsUnknownTools(t *testing.T) {
	d := newToolDispatcher(time.Second)

	result, err := d.execute(context.Background(), live.ToolCall{ID: "call-1", Name: "missing"})
	var execErr *ToolExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected a tool execution error, got %v", err)
	}
	if result.ID != "call-1" {
		t.Errorf("expected the result tagged with the call id, got %q", result.ID)
	}
	if !strings.HasPrefix(result.Payload, "error: ") {
		t.Errorf("expected an error payload, got %q", result.Payload)
	}
}

func TestDispatcherContainsHandlerPanics(t *testing.T) {
	d := newToolDispatcher(time.Second)
	d.register(NewTool("explodes", "", func(_ context.Context, _ struct{}) (string, error) {
		panic("kaboom")
	}))

	result, err := d.execute(context.Background(), live.ToolCall{ID: "call-1", Name: "explodes"})
	if err == nil {
		t.Fatal("expected an execution error from the panicking handler")
	}
	if !strings.Contains(result.Payload, "kaboom") {
		t.Errorf("expected the panic surfaced in the payload, got %q", result.Payload)
	}
}

func TestDispatcherRejectsMalformedArguments(t *testing.T) {
	d := newToolDispatcher(time.Second)
	d.register(echoTool())

	result, err := d.execute(context.Background(), live.ToolCall{
		ID:   "call-1",
		Name: "echo",
		Args: map[string]any{"text": 42},
	})
	if err == nil {
		t.Fatal("expected an error for mistyped arguments")
	}
	if !strings.HasPrefix(result.Payload, "error: ") {
		t.Errorf("expected an error payload, got %q", result.Payload)
	}
}

func TestDispatcherHonorsTheHandlerTimeout(t *testing.T) {
	d := newToolDispatcher(20 * time.Millisecond)
	d.register(NewTool("slow", "", func(ctx context.Context, _ struct{}) (string, error) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(5 * time.Second):
			return "too late", nil
		}
	}))

	start := time.Now()
	_, err := d.execute(context.Background(), live.ToolCall{ID: "call-1", Name: "slow"})
	if err == nil {
		t.Fatal("expected a timeout error")
	}
	if time.Since(start) > time.Second {
		t.Errorf("expected the timeout to cut the handler short")
	}
}
