package tool

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/thependalorian/salesflow/core"
)

func newTurn() *core.TurnContext {
	conv := core.NewConversation("c1", "cust-1", "chat")
	return core.NewTurnContext(context.Background(), core.NewID(), conv, nil, nil)
}

func echoTool() *FunctionTool {
	return NewFunctionTool(
		"echo",
		"Echo the given text",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{"type": "string"},
			},
			"required": []string{"text"},
		},
		func(tc *core.TurnContext, args map[string]any) (any, error) {
			return args["text"], nil
		},
	)
}

func TestRegistryRegisterAndInvoke(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(echoTool()); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := r.Register(echoTool()); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if got := r.Names(); len(got) != 1 || got[0] != "echo" {
		t.Fatalf("unexpected names: %v", got)
	}

	result, err := r.Invoke(newTurn(), core.ToolRequest{Name: "echo", Args: map[string]any{"text": "hi"}})
	if err != nil {
		t.Fatalf("invoke failed: %v", err)
	}
	if result != "hi" {
		t.Fatalf("unexpected result: %v", result)
	}
}

func TestRegistryUnknownTool(t *testing.T) {
	r := NewRegistry()
	_, err := r.Invoke(newTurn(), core.ToolRequest{Name: "nope"})
	var toolErr *ToolError
	if !errors.As(err, &toolErr) || toolErr.Code != CodeUnknownTool {
		t.Fatalf("expected UNKNOWN_TOOL error, got %v", err)
	}
}

func TestFunctionToolValidation(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(echoTool())

	_, err := r.Invoke(newTurn(), core.ToolRequest{Name: "echo"})
	var toolErr *ToolError
	if !errors.As(err, &toolErr) || toolErr.Code != CodeValidationError {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestFunctionToolErrorNormalization(t *testing.T) {
	plain := NewFunctionTool("boom", "Always fails", map[string]any{"type": "object"},
		func(tc *core.TurnContext, args map[string]any) (any, error) {
			return nil, fmt.Errorf("kaput")
		})
	_, err := plain.Call(newTurn(), map[string]any{})
	var toolErr *ToolError
	if !errors.As(err, &toolErr) || toolErr.Code != CodeExecutionError || toolErr.Tool != "boom" {
		t.Fatalf("expected wrapped EXECUTION_ERROR, got %v", err)
	}

	custom := NewFunctionTool("custom", "Fails with a typed error", map[string]any{"type": "object"},
		func(tc *core.TurnContext, args map[string]any) (any, error) {
			return nil, NewToolError("custom", "rate limited", "RATE_LIMITED")
		})
	_, err = custom.Call(newTurn(), map[string]any{})
	if !errors.As(err, &toolErr) || toolErr.Code != "RATE_LIMITED" {
		t.Fatalf("expected custom code preserved, got %v", err)
	}
}

func TestAuthorizerFunc(t *testing.T) {
	denyCRM := AuthorizerFunc(func(tc *core.TurnContext, req core.ToolRequest) error {
		if req.Name == "crm_lookup" {
			return errors.New("not allowed on this channel")
		}
		return nil
	})
	if err := denyCRM.Authorize(newTurn(), core.ToolRequest{Name: "crm_lookup"}); err == nil {
		t.Fatalf("expected denial")
	}
	if err := denyCRM.Authorize(newTurn(), core.ToolRequest{Name: "echo"}); err != nil {
		t.Fatalf("unexpected denial: %v", err)
	}
	if err := (AllowAll{}).Authorize(newTurn(), core.ToolRequest{Name: "anything"}); err != nil {
		t.Fatalf("AllowAll must allow: %v", err)
	}
}
