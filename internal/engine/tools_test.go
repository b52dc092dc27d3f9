package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func testTool(name string) Tool {
	return Tool{
		Name:        name,
		Description: "test tool",
		SchemaJSON:  `{"type":"object","properties":{"value":{"type":"string"}},"required":["value"]}`,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			return `{"echo":"` + args["value"].(string) + `"}`, nil
		},
	}
}

func TestToolValidateArgs(t *testing.T) {
	tool := testTool("echo")

	tests := []struct {
		name    string
		args    map[string]any
		wantErr bool
	}{
		{
			name:    "Valid args",
			args:    map[string]any{"value": "hello"},
			wantErr: false,
		},
		{
			name:    "Missing required field",
			args:    map[string]any{},
			wantErr: true,
		},
		{
			name:    "Wrong type",
			args:    map[string]any{"value": 42},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tool.ValidateArgs(tt.args)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateArgs() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && err != nil {
				var verr *ToolValidationError
				if !errors.As(err, &verr) {
					t.Errorf("Expected ToolValidationError, got %T", err)
				}
			}
		})
	}
}

func TestRegistryExecute(t *testing.T) {
	reg := ToolRegistry{"echo": testTool("echo")}

	result, err := reg.Execute(context.Background(), ToolCall{
		ID:   "call_1",
		Name: "echo",
		Args: map[string]any{"value": "hi"},
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(result, "hi") {
		t.Errorf("Expected echoed value in result, got %q", result)
	}

	// Unknown tool
	_, err = reg.Execute(context.Background(), ToolCall{Name: "missing", Args: map[string]any{}})
	if err == nil || !strings.Contains(err.Error(), "tool not found") {
		t.Errorf("Expected tool not found error, got %v", err)
	}

	// Validation failure surfaces as error, not execution
	_, err = reg.Execute(context.Background(), ToolCall{Name: "echo", Args: map[string]any{}})
	if err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestRegistrySchemasSorted(t *testing.T) {
	reg := ToolRegistry{
		"zeta":  testTool("zeta"),
		"alpha": testTool("alpha"),
		"mid":   testTool("mid"),
	}

	schemas := reg.Schemas()
	if len(schemas) != 3 {
		t.Fatalf("Expected 3 schemas, got %d", len(schemas))
	}
	want := []string{"alpha", "mid", "zeta"}
	for i, s := range schemas {
		if s.Name != want[i] {
			t.Errorf("Schemas()[%d] = %q, want %q", i, s.Name, want[i])
		}
	}
}
