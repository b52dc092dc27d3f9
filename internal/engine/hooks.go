// engine/hooks.go
package engine

import (
	"context"
	"time"
)

type Hook interface {
	OnIterationStart(ctx context.Context, iteration int)
	OnBeforeLLM(ctx context.Context, messages []ChatMessage, toolSchemas []ToolSchema)
	OnAfterLLM(ctx context.Context, resp LLMResponse)
	OnToolCall(ctx context.Context, call ToolCall)
	OnToolResult(ctx context.Context, call ToolCall, result string, err error)
	OnRouteDecision(ctx context.Context, iteration int, stop bool, reason string)
	OnDone(ctx context.Context, iterations int, totals Usage)
	// Retry hooks
	OnRetryAttempt(ctx context.Context, attempt int, maxAttempts int, delay time.Duration, err error)
	OnRetryExhausted(ctx context.Context, err error)
}

// NopHook lets you implement only the hooks you need.
type NopHook struct{}

func (NopHook) OnIterationStart(context.Context, int)                         {}
func (NopHook) OnBeforeLLM(context.Context, []ChatMessage, []ToolSchema)      {}
func (NopHook) OnAfterLLM(context.Context, LLMResponse)                       {}
func (NopHook) OnToolCall(context.Context, ToolCall)                          {}
func (NopHook) OnToolResult(context.Context, ToolCall, string, error)         {}
func (NopHook) OnRouteDecision(context.Context, int, bool, string)            {}
func (NopHook) OnDone(context.Context, int, Usage)                            {}
func (NopHook) OnRetryAttempt(context.Context, int, int, time.Duration, error) {}
func (NopHook) OnRetryExhausted(context.Context, error)                       {}
