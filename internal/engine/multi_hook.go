package engine

import (
	"context"
	"time"
)

type Hooks []Hook

func (hs Hooks) OnIterationStart(ctx context.Context, iteration int) {
	for _, h := range hs {
		h.OnIterationStart(ctx, iteration)
	}
}
func (hs Hooks) OnBeforeLLM(ctx context.Context, m []ChatMessage, schemas []ToolSchema) {
	for _, h := range hs {
		h.OnBeforeLLM(ctx, m, schemas)
	}
}
func (hs Hooks) OnAfterLLM(ctx context.Context, r LLMResponse) {
	for _, h := range hs {
		h.OnAfterLLM(ctx, r)
	}
}
func (hs Hooks) OnToolCall(ctx context.Context, c ToolCall) {
	for _, h := range hs {
		h.OnToolCall(ctx, c)
	}
}
func (hs Hooks) OnToolResult(ctx context.Context, c ToolCall, s string, e error) {
	for _, h := range hs {
		h.OnToolResult(ctx, c, s, e)
	}
}
func (hs Hooks) OnRouteDecision(ctx context.Context, iteration int, stop bool, reason string) {
	for _, h := range hs {
		h.OnRouteDecision(ctx, iteration, stop, reason)
	}
}
func (hs Hooks) OnDone(ctx context.Context, iterations int, totals Usage) {
	for _, h := range hs {
		h.OnDone(ctx, iterations, totals)
	}
}
func (hs Hooks) OnRetryAttempt(ctx context.Context, attempt int, maxAttempts int, delay time.Duration, err error) {
	for _, h := range hs {
		h.OnRetryAttempt(ctx, attempt, maxAttempts, delay, err)
	}
}
func (hs Hooks) OnRetryExhausted(ctx context.Context, err error) {
	for _, h := range hs {
		h.OnRetryExhausted(ctx, err)
	}
}
