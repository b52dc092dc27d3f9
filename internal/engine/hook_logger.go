// engine/hook_logger.go
package engine

import (
	"context"
	"log"
	"time"
)

type LoggerHook struct{ L *log.Logger }

func (h LoggerHook) OnIterationStart(_ context.Context, iteration int) {
	h.L.Printf("iteration=%d", iteration)
}
func (h LoggerHook) OnBeforeLLM(_ context.Context, msgs []ChatMessage, toolSchemas []ToolSchema) {
	h.L.Printf("llm call: %d msgs, %d tools", len(msgs), len(toolSchemas))
}
func (h LoggerHook) OnAfterLLM(_ context.Context, r LLMResponse) {
	h.L.Printf("finish=%s tool_calls=%d tokens: prompt=%d completion=%d total=%d",
		r.FinishReason, len(r.ToolCalls), r.Usage.Prompt, r.Usage.Completion, r.Usage.Total)
}
func (h LoggerHook) OnToolCall(_ context.Context, c ToolCall) {
	h.L.Printf("tool → %s", c.Name)
}
func (h LoggerHook) OnToolResult(_ context.Context, c ToolCall, result string, err error) {
	if err != nil {
		h.L.Printf("tool %s error: %v", c.Name, err)
		return
	}
	preview := result
	if len(preview) > 120 {
		preview = preview[:120] + "..."
	}
	h.L.Printf("tool %s result: %s", c.Name, preview)
}
func (h LoggerHook) OnRouteDecision(_ context.Context, iteration int, stop bool, reason string) {
	if stop {
		h.L.Printf("router: stop at iteration=%d (%s)", iteration, reason)
	}
}
func (h LoggerHook) OnDone(_ context.Context, iterations int, totals Usage) {
	h.L.Printf("done: iterations=%d tokens=%d", iterations, totals.Total)
}
func (h LoggerHook) OnRetryAttempt(_ context.Context, attempt int, maxAttempts int, delay time.Duration, err error) {
	h.L.Printf("retry attempt=%d/%d delay=%v error=%v", attempt, maxAttempts, delay, err)
}
func (h LoggerHook) OnRetryExhausted(_ context.Context, err error) {
	h.L.Printf("retries exhausted: %v", err)
}
